// Package models содержит доменную модель пользователя дашборда,
// включающую данные учётной записи, накопленные пожертвования,
// список наград и служебные поля. Структуры используются
// в бизнес‑логике и при работе с хранилищем.
package models

import "time"

// Роли пользователей.
const (
	RoleIntern = "intern"
	RoleAdmin  = "admin"
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	UID          string     `json:"id"`           // Уникальный идентификатор пользователя
	Name         string     `json:"name"`         // Отображаемое имя
	Email        string     `json:"email"`        // Электронная почта (уникальная, в нижнем регистре)
	PasswordHash string     `json:"-"`            // Хэш пароля, наружу не отдается
	ReferralCode string     `json:"referralCode"` // Реферальный код
	Donations    int64      `json:"donations"`    // Накопленная сумма пожертвований
	Rewards      []Reward   `json:"rewards"`      // Список наград, пересчитывается от Donations
	Role         string     `json:"role"`         // intern или admin
	IsActive     bool       `json:"isActive"`     // Признак активности (мягкое удаление)
	RefreshToken string     `json:"-"`            // Последний выданный refresh-токен, наружу не отдается
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Reward описывает одну ступень наград с порогом разблокировки.
type Reward struct {
	Title      string     `json:"title"`
	Threshold  int64      `json:"threshold"`
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlockedAt,omitempty"`
}

// LeaderboardEntry — строка таблицы лидеров.
type LeaderboardEntry struct {
	UID           string    `json:"id"`
	Name          string    `json:"name"`
	Donations     int64     `json:"donations"`
	Level         string    `json:"level"`
	CreatedAt     time.Time `json:"createdAt"`
	Rank          int       `json:"rank"`
	IsCurrentUser bool      `json:"isCurrentUser"`
}
