// Package jwt реализует генерацию и парсинг пары JWT токенов доступа и обновления.
//
// Maker определяет интерфейс для создания и проверки токенов с данными пользователя.
// MakerImpl — конкретная реализация с двумя секретными ключами: короткоживущий
// access-токен и долгоживущий refresh-токен подписываются разными секретами.
package jwt

import (
	"time"
)

// Maker описывает интерфейс для генерации и парсинга JWT токенов.
//
// Методы позволяют выпускать пару токенов с идентификатором, почтой и ролью
// пользователя, а также разбирать каждый из токенов своим секретом.
type Maker interface {
	// GeneratePair выпускает access и refresh токены для пользователя.
	GeneratePair(userUID, email, role string) (accessToken, refreshToken string, err error)
	// ParseAccessToken возвращает *CustomClaims access-токена.
	ParseAccessToken(tokenStr string) (*CustomClaims, error)
	// ParseRefreshToken возвращает *CustomClaims refresh-токена.
	ParseRefreshToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl реализует интерфейс Maker с использованием двух секретных ключей
// и времени жизни каждого из токенов (TTL).
type MakerImpl struct {
	accessSecret  string        // Секретный ключ для подписи access-токенов.
	refreshSecret string        // Секретный ключ для подписи refresh-токенов.
	accessTTL     time.Duration // Время жизни access-токена.
	refreshTTL    time.Duration // Время жизни refresh-токена.
}

// NewJWTMaker создаёт новый экземпляр MakerImpl на основе секретных ключей и TTL.
func NewJWTMaker(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *MakerImpl {
	return &MakerImpl{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}
