// Package auth содержит логику бизнес-уровня для регистрации,
// аутентификации и жизненного цикла пары JWT токенов.
package auth

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/intern-dashboard/internal/lib/jwt"
	"github.com/magabrotheeeer/intern-dashboard/internal/lib/password"
	"github.com/magabrotheeeer/intern-dashboard/internal/lib/referral"
	"github.com/magabrotheeeer/intern-dashboard/internal/models"
	"github.com/magabrotheeeer/intern-dashboard/internal/services/rewards"
	"github.com/magabrotheeeer/intern-dashboard/internal/storage/repository"
)

// Ошибки сервиса аутентификации.
var (
	// ErrEmailTaken — пользователь с такой почтой уже существует.
	ErrEmailTaken = errors.New("email already taken")
	// ErrInvalidCredentials — неверная пара почта/пароль. Сообщение
	// одинаково для несуществующей почты и неверного пароля.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrTokenExpired — access-токен истёк, клиент может обновить пару.
	ErrTokenExpired = errors.New("token expired")
	// ErrInvalidToken — access-токен не прошел проверку подписи.
	ErrInvalidToken = errors.New("invalid token")
	// ErrInvalidRefreshToken — refresh-токен невалиден или уже заменён.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	// ErrUserNotFound — пользователь из токена не существует или неактивен.
	ErrUserNotFound = errors.New("user not found")
)

// Границы случайной стартовой суммы пожертвований нового пользователя.
const (
	seedDonationMin  = 500
	seedDonationSpan = 5000
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя.
	CreateUser(ctx context.Context, user models.User) error

	// GetActiveUserByEmail возвращает активного пользователя по почте.
	GetActiveUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByUID возвращает пользователя по его UID.
	GetUserByUID(ctx context.Context, userUID string) (*models.User, error)

	// UpdateLoginState сохраняет refresh-токен и время последнего входа.
	UpdateLoginState(ctx context.Context, userUID, refreshToken string, lastLogin time.Time) error

	// UpdateRefreshToken заменяет сохранённый refresh-токен.
	UpdateRefreshToken(ctx context.Context, userUID, refreshToken string) error

	// ClearRefreshToken сбрасывает refresh-токен.
	ClearRefreshToken(ctx context.Context, userUID string) error
}

// TokenPair — пара access/refresh токенов, выдаваемая клиенту.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthService отвечает за регистрацию, авторизацию и жизненный цикл токенов.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
	}
}

// Register создает нового пользователя с хэшированием пароля, реферальным
// кодом, случайной стартовой суммой пожертвований и пересчитанными наградами.
// Возвращает созданного пользователя и пару токенов.
func (s *AuthService) Register(ctx context.Context, name, email, rawPassword string) (*models.User, TokenPair, error) {
	const op = "services.auth.Register"

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return nil, TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()
	seed := int64(rand.IntN(seedDonationSpan)) + seedDonationMin

	user := models.User{
		UID:          uuid.NewString(),
		Name:         strings.TrimSpace(name),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hashed,
		ReferralCode: referral.Generate(name, now),
		Donations:    seed,
		Rewards:      rewards.Compute(seed, now, nil),
		Role:         models.RoleIntern, // дефолтная роль при регистрации
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	accessToken, refreshToken, err := s.jwtMaker.GeneratePair(user.UID, user.Email, user.Role)
	if err != nil {
		return nil, TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}
	user.RefreshToken = refreshToken

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, TokenPair{}, ErrEmailTaken
		}
		return nil, TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	return &user, TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Login проверяет пароль пользователя, обновляет время последнего входа
// и выдает новую пару токенов. Несуществующая почта и неверный пароль
// дают одинаковую ошибку ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (*models.User, TokenPair, error) {
	const op = "services.auth.Login"

	user, err := s.users.GetActiveUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, TokenPair{}, ErrInvalidCredentials
		}
		return nil, TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, TokenPair{}, ErrInvalidCredentials
	}

	accessToken, refreshToken, err := s.jwtMaker.GeneratePair(user.UID, user.Email, user.Role)
	if err != nil {
		return nil, TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	lastLogin := time.Now().UTC()
	if err := s.users.UpdateLoginState(ctx, user.UID, refreshToken, lastLogin); err != nil {
		return nil, TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	user.RefreshToken = refreshToken
	user.LastLogin = &lastLogin

	return user, TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Refresh проверяет refresh-токен, сверяет его с сохранённым у пользователя
// и выдает новую пару, заменяя старый токен. Повторное использование
// уже заменённого токена отклоняется.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	const op = "services.auth.Refresh"

	claims, err := s.jwtMaker.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, ErrInvalidRefreshToken
	}

	user, err := s.users.GetUserByUID(ctx, claims.UserUID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return TokenPair{}, ErrInvalidRefreshToken
		}
		return TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}
	if !user.IsActive || user.RefreshToken != refreshToken {
		return TokenPair{}, ErrInvalidRefreshToken
	}

	newAccess, newRefresh, err := s.jwtMaker.GeneratePair(user.UID, user.Email, user.Role)
	if err != nil {
		return TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.users.UpdateRefreshToken(ctx, user.UID, newRefresh); err != nil {
		return TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	return TokenPair{AccessToken: newAccess, RefreshToken: newRefresh}, nil
}

// Logout сбрасывает сохранённый refresh-токен пользователя. Идемпотентна.
func (s *AuthService) Logout(ctx context.Context, userUID string) error {
	const op = "services.auth.Logout"

	if err := s.users.ClearRefreshToken(ctx, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Authenticate проверяет access-токен и возвращает его владельца.
// Истёкший токен дает ErrTokenExpired (клиент может обновить пару),
// любой другой дефект токена — ErrInvalidToken.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	const op = "services.auth.Authenticate"

	claims, err := s.jwtMaker.ParseAccessToken(accessToken)
	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetUserByUID(ctx, claims.UserUID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !user.IsActive {
		return nil, ErrUserNotFound
	}

	return user, nil
}
