// Package jwt реализует генерацию и парсинг JWT токенов с пользовательскими claim полями.
//
// CustomClaims расширяет стандартные claims JWT, добавляя идентификатор,
// почту и роль пользователя.
package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CustomClaims описывает пользовательские данные, хранящиеся в JWT.
type CustomClaims struct {
	UserUID              string `json:"id"`    // Идентификатор пользователя
	Email                string `json:"email"` // Почта пользователя
	Role                 string `json:"role"`  // Роль пользователя
	jwt.RegisteredClaims        // Встроенные стандартные claims JWT (ExpiresAt, IssuedAt и пр.)
}

// GeneratePair создает пару JWT токенов с заданными данными пользователя.
//
// Access-токен подписывается accessSecret и живет accessTTL,
// refresh-токен — refreshSecret и refreshTTL.
func (j *MakerImpl) GeneratePair(userUID, email, role string) (string, string, error) {
	const op = "jwt.GeneratePair"
	accessToken, err := j.sign(userUID, email, role, j.accessSecret, j.accessTTL)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	refreshToken, err := j.sign(userUID, email, role, j.refreshSecret, j.refreshTTL)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	return accessToken, refreshToken, nil
}

// ParseAccessToken парсит access-токен, проверяет его подпись и срок действия,
// возвращает CustomClaims с данными, если токен корректен.
func (j *MakerImpl) ParseAccessToken(tokenStr string) (*CustomClaims, error) {
	const op = "jwt.ParseAccessToken"
	claims, err := parse(tokenStr, j.accessSecret)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return claims, nil
}

// ParseRefreshToken парсит refresh-токен своим секретом.
func (j *MakerImpl) ParseRefreshToken(tokenStr string) (*CustomClaims, error) {
	const op = "jwt.ParseRefreshToken"
	claims, err := parse(tokenStr, j.refreshSecret)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return claims, nil
}

func (j *MakerImpl) sign(userUID, email, role, secret string, ttl time.Duration) (string, error) {
	claims := CustomClaims{
		UserUID: userUID,
		Email:   email,
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func parse(tokenStr, secret string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
