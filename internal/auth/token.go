package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"bookwish/internal/domain"
)

type TokenService struct {
	Secret   []byte
	Duration time.Duration
}

type Claims struct {
	Username string       `json:"username"`
	Group    domain.Group `json:"group"`
	jwt.RegisteredClaims
}

func (ts TokenService) Sign(u *domain.User) (string, time.Time, error) {
	exp := time.Now().Add(ts.Duration)

	claims := Claims{
		Username: u.Username,
		Group:    u.Group,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "bookwish",
			Subject:   u.Username,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(ts.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return s, exp, nil
}

func (ts TokenService) Parse(tokenString string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		// enforce HS256
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ts.Secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}
