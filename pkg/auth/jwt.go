package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken токен не прошёл проверку подписи или формата
	ErrInvalidToken = errors.New("invalid token")
	// ErrRevokedToken токен отозван через logout
	ErrRevokedToken = errors.New("token has been revoked")
)

// TokenBlacklist хранит идентификаторы (jti) отозванных токенов до истечения их срока
type TokenBlacklist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// JWTCustomClaims содержит пользовательские поля для токена
type JWTCustomClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// JWTService выпускает и проверяет HS256 токены доступа
type JWTService struct {
	secret     []byte
	issuer     string
	expiration time.Duration
	blacklist  TokenBlacklist
	now        func() time.Time
}

// NewJWTService создает сервис JWT. blacklist может быть nil (отзыв токенов отключён).
func NewJWTService(secret string, expirationHrs int, issuer string, blacklist TokenBlacklist) (*JWTService, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT secret is required for JWTService")
	}
	if expirationHrs <= 0 {
		expirationHrs = 24
	}
	return &JWTService{
		secret:     []byte(secret),
		issuer:     issuer,
		expiration: time.Duration(expirationHrs) * time.Hour,
		blacklist:  blacklist,
		now:        time.Now,
	}, nil
}

// GenerateToken создает токен доступа для пользователя
func (s *JWTService) GenerateToken(userID uint, username, role string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.expiration)

	claims := &JWTCustomClaims{
		UserID:   userID,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   fmt.Sprintf("%d", userID),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseToken проверяет подпись, срок действия и отзыв токена
func (s *JWTService) ParseToken(ctx context.Context, tokenString string) (*JWTCustomClaims, error) {
	claims := &JWTCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if s.issuer != "" && claims.Issuer != s.issuer {
		return nil, fmt.Errorf("%w: unexpected issuer %q", ErrInvalidToken, claims.Issuer)
	}

	if s.blacklist != nil && claims.ID != "" {
		revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
		if err != nil {
			// Redis недоступен - пропускаем (fail-open), как и rate limiter
			log.Printf("JWT: failed to check blacklist for jti=%s: %v", claims.ID, err)
		} else if revoked {
			return nil, ErrRevokedToken
		}
	}

	return claims, nil
}

// RevokeToken отзывает токен до окончания его срока действия
func (s *JWTService) RevokeToken(ctx context.Context, claims *JWTCustomClaims) error {
	if s.blacklist == nil || claims == nil || claims.ID == "" {
		return nil
	}
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Time.Sub(s.now())
	}
	if ttl <= 0 {
		return nil
	}
	return s.blacklist.Revoke(ctx, claims.ID, ttl)
}
