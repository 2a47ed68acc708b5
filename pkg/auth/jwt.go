package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	apperrors "github.com/yourusername/lesson-api/internal/pkg/errors"
)

const (
	// RoleAdmin: единственная роль, которой выдаются токены
	RoleAdmin = "admin"

	tokenIssuer   = "lesson-api"
	tokenAudience = "lesson-admin"
)

// AdminClaims содержит поля токена администратора
type AdminClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// JWTService выпускает и проверяет токены администратора, подписанные HS256
type JWTService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTService создает сервис JWT и возвращает ошибку при пустом секрете
func NewJWTService(secret string, ttl time.Duration) (*JWTService, error) {
	if secret == "" {
		return nil, errors.New("jwt secret cannot be empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("invalid token ttl: %s", ttl)
	}
	return &JWTService{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// GenerateAdminToken выпускает токен для администратора и возвращает время его истечения
func (s *JWTService) GenerateAdminToken(username string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := &AdminClaims{
		Username: username,
		Role:     RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   username,
			Audience:  jwt.ClaimStrings{tokenAudience},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign admin token: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseToken проверяет подпись, срок действия, издателя и роль токена
func (s *JWTService) ParseToken(tokenString string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	parser := jwt.Parser{
		ValidMethods: []string{jwt.SigningMethodHS256.Alg()},
	}

	_, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, apperrors.ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUnauthorized, err)
	}

	if claims.Issuer != tokenIssuer || !claims.VerifyAudience(tokenAudience, true) {
		return nil, fmt.Errorf("%w: token issued for another audience", apperrors.ErrUnauthorized)
	}
	if claims.Role != RoleAdmin {
		return nil, fmt.Errorf("%w: role %q", apperrors.ErrForbidden, claims.Role)
	}
	return claims, nil
}
