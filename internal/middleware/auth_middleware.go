package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yourusername/lesson-api/internal/pkg/errors"
	"github.com/yourusername/lesson-api/internal/pkg/logger"
	"github.com/yourusername/lesson-api/pkg/auth"
)

// AdminUsernameKey: ключ контекста Gin с именем аутентифицированного администратора
const AdminUsernameKey = "adminUsername"

// AuthMiddleware пропускает к маршрутам администратора только аутентифицированные запросы
type AuthMiddleware struct {
	jwtService   *auth.JWTService
	username     string
	passwordHash string
	log          *logger.Logger
}

// NewAuthMiddleware создает middleware с учетными данными администратора из конфигурации
func NewAuthMiddleware(jwtService *auth.JWTService, username, passwordHash string, log *logger.Logger) *AuthMiddleware {
	if log == nil {
		log = logger.Nop()
	}
	return &AuthMiddleware{
		jwtService:   jwtService,
		username:     username,
		passwordHash: passwordHash,
		log:          log,
	}
}

// CheckCredentials проверяет имя и пароль администратора
func (m *AuthMiddleware) CheckCredentials(username, password string) bool {
	return auth.CheckCredentials(username, password, m.username, m.passwordHash)
}

// RequireAdmin принимает HTTP Basic с учетными данными администратора или Bearer-токен
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		switch {
		case header == "":
			m.reject(c, http.StatusUnauthorized, "Authorization is required", "token_missing")
			return

		case strings.HasPrefix(header, "Basic "):
			username, password, ok := c.Request.BasicAuth()
			if !ok || !m.CheckCredentials(username, password) {
				m.log.Warn("Admin basic auth rejected", "ip", c.ClientIP())
				m.reject(c, http.StatusUnauthorized, "Invalid credentials", "credentials_invalid")
				return
			}
			c.Set(AdminUsernameKey, username)

		case strings.HasPrefix(header, "Bearer "):
			claims, err := m.jwtService.ParseToken(strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")))
			if err != nil {
				switch {
				case errors.Is(err, apperrors.ErrExpiredToken):
					m.reject(c, http.StatusUnauthorized, "Token is expired", "token_expired")
				case errors.Is(err, apperrors.ErrForbidden):
					m.reject(c, http.StatusForbidden, "Forbidden", "forbidden")
				default:
					m.log.Warn("Admin token rejected", "ip", c.ClientIP(), "error", err)
					m.reject(c, http.StatusUnauthorized, "Invalid or expired token", "token_invalid")
				}
				return
			}
			c.Set(AdminUsernameKey, claims.Username)

		default:
			m.reject(c, http.StatusUnauthorized, "Authorization header format must be Basic or Bearer", "token_format")
			return
		}

		c.Next()
	}
}

func (m *AuthMiddleware) reject(c *gin.Context, status int, message, errorType string) {
	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", `Basic realm="admin", charset="UTF-8"`)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": message, "error_type": errorType})
}
