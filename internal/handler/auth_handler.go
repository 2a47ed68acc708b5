package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/lesson-api/internal/handler/dto"
	"github.com/yourusername/lesson-api/internal/pkg/logger"
	"github.com/yourusername/lesson-api/pkg/auth"
)

// CredentialsChecker проверяет учетные данные администратора
type CredentialsChecker interface {
	CheckCredentials(username, password string) bool
}

// AuthHandler выдает токены администратора
type AuthHandler struct {
	credentials CredentialsChecker
	jwtService  *auth.JWTService
	log         *logger.Logger
}

// NewAuthHandler создает новый обработчик аутентификации
func NewAuthHandler(credentials CredentialsChecker, jwtService *auth.JWTService, log *logger.Logger) *AuthHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &AuthHandler{
		credentials: credentials,
		jwtService:  jwtService,
		log:         log,
	}
}

// Login обменивает имя и пароль администратора на Bearer-токен
// POST /api/admin/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request data", err)
		return
	}

	if !h.credentials.CheckCredentials(req.Username, req.Password) {
		h.log.Warn("Admin login failed", "username", req.Username, "ip", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials", "error_type": "credentials_invalid"})
		return
	}

	token, expiresAt, err := h.jwtService.GenerateAdminToken(req.Username)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info("Admin logged in", "username", req.Username, "ip", c.ClientIP())
	c.JSON(http.StatusOK, dto.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	})
}
