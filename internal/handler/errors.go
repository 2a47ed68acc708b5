package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yourusername/lesson-api/internal/pkg/errors"
	"github.com/yourusername/lesson-api/internal/pkg/logger"
)

// respondError сопоставляет ошибку приложения HTTP-статусу.
// Ошибки валидации называют поле, ошибки преобразования называют формат файла.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	if fe, ok := apperrors.AsFieldError(err); ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":      err.Error(),
			"error_type": "validation",
			"field":      fe.Field,
			"reason":     fe.Reason,
		})
		return
	}

	var convErr *apperrors.ConversionError
	switch {
	case errors.As(err, &convErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":      err.Error(),
			"error_type": "conversion",
			"format":     convErr.Format,
		})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "error_type": "validation"})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "error_type": "not_found"})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "error_type": "conflict"})
	case errors.Is(err, apperrors.ErrIntegrity):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "error_type": "integrity"})
	case errors.Is(err, apperrors.ErrExpiredToken), errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "error_type": "unauthorized"})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error(), "error_type": "forbidden"})
	default:
		log.Error("Internal server error", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// badRequest отвечает 400 на синтаксически неверный запрос
func badRequest(c *gin.Context, message string, err error) {
	body := gin.H{"error": message}
	if err != nil {
		body["details"] = err.Error()
	}
	c.JSON(http.StatusBadRequest, body)
}
