package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yourusername/lesson-api/internal/domain/entity"
)

// ContentBlockRepository определяет методы для работы с блоками контента
type ContentBlockRepository interface {
	// Create сохраняет блок в рамках транзакции tx
	Create(tx *gorm.DB, block *entity.ContentBlock) error
	// GetByID возвращает блок вместе с викториной (для quiz-блока)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.ContentBlock, error)
}
