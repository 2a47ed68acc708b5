package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yourusername/lesson-api/internal/domain/entity"
)

// ContentBlockRepo реализует repository.ContentBlockRepository
type ContentBlockRepo struct {
	db *gorm.DB
}

// NewContentBlockRepo создает новый репозиторий блоков контента
func NewContentBlockRepo(db *gorm.DB) *ContentBlockRepo {
	return &ContentBlockRepo{db: db}
}

// Create сохраняет блок без вложенной викторины: граф викторины пишет QuizRepo
func (r *ContentBlockRepo) Create(tx *gorm.DB, block *entity.ContentBlock) error {
	err := tx.Omit("Quiz").Create(block).Error
	return translateWriteError(err, "content block")
}

// GetByID возвращает блок по ID
func (r *ContentBlockRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.ContentBlock, error) {
	var block entity.ContentBlock
	if err := r.db.WithContext(ctx).Preload("Quiz").First(&block, "id = ?", id).Error; err != nil {
		return nil, translateReadError(err, "content block "+id.String())
	}
	return &block, nil
}
