package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yourusername/lesson-api/internal/domain/entity"
)

// AttemptRepo реализует repository.AttemptRepository
type AttemptRepo struct {
	db *gorm.DB
}

// NewAttemptRepo создает новый репозиторий попыток
func NewAttemptRepo(db *gorm.DB) *AttemptRepo {
	return &AttemptRepo{db: db}
}

// Create сохраняет попытку
func (r *AttemptRepo) Create(ctx context.Context, attempt *entity.Attempt) error {
	err := r.db.WithContext(ctx).Create(attempt).Error
	return translateWriteError(err, "attempt")
}

// GetByID возвращает попытку по ID
func (r *AttemptRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Attempt, error) {
	var attempt entity.Attempt
	if err := r.db.WithContext(ctx).First(&attempt, "id = ?", id).Error; err != nil {
		return nil, translateReadError(err, "attempt "+id.String())
	}
	return &attempt, nil
}

// ListByQuiz возвращает попытки викторины, новые первыми
func (r *AttemptRepo) ListByQuiz(ctx context.Context, quizID uuid.UUID) ([]entity.Attempt, error) {
	var attempts []entity.Attempt
	err := r.db.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Order("created_at DESC").
		Find(&attempts).Error
	return attempts, err
}
