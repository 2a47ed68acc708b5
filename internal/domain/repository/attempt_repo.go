package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/yourusername/lesson-api/internal/domain/entity"
)

// AttemptRepository определяет методы для работы с попытками.
// Попытки только создаются и читаются.
type AttemptRepository interface {
	Create(ctx context.Context, attempt *entity.Attempt) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Attempt, error)
	// ListByQuiz возвращает все попытки викторины, новые первыми
	ListByQuiz(ctx context.Context, quizID uuid.UUID) ([]entity.Attempt, error)
}
