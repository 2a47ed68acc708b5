package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/yourusername/lesson-api/internal/domain/entity"
)

// LessonRepository определяет методы для работы с уроками
type LessonRepository interface {
	// Create сохраняет урок. Повтор slug в пределах курса возвращает apperrors.ErrConflict.
	Create(ctx context.Context, lesson *entity.Lesson) error
	// GetByID возвращает урок вместе с его курсом
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Lesson, error)
	// GetBySlugs возвращает урок по slug курса и slug урока вместе с блоками в порядке отображения
	GetBySlugs(ctx context.Context, courseSlug, lessonSlug string) (*entity.Lesson, error)
}
