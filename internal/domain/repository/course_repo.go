package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/yourusername/lesson-api/internal/domain/entity"
)

// CourseRepository определяет методы для работы с курсами
type CourseRepository interface {
	// Create сохраняет курс. Повтор slug возвращает apperrors.ErrConflict.
	Create(ctx context.Context, course *entity.Course) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Course, error)
	// GetBySlug возвращает курс вместе с уроками в порядке отображения
	GetBySlug(ctx context.Context, slug string) (*entity.Course, error)
	// List возвращает курсы, отсортированные по заголовку
	List(ctx context.Context) ([]entity.Course, error)
	// ListTree возвращает курсы с уроками и блоками (для панели администратора)
	ListTree(ctx context.Context) ([]entity.Course, error)
}
