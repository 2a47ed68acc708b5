package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yourusername/lesson-api/internal/domain/entity"
)

// LessonRepo реализует repository.LessonRepository
type LessonRepo struct {
	db *gorm.DB
}

// NewLessonRepo создает новый репозиторий уроков
func NewLessonRepo(db *gorm.DB) *LessonRepo {
	return &LessonRepo{db: db}
}

// Create создает новый урок
func (r *LessonRepo) Create(ctx context.Context, lesson *entity.Lesson) error {
	err := r.db.WithContext(ctx).Omit("Course", "Blocks").Create(lesson).Error
	return translateWriteError(err, "lesson "+lesson.Slug)
}

// GetByID возвращает урок вместе с курсом
func (r *LessonRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Lesson, error) {
	var lesson entity.Lesson
	if err := r.db.WithContext(ctx).Preload("Course").First(&lesson, "id = ?", id).Error; err != nil {
		return nil, translateReadError(err, "lesson "+id.String())
	}
	return &lesson, nil
}

// GetBySlugs возвращает урок курса с блоками; для quiz-блоков подгружается заголовок викторины
func (r *LessonRepo) GetBySlugs(ctx context.Context, courseSlug, lessonSlug string) (*entity.Lesson, error) {
	var lesson entity.Lesson
	err := r.db.WithContext(ctx).
		Joins("Course").
		Preload("Blocks", orderedByPosition).
		Preload("Blocks.Quiz").
		Where(`"Course"."slug" = ? AND "lessons"."slug" = ?`, courseSlug, lessonSlug).
		First(&lesson).Error
	if err != nil {
		return nil, translateReadError(err, "lesson "+courseSlug+"/"+lessonSlug)
	}
	return &lesson, nil
}
