package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yourusername/lesson-api/internal/domain/entity"
)

// CourseRepo реализует repository.CourseRepository
type CourseRepo struct {
	db *gorm.DB
}

// NewCourseRepo создает новый репозиторий курсов
func NewCourseRepo(db *gorm.DB) *CourseRepo {
	return &CourseRepo{db: db}
}

// Create создает новый курс
func (r *CourseRepo) Create(ctx context.Context, course *entity.Course) error {
	err := r.db.WithContext(ctx).Omit("Lessons").Create(course).Error
	return translateWriteError(err, "course "+course.Slug)
}

// GetByID возвращает курс по ID
func (r *CourseRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Course, error) {
	var course entity.Course
	if err := r.db.WithContext(ctx).First(&course, "id = ?", id).Error; err != nil {
		return nil, translateReadError(err, "course "+id.String())
	}
	return &course, nil
}

// GetBySlug возвращает курс с уроками, упорядоченными по order и времени создания
func (r *CourseRepo) GetBySlug(ctx context.Context, slug string) (*entity.Course, error) {
	var course entity.Course
	err := r.db.WithContext(ctx).
		Preload("Lessons", orderedByPosition).
		Where("slug = ?", slug).
		First(&course).Error
	if err != nil {
		return nil, translateReadError(err, "course "+slug)
	}
	return &course, nil
}

// List возвращает все курсы по алфавиту
func (r *CourseRepo) List(ctx context.Context) ([]entity.Course, error) {
	var courses []entity.Course
	err := r.db.WithContext(ctx).Order("title ASC").Order("created_at ASC").Find(&courses).Error
	return courses, err
}

// ListTree возвращает курсы с уроками, блоками и викторинами блоков
func (r *CourseRepo) ListTree(ctx context.Context) ([]entity.Course, error) {
	var courses []entity.Course
	err := r.db.WithContext(ctx).
		Preload("Lessons", orderedByPosition).
		Preload("Lessons.Blocks", orderedByPosition).
		Preload("Lessons.Blocks.Quiz").
		Order("title ASC").
		Order("created_at ASC").
		Find(&courses).Error
	return courses, err
}

// orderedByPosition сортирует уроки и блоки по порядку отображения; равные order идут в порядке создания
func orderedByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC").Order("created_at ASC").Order("id ASC")
}
