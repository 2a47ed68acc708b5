package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yourusername/lesson-api/internal/domain/repository"
	"github.com/yourusername/lesson-api/internal/pkg/logger"
)

// CascadeService удаляет узел иерархии вместе со всеми потомками одной транзакцией
type CascadeService struct {
	db          *gorm.DB
	cascadeRepo repository.CascadeRepository
	courseRepo  repository.CourseRepository
	lessonRepo  repository.LessonRepository
	blockRepo   repository.ContentBlockRepository
	cache       *ReadCache
	log         *logger.Logger
}

// NewCascadeService создает сервис каскадного удаления
func NewCascadeService(
	db *gorm.DB,
	cascadeRepo repository.CascadeRepository,
	courseRepo repository.CourseRepository,
	lessonRepo repository.LessonRepository,
	blockRepo repository.ContentBlockRepository,
	cache *ReadCache,
	log *logger.Logger,
) *CascadeService {
	if log == nil {
		log = logger.Nop()
	}
	return &CascadeService{
		db:          db,
		cascadeRepo: cascadeRepo,
		courseRepo:  courseRepo,
		lessonRepo:  lessonRepo,
		blockRepo:   blockRepo,
		cache:       cache,
		log:         log,
	}
}

// DeleteCourse удаляет курс, его уроки, блоки, викторины, вопросы, варианты и попытки
func (s *CascadeService) DeleteCourse(ctx context.Context, courseID uuid.UUID) (*repository.CascadeResult, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	res, err := s.run(ctx, func(tx *gorm.DB) (*repository.CascadeResult, error) {
		return s.cascadeRepo.DeleteCourse(tx, courseID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to delete course %s: %w", courseID, err)
	}

	s.cache.InvalidateCourse(ctx, course.Slug)
	s.log.Info("Course deleted", "course_id", courseID, "slug", course.Slug, "removed", res)
	return res, nil
}

// DeleteLesson удаляет урок со всеми потомками
func (s *CascadeService) DeleteLesson(ctx context.Context, lessonID uuid.UUID) (*repository.CascadeResult, error) {
	lesson, err := s.lessonRepo.GetByID(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	res, err := s.run(ctx, func(tx *gorm.DB) (*repository.CascadeResult, error) {
		return s.cascadeRepo.DeleteLesson(tx, lessonID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to delete lesson %s: %w", lessonID, err)
	}

	if lesson.Course != nil {
		s.cache.InvalidateCourse(ctx, lesson.Course.Slug)
	}
	s.log.Info("Lesson deleted", "lesson_id", lessonID, "removed", res)
	return res, nil
}

// DeleteContentBlock удаляет блок и, для quiz-блока, его викторину с попытками
func (s *CascadeService) DeleteContentBlock(ctx context.Context, blockID uuid.UUID) (*repository.CascadeResult, error) {
	block, err := s.blockRepo.GetByID(ctx, blockID)
	if err != nil {
		return nil, err
	}
	lesson, err := s.lessonRepo.GetByID(ctx, block.LessonID)
	if err != nil {
		return nil, err
	}

	res, err := s.run(ctx, func(tx *gorm.DB) (*repository.CascadeResult, error) {
		return s.cascadeRepo.DeleteContentBlock(tx, blockID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to delete content block %s: %w", blockID, err)
	}

	if lesson.Course != nil {
		s.cache.InvalidateCourse(ctx, lesson.Course.Slug)
	}
	s.log.Info("Content block deleted", "block_id", blockID, "removed", res)
	return res, nil
}

// run выполняет цепочку удаления в одной транзакции: при любой ошибке откатываются все шаги
func (s *CascadeService) run(ctx context.Context, fn func(tx *gorm.DB) (*repository.CascadeResult, error)) (*repository.CascadeResult, error) {
	var res *repository.CascadeResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		res, err = fn(tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
