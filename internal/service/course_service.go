package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/yourusername/lesson-api/internal/domain/entity"
	"github.com/yourusername/lesson-api/internal/domain/repository"
	apperrors "github.com/yourusername/lesson-api/internal/pkg/errors"
	"github.com/yourusername/lesson-api/internal/pkg/logger"
)

// CourseService управляет курсами и уроками
type CourseService struct {
	courseRepo repository.CourseRepository
	lessonRepo repository.LessonRepository
	cache      *ReadCache
	log        *logger.Logger
}

// NewCourseService создает новый сервис курсов
func NewCourseService(
	courseRepo repository.CourseRepository,
	lessonRepo repository.LessonRepository,
	cache *ReadCache,
	log *logger.Logger,
) *CourseService {
	if log == nil {
		log = logger.Nop()
	}
	return &CourseService{
		courseRepo: courseRepo,
		lessonRepo: lessonRepo,
		cache:      cache,
		log:        log,
	}
}

// CreateCourse создает курс. Пустые slug или title отклоняются с ошибкой валидации.
func (s *CourseService) CreateCourse(ctx context.Context, slug, title string, description *string) (*entity.Course, error) {
	course := &entity.Course{Slug: slug, Title: title, Description: description}
	course.Normalize()
	if err := course.Validate(); err != nil {
		return nil, err
	}

	if err := s.courseRepo.Create(ctx, course); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("%w: course slug %q already exists", apperrors.ErrConflict, course.Slug)
		}
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	s.cache.InvalidateCourse(ctx, course.Slug)
	s.log.Info("Course created", "course_id", course.ID, "slug", course.Slug)
	return course, nil
}

// CreateLesson создает урок в существующем курсе
func (s *CourseService) CreateLesson(ctx context.Context, courseID uuid.UUID, slug, title string, order int) (*entity.Lesson, error) {
	lesson := &entity.Lesson{CourseID: courseID, Slug: slug, Title: title, Order: order}
	lesson.Normalize()
	if err := lesson.Validate(); err != nil {
		return nil, err
	}

	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	if err := s.lessonRepo.Create(ctx, lesson); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("%w: lesson slug %q already exists in course %q", apperrors.ErrConflict, lesson.Slug, course.Slug)
		}
		return nil, fmt.Errorf("failed to create lesson: %w", err)
	}

	s.cache.InvalidateCourse(ctx, course.Slug)
	s.log.Info("Lesson created", "lesson_id", lesson.ID, "course", course.Slug, "slug", lesson.Slug)
	return lesson, nil
}

// ListCourses возвращает курсы, отсортированные по заголовку
func (s *CourseService) ListCourses(ctx context.Context) ([]entity.Course, error) {
	var courses []entity.Course
	if s.cache.get(ctx, courseListKey(), &courses) {
		return courses, nil
	}

	courses, err := s.courseRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.set(ctx, courseListKey(), courses)
	return courses, nil
}

// GetCourse возвращает курс с уроками в порядке отображения
func (s *CourseService) GetCourse(ctx context.Context, slug string) (*entity.Course, error) {
	var cached entity.Course
	if s.cache.get(ctx, courseKey(slug), &cached) {
		return &cached, nil
	}

	course, err := s.courseRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	s.cache.set(ctx, courseKey(slug), course)
	return course, nil
}

// GetLesson возвращает урок по slug курса и урока с блоками в порядке отображения
func (s *CourseService) GetLesson(ctx context.Context, courseSlug, lessonSlug string) (*entity.Lesson, error) {
	key := lessonKey(courseSlug, lessonSlug)
	var cached entity.Lesson
	if s.cache.get(ctx, key, &cached) {
		return &cached, nil
	}

	lesson, err := s.lessonRepo.GetBySlugs(ctx, courseSlug, lessonSlug)
	if err != nil {
		return nil, err
	}
	s.cache.set(ctx, key, lesson)
	return lesson, nil
}

// AdminTree возвращает все курсы с уроками и блоками. Не кешируется.
func (s *CourseService) AdminTree(ctx context.Context) ([]entity.Course, error) {
	return s.courseRepo.ListTree(ctx)
}
