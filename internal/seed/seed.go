// Package seed загружает начальное содержимое курсов из YAML-файла.
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/yourusername/lesson-api/internal/domain/entity"
	"github.com/yourusername/lesson-api/internal/ingestion"
	apperrors "github.com/yourusername/lesson-api/internal/pkg/errors"
	"github.com/yourusername/lesson-api/internal/pkg/logger"
	"github.com/yourusername/lesson-api/internal/service"
)

// Document описывает содержимое seed-файла
type Document struct {
	Courses []Course `yaml:"courses"`
}

// Course описывает курс в seed-файле
type Course struct {
	Slug        string   `yaml:"slug"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Lessons     []Lesson `yaml:"lessons"`
}

// Lesson описывает урок в seed-файле
type Lesson struct {
	Slug   string  `yaml:"slug"`
	Title  string  `yaml:"title"`
	Order  int     `yaml:"order"`
	Blocks []Block `yaml:"blocks"`
}

// Block описывает блок: richtext (text и/или file) или quiz (questions)
type Block struct {
	Type  string `yaml:"type"`
	Title string `yaml:"title"`
	Order int    `yaml:"order"`
	Text  string `yaml:"text"`
	// File: путь к документу относительно seed-файла
	File      string                      `yaml:"file"`
	Questions []entity.QuestionDefinition `yaml:"questions"`
}

// Stats считает созданные и пропущенные объекты
type Stats struct {
	CoursesCreated int
	CoursesReused  int
	LessonsCreated int
	LessonsSkipped int
	BlocksCreated  int
}

// Load читает и разбирает seed-файл
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}
	return &doc, nil
}

// Seeder создает содержимое через сервисы, поэтому действуют те же проверки, что и для API
type Seeder struct {
	courses *service.CourseService
	content *service.ContentService
	baseDir string
	log     *logger.Logger
}

// NewSeeder создает загрузчик. baseDir используется для относительных путей файлов блоков.
func NewSeeder(courses *service.CourseService, content *service.ContentService, baseDir string, log *logger.Logger) *Seeder {
	if log == nil {
		log = logger.Nop()
	}
	return &Seeder{courses: courses, content: content, baseDir: baseDir, log: log}
}

// Apply создает курсы, уроки и блоки документа.
// Существующий курс (по slug) переиспользуется; существующий урок пропускается вместе с блоками.
func (s *Seeder) Apply(ctx context.Context, doc *Document) (*Stats, error) {
	stats := &Stats{}
	for _, c := range doc.Courses {
		course, err := s.ensureCourse(ctx, c, stats)
		if err != nil {
			return stats, err
		}
		for _, l := range c.Lessons {
			if err := s.seedLesson(ctx, course, l, stats); err != nil {
				return stats, err
			}
		}
	}
	return stats, nil
}

func (s *Seeder) ensureCourse(ctx context.Context, c Course, stats *Stats) (*entity.Course, error) {
	existing, err := s.courses.GetCourse(ctx, c.Slug)
	if err == nil {
		stats.CoursesReused++
		s.log.Info("Course already exists, reusing", "slug", c.Slug)
		return existing, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("course %q: %w", c.Slug, err)
	}

	var description *string
	if c.Description != "" {
		description = &c.Description
	}
	course, err := s.courses.CreateCourse(ctx, c.Slug, c.Title, description)
	if err != nil {
		return nil, fmt.Errorf("course %q: %w", c.Slug, err)
	}
	stats.CoursesCreated++
	return course, nil
}

func (s *Seeder) seedLesson(ctx context.Context, course *entity.Course, l Lesson, stats *Stats) error {
	lesson, err := s.courses.CreateLesson(ctx, course.ID, l.Slug, l.Title, l.Order)
	if errors.Is(err, apperrors.ErrConflict) {
		stats.LessonsSkipped++
		s.log.Info("Lesson already exists, skipping its blocks", "course", course.Slug, "slug", l.Slug)
		return nil
	}
	if err != nil {
		return fmt.Errorf("lesson %s/%s: %w", course.Slug, l.Slug, err)
	}
	stats.LessonsCreated++

	for i, b := range l.Blocks {
		payload, err := s.blockPayload(b)
		if err != nil {
			return fmt.Errorf("lesson %s/%s block %d: %w", course.Slug, l.Slug, i, err)
		}
		if _, err := s.content.CreateContentBlock(ctx, lesson.ID, b.Order, payload); err != nil {
			return fmt.Errorf("lesson %s/%s block %d: %w", course.Slug, l.Slug, i, err)
		}
		stats.BlocksCreated++
	}
	return nil
}

func (s *Seeder) blockPayload(b Block) (service.BlockPayload, error) {
	blockType, err := entity.ParseBlockType(b.Type)
	if err != nil {
		return nil, err
	}
	if blockType == entity.BlockTypeQuiz {
		questions := b.Questions
		if questions == nil {
			questions = []entity.QuestionDefinition{}
		}
		return service.QuizBlock{Title: b.Title, Questions: questions}, nil
	}

	payload := service.RichTextBlock{Title: b.Title, Text: b.Text}
	if b.File != "" {
		path := b.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(s.baseDir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read block file: %w", err)
		}
		payload.File = &ingestion.Upload{Name: filepath.Base(path), Data: data}
	}
	return payload, nil
}
