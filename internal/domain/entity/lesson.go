package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "github.com/yourusername/lesson-api/internal/pkg/errors"
)

// Lesson представляет урок курса. Slug уникален в пределах курса.
type Lesson struct {
	ID       uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_lessons_course_slug,priority:1" json:"course_id"`
	Slug     string         `gorm:"size:200;not null;uniqueIndex:idx_lessons_course_slug,priority:2" json:"slug"`
	Title    string         `gorm:"size:300;not null" json:"title"`
	Order    int            `gorm:"column:sort_order;not null;default:0" json:"order"`
	Course   *Course        `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	Blocks   []ContentBlock `gorm:"foreignKey:LessonID" json:"blocks,omitempty"`
	// CreatedAt разрешает равенство Order: при одинаковом порядке раньше идет созданный раньше
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Lesson) TableName() string {
	return "lessons"
}

// BeforeCreate выделяет идентификатор, если он не был задан заранее
func (l *Lesson) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// Normalize обрезает пробелы в slug и заголовке
func (l *Lesson) Normalize() {
	l.Slug = strings.TrimSpace(l.Slug)
	l.Title = strings.TrimSpace(l.Title)
}

// Validate проверяет обязательные поля урока
func (l *Lesson) Validate() error {
	if l.CourseID == uuid.Nil {
		return apperrors.NewFieldError("course_id", "must be set")
	}
	if err := ValidateSlug("slug", l.Slug); err != nil {
		return err
	}
	if l.Title == "" {
		return apperrors.NewFieldError("title", "must not be empty")
	}
	return nil
}
