package entity

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "github.com/yourusername/lesson-api/internal/pkg/errors"
)

// Course представляет курс, владеющий упорядоченными уроками
type Course struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Slug        string    `gorm:"size:200;not null;uniqueIndex" json:"slug"`
	Title       string    `gorm:"size:300;not null" json:"title"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`
	Lessons     []Lesson  `gorm:"foreignKey:CourseID" json:"lessons,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Course) TableName() string {
	return "courses"
}

// BeforeCreate выделяет идентификатор, если он не был задан заранее
func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Normalize обрезает пробелы в полях и приводит пустое описание к nil
func (c *Course) Normalize() {
	c.Slug = strings.TrimSpace(c.Slug)
	c.Title = strings.TrimSpace(c.Title)
	if c.Description != nil {
		d := strings.TrimSpace(*c.Description)
		if d == "" {
			c.Description = nil
		} else {
			c.Description = &d
		}
	}
}

// Validate проверяет обязательные поля курса
func (c *Course) Validate() error {
	if err := ValidateSlug("slug", c.Slug); err != nil {
		return err
	}
	if c.Title == "" {
		return apperrors.NewFieldError("title", "must not be empty")
	}
	return nil
}

// ValidateSlug проверяет, что slug не пуст и пригоден для URL
func ValidateSlug(field, slug string) error {
	if slug == "" {
		return apperrors.NewFieldError(field, "must not be empty")
	}
	if len(slug) > 200 {
		return apperrors.NewFieldError(field, "must be at most 200 characters")
	}
	for _, r := range slug {
		if unicode.IsSpace(r) || r == '/' || r == '?' || r == '#' {
			return apperrors.NewFieldError(field, "must not contain whitespace, '/', '?' or '#'")
		}
	}
	return nil
}
