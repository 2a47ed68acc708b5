package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "github.com/yourusername/lesson-api/internal/pkg/errors"
)

// BlockType различает варианты блока контента
type BlockType string

const (
	BlockTypeRichText BlockType = "richtext"
	BlockTypeQuiz     BlockType = "quiz"
)

// BodyFormat описывает разметку тела richtext-блока
type BodyFormat string

const (
	BodyFormatMarkdown BodyFormat = "markdown"
	BodyFormatHTML     BodyFormat = "html"
)

// Заголовки по умолчанию, если автор их не указал
const (
	DefaultRichTextTitle = "Content"
	DefaultQuizTitle     = "Quiz"
)

// ParseBlockType проверяет строковое значение типа блока
func ParseBlockType(s string) (BlockType, error) {
	switch BlockType(s) {
	case BlockTypeRichText, BlockTypeQuiz:
		return BlockType(s), nil
	default:
		return "", apperrors.NewFieldError("type", "must be one of richtext, quiz")
	}
}

// ContentBlock представляет блок урока: либо richtext с телом, либо quiz ровно с одной викториной
type ContentBlock struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	LessonID uuid.UUID  `gorm:"type:uuid;not null;index" json:"lesson_id"`
	Type     BlockType  `gorm:"size:20;not null" json:"type"`
	Title    *string    `gorm:"size:300" json:"title,omitempty"`
	Order    int        `gorm:"column:sort_order;not null;default:0" json:"order"`
	Body     *string    `gorm:"type:text" json:"body,omitempty"`
	Format   BodyFormat `gorm:"size:20" json:"format,omitempty"`
	// Source: формат исходного файла (docx, pdf, md, txt) или "text" для введенного текста
	Source    string    `gorm:"size:20" json:"source,omitempty"`
	Quiz      *Quiz     `gorm:"foreignKey:ContentBlockID" json:"quiz,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (ContentBlock) TableName() string {
	return "content_blocks"
}

// BeforeCreate выделяет идентификатор, если он не был задан заранее
func (b *ContentBlock) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// IsQuiz проверяет, является ли блок викториной
func (b *ContentBlock) IsQuiz() bool {
	return b.Type == BlockTypeQuiz
}

// Validate проверяет согласованность варианта блока
func (b *ContentBlock) Validate() error {
	if b.LessonID == uuid.Nil {
		return apperrors.NewFieldError("lesson_id", "must be set")
	}
	switch b.Type {
	case BlockTypeRichText:
		if b.Body == nil {
			return apperrors.NewFieldError("body", "richtext block requires a body")
		}
		if b.Quiz != nil {
			return apperrors.NewFieldError("quiz", "richtext block cannot own a quiz")
		}
	case BlockTypeQuiz:
		if b.Body != nil {
			return apperrors.NewFieldError("body", "quiz block cannot have a body")
		}
	default:
		return apperrors.NewFieldError("type", "must be one of richtext, quiz")
	}
	return nil
}

// DisplayTitle возвращает заголовок блока или заголовок по умолчанию для его типа
func (b *ContentBlock) DisplayTitle() string {
	if b.Title != nil && *b.Title != "" {
		return *b.Title
	}
	if b.IsQuiz() {
		return DefaultQuizTitle
	}
	return DefaultRichTextTitle
}
