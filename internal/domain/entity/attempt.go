package entity

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	apperrors "github.com/yourusername/lesson-api/internal/pkg/errors"
)

// AnswerSet сопоставляет идентификатор вопроса выбранному варианту
type AnswerSet map[string]string

// Attempt хранит одну отправку ответов на викторину. После создания не изменяется.
type Attempt struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuizID uuid.UUID `gorm:"type:uuid;not null;index" json:"quiz_id"`
	// Answers: полная отправленная карта вопрос -> вариант, как пришла от клиента
	Answers   datatypes.JSON `gorm:"not null" json:"answers"`
	Score     int            `gorm:"not null" json:"score"`
	Total     int            `gorm:"not null" json:"total"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (Attempt) TableName() string {
	return "attempts"
}

// NewAttempt создает попытку с сериализованной картой ответов
func NewAttempt(quizID uuid.UUID, answers AnswerSet, score, total int) (*Attempt, error) {
	if answers == nil {
		answers = AnswerSet{}
	}
	raw, err := json.Marshal(answers)
	if err != nil {
		return nil, fmt.Errorf("marshal answers: %w", err)
	}
	return &Attempt{
		ID:      uuid.New(),
		QuizID:  quizID,
		Answers: datatypes.JSON(raw),
		Score:   score,
		Total:   total,
	}, nil
}

// BeforeCreate выделяет идентификатор, если он не был задан заранее
func (a *Attempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// BeforeUpdate запрещает изменение сохраненной попытки
func (a *Attempt) BeforeUpdate(tx *gorm.DB) error {
	return fmt.Errorf("%w: attempts are immutable", apperrors.ErrIntegrity)
}

// SubmittedAnswers десериализует сохраненную карту ответов
func (a *Attempt) SubmittedAnswers() (AnswerSet, error) {
	answers := AnswerSet{}
	if len(a.Answers) == 0 {
		return answers, nil
	}
	if err := json.Unmarshal(a.Answers, &answers); err != nil {
		return nil, fmt.Errorf("unmarshal answers of attempt %s: %w", a.ID, err)
	}
	return answers, nil
}

// Wrong возвращает количество неверных или пропущенных ответов
func (a *Attempt) Wrong() int {
	return a.Total - a.Score
}
