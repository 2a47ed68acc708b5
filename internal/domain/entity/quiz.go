package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Quiz представляет викторину блока контента. Каждому quiz-блоку принадлежит ровно одна викторина.
type Quiz struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ContentBlockID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"content_block_id"`
	Title          string     `gorm:"size:300;not null" json:"title"`
	Questions      []Question `gorm:"foreignKey:QuizID" json:"questions,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Quiz) TableName() string {
	return "quizzes"
}

// BeforeCreate выделяет идентификатор, если он не был задан заранее
func (q *Quiz) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// Score подсчитывает правильные ответы: +1 за каждый вопрос с назначенным ответом,
// если отправленный выбор совпадает с ним. total равен числу вопросов.
// Неизвестные идентификаторы вопросов и вариантов ничего не добавляют.
func (q *Quiz) Score(answers AnswerSet) (score, total int) {
	for i := range q.Questions {
		if q.Questions[i].IsAnsweredCorrectly(answers) {
			score++
		}
	}
	return score, len(q.Questions)
}

// Question представляет вопрос викторины.
// AnswerID указывает на один из собственных вариантов вопроса.
type Question struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	QuizID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"quiz_id"`
	Text      string     `gorm:"type:text;not null" json:"text"`
	Position  int        `gorm:"not null;default:0" json:"position"`
	AnswerID  *uuid.UUID `gorm:"type:uuid" json:"-"` // Скрыто от клиента
	Choices   []Choice   `gorm:"foreignKey:QuestionID" json:"choices,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "questions"
}

// BeforeCreate выделяет идентификатор, если он не был задан заранее
func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// SubmittedChoice возвращает выбор, отправленный для этого вопроса
func (q *Question) SubmittedChoice(answers AnswerSet) (string, bool) {
	v, ok := answers[q.ID.String()]
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// IsAnsweredCorrectly проверяет, совпадает ли отправленный выбор с назначенным ответом
func (q *Question) IsAnsweredCorrectly(answers AnswerSet) bool {
	if q.AnswerID == nil {
		return false
	}
	chosen, ok := q.SubmittedChoice(answers)
	if !ok {
		return false
	}
	chosenID, err := uuid.Parse(chosen)
	if err != nil {
		return false
	}
	return chosenID == *q.AnswerID
}

// HasChoice проверяет, принадлежит ли вариант вопросу
func (q *Question) HasChoice(choiceID uuid.UUID) bool {
	for _, c := range q.Choices {
		if c.ID == choiceID {
			return true
		}
	}
	return false
}

// ChoiceText возвращает текст варианта по идентификатору
func (q *Question) ChoiceText(choiceID uuid.UUID) (string, bool) {
	for _, c := range q.Choices {
		if c.ID == choiceID {
			return c.Text, true
		}
	}
	return "", false
}

// Choice представляет вариант ответа
type Choice struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuestionID uuid.UUID `gorm:"type:uuid;not null;index" json:"question_id"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	Position   int       `gorm:"not null;default:0" json:"position"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (Choice) TableName() string {
	return "choices"
}

// BeforeCreate выделяет идентификатор, если он не был задан заранее
func (c *Choice) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
