package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CascadeResult содержит количество удаленных строк на каждом уровне иерархии
type CascadeResult struct {
	Attempts      int64 `json:"attempts"`
	Choices       int64 `json:"choices"`
	Questions     int64 `json:"questions"`
	Quizzes       int64 `json:"quizzes"`
	ContentBlocks int64 `json:"content_blocks"`
	Lessons       int64 `json:"lessons"`
	Courses       int64 `json:"courses"`
}

// CascadeRepository удаляет поддеревья иерархии от листьев к корню.
// Все методы работают в рамках переданной транзакции tx; вызывающий отвечает за ее границы.
type CascadeRepository interface {
	DeleteCourse(tx *gorm.DB, courseID uuid.UUID) (*CascadeResult, error)
	DeleteLesson(tx *gorm.DB, lessonID uuid.UUID) (*CascadeResult, error)
	DeleteContentBlock(tx *gorm.DB, blockID uuid.UUID) (*CascadeResult, error)
}
