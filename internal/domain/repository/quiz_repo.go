package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yourusername/lesson-api/internal/domain/entity"
)

// QuizRepository определяет методы для работы с викторинами
type QuizRepository interface {
	// CreateGraph сохраняет викторину, ее вопросы и варианты в рамках транзакции tx.
	// Идентификаторы всех узлов графа должны быть выделены заранее.
	CreateGraph(tx *gorm.DB, quiz *entity.Quiz) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Quiz, error)
	// GetWithQuestions возвращает викторину с вопросами и вариантами в порядке создания
	GetWithQuestions(ctx context.Context, id uuid.UUID) (*entity.Quiz, error)
	// GetLessonID возвращает урок, которому принадлежит викторина
	GetLessonID(ctx context.Context, quizID uuid.UUID) (uuid.UUID, error)
}
