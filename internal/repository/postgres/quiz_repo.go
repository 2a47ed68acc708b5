package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yourusername/lesson-api/internal/domain/entity"
)

// QuizRepo реализует repository.QuizRepository
type QuizRepo struct {
	db *gorm.DB
}

// NewQuizRepo создает новый репозиторий викторин
func NewQuizRepo(db *gorm.DB) *QuizRepo {
	return &QuizRepo{db: db}
}

// CreateGraph сохраняет викторину, затем вопросы, затем варианты.
// answer_id вопросов заполнен заранее; внешний ключ на choices проверяется при коммите.
func (r *QuizRepo) CreateGraph(tx *gorm.DB, quiz *entity.Quiz) error {
	if err := tx.Omit("Questions").Create(quiz).Error; err != nil {
		return translateWriteError(err, "quiz")
	}
	if len(quiz.Questions) == 0 {
		return nil
	}

	var choices []entity.Choice
	for i := range quiz.Questions {
		choices = append(choices, quiz.Questions[i].Choices...)
	}

	if err := tx.Omit("Choices").Create(&quiz.Questions).Error; err != nil {
		return translateWriteError(err, "questions")
	}
	if len(choices) > 0 {
		if err := tx.Create(&choices).Error; err != nil {
			return translateWriteError(err, "choices")
		}
	}
	return nil
}

// GetByID возвращает викторину без вопросов
func (r *QuizRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Quiz, error) {
	var quiz entity.Quiz
	if err := r.db.WithContext(ctx).First(&quiz, "id = ?", id).Error; err != nil {
		return nil, translateReadError(err, "quiz "+id.String())
	}
	return &quiz, nil
}

// GetWithQuestions возвращает викторину вместе с вопросами и вариантами
func (r *QuizRepo) GetWithQuestions(ctx context.Context, id uuid.UUID) (*entity.Quiz, error) {
	var quiz entity.Quiz
	err := r.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC").Order("id ASC")
		}).
		Preload("Questions.Choices", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC").Order("id ASC")
		}).
		First(&quiz, "id = ?", id).Error
	if err != nil {
		return nil, translateReadError(err, "quiz "+id.String())
	}
	return &quiz, nil
}

// GetLessonID возвращает урок, которому принадлежит блок викторины
func (r *QuizRepo) GetLessonID(ctx context.Context, quizID uuid.UUID) (uuid.UUID, error) {
	var block entity.ContentBlock
	err := r.db.WithContext(ctx).
		Select("content_blocks.lesson_id").
		Joins("JOIN quizzes ON quizzes.content_block_id = content_blocks.id").
		Where("quizzes.id = ?", quizID).
		First(&block).Error
	if err != nil {
		return uuid.Nil, translateReadError(err, fmt.Sprintf("lesson of quiz %s", quizID))
	}
	return block.LessonID, nil
}
