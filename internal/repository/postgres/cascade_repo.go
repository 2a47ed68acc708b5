package postgres

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yourusername/lesson-api/internal/domain/entity"
	"github.com/yourusername/lesson-api/internal/domain/repository"
	apperrors "github.com/yourusername/lesson-api/internal/pkg/errors"
)

// CascadeRepo реализует repository.CascadeRepository.
// Внешние ключи схемы не каскадные, поэтому зависимые строки удаляются явно:
// attempts -> choices -> questions -> quizzes -> content_blocks -> lessons -> courses.
type CascadeRepo struct{}

// NewCascadeRepo создает репозиторий каскадного удаления
func NewCascadeRepo() *CascadeRepo {
	return &CascadeRepo{}
}

// DeleteCourse удаляет курс со всеми уроками, блоками, викторинами и попытками
func (r *CascadeRepo) DeleteCourse(tx *gorm.DB, courseID uuid.UUID) (*repository.CascadeResult, error) {
	res := &repository.CascadeResult{}

	var lessonIDs []uuid.UUID
	if err := tx.Model(&entity.Lesson{}).Where("course_id = ?", courseID).Pluck("id", &lessonIDs).Error; err != nil {
		return nil, fmt.Errorf("collect lessons of course %s: %w", courseID, err)
	}
	if err := r.deleteLessons(tx, lessonIDs, res); err != nil {
		return nil, err
	}

	result := tx.Where("id = ?", courseID).Delete(&entity.Course{})
	if result.Error != nil {
		return nil, translateDeleteError(result.Error, "course")
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: course %s", apperrors.ErrNotFound, courseID)
	}
	res.Courses = result.RowsAffected
	return res, nil
}

// DeleteLesson удаляет урок со всеми блоками, викторинами и попытками
func (r *CascadeRepo) DeleteLesson(tx *gorm.DB, lessonID uuid.UUID) (*repository.CascadeResult, error) {
	res := &repository.CascadeResult{}
	if err := r.deleteLessons(tx, []uuid.UUID{lessonID}, res); err != nil {
		return nil, err
	}
	if res.Lessons == 0 {
		return nil, fmt.Errorf("%w: lesson %s", apperrors.ErrNotFound, lessonID)
	}
	return res, nil
}

// DeleteContentBlock удаляет блок и, для quiz-блока, его викторину с вопросами, вариантами и попытками
func (r *CascadeRepo) DeleteContentBlock(tx *gorm.DB, blockID uuid.UUID) (*repository.CascadeResult, error) {
	res := &repository.CascadeResult{}
	if err := r.deleteBlocks(tx, []uuid.UUID{blockID}, res); err != nil {
		return nil, err
	}
	if res.ContentBlocks == 0 {
		return nil, fmt.Errorf("%w: content block %s", apperrors.ErrNotFound, blockID)
	}
	return res, nil
}

func (r *CascadeRepo) deleteLessons(tx *gorm.DB, lessonIDs []uuid.UUID, res *repository.CascadeResult) error {
	if len(lessonIDs) == 0 {
		return nil
	}

	var blockIDs []uuid.UUID
	if err := tx.Model(&entity.ContentBlock{}).Where("lesson_id IN ?", lessonIDs).Pluck("id", &blockIDs).Error; err != nil {
		return fmt.Errorf("collect content blocks: %w", err)
	}
	if err := r.deleteBlocks(tx, blockIDs, res); err != nil {
		return err
	}

	result := tx.Where("id IN ?", lessonIDs).Delete(&entity.Lesson{})
	if result.Error != nil {
		return translateDeleteError(result.Error, "lessons")
	}
	res.Lessons += result.RowsAffected
	return nil
}

func (r *CascadeRepo) deleteBlocks(tx *gorm.DB, blockIDs []uuid.UUID, res *repository.CascadeResult) error {
	if len(blockIDs) == 0 {
		return nil
	}

	var quizIDs []uuid.UUID
	if err := tx.Model(&entity.Quiz{}).Where("content_block_id IN ?", blockIDs).Pluck("id", &quizIDs).Error; err != nil {
		return fmt.Errorf("collect quizzes: %w", err)
	}

	if len(quizIDs) > 0 {
		var questionIDs []uuid.UUID
		if err := tx.Model(&entity.Question{}).Where("quiz_id IN ?", quizIDs).Pluck("id", &questionIDs).Error; err != nil {
			return fmt.Errorf("collect questions: %w", err)
		}

		result := tx.Where("quiz_id IN ?", quizIDs).Delete(&entity.Attempt{})
		if result.Error != nil {
			return translateDeleteError(result.Error, "attempts")
		}
		res.Attempts += result.RowsAffected

		if len(questionIDs) > 0 {
			result = tx.Where("question_id IN ?", questionIDs).Delete(&entity.Choice{})
			if result.Error != nil {
				return translateDeleteError(result.Error, "choices")
			}
			res.Choices += result.RowsAffected

			result = tx.Where("id IN ?", questionIDs).Delete(&entity.Question{})
			if result.Error != nil {
				return translateDeleteError(result.Error, "questions")
			}
			res.Questions += result.RowsAffected
		}

		result = tx.Where("id IN ?", quizIDs).Delete(&entity.Quiz{})
		if result.Error != nil {
			return translateDeleteError(result.Error, "quizzes")
		}
		res.Quizzes += result.RowsAffected
	}

	result := tx.Where("id IN ?", blockIDs).Delete(&entity.ContentBlock{})
	if result.Error != nil {
		return translateDeleteError(result.Error, "content blocks")
	}
	res.ContentBlocks += result.RowsAffected
	return nil
}

// translateDeleteError превращает нарушение внешнего ключа (например, параллельную вставку потомка) в ErrIntegrity
func translateDeleteError(err error, what string) error {
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%w: %s still referenced", apperrors.ErrIntegrity, what)
	}
	return fmt.Errorf("delete %s: %w", what, err)
}
