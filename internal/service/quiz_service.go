package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yourusername/lesson-api/internal/domain/entity"
	"github.com/yourusername/lesson-api/internal/domain/repository"
	apperrors "github.com/yourusername/lesson-api/internal/pkg/errors"
	"github.com/yourusername/lesson-api/internal/pkg/logger"
)

// SubmitResult описывает результат отправки ответов
type SubmitResult struct {
	AttemptID uuid.UUID `json:"attempt_id"`
	Score     int       `json:"score"`
	Total     int       `json:"total"`
}

// QuestionReview описывает разбор одного вопроса попытки
type QuestionReview struct {
	QuestionID    uuid.UUID  `json:"question_id"`
	Text          string     `json:"text"`
	SubmittedID   *uuid.UUID `json:"submitted_choice_id,omitempty"`
	SubmittedText string     `json:"submitted_choice_text,omitempty"`
	CorrectID     *uuid.UUID `json:"correct_choice_id,omitempty"`
	CorrectText   string     `json:"correct_choice_text,omitempty"`
	Correct       bool       `json:"correct"`
	Answered      bool       `json:"answered"`
}

// AttemptReview описывает попытку вместе с разбором вопросов
type AttemptReview struct {
	Attempt   *entity.Attempt  `json:"attempt"`
	Quiz      *entity.Quiz     `json:"quiz"`
	Wrong     int              `json:"wrong"`
	Questions []QuestionReview `json:"questions"`
}

// QuizService строит граф викторины, оценивает ответы и сохраняет попытки
type QuizService struct {
	quizRepo    repository.QuizRepository
	attemptRepo repository.AttemptRepository
	log         *logger.Logger
}

// NewQuizService создает новый сервис викторин
func NewQuizService(
	quizRepo repository.QuizRepository,
	attemptRepo repository.AttemptRepository,
	log *logger.Logger,
) *QuizService {
	if log == nil {
		log = logger.Nop()
	}
	return &QuizService{
		quizRepo:    quizRepo,
		attemptRepo: attemptRepo,
		log:         log,
	}
}

// DefineQuiz строит граф викторины из определения. Идентификаторы вариантов выделяются
// до сохранения, поэтому ссылка вопроса на правильный вариант известна сразу.
// Граф сохраняется вызывающим в одной транзакции с блоком.
func (s *QuizService) DefineQuiz(blockID uuid.UUID, title string, defs []entity.QuestionDefinition) (*entity.Quiz, error) {
	if err := entity.ValidateQuizDefinition(defs); err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = entity.DefaultQuizTitle
	}

	quiz := &entity.Quiz{
		ID:             uuid.New(),
		ContentBlockID: blockID,
		Title:          title,
		Questions:      make([]entity.Question, 0, len(defs)),
	}

	for i, def := range defs {
		question := entity.Question{
			ID:       uuid.New(),
			QuizID:   quiz.ID,
			Text:     strings.TrimSpace(def.Text),
			Position: i,
			Choices:  make([]entity.Choice, 0, len(def.Choices)),
		}
		choiceIDs := make([]uuid.UUID, 0, len(def.Choices))
		for j, text := range def.Choices {
			choice := entity.Choice{
				ID:         uuid.New(),
				QuestionID: question.ID,
				Text:       strings.TrimSpace(text),
				Position:   j,
			}
			choiceIDs = append(choiceIDs, choice.ID)
			question.Choices = append(question.Choices, choice)
		}
		answerID := choiceIDs[*def.Correct]
		question.AnswerID = &answerID
		quiz.Questions = append(quiz.Questions, question)
	}
	return quiz, nil
}

// Score оценивает ответы по сохраненной викторине, ничего не записывая
func (s *QuizService) Score(ctx context.Context, quizID uuid.UUID, answers entity.AnswerSet) (score, total int, err error) {
	quiz, err := s.quizRepo.GetWithQuestions(ctx, quizID)
	if err != nil {
		return 0, 0, err
	}
	score, total = quiz.Score(answers)
	return score, total, nil
}

// Submit оценивает ответы и сохраняет неизменяемую попытку с полной картой ответов
func (s *QuizService) Submit(ctx context.Context, quizID uuid.UUID, answers entity.AnswerSet) (*SubmitResult, error) {
	quiz, err := s.quizRepo.GetWithQuestions(ctx, quizID)
	if err != nil {
		return nil, err
	}

	score, total := quiz.Score(answers)
	attempt, err := entity.NewAttempt(quiz.ID, answers, score, total)
	if err != nil {
		return nil, err
	}
	if err := s.attemptRepo.Create(ctx, attempt); err != nil {
		if errors.Is(err, apperrors.ErrIntegrity) {
			// Викторина удалена между чтением и записью
			return nil, fmt.Errorf("%w: quiz %s", apperrors.ErrNotFound, quizID)
		}
		return nil, fmt.Errorf("failed to save attempt: %w", err)
	}

	s.log.Info("Quiz attempt recorded", "quiz_id", quiz.ID, "attempt_id", attempt.ID, "score", score, "total", total)
	return &SubmitResult{AttemptID: attempt.ID, Score: score, Total: total}, nil
}

// GetQuiz возвращает викторину с вопросами и вариантами; правильные ответы не сериализуются
func (s *QuizService) GetQuiz(ctx context.Context, quizID uuid.UUID) (*entity.Quiz, error) {
	return s.quizRepo.GetWithQuestions(ctx, quizID)
}

// GetQuizForLesson возвращает викторину, только если она принадлежит уроку
func (s *QuizService) GetQuizForLesson(ctx context.Context, lessonID, quizID uuid.UUID) (*entity.Quiz, error) {
	owner, err := s.quizRepo.GetLessonID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if owner != lessonID {
		return nil, fmt.Errorf("%w: quiz %s in lesson %s", apperrors.ErrNotFound, quizID, lessonID)
	}
	return s.quizRepo.GetWithQuestions(ctx, quizID)
}

// ReviewAttempt возвращает попытку с разбором: выбранный и правильный вариант по каждому вопросу
func (s *QuizService) ReviewAttempt(ctx context.Context, attemptID uuid.UUID) (*AttemptReview, error) {
	attempt, err := s.attemptRepo.GetByID(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	quiz, err := s.quizRepo.GetWithQuestions(ctx, attempt.QuizID)
	if err != nil {
		return nil, err
	}
	answers, err := attempt.SubmittedAnswers()
	if err != nil {
		return nil, err
	}

	review := &AttemptReview{
		Attempt:   attempt,
		Quiz:      quiz,
		Wrong:     attempt.Wrong(),
		Questions: make([]QuestionReview, 0, len(quiz.Questions)),
	}
	for i := range quiz.Questions {
		review.Questions = append(review.Questions, reviewQuestion(&quiz.Questions[i], answers))
	}
	return review, nil
}

func reviewQuestion(q *entity.Question, answers entity.AnswerSet) QuestionReview {
	r := QuestionReview{
		QuestionID: q.ID,
		Text:       q.Text,
		Correct:    q.IsAnsweredCorrectly(answers),
	}
	if q.AnswerID != nil {
		id := *q.AnswerID
		r.CorrectID = &id
		r.CorrectText, _ = q.ChoiceText(id)
	}
	if raw, ok := q.SubmittedChoice(answers); ok {
		if id, err := uuid.Parse(raw); err == nil && q.HasChoice(id) {
			r.SubmittedID = &id
			r.SubmittedText, _ = q.ChoiceText(id)
			r.Answered = true
		}
	}
	return r
}

// ListAttempts возвращает попытки викторины, новые первыми
func (s *QuizService) ListAttempts(ctx context.Context, quizID uuid.UUID) (*entity.Quiz, []entity.Attempt, error) {
	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return nil, nil, err
	}
	attempts, err := s.attemptRepo.ListByQuiz(ctx, quizID)
	if err != nil {
		return nil, nil, err
	}
	return quiz, attempts, nil
}
