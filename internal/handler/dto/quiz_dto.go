package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/lesson-api/internal/domain/entity"
	"github.com/yourusername/lesson-api/internal/service"
)

// SubmitAnswersRequest представляет JSON-запрос с ответами: вопрос -> выбранный вариант
type SubmitAnswersRequest struct {
	Answers entity.AnswerSet `json:"answers"`
}

// ChoiceResponse представляет вариант ответа без признака правильности
type ChoiceResponse struct {
	ID   uuid.UUID `json:"id"`
	Text string    `json:"text"`
}

// QuestionResponse представляет вопрос викторины для прохождения
type QuestionResponse struct {
	ID      uuid.UUID        `json:"id"`
	Text    string           `json:"text"`
	Choices []ChoiceResponse `json:"choices"`
}

// QuizResponse представляет викторину для прохождения. Правильные ответы не раскрываются.
type QuizResponse struct {
	ID             uuid.UUID          `json:"id"`
	ContentBlockID uuid.UUID          `json:"content_block_id"`
	Title          string             `json:"title"`
	QuestionCount  int                `json:"question_count"`
	Questions      []QuestionResponse `json:"questions"`
}

// SubmitResponse представляет результат отправки ответов
type SubmitResponse struct {
	AttemptID uuid.UUID `json:"attempt_id"`
	Score     int       `json:"score"`
	Total     int       `json:"total"`
}

// QuestionReviewResponse представляет разбор одного вопроса
type QuestionReviewResponse struct {
	QuestionID          uuid.UUID  `json:"question_id"`
	Text                string     `json:"text"`
	SubmittedChoiceID   *uuid.UUID `json:"submitted_choice_id,omitempty"`
	SubmittedChoiceText string     `json:"submitted_choice_text,omitempty"`
	CorrectChoiceID     *uuid.UUID `json:"correct_choice_id,omitempty"`
	CorrectChoiceText   string     `json:"correct_choice_text,omitempty"`
	Correct             bool       `json:"correct"`
	Answered            bool       `json:"answered"`
}

// AttemptReviewResponse представляет попытку с разбором
type AttemptReviewResponse struct {
	AttemptID uuid.UUID                `json:"attempt_id"`
	QuizID    uuid.UUID                `json:"quiz_id"`
	QuizTitle string                   `json:"quiz_title"`
	Score     int                      `json:"score"`
	Total     int                      `json:"total"`
	Wrong     int                      `json:"wrong"`
	CreatedAt time.Time                `json:"created_at"`
	Questions []QuestionReviewResponse `json:"questions"`
}

// NewQuizResponse создает DTO викторины
func NewQuizResponse(quiz *entity.Quiz) *QuizResponse {
	resp := &QuizResponse{
		ID:             quiz.ID,
		ContentBlockID: quiz.ContentBlockID,
		Title:          quiz.Title,
		QuestionCount:  len(quiz.Questions),
		Questions:      make([]QuestionResponse, 0, len(quiz.Questions)),
	}
	for _, q := range quiz.Questions {
		qr := QuestionResponse{ID: q.ID, Text: q.Text, Choices: make([]ChoiceResponse, 0, len(q.Choices))}
		for _, c := range q.Choices {
			qr.Choices = append(qr.Choices, ChoiceResponse{ID: c.ID, Text: c.Text})
		}
		resp.Questions = append(resp.Questions, qr)
	}
	return resp
}

// NewSubmitResponse создает DTO результата отправки
func NewSubmitResponse(r *service.SubmitResult) *SubmitResponse {
	return &SubmitResponse{AttemptID: r.AttemptID, Score: r.Score, Total: r.Total}
}

// NewAttemptReviewResponse создает DTO разбора попытки
func NewAttemptReviewResponse(r *service.AttemptReview) *AttemptReviewResponse {
	resp := &AttemptReviewResponse{
		AttemptID: r.Attempt.ID,
		QuizID:    r.Quiz.ID,
		QuizTitle: r.Quiz.Title,
		Score:     r.Attempt.Score,
		Total:     r.Attempt.Total,
		Wrong:     r.Wrong,
		CreatedAt: r.Attempt.CreatedAt,
		Questions: make([]QuestionReviewResponse, 0, len(r.Questions)),
	}
	for _, q := range r.Questions {
		resp.Questions = append(resp.Questions, QuestionReviewResponse{
			QuestionID:          q.QuestionID,
			Text:                q.Text,
			SubmittedChoiceID:   q.SubmittedID,
			SubmittedChoiceText: q.SubmittedText,
			CorrectChoiceID:     q.CorrectID,
			CorrectChoiceText:   q.CorrectText,
			Correct:             q.Correct,
			Answered:            q.Answered,
		})
	}
	return resp
}

// LoginRequest представляет запрос на получение токена администратора
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse представляет выданный токен администратора
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}
