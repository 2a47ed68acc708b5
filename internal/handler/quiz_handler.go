package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yourusername/lesson-api/internal/domain/entity"
	"github.com/yourusername/lesson-api/internal/handler/dto"
	"github.com/yourusername/lesson-api/internal/pkg/logger"
	"github.com/yourusername/lesson-api/internal/service"
)

// quizIDFormField: служебное поле формы прохождения, не является ответом
const quizIDFormField = "quizId"

// QuizHandler обрабатывает прохождение викторин, разбор попыток и выгрузку
type QuizHandler struct {
	quizService   *service.QuizService
	courseService *service.CourseService
	log           *logger.Logger
	now           func() time.Time
}

// NewQuizHandler создает новый обработчик викторин
func NewQuizHandler(quizService *service.QuizService, courseService *service.CourseService, log *logger.Logger) *QuizHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &QuizHandler{
		quizService:   quizService,
		courseService: courseService,
		log:           log,
		now:           time.Now,
	}
}

// GetQuiz возвращает викторину для прохождения
// GET /api/quizzes/:id
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	quizID := c.MustGet(quizIDKey).(uuid.UUID)

	quiz, err := h.quizService.GetQuiz(c.Request.Context(), quizID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewQuizResponse(quiz))
}

// GetLessonQuiz возвращает викторину, только если она принадлежит уроку
// GET /api/courses/:slug/lessons/:lessonSlug/quizzes/:id
func (h *QuizHandler) GetLessonQuiz(c *gin.Context) {
	quizID := c.MustGet(quizIDKey).(uuid.UUID)
	ctx := c.Request.Context()

	lesson, err := h.courseService.GetLesson(ctx, c.Param("slug"), c.Param("lessonSlug"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	quiz, err := h.quizService.GetQuizForLesson(ctx, lesson.ID, quizID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewQuizResponse(quiz))
}

// SubmitQuiz оценивает ответы и сохраняет попытку.
// Принимает JSON {"answers": {...}} или форму, где имя поля является идентификатором вопроса.
// POST /api/quizzes/:id/submit
func (h *QuizHandler) SubmitQuiz(c *gin.Context) {
	quizID := c.MustGet(quizIDKey).(uuid.UUID)

	answers, err := readAnswers(c)
	if err != nil {
		badRequest(c, "Invalid request data", err)
		return
	}

	result, err := h.quizService.Submit(c.Request.Context(), quizID, answers)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewSubmitResponse(result))
}

// GetAttempt возвращает попытку с разбором по вопросам
// GET /api/attempts/:id
func (h *QuizHandler) GetAttempt(c *gin.Context) {
	attemptID := c.MustGet(attemptIDKey).(uuid.UUID)

	review, err := h.quizService.ReviewAttempt(c.Request.Context(), attemptID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAttemptReviewResponse(review))
}

// ExportAttempts выгружает попытки викторины в CSV или Excel
// GET /api/admin/quizzes/:id/attempts/export?format=csv|xlsx
func (h *QuizHandler) ExportAttempts(c *gin.Context) {
	quizID := c.MustGet(quizIDKey).(uuid.UUID)
	format := strings.ToLower(c.DefaultQuery("format", service.ExportFormatCSV))

	quiz, attempts, err := h.quizService.ListAttempts(c.Request.Context(), quizID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	var buf bytes.Buffer
	if err := service.ExportAttempts(&buf, format, quiz, attempts); err != nil {
		respondError(c, h.log, err)
		return
	}

	filename := service.ExportFilename(quiz, format, h.now())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, service.ExportContentType(format), buf.Bytes())
}

// readAnswers читает карту ответов из JSON или формы. Пустое тело означает пустую отправку.
func readAnswers(c *gin.Context) (entity.AnswerSet, error) {
	switch c.ContentType() {
	case gin.MIMEPOSTForm, gin.MIMEMultipartPOSTForm:
		if c.ContentType() == gin.MIMEMultipartPOSTForm {
			if err := c.Request.ParseMultipartForm(1 << 20); err != nil {
				return nil, err
			}
		} else if err := c.Request.ParseForm(); err != nil {
			return nil, err
		}
		answers := entity.AnswerSet{}
		for key, values := range c.Request.PostForm {
			if key == quizIDFormField || len(values) == 0 {
				continue
			}
			answers[key] = values[0]
		}
		return answers, nil
	default:
		var req dto.SubmitAnswersRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return entity.AnswerSet{}, nil
			}
			return nil, err
		}
		if req.Answers == nil {
			req.Answers = entity.AnswerSet{}
		}
		return req.Answers, nil
	}
}
