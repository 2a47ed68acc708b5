package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yourusername/lesson-api/internal/handler/dto"
	"github.com/yourusername/lesson-api/internal/pkg/logger"
	"github.com/yourusername/lesson-api/internal/service"
)

// Ключи контекста, под которыми middleware.ExtractUUIDParam сохраняет идентификаторы
const (
	courseIDKey  = "courseID"
	lessonIDKey  = "lessonID"
	blockIDKey   = "blockID"
	quizIDKey    = "quizID"
	attemptIDKey = "attemptID"
)

// CourseHandler обрабатывает запросы к курсам и урокам
type CourseHandler struct {
	courseService  *service.CourseService
	cascadeService *service.CascadeService
	log            *logger.Logger
}

// NewCourseHandler создает новый обработчик курсов
func NewCourseHandler(courseService *service.CourseService, cascadeService *service.CascadeService, log *logger.Logger) *CourseHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &CourseHandler{
		courseService:  courseService,
		cascadeService: cascadeService,
		log:            log,
	}
}

// ListCourses возвращает курсы, отсортированные по заголовку
// GET /api/courses
func (h *CourseHandler) ListCourses(c *gin.Context) {
	courses, err := h.courseService.ListCourses(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCourseListResponse(courses))
}

// GetCourse возвращает курс с уроками
// GET /api/courses/:slug
func (h *CourseHandler) GetCourse(c *gin.Context) {
	course, err := h.courseService.GetCourse(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCourseResponse(course))
}

// GetLesson возвращает урок с блоками
// GET /api/courses/:slug/lessons/:lessonSlug
func (h *CourseHandler) GetLesson(c *gin.Context) {
	lesson, err := h.courseService.GetLesson(c.Request.Context(), c.Param("slug"), c.Param("lessonSlug"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewLessonResponse(lesson))
}

// AdminTree возвращает все курсы с уроками и блоками
// GET /api/admin/tree
func (h *CourseHandler) AdminTree(c *gin.Context) {
	courses, err := h.courseService.AdminTree(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAdminTreeResponse(courses))
}

// CreateCourse создает курс
// POST /api/admin/courses
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req dto.CreateCourseRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "Invalid request data", err)
		return
	}

	course, err := h.courseService.CreateCourse(c.Request.Context(), req.Slug, req.Title, req.Description)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewCourseResponse(course))
}

// CreateLesson создает урок курса
// POST /api/admin/courses/:id/lessons
func (h *CourseHandler) CreateLesson(c *gin.Context) {
	courseID := c.MustGet(courseIDKey).(uuid.UUID)

	var req dto.CreateLessonRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "Invalid request data", err)
		return
	}

	lesson, err := h.courseService.CreateLesson(c.Request.Context(), courseID, req.Slug, req.Title, req.Order)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewLessonResponse(lesson))
}

// DeleteCourse удаляет курс со всем поддеревом
// DELETE /api/admin/courses/:id
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	courseID := c.MustGet(courseIDKey).(uuid.UUID)

	res, err := h.cascadeService.DeleteCourse(c.Request.Context(), courseID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.DeleteResponse{ID: courseID, Deleted: res})
}

// DeleteLesson удаляет урок со всем поддеревом
// DELETE /api/admin/lessons/:id
func (h *CourseHandler) DeleteLesson(c *gin.Context) {
	lessonID := c.MustGet(lessonIDKey).(uuid.UUID)

	res, err := h.cascadeService.DeleteLesson(c.Request.Context(), lessonID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.DeleteResponse{ID: lessonID, Deleted: res})
}
