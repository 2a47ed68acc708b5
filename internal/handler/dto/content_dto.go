package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/lesson-api/internal/domain/entity"
	"github.com/yourusername/lesson-api/internal/domain/repository"
)

// CreateCourseRequest представляет запрос на создание курса
type CreateCourseRequest struct {
	Slug        string  `json:"slug" form:"slug"`
	Title       string  `json:"title" form:"title"`
	Description *string `json:"description" form:"description"`
}

// CreateLessonRequest представляет запрос на создание урока
type CreateLessonRequest struct {
	Slug  string `json:"slug" form:"slug"`
	Title string `json:"title" form:"title"`
	Order int    `json:"order" form:"order"`
}

// CreateBlockRequest представляет JSON-запрос на создание блока.
// Для multipart-запроса поля читаются из формы, а файл передается в поле "file".
type CreateBlockRequest struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Order int    `json:"order"`
	// Text: текст richtext-блока (markdown)
	Text string `json:"text"`
	// Questions: определение викторины, массив {text, choices, correct}
	Questions json.RawMessage `json:"questions"`
}

// CourseSummaryResponse представляет курс в списке
type CourseSummaryResponse struct {
	ID          uuid.UUID `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// LessonSummaryResponse представляет урок в составе курса
type LessonSummaryResponse struct {
	ID    uuid.UUID `json:"id"`
	Slug  string    `json:"slug"`
	Title string    `json:"title"`
	Order int       `json:"order"`
}

// CourseResponse представляет курс с уроками
type CourseResponse struct {
	CourseSummaryResponse
	Lessons []LessonSummaryResponse `json:"lessons"`
}

// QuizSummaryResponse представляет викторину внутри блока без вопросов
type QuizSummaryResponse struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

// BlockResponse представляет блок урока
type BlockResponse struct {
	ID     uuid.UUID            `json:"id"`
	Type   entity.BlockType     `json:"type"`
	Title  string               `json:"title"`
	Order  int                  `json:"order"`
	Body   *string              `json:"body,omitempty"`
	Format entity.BodyFormat    `json:"format,omitempty"`
	Source string               `json:"source,omitempty"`
	Quiz   *QuizSummaryResponse `json:"quiz,omitempty"`
}

// LessonResponse представляет урок с блоками
type LessonResponse struct {
	ID         uuid.UUID       `json:"id"`
	CourseID   uuid.UUID       `json:"course_id"`
	CourseSlug string          `json:"course_slug,omitempty"`
	Slug       string          `json:"slug"`
	Title      string          `json:"title"`
	Order      int             `json:"order"`
	Blocks     []BlockResponse `json:"blocks"`
}

// AdminLessonResponse представляет урок в дереве администратора
type AdminLessonResponse struct {
	LessonSummaryResponse
	Blocks []BlockResponse `json:"blocks"`
}

// AdminCourseResponse представляет курс в дереве администратора
type AdminCourseResponse struct {
	CourseSummaryResponse
	Lessons []AdminLessonResponse `json:"lessons"`
}

// DeleteResponse сообщает об удаленном объекте и числе удаленных строк поддерева
type DeleteResponse struct {
	ID      uuid.UUID                 `json:"id"`
	Deleted *repository.CascadeResult `json:"deleted"`
}

// NewCourseSummaryResponse создает DTO курса для списка
func NewCourseSummaryResponse(c *entity.Course) CourseSummaryResponse {
	return CourseSummaryResponse{
		ID:          c.ID,
		Slug:        c.Slug,
		Title:       c.Title,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
	}
}

// NewCourseListResponse создает список DTO курсов
func NewCourseListResponse(courses []entity.Course) []CourseSummaryResponse {
	out := make([]CourseSummaryResponse, 0, len(courses))
	for i := range courses {
		out = append(out, NewCourseSummaryResponse(&courses[i]))
	}
	return out
}

// NewCourseResponse создает DTO курса с уроками
func NewCourseResponse(c *entity.Course) *CourseResponse {
	resp := &CourseResponse{
		CourseSummaryResponse: NewCourseSummaryResponse(c),
		Lessons:               make([]LessonSummaryResponse, 0, len(c.Lessons)),
	}
	for i := range c.Lessons {
		resp.Lessons = append(resp.Lessons, newLessonSummary(&c.Lessons[i]))
	}
	return resp
}

func newLessonSummary(l *entity.Lesson) LessonSummaryResponse {
	return LessonSummaryResponse{ID: l.ID, Slug: l.Slug, Title: l.Title, Order: l.Order}
}

// NewBlockResponse создает DTO блока
func NewBlockResponse(b *entity.ContentBlock) BlockResponse {
	resp := BlockResponse{
		ID:     b.ID,
		Type:   b.Type,
		Title:  b.DisplayTitle(),
		Order:  b.Order,
		Body:   b.Body,
		Format: b.Format,
		Source: b.Source,
	}
	if b.Quiz != nil {
		resp.Quiz = &QuizSummaryResponse{ID: b.Quiz.ID, Title: b.Quiz.Title}
	}
	return resp
}

func newBlockList(blocks []entity.ContentBlock) []BlockResponse {
	out := make([]BlockResponse, 0, len(blocks))
	for i := range blocks {
		out = append(out, NewBlockResponse(&blocks[i]))
	}
	return out
}

// NewLessonResponse создает DTO урока с блоками
func NewLessonResponse(l *entity.Lesson) *LessonResponse {
	resp := &LessonResponse{
		ID:       l.ID,
		CourseID: l.CourseID,
		Slug:     l.Slug,
		Title:    l.Title,
		Order:    l.Order,
		Blocks:   newBlockList(l.Blocks),
	}
	if l.Course != nil {
		resp.CourseSlug = l.Course.Slug
	}
	return resp
}

// NewAdminTreeResponse создает дерево курсов для администратора
func NewAdminTreeResponse(courses []entity.Course) []AdminCourseResponse {
	out := make([]AdminCourseResponse, 0, len(courses))
	for i := range courses {
		c := &courses[i]
		node := AdminCourseResponse{
			CourseSummaryResponse: NewCourseSummaryResponse(c),
			Lessons:               make([]AdminLessonResponse, 0, len(c.Lessons)),
		}
		for j := range c.Lessons {
			l := &c.Lessons[j]
			node.Lessons = append(node.Lessons, AdminLessonResponse{
				LessonSummaryResponse: newLessonSummary(l),
				Blocks:                newBlockList(l.Blocks),
			})
		}
		out = append(out, node)
	}
	return out
}
