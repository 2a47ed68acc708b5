package testutil

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yourusername/lesson-api/internal/domain/entity"
)

// CreateCourse сохраняет курс с заданным slug
func CreateCourse(t *testing.T, db *gorm.DB, slug, title string) *entity.Course {
	t.Helper()
	c := &entity.Course{Slug: slug, Title: title}
	if err := db.Omit("Lessons").Create(c).Error; err != nil {
		t.Fatalf("create course: %v", err)
	}
	return c
}

// CreateLesson сохраняет урок курса
func CreateLesson(t *testing.T, db *gorm.DB, courseID uuid.UUID, slug string, order int) *entity.Lesson {
	t.Helper()
	l := &entity.Lesson{CourseID: courseID, Slug: slug, Title: "Lesson " + slug, Order: order}
	if err := db.Omit("Course", "Blocks").Create(l).Error; err != nil {
		t.Fatalf("create lesson: %v", err)
	}
	return l
}

// CreateRichTextBlock сохраняет richtext-блок
func CreateRichTextBlock(t *testing.T, db *gorm.DB, lessonID uuid.UUID, body string, order int) *entity.ContentBlock {
	t.Helper()
	b := &entity.ContentBlock{
		LessonID: lessonID,
		Type:     entity.BlockTypeRichText,
		Order:    order,
		Body:     &body,
		Format:   entity.BodyFormatMarkdown,
		Source:   "text",
	}
	if err := db.Omit("Quiz").Create(b).Error; err != nil {
		t.Fatalf("create block: %v", err)
	}
	return b
}

// QuizFixture описывает сохраненный quiz-блок и его граф
type QuizFixture struct {
	Block *entity.ContentBlock
	Quiz  *entity.Quiz
	// Correct: вопрос -> правильный вариант
	Correct entity.AnswerSet
	// Wrong: вопрос -> неправильный вариант
	Wrong entity.AnswerSet
}

// CreateQuizBlock сохраняет quiz-блок с questions вопросами по два варианта; правильный всегда второй
func CreateQuizBlock(t *testing.T, db *gorm.DB, lessonID uuid.UUID, questions int, order int) *QuizFixture {
	t.Helper()
	block := &entity.ContentBlock{LessonID: lessonID, Type: entity.BlockTypeQuiz, Order: order}
	if err := db.Omit("Quiz").Create(block).Error; err != nil {
		t.Fatalf("create quiz block: %v", err)
	}

	fx := &QuizFixture{Block: block, Correct: entity.AnswerSet{}, Wrong: entity.AnswerSet{}}
	quiz := &entity.Quiz{ID: uuid.New(), ContentBlockID: block.ID, Title: "Quiz"}
	for i := 0; i < questions; i++ {
		qID, wrongID, rightID := uuid.New(), uuid.New(), uuid.New()
		answer := rightID
		quiz.Questions = append(quiz.Questions, entity.Question{
			ID:       qID,
			QuizID:   quiz.ID,
			Text:     "Question",
			Position: i,
			AnswerID: &answer,
			Choices: []entity.Choice{
				{ID: wrongID, QuestionID: qID, Text: "wrong", Position: 0},
				{ID: rightID, QuestionID: qID, Text: "right", Position: 1},
			},
		})
		fx.Correct[qID.String()] = rightID.String()
		fx.Wrong[qID.String()] = wrongID.String()
	}
	if err := db.Create(quiz).Error; err != nil {
		t.Fatalf("create quiz graph: %v", err)
	}
	fx.Quiz = quiz
	return fx
}

// CreateAttempt сохраняет попытку викторины
func CreateAttempt(t *testing.T, db *gorm.DB, quizID uuid.UUID, answers entity.AnswerSet, score, total int) *entity.Attempt {
	t.Helper()
	a, err := entity.NewAttempt(quizID, answers, score, total)
	if err != nil {
		t.Fatalf("new attempt: %v", err)
	}
	if err := db.Create(a).Error; err != nil {
		t.Fatalf("create attempt: %v", err)
	}
	return a
}
