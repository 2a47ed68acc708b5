package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yourusername/lesson-api/internal/ingestion"
	"github.com/yourusername/lesson-api/internal/pkg/logger"
	"github.com/yourusername/lesson-api/internal/repository/postgres"
	"github.com/yourusername/lesson-api/internal/storage"
	"github.com/yourusername/lesson-api/internal/testutil"
)

// testEnv связывает сервисы с репозиториями поверх SQLite в памяти
type testEnv struct {
	db       *gorm.DB
	assetDir string
	courses  *CourseService
	content  *ContentService
	quizzes  *QuizService
	cascade  *CascadeService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewTestDB(t)
	log := logger.Nop()

	assetDir := t.TempDir()
	assets, err := storage.NewLocalStore(assetDir, "/uploads")
	require.NoError(t, err)

	courseRepo := postgres.NewCourseRepo(db)
	lessonRepo := postgres.NewLessonRepo(db)
	blockRepo := postgres.NewContentBlockRepo(db)
	quizRepo := postgres.NewQuizRepo(db)
	attemptRepo := postgres.NewAttemptRepo(db)

	cache := NewReadCache(nil, time.Minute, log)
	quizzes := NewQuizService(quizRepo, attemptRepo, log)
	pipeline := ingestion.NewPipeline(assets, 5*time.Second, log)

	return &testEnv{
		db:       db,
		assetDir: assetDir,
		courses:  NewCourseService(courseRepo, lessonRepo, cache, log),
		content:  NewContentService(db, lessonRepo, blockRepo, quizRepo, quizzes, pipeline, cache, log),
		quizzes:  quizzes,
		cascade:  NewCascadeService(db, postgres.NewCascadeRepo(), courseRepo, lessonRepo, blockRepo, cache, log),
	}
}

// QuizBlockFixture хранит идентификаторы созданной иерархии
type QuizBlockFixture struct {
	CourseID, LessonID, BlockID, QuizID uuid.UUID
}

// quizFromDefinition создает курс, урок и quiz-блок из JSON-определения
func (e *testEnv) quizFromDefinition(t *testing.T, definition string) *QuizBlockFixture {
	t.Helper()
	ctx := context.Background()
	course, err := e.courses.CreateCourse(ctx, "course", "Course", nil)
	require.NoError(t, err)
	lesson, err := e.courses.CreateLesson(ctx, course.ID, "lesson", "Lesson", 1)
	require.NoError(t, err)
	block, err := e.content.CreateContentBlock(ctx, lesson.ID, 1, QuizBlock{Title: "Check", Definition: []byte(definition)})
	require.NoError(t, err)
	require.NotNil(t, block.Quiz)
	return &QuizBlockFixture{CourseID: course.ID, LessonID: lesson.ID, BlockID: block.ID, QuizID: block.Quiz.ID}
}
