package service

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/lesson-api/internal/domain/entity"
	"github.com/yourusername/lesson-api/internal/ingestion"
	apperrors "github.com/yourusername/lesson-api/internal/pkg/errors"
	"github.com/yourusername/lesson-api/internal/testutil"
)

func TestContentService_RichTextFromMarkdownFile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	course := testutil.CreateCourse(t, env.db, "c", "C")
	lesson := testutil.CreateLesson(t, env.db, course.ID, "l", 1)

	block, err := env.content.CreateContentBlock(ctx, lesson.ID, 2, RichTextBlock{
		Text: "typed text is overridden",
		File: &ingestion.Upload{Name: "intro.md", Data: []byte("# Title\n\nBody")},
	})
	require.NoError(t, err)

	assert.Equal(t, entity.BlockTypeRichText, block.Type)
	require.NotNil(t, block.Body)
	assert.Equal(t, "# Title\n\nBody", *block.Body)
	assert.Equal(t, entity.BodyFormatMarkdown, block.Format)
	assert.Equal(t, ingestion.SourceMD, block.Source)
	require.NotNil(t, block.Title)
	assert.Equal(t, entity.DefaultRichTextTitle, *block.Title)
	assert.Nil(t, block.Quiz)

	stored, err := env.content.GetContentBlock(ctx, block.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Order)
	assert.Equal(t, "# Title\n\nBody", *stored.Body)
}

func TestContentService_RichTextPlaceholder(t *testing.T) {
	env := newTestEnv(t)
	course := testutil.CreateCourse(t, env.db, "c", "C")
	lesson := testutil.CreateLesson(t, env.db, course.ID, "l", 1)

	block, err := env.content.CreateContentBlock(context.Background(), lesson.ID, 1, RichTextBlock{Title: "Notes", Text: "  "})
	require.NoError(t, err)
	assert.Equal(t, ingestion.NoContentPlaceholder, *block.Body)
	assert.Equal(t, "Notes", *block.Title)
}

func TestContentService_ConversionFailureLeavesNoBlock(t *testing.T) {
	env := newTestEnv(t)
	course := testutil.CreateCourse(t, env.db, "c", "C")
	lesson := testutil.CreateLesson(t, env.db, course.ID, "l", 1)

	block, err := env.content.CreateContentBlock(context.Background(), lesson.ID, 1, RichTextBlock{
		Text: "fallback",
		File: &ingestion.Upload{Name: "broken.docx", Data: []byte("not a zip")},
	})
	require.Error(t, err)
	assert.Nil(t, block)
	assert.True(t, errors.Is(err, apperrors.ErrConversion))
	assert.Equal(t, int64(0), testutil.CountRows(t, env.db, &entity.ContentBlock{}))

	entries, err := os.ReadDir(env.assetDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestContentService_QuizBlock(t *testing.T) {
	env := newTestEnv(t)
	fx := env.quizFromDefinition(t, `[{"text":"2+2?","choices":["3","4"],"correct":1},{"text":"Sky?","choices":["blue","green"],"correct":0}]`)

	block, err := env.content.GetContentBlock(context.Background(), fx.BlockID)
	require.NoError(t, err)
	assert.Equal(t, entity.BlockTypeQuiz, block.Type)
	assert.Nil(t, block.Body)
	require.NotNil(t, block.Quiz)
	assert.Equal(t, "Check", block.Quiz.Title)

	assert.Equal(t, int64(1), testutil.CountRows(t, env.db, &entity.Quiz{}))
	assert.Equal(t, int64(2), testutil.CountRows(t, env.db, &entity.Question{}))
	assert.Equal(t, int64(4), testutil.CountRows(t, env.db, &entity.Choice{}))
}

func TestContentService_QuizBlockFromParsedQuestions(t *testing.T) {
	env := newTestEnv(t)
	course := testutil.CreateCourse(t, env.db, "c", "C")
	lesson := testutil.CreateLesson(t, env.db, course.ID, "l", 1)

	block, err := env.content.CreateContentBlock(context.Background(), lesson.ID, 1, &QuizBlock{
		Questions: []entity.QuestionDefinition{{Text: "a", Choices: []string{"x", "y"}, Correct: intPtr(0)}},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultQuizTitle, *block.Title)
	assert.Equal(t, entity.DefaultQuizTitle, block.Quiz.Title)
}

func TestContentService_InvalidQuizCreatesNothing(t *testing.T) {
	tests := []struct {
		name       string
		definition string
		wantField  string
	}{
		{"malformed json", `[{"text":`, "questions"},
		{"empty list", `[]`, "questions"},
		{"correct out of range", `[{"text":"2+2?","choices":["3","4"],"correct":2}]`, "questions[0].correct"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			course := testutil.CreateCourse(t, env.db, "c", "C")
			lesson := testutil.CreateLesson(t, env.db, course.ID, "l", 1)

			_, err := env.content.CreateContentBlock(context.Background(), lesson.ID, 1, QuizBlock{Definition: []byte(tt.definition)})
			require.Error(t, err)
			fe, ok := apperrors.AsFieldError(err)
			require.True(t, ok, "got %v", err)
			assert.Equal(t, tt.wantField, fe.Field)

			assert.Equal(t, int64(0), testutil.CountRows(t, env.db, &entity.ContentBlock{}))
			assert.Equal(t, int64(0), testutil.CountRows(t, env.db, &entity.Quiz{}))
			assert.Equal(t, int64(0), testutil.CountRows(t, env.db, &entity.Question{}))
		})
	}
}

func TestContentService_UnknownLesson(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.content.CreateContentBlock(context.Background(), uuid.New(), 1, RichTextBlock{Text: "x"})
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestContentService_NilPayload(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.content.CreateContentBlock(context.Background(), uuid.New(), 1, nil)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestContentService_IngestsBeforeWriting(t *testing.T) {
	env := newTestEnv(t)
	course := testutil.CreateCourse(t, env.db, "c", "C")
	lesson := testutil.CreateLesson(t, env.db, course.ID, "l", 1)

	ingester := new(MockIngester)
	ingester.On("Ingest", mock.Anything, "raw", (*ingestion.Upload)(nil)).
		Return(nil, &apperrors.ConversionError{Format: "pdf", Err: errors.New("timeout")}).Once()
	env.content.ingester = ingester

	_, err := env.content.CreateContentBlock(context.Background(), lesson.ID, 1, RichTextBlock{Text: "raw"})
	assert.True(t, errors.Is(err, apperrors.ErrConversion))
	assert.Equal(t, int64(0), testutil.CountRows(t, env.db, &entity.ContentBlock{}))
	ingester.AssertExpectations(t)
}
