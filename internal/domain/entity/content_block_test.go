package entity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yourusername/lesson-api/internal/pkg/errors"
)

func strPtr(s string) *string { return &s }

func TestCourse_Validate(t *testing.T) {
	tests := []struct {
		name      string
		course    Course
		wantField string
	}{
		{"valid", Course{Slug: "go-basics", Title: "Go"}, ""},
		{"empty slug", Course{Slug: "", Title: "Go"}, "slug"},
		{"slug with space", Course{Slug: "go basics", Title: "Go"}, "slug"},
		{"slug with slash", Course{Slug: "go/basics", Title: "Go"}, "slug"},
		{"empty title", Course{Slug: "go", Title: ""}, "title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.course.Normalize()
			err := tt.course.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			fe, ok := apperrors.AsFieldError(err)
			require.True(t, ok, "expected field error, got %v", err)
			assert.Equal(t, tt.wantField, fe.Field)
		})
	}
}

func TestCourse_NormalizeTrimsAndDropsBlankDescription(t *testing.T) {
	c := Course{Slug: "  go  ", Title: " Go ", Description: strPtr("   ")}
	c.Normalize()

	assert.Equal(t, "go", c.Slug)
	assert.Equal(t, "Go", c.Title)
	assert.Nil(t, c.Description)
}

func TestLesson_Validate(t *testing.T) {
	l := Lesson{CourseID: uuid.New(), Slug: "intro", Title: "Intro"}
	assert.NoError(t, l.Validate())

	l.CourseID = uuid.Nil
	fe, ok := apperrors.AsFieldError(l.Validate())
	require.True(t, ok)
	assert.Equal(t, "course_id", fe.Field)
}

func TestContentBlock_Validate(t *testing.T) {
	lessonID := uuid.New()
	tests := []struct {
		name      string
		block     ContentBlock
		wantField string
	}{
		{"richtext with body", ContentBlock{LessonID: lessonID, Type: BlockTypeRichText, Body: strPtr("x")}, ""},
		{"richtext without body", ContentBlock{LessonID: lessonID, Type: BlockTypeRichText}, "body"},
		{"richtext with quiz", ContentBlock{LessonID: lessonID, Type: BlockTypeRichText, Body: strPtr("x"), Quiz: &Quiz{}}, "quiz"},
		{"quiz block", ContentBlock{LessonID: lessonID, Type: BlockTypeQuiz}, ""},
		{"quiz with body", ContentBlock{LessonID: lessonID, Type: BlockTypeQuiz, Body: strPtr("x")}, "body"},
		{"unknown type", ContentBlock{LessonID: lessonID, Type: "video"}, "type"},
		{"no lesson", ContentBlock{Type: BlockTypeQuiz}, "lesson_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.block.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			fe, ok := apperrors.AsFieldError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantField, fe.Field)
		})
	}
}

func TestContentBlock_DisplayTitle(t *testing.T) {
	assert.Equal(t, DefaultRichTextTitle, (&ContentBlock{Type: BlockTypeRichText}).DisplayTitle())
	assert.Equal(t, DefaultQuizTitle, (&ContentBlock{Type: BlockTypeQuiz}).DisplayTitle())
	assert.Equal(t, "Intro", (&ContentBlock{Type: BlockTypeQuiz, Title: strPtr("Intro")}).DisplayTitle())
}

func TestParseBlockType(t *testing.T) {
	bt, err := ParseBlockType("quiz")
	require.NoError(t, err)
	assert.Equal(t, BlockTypeQuiz, bt)

	_, err = ParseBlockType("markdown")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
