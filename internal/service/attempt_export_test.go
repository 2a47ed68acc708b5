package service

import (
	"bytes"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/lesson-api/internal/domain/entity"
	apperrors "github.com/yourusername/lesson-api/internal/pkg/errors"
)

func exportFixture() (*entity.Quiz, []entity.Attempt) {
	quiz := &entity.Quiz{ID: uuid.New(), Title: "=SUM(A1)"}
	at := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	return quiz, []entity.Attempt{
		{ID: uuid.New(), QuizID: quiz.ID, Score: 3, Total: 4, CreatedAt: at},
		{ID: uuid.New(), QuizID: quiz.ID, Score: 0, Total: 0, CreatedAt: at.Add(time.Hour)},
	}
}

func TestExportAttempts_CSV(t *testing.T) {
	quiz, attempts := exportFixture()
	var buf bytes.Buffer

	require.NoError(t, ExportAttempts(&buf, ExportFormatCSV, quiz, attempts))

	data := buf.Bytes()
	require.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}))
	rows, err := csv.NewReader(bytes.NewReader(data[3:])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, attemptExportHeaders, rows[0])
	assert.Equal(t, []string{attempts[0].ID.String(), "'=SUM(A1)", "2026-03-01 10:30:00", "3", "4", "1", "75.0"}, rows[1])
	assert.Equal(t, "0.0", rows[2][6])
}

func TestExportAttempts_XLSX(t *testing.T) {
	quiz, attempts := exportFixture()
	var buf bytes.Buffer

	require.NoError(t, ExportAttempts(&buf, ExportFormatXLSX, quiz, attempts))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Attempts")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Attempt", rows[0][0])
	assert.Equal(t, attempts[0].ID.String(), rows[1][0])
	assert.Equal(t, "3", rows[1][3])
}

func TestExportAttempts_UnknownFormat(t *testing.T) {
	quiz, attempts := exportFixture()

	err := ExportAttempts(&bytes.Buffer{}, "pdf", quiz, attempts)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestExportHelpers(t *testing.T) {
	quiz := &entity.Quiz{ID: uuid.MustParse("11111111-2222-3333-4444-555555555555")}
	now := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "quiz_11111111-2222-3333-4444-555555555555_attempts_2026-10-18.csv", ExportFilename(quiz, "", now))
	assert.Equal(t, "text/csv; charset=utf-8", ExportContentType("csv"))
	assert.Contains(t, ExportContentType("xlsx"), "spreadsheetml")
}
