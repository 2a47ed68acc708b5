package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/yourusername/lesson-api/internal/domain/entity"
	apperrors "github.com/yourusername/lesson-api/internal/pkg/errors"
)

// Форматы выгрузки попыток
const (
	ExportFormatCSV  = "csv"
	ExportFormatXLSX = "xlsx"
)

var attemptExportHeaders = []string{"Attempt", "Quiz", "Submitted at (UTC)", "Score", "Total", "Wrong", "Percent"}

// ExportAttempts записывает попытки викторины в w в формате csv или xlsx
func ExportAttempts(w io.Writer, format string, quiz *entity.Quiz, attempts []entity.Attempt) error {
	switch format {
	case "", ExportFormatCSV:
		return writeAttemptsCSV(w, quiz, attempts)
	case ExportFormatXLSX:
		return writeAttemptsXLSX(w, quiz, attempts)
	default:
		return apperrors.NewFieldError("format", "must be csv or xlsx")
	}
}

// ExportContentType возвращает MIME-тип выгрузки
func ExportContentType(format string) string {
	if format == ExportFormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// ExportFilename возвращает имя файла выгрузки без пути
func ExportFilename(quiz *entity.Quiz, format string, now time.Time) string {
	if format == "" {
		format = ExportFormatCSV
	}
	return fmt.Sprintf("quiz_%s_attempts_%s.%s", quiz.ID, now.Format("2006-01-02"), format)
}

func attemptRow(a *entity.Attempt) (submitted string, percent float64) {
	submitted = a.CreatedAt.UTC().Format("2006-01-02 15:04:05")
	if a.Total > 0 {
		percent = float64(a.Score) * 100 / float64(a.Total)
	}
	return submitted, percent
}

// writeAttemptsCSV пишет CSV с BOM для корректного отображения UTF-8 в Excel
func writeAttemptsCSV(w io.Writer, quiz *entity.Quiz, attempts []entity.Attempt) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return err
	}
	writer := csv.NewWriter(w)
	if err := writer.Write(attemptExportHeaders); err != nil {
		return err
	}
	for i := range attempts {
		a := &attempts[i]
		submitted, percent := attemptRow(a)
		if err := writer.Write([]string{
			a.ID.String(),
			sanitizeForExcel(quiz.Title),
			submitted,
			strconv.Itoa(a.Score),
			strconv.Itoa(a.Total),
			strconv.Itoa(a.Wrong()),
			strconv.FormatFloat(percent, 'f', 1, 64),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// writeAttemptsXLSX пишет книгу Excel через StreamWriter
func writeAttemptsXLSX(w io.Writer, quiz *entity.Quiz, attempts []entity.Attempt) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Attempts"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return fmt.Errorf("create stream writer: %w", err)
	}

	headers := make([]interface{}, len(attemptExportHeaders))
	for i, h := range attemptExportHeaders {
		headers[i] = h
	}
	if err := sw.SetRow("A1", headers); err != nil {
		return fmt.Errorf("write headers: %w", err)
	}

	for i := range attempts {
		a := &attempts[i]
		submitted, percent := attemptRow(a)
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{a.ID.String(), sanitizeForExcel(quiz.Title), submitted, a.Score, a.Total, a.Wrong(), percent}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}
	return f.Write(w)
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}
