package ingestion

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	pdf "github.com/ledongthuc/pdf"

	apperrors "github.com/yourusername/lesson-api/internal/pkg/errors"
)

// blankLines: одна или несколько пустых строк, возможно с пробелами
var blankLines = regexp.MustCompile(`\n(?:[ \t]*\n)+`)

// passthrough возвращает текст без изменений, проверяя только кодировку UTF-8
func passthrough(source string) converter {
	return func(_ context.Context, data []byte) (string, error) {
		if !utf8.Valid(data) {
			return "", &apperrors.ConversionError{Format: source, Err: fmt.Errorf("file is not valid UTF-8")}
		}
		return string(data), nil
	}
}

func convertPDF(ctx context.Context, data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &apperrors.ConversionError{Format: SourcePDF, Err: fmt.Errorf("pdf reader: %w", err)}
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", &apperrors.ConversionError{Format: SourcePDF, Err: fmt.Errorf("pdf plaintext: %w", err)}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", &apperrors.ConversionError{Format: SourcePDF, Err: fmt.Errorf("pdf read: %w", err)}
	}
	return Reflow(string(b)), nil
}

// Reflow разбивает текст на абзацы по пустым строкам, обрезает каждый абзац,
// отбрасывает пустые и соединяет их через одну пустую строку
func Reflow(raw string) string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")

	parts := blankLines.Split(raw, -1)
	paragraphs := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			paragraphs = append(paragraphs, part)
		}
	}
	return strings.Join(paragraphs, "\n\n")
}
