// Package ingestion превращает загруженный документ или введенный текст в тело richtext-блока.
package ingestion

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/yourusername/lesson-api/internal/domain/entity"
	apperrors "github.com/yourusername/lesson-api/internal/pkg/errors"
	"github.com/yourusername/lesson-api/internal/pkg/logger"
	"github.com/yourusername/lesson-api/internal/storage"
)

// NoContentPlaceholder подставляется, когда после обработки текст пуст
const NoContentPlaceholder = "_(no content provided)_"

// Источники тела блока
const (
	SourceDOCX = "docx"
	SourcePDF  = "pdf"
	SourceMD   = "md"
	SourceTXT  = "txt"
	SourceText = "text"
)

// Upload описывает загруженный файл
type Upload struct {
	Name string
	Data []byte
}

// Document содержит нормализованный текст и сведения о его происхождении
type Document struct {
	Text   string
	Format entity.BodyFormat
	Source string
}

// converter преобразует байты файла в текст
type converter func(ctx context.Context, data []byte) (string, error)

// Pipeline выбирает преобразователь по расширению файла и ограничивает время преобразования
type Pipeline struct {
	assets  storage.AssetStore
	timeout time.Duration
	log     *logger.Logger
}

// NewPipeline создает конвейер. timeout <= 0 отключает ограничение времени.
func NewPipeline(assets storage.AssetStore, timeout time.Duration, log *logger.Logger) *Pipeline {
	if log == nil {
		log = logger.Nop()
	}
	return &Pipeline{assets: assets, timeout: timeout, log: log}
}

// Ingest нормализует содержимое. Поддерживаемый файл всегда важнее rawText;
// файл с другим расширением или пустой файл игнорируется.
func (p *Pipeline) Ingest(ctx context.Context, rawText string, file *Upload) (*Document, error) {
	doc := &Document{Text: rawText, Format: entity.BodyFormatMarkdown, Source: SourceText}

	if file != nil && len(file.Data) > 0 {
		ext := strings.ToLower(filepath.Ext(file.Name))
		conv, format, source := p.converterFor(ext)
		if conv == nil {
			p.log.Info("Unsupported upload ignored", "file", file.Name, "ext", ext)
		} else {
			text, err := p.run(ctx, source, conv, file.Data)
			if err != nil {
				p.log.Warn("Document conversion failed", "file", file.Name, "source", source, "error", err)
				return nil, err
			}
			doc = &Document{Text: text, Format: format, Source: source}
			p.log.Info("Document ingested", "file", file.Name, "source", source, "bytes", len(file.Data))
		}
	}

	if strings.TrimSpace(doc.Text) == "" {
		doc.Text = NoContentPlaceholder
		doc.Format = entity.BodyFormatMarkdown
	}
	return doc, nil
}

func (p *Pipeline) converterFor(ext string) (converter, entity.BodyFormat, string) {
	switch ext {
	case ".docx":
		return p.convertDOCX, entity.BodyFormatHTML, SourceDOCX
	case ".pdf":
		return convertPDF, entity.BodyFormatMarkdown, SourcePDF
	case ".md":
		return passthrough(SourceMD), entity.BodyFormatMarkdown, SourceMD
	case ".txt":
		return passthrough(SourceTXT), entity.BodyFormatMarkdown, SourceTXT
	default:
		return nil, "", ""
	}
}

type result struct {
	text string
	err  error
}

// run выполняет преобразование в отдельной горутине; по истечении таймаута возвращает ConversionError,
// а преобразователь завершается по отмене контекста
func (p *Pipeline) run(ctx context.Context, source string, conv converter, data []byte) (string, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: &apperrors.ConversionError{Format: source, Err: fmt.Errorf("panic: %v", r)}}
			}
		}()
		text, err := conv(ctx, data)
		done <- result{text: text, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			if errors.Is(res.err, apperrors.ErrConversion) {
				return "", res.err
			}
			return "", &apperrors.ConversionError{Format: source, Err: res.err}
		}
		return res.text, nil
	case <-ctx.Done():
		return "", &apperrors.ConversionError{Format: source, Err: ctx.Err()}
	}
}
