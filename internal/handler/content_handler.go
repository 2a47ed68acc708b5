package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yourusername/lesson-api/internal/domain/entity"
	"github.com/yourusername/lesson-api/internal/handler/dto"
	"github.com/yourusername/lesson-api/internal/ingestion"
	apperrors "github.com/yourusername/lesson-api/internal/pkg/errors"
	"github.com/yourusername/lesson-api/internal/pkg/logger"
	"github.com/yourusername/lesson-api/internal/service"
)

// errBadBlockRequest отмечает синтаксически неверный запрос на создание блока
var errBadBlockRequest = errors.New("invalid block request")

// ContentHandler обрабатывает создание и удаление блоков урока
type ContentHandler struct {
	contentService *service.ContentService
	cascadeService *service.CascadeService
	maxUploadBytes int64
	log            *logger.Logger
}

// NewContentHandler создает новый обработчик блоков.
// maxUploadBytes <= 0 отключает ограничение размера тела запроса.
func NewContentHandler(
	contentService *service.ContentService,
	cascadeService *service.CascadeService,
	maxUploadBytes int64,
	log *logger.Logger,
) *ContentHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ContentHandler{
		contentService: contentService,
		cascadeService: cascadeService,
		maxUploadBytes: maxUploadBytes,
		log:            log,
	}
}

// blockInput собирает поля запроса независимо от его кодировки
type blockInput struct {
	Type      string
	Title     string
	Order     int
	Text      string
	Questions []byte
	File      *ingestion.Upload
}

// CreateBlock создает блок урока из JSON или multipart-формы с файлом
// POST /api/admin/lessons/:id/blocks
func (h *ContentHandler) CreateBlock(c *gin.Context) {
	lessonID := c.MustGet(lessonIDKey).(uuid.UUID)

	var body *limitedBody
	if h.maxUploadBytes > 0 {
		if c.Request.ContentLength > h.maxUploadBytes {
			h.tooLarge(c)
			return
		}
		body = newLimitedBody(c.Request.Body, h.maxUploadBytes)
		c.Request.Body = body
	}

	in, err := h.readBlockInput(c)
	if err != nil {
		switch {
		case body.Exceeded() || errors.Is(err, errBodyTooLarge):
			h.tooLarge(c)
		case errors.Is(err, errBadBlockRequest):
			badRequest(c, "Invalid request data", err)
		default:
			respondError(c, h.log, err)
		}
		return
	}

	payload, err := blockPayload(in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	block, err := h.contentService.CreateContentBlock(c.Request.Context(), lessonID, in.Order, payload)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewBlockResponse(block))
}

func (h *ContentHandler) tooLarge(c *gin.Context) {
	c.JSON(http.StatusRequestEntityTooLarge, gin.H{
		"error":     "Request body too large",
		"max_bytes": h.maxUploadBytes,
	})
}

// DeleteBlock удаляет блок; для quiz-блока удаляются викторина и ее попытки
// DELETE /api/admin/blocks/:id
func (h *ContentHandler) DeleteBlock(c *gin.Context) {
	blockID := c.MustGet(blockIDKey).(uuid.UUID)

	res, err := h.cascadeService.DeleteContentBlock(c.Request.Context(), blockID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.DeleteResponse{ID: blockID, Deleted: res})
}

func (h *ContentHandler) readBlockInput(c *gin.Context) (*blockInput, error) {
	switch c.ContentType() {
	case gin.MIMEMultipartPOSTForm:
		if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
			return nil, wrapBodyError(err)
		}
		return h.readForm(c)
	case gin.MIMEPOSTForm:
		if err := c.Request.ParseForm(); err != nil {
			return nil, wrapBodyError(err)
		}
		return h.readForm(c)
	default:
		var req dto.CreateBlockRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, wrapBodyError(err)
		}
		in := &blockInput{Type: req.Type, Title: req.Title, Order: req.Order, Text: req.Text}
		if len(req.Questions) > 0 && string(req.Questions) != "null" {
			in.Questions = req.Questions
		}
		return in, nil
	}
}

func (h *ContentHandler) readForm(c *gin.Context) (*blockInput, error) {
	in := &blockInput{
		Type:  strings.TrimSpace(c.PostForm("type")),
		Title: c.PostForm("title"),
		Text:  c.PostForm("text"),
	}
	if q := c.PostForm("questions"); q != "" {
		in.Questions = []byte(q)
	}
	if raw := strings.TrimSpace(c.PostForm("order")); raw != "" {
		order, err := strconv.Atoi(raw)
		if err != nil {
			return nil, apperrors.NewFieldError("order", "must be an integer")
		}
		in.Order = order
	}

	if c.ContentType() != gin.MIMEMultipartPOSTForm {
		return in, nil
	}
	header, err := c.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return in, nil
	case err != nil:
		return nil, wrapBodyError(err)
	}
	upload, err := readUpload(header)
	if err != nil {
		return nil, err
	}
	in.File = upload
	return in, nil
}

func readUpload(header *multipart.FileHeader) (*ingestion.Upload, error) {
	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open uploaded file %q: %w", header.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read uploaded file %q: %w", header.Filename, err)
	}
	return &ingestion.Upload{Name: header.Filename, Data: data}, nil
}

// wrapBodyError делает ошибки разбора тела ответом 400
func wrapBodyError(err error) error {
	return fmt.Errorf("%w: %v", errBadBlockRequest, err)
}

func blockPayload(in *blockInput) (service.BlockPayload, error) {
	blockType, err := entity.ParseBlockType(in.Type)
	if err != nil {
		return nil, err
	}
	if blockType == entity.BlockTypeQuiz {
		return service.QuizBlock{Title: in.Title, Definition: in.Questions}, nil
	}
	return service.RichTextBlock{Title: in.Title, Text: in.Text, File: in.File}, nil
}
