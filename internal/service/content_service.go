package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yourusername/lesson-api/internal/domain/entity"
	"github.com/yourusername/lesson-api/internal/domain/repository"
	"github.com/yourusername/lesson-api/internal/ingestion"
	apperrors "github.com/yourusername/lesson-api/internal/pkg/errors"
	"github.com/yourusername/lesson-api/internal/pkg/logger"
)

// Ingester нормализует введенный текст или загруженный файл
type Ingester interface {
	Ingest(ctx context.Context, rawText string, file *ingestion.Upload) (*ingestion.Document, error)
}

// BlockPayload содержит данные одного из вариантов блока: RichTextBlock или QuizBlock
type BlockPayload interface {
	blockType() entity.BlockType
}

// RichTextBlock описывает richtext-блок: текст и/или файл для ингестии
type RichTextBlock struct {
	Title string
	Text  string
	File  *ingestion.Upload
}

func (RichTextBlock) blockType() entity.BlockType { return entity.BlockTypeRichText }

// QuizBlock описывает quiz-блок. Если Questions не заданы, разбирается Definition (JSON).
type QuizBlock struct {
	Title      string
	Definition []byte
	Questions  []entity.QuestionDefinition
}

func (QuizBlock) blockType() entity.BlockType { return entity.BlockTypeQuiz }

// ContentService создает блоки уроков, направляя файлы в ингестию, а определения викторин в QuizService
type ContentService struct {
	db          *gorm.DB
	lessonRepo  repository.LessonRepository
	blockRepo   repository.ContentBlockRepository
	quizRepo    repository.QuizRepository
	quizService *QuizService
	ingester    Ingester
	cache       *ReadCache
	log         *logger.Logger
}

// NewContentService создает новый сервис блоков
func NewContentService(
	db *gorm.DB,
	lessonRepo repository.LessonRepository,
	blockRepo repository.ContentBlockRepository,
	quizRepo repository.QuizRepository,
	quizService *QuizService,
	ingester Ingester,
	cache *ReadCache,
	log *logger.Logger,
) *ContentService {
	if log == nil {
		log = logger.Nop()
	}
	return &ContentService{
		db:          db,
		lessonRepo:  lessonRepo,
		blockRepo:   blockRepo,
		quizRepo:    quizRepo,
		quizService: quizService,
		ingester:    ingester,
		cache:       cache,
		log:         log,
	}
}

// CreateContentBlock создает блок урока. Ингестия и разбор викторины выполняются до записи,
// а блок и граф викторины сохраняются одной транзакцией.
func (s *ContentService) CreateContentBlock(ctx context.Context, lessonID uuid.UUID, order int, payload BlockPayload) (*entity.ContentBlock, error) {
	if payload == nil {
		return nil, apperrors.NewFieldError("type", "block payload is required")
	}
	lesson, err := s.lessonRepo.GetByID(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	var block *entity.ContentBlock
	switch p := payload.(type) {
	case RichTextBlock:
		block, err = s.buildRichText(ctx, lessonID, order, p)
	case *RichTextBlock:
		block, err = s.buildRichText(ctx, lessonID, order, *p)
	case QuizBlock:
		block, err = s.buildQuiz(lessonID, order, p)
	case *QuizBlock:
		block, err = s.buildQuiz(lessonID, order, *p)
	default:
		return nil, apperrors.NewFieldError("type", fmt.Sprintf("unsupported block payload %T", payload))
	}
	if err != nil {
		return nil, err
	}
	if err := block.Validate(); err != nil {
		return nil, err
	}

	quiz := block.Quiz
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.blockRepo.Create(tx, block); err != nil {
			return err
		}
		if quiz != nil {
			return s.quizRepo.CreateGraph(tx, quiz)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create content block: %w", err)
	}

	if lesson.Course != nil {
		s.cache.InvalidateCourse(ctx, lesson.Course.Slug)
	}
	s.log.Info("Content block created", "block_id", block.ID, "lesson_id", lessonID, "type", block.Type)
	return block, nil
}

func (s *ContentService) buildRichText(ctx context.Context, lessonID uuid.UUID, order int, p RichTextBlock) (*entity.ContentBlock, error) {
	doc, err := s.ingester.Ingest(ctx, p.Text, p.File)
	if err != nil {
		return nil, err
	}
	title := blockTitle(p.Title, entity.DefaultRichTextTitle)
	body := doc.Text
	return &entity.ContentBlock{
		LessonID: lessonID,
		Type:     entity.BlockTypeRichText,
		Title:    &title,
		Order:    order,
		Body:     &body,
		Format:   doc.Format,
		Source:   doc.Source,
	}, nil
}

func (s *ContentService) buildQuiz(lessonID uuid.UUID, order int, p QuizBlock) (*entity.ContentBlock, error) {
	defs := p.Questions
	if defs == nil {
		parsed, err := entity.ParseQuizDefinition(p.Definition)
		if err != nil {
			return nil, err
		}
		defs = parsed
	}

	title := blockTitle(p.Title, entity.DefaultQuizTitle)
	block := &entity.ContentBlock{
		ID:       uuid.New(),
		LessonID: lessonID,
		Type:     entity.BlockTypeQuiz,
		Title:    &title,
		Order:    order,
	}
	quiz, err := s.quizService.DefineQuiz(block.ID, title, defs)
	if err != nil {
		return nil, err
	}
	block.Quiz = quiz
	return block, nil
}

func blockTitle(title, fallback string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	return fallback
}

// GetContentBlock возвращает блок вместе с викториной
func (s *ContentService) GetContentBlock(ctx context.Context, id uuid.UUID) (*entity.ContentBlock, error) {
	return s.blockRepo.GetByID(ctx, id)
}
