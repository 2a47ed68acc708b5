package service

import (
	"context"
	"errors"
	"time"

	"github.com/yourusername/lesson-api/internal/domain/repository"
	apperrors "github.com/yourusername/lesson-api/internal/pkg/errors"
	"github.com/yourusername/lesson-api/internal/pkg/logger"
)

const cachePrefix = "lessonapi:"

func courseListKey() string {
	return cachePrefix + "courses"
}

func courseKey(slug string) string {
	return cachePrefix + "course:" + slug
}

func lessonKey(courseSlug, lessonSlug string) string {
	return courseKey(courseSlug) + ":lesson:" + lessonSlug
}

// ReadCache кеширует ответы чтения курсов и уроков. Ошибки кеша только логируются:
// чтение всегда может обратиться к базе. Нулевой репозиторий отключает кеш.
type ReadCache struct {
	repo repository.CacheRepository
	ttl  time.Duration
	log  *logger.Logger
}

// NewReadCache создает кеш чтения; repo может быть nil
func NewReadCache(repo repository.CacheRepository, ttl time.Duration, log *logger.Logger) *ReadCache {
	if log == nil {
		log = logger.Nop()
	}
	return &ReadCache{repo: repo, ttl: ttl, log: log}
}

func (c *ReadCache) enabled() bool {
	return c != nil && c.repo != nil
}

func (c *ReadCache) get(ctx context.Context, key string, dest interface{}) bool {
	if !c.enabled() {
		return false
	}
	if err := c.repo.GetJSON(ctx, key, dest); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			c.log.Warn("Cache read failed", "key", key, "error", err)
		}
		return false
	}
	return true
}

func (c *ReadCache) set(ctx context.Context, key string, value interface{}) {
	if !c.enabled() {
		return
	}
	if err := c.repo.SetJSON(ctx, key, value, c.ttl); err != nil {
		c.log.Warn("Cache write failed", "key", key, "error", err)
	}
}

// InvalidateCourse сбрасывает список курсов, сам курс и все его уроки
func (c *ReadCache) InvalidateCourse(ctx context.Context, slug string) {
	if !c.enabled() {
		return
	}
	if err := c.repo.Delete(ctx, courseListKey(), courseKey(slug)); err != nil {
		c.log.Warn("Cache invalidation failed", "course", slug, "error", err)
	}
	if err := c.repo.DeleteByPrefix(ctx, courseKey(slug)+":"); err != nil {
		c.log.Warn("Cache prefix invalidation failed", "course", slug, "error", err)
	}
}
