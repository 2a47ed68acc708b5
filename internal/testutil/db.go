// Package testutil содержит общую инфраструктуру для тестов репозиториев и сервисов.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yourusername/lesson-api/internal/domain/entity"
)

// NewTestDB открывает изолированную in-memory базу SQLite со схемой всех сущностей.
// Пул ограничен одним соединением, поэтому код внутри транзакции обязан использовать tx.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString()[:8])

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(
		&entity.Course{},
		&entity.Lesson{},
		&entity.ContentBlock{},
		&entity.Quiz{},
		&entity.Question{},
		&entity.Choice{},
		&entity.Attempt{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// CountRows возвращает количество строк в таблице модели
func CountRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return n
}
