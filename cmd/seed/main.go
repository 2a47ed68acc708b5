// Команда seed загружает курсы, уроки и блоки из YAML-файла.
// Повторный запуск не создает дубликатов: существующие курсы переиспользуются, уроки пропускаются.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/yourusername/lesson-api/internal/config"
	"github.com/yourusername/lesson-api/internal/domain/repository"
	"github.com/yourusername/lesson-api/internal/ingestion"
	"github.com/yourusername/lesson-api/internal/pkg/logger"
	pgRepo "github.com/yourusername/lesson-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/lesson-api/internal/repository/redis"
	"github.com/yourusername/lesson-api/internal/seed"
	"github.com/yourusername/lesson-api/internal/service"
	"github.com/yourusername/lesson-api/internal/storage"
	"github.com/yourusername/lesson-api/pkg/database"
)

func main() {
	file := flag.String("file", "config/seed.yaml", "путь к YAML-файлу с содержимым")
	migrate := flag.Bool("migrate", true, "применить миграции перед загрузкой")
	flag.Parse()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, *file, *migrate, log); err != nil {
		log.Error("Seed failed", "file", *file, "error", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, file string, migrate bool, log *logger.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	doc, err := seed.Load(file)
	if err != nil {
		return err
	}

	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString(), false)
	if err != nil {
		return err
	}
	if migrate {
		if err := database.MigrateDB(db, cfg.Database.MigrationsPath, log); err != nil {
			return err
		}
	}

	var assets storage.AssetStore
	switch cfg.Storage.Driver {
	case config.StorageDriverGCS:
		store, err := storage.NewGCSStore(ctx, cfg.Storage.GCSBucket, cfg.Storage.GCSPublicBase, cfg.Storage.GCSCredentialsFile)
		if err != nil {
			return err
		}
		defer store.Close()
		assets = store
	default:
		store, err := storage.NewLocalStore(cfg.Storage.LocalDir, cfg.Storage.PublicPrefix)
		if err != nil {
			return err
		}
		assets = store
	}

	// Записи кеша API по затронутым курсам сбрасываются, если Redis настроен
	var cacheRepo repository.CacheRepository
	if database.RedisConfigured(cfg.Redis) {
		client, err := database.NewUniversalRedisClient(ctx, cfg.Redis, log)
		if err != nil {
			return err
		}
		defer client.Close()
		repo, err := redisRepo.NewCacheRepo(client)
		if err != nil {
			return err
		}
		cacheRepo = repo
	}

	lessonRepo := pgRepo.NewLessonRepo(db)
	quizRepo := pgRepo.NewQuizRepo(db)
	readCache := service.NewReadCache(cacheRepo, cfg.Cache.TTL(), log)
	courses := service.NewCourseService(pgRepo.NewCourseRepo(db), lessonRepo, readCache, log)
	quizzes := service.NewQuizService(quizRepo, pgRepo.NewAttemptRepo(db), log)
	pipeline := ingestion.NewPipeline(assets, cfg.Ingestion.Timeout(), log)
	content := service.NewContentService(db, lessonRepo, pgRepo.NewContentBlockRepo(db), quizRepo, quizzes, pipeline, readCache, log)

	stats, err := seed.NewSeeder(courses, content, filepath.Dir(file), log).Apply(ctx, doc)
	if err != nil {
		return err
	}
	log.Info("Seed completed",
		"courses_created", stats.CoursesCreated,
		"courses_reused", stats.CoursesReused,
		"lessons_created", stats.LessonsCreated,
		"lessons_skipped", stats.LessonsSkipped,
		"blocks_created", stats.BlocksCreated,
	)
	return nil
}
