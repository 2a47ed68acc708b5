package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/yourusername/lesson-api/internal/config"
	"github.com/yourusername/lesson-api/internal/domain/repository"
	"github.com/yourusername/lesson-api/internal/handler"
	"github.com/yourusername/lesson-api/internal/ingestion"
	"github.com/yourusername/lesson-api/internal/middleware"
	"github.com/yourusername/lesson-api/internal/pkg/logger"
	pgRepo "github.com/yourusername/lesson-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/lesson-api/internal/repository/redis"
	"github.com/yourusername/lesson-api/internal/service"
	"github.com/yourusername/lesson-api/internal/storage"
	"github.com/yourusername/lesson-api/pkg/auth"
	"github.com/yourusername/lesson-api/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	appLog, err := logger.New(cfg.Log.Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer appLog.Sync()

	if err := run(cfg, appLog); err != nil {
		appLog.Error("Server stopped with error", "error", err)
		appLog.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, appLog *logger.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	isProduction := gin.Mode() == gin.ReleaseMode

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString(), !isProduction)
	if err != nil {
		return err
	}

	// Применяем миграции
	if err := database.MigrateDB(db, cfg.Database.MigrationsPath, appLog.With("component", "migrate")); err != nil {
		return err
	}

	// Redis не обязателен: без него кеш чтения и ограничение отправок отключены
	redisClient, err := connectRedis(ctx, cfg.Redis, appLog)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	assets, closeAssets, err := newAssetStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer closeAssets()

	// Инициализируем репозитории
	courseRepo := pgRepo.NewCourseRepo(db)
	lessonRepo := pgRepo.NewLessonRepo(db)
	blockRepo := pgRepo.NewContentBlockRepo(db)
	quizRepo := pgRepo.NewQuizRepo(db)
	attemptRepo := pgRepo.NewAttemptRepo(db)
	cascadeRepo := pgRepo.NewCascadeRepo()

	var cacheRepo repository.CacheRepository
	if redisClient != nil && cfg.Cache.Enabled {
		repo, err := redisRepo.NewCacheRepo(redisClient)
		if err != nil {
			return fmt.Errorf("failed to initialize CacheRepo: %w", err)
		}
		cacheRepo = repo
	}

	// Инициализируем сервисы
	serviceLog := appLog.With("component", "service")
	readCache := service.NewReadCache(cacheRepo, cfg.Cache.TTL(), serviceLog)
	courseService := service.NewCourseService(courseRepo, lessonRepo, readCache, serviceLog)
	quizService := service.NewQuizService(quizRepo, attemptRepo, serviceLog)
	pipeline := ingestion.NewPipeline(assets, cfg.Ingestion.Timeout(), appLog.With("component", "ingestion"))
	contentService := service.NewContentService(db, lessonRepo, blockRepo, quizRepo, quizService, pipeline, readCache, serviceLog)
	cascadeService := service.NewCascadeService(db, cascadeRepo, courseRepo, lessonRepo, blockRepo, readCache, serviceLog)

	jwtService, err := auth.NewJWTService(cfg.Admin.JWTSecret, time.Duration(cfg.Admin.TokenTTLHours)*time.Hour)
	if err != nil {
		return fmt.Errorf("failed to initialize JWTService: %w", err)
	}

	// Инициализируем middleware и обработчики
	httpLog := appLog.With("component", "http")
	adminAuth := middleware.NewAuthMiddleware(jwtService, cfg.Admin.Username, cfg.Admin.PasswordHash, httpLog)
	routes := &handler.Routes{
		Courses:     handler.NewCourseHandler(courseService, cascadeService, httpLog),
		Content:     handler.NewContentHandler(contentService, cascadeService, cfg.Ingestion.MaxUploadBytes, httpLog),
		Quizzes:     handler.NewQuizHandler(quizService, courseService, httpLog),
		Auth:        handler.NewAuthHandler(adminAuth, jwtService, httpLog),
		AdminAuth:   adminAuth,
		RateLimiter: middleware.NewRateLimiter(redisClient, httpLog),
		SubmitLimit: middleware.SubmitRateLimitConfig(cfg.RateLimit.SubmitPerMinute),
	}

	router := gin.Default()

	// В production не доверяем прокси-заголовкам (защита от IP spoofing)
	trusted := []string{"127.0.0.1", "::1"}
	if isProduction {
		trusted = nil
	}
	if err := router.SetTrustedProxies(trusted); err != nil {
		appLog.Warn("Failed to set trusted proxies", "error", err)
	}

	if len(cfg.Server.AllowOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.Server.AllowOrigins,
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Ресурсы, извлеченные из документов, раздаются только локальным хранилищем
	if local, ok := assets.(*storage.LocalStore); ok {
		router.Static(local.PublicPrefix(), local.Dir())
	}

	routes.Register(router)

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLog.Info("Starting server", "port", cfg.Server.Port, "storage", cfg.Storage.Driver, "redis", redisClient != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		appLog.Info("Shutting down server", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
	}

	// Создаем контекст с таймаутом для graceful shutdown сервера
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	appLog.Info("Server exited")
	return nil
}

// connectRedis подключается к Redis, если он настроен. Без адресов возвращает nil-клиент.
func connectRedis(ctx context.Context, cfg config.RedisConfig, appLog *logger.Logger) (redis.UniversalClient, error) {
	if !database.RedisConfigured(cfg) {
		appLog.Warn("Redis is not configured: read cache and submission rate limit are disabled")
		return nil, nil
	}
	return database.NewUniversalRedisClient(ctx, cfg, appLog.With("component", "redis"))
}

// newAssetStore создает хранилище ресурсов по драйверу из конфигурации
func newAssetStore(ctx context.Context, cfg config.StorageConfig) (storage.AssetStore, func(), error) {
	switch cfg.Driver {
	case config.StorageDriverGCS:
		store, err := storage.NewGCSStore(ctx, cfg.GCSBucket, cfg.GCSPublicBase, cfg.GCSCredentialsFile)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		store, err := storage.NewLocalStore(cfg.LocalDir, cfg.PublicPrefix)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}
}
