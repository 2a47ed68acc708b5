package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yourusername/lesson-api/internal/ingestion"
	"github.com/yourusername/lesson-api/internal/middleware"
	"github.com/yourusername/lesson-api/internal/pkg/logger"
	"github.com/yourusername/lesson-api/internal/repository/postgres"
	"github.com/yourusername/lesson-api/internal/service"
	"github.com/yourusername/lesson-api/internal/storage"
	"github.com/yourusername/lesson-api/internal/testutil"
	"github.com/yourusername/lesson-api/pkg/auth"
)

const (
	testAdminUser     = "admin"
	testAdminPassword = "s3cret"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// apiEnv поднимает полный роутер поверх SQLite в памяти
type apiEnv struct {
	db     *gorm.DB
	router *gin.Engine
	jwt    *auth.JWTService
}

func newAPIEnv(t *testing.T, maxUploadBytes int64) *apiEnv {
	t.Helper()
	db := testutil.NewTestDB(t)
	log := logger.Nop()

	assets, err := storage.NewLocalStore(t.TempDir(), "/uploads")
	require.NoError(t, err)

	courseRepo := postgres.NewCourseRepo(db)
	lessonRepo := postgres.NewLessonRepo(db)
	blockRepo := postgres.NewContentBlockRepo(db)
	quizRepo := postgres.NewQuizRepo(db)
	attemptRepo := postgres.NewAttemptRepo(db)

	cache := service.NewReadCache(nil, time.Minute, log)
	courseService := service.NewCourseService(courseRepo, lessonRepo, cache, log)
	quizService := service.NewQuizService(quizRepo, attemptRepo, log)
	pipeline := ingestion.NewPipeline(assets, 5*time.Second, log)
	contentService := service.NewContentService(db, lessonRepo, blockRepo, quizRepo, quizService, pipeline, cache, log)
	cascadeService := service.NewCascadeService(db, postgres.NewCascadeRepo(), courseRepo, lessonRepo, blockRepo, cache, log)

	jwtService, err := auth.NewJWTService("test-secret", time.Hour)
	require.NoError(t, err)
	hash, err := auth.HashPassword(testAdminPassword)
	require.NoError(t, err)
	adminAuth := middleware.NewAuthMiddleware(jwtService, testAdminUser, hash, log)

	routes := &Routes{
		Courses:     NewCourseHandler(courseService, cascadeService, log),
		Content:     NewContentHandler(contentService, cascadeService, maxUploadBytes, log),
		Quizzes:     NewQuizHandler(quizService, courseService, log),
		Auth:        NewAuthHandler(adminAuth, jwtService, log),
		AdminAuth:   adminAuth,
		RateLimiter: middleware.NewRateLimiter(nil, log),
		SubmitLimit: middleware.SubmitRateLimitConfig(30),
	}
	router := gin.New()
	routes.Register(router)

	return &apiEnv{db: db, router: router, jwt: jwtService}
}

// do выполняет запрос; admin добавляет Basic-аутентификацию
func (e *apiEnv) do(t *testing.T, method, path string, body io.Reader, contentType string, admin bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if admin {
		req.SetBasicAuth(testAdminUser, testAdminPassword)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// doJSON выполняет запрос с JSON-телом
func (e *apiEnv) doJSON(t *testing.T, method, path string, body interface{}, admin bool) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	return e.do(t, method, path, reader, "application/json", admin)
}

// decode разбирает JSON-ответ в dest
func decode(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest), "body: %s", w.Body.String())
}

// parseJSONResponse разбирает JSON-ответ в карту
func parseJSONResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	decode(t, w, &resp)
	return resp
}
