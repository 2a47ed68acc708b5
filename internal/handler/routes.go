package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/yourusername/lesson-api/internal/middleware"
)

// Routes собирает обработчики и middleware, из которых строятся маршруты API
type Routes struct {
	Courses     *CourseHandler
	Content     *ContentHandler
	Quizzes     *QuizHandler
	Auth        *AuthHandler
	AdminAuth   *middleware.AuthMiddleware
	RateLimiter *middleware.RateLimiter
	// SubmitLimit: лимит отправок ответов с одного IP
	SubmitLimit middleware.RateLimitConfig
}

// Register настраивает маршруты API на router
func (r *Routes) Register(router *gin.Engine) {
	api := router.Group("/api")
	{
		// Публичное чтение
		courses := api.Group("/courses")
		{
			courses.GET("", r.Courses.ListCourses)
			courses.GET("/:slug", r.Courses.GetCourse)
			courses.GET("/:slug/lessons/:lessonSlug", r.Courses.GetLesson)
			courses.GET("/:slug/lessons/:lessonSlug/quizzes/:id",
				middleware.ExtractUUIDParam("id", quizIDKey), r.Quizzes.GetLessonQuiz)
		}

		quizzes := api.Group("/quizzes/:id")
		quizzes.Use(middleware.ExtractUUIDParam("id", quizIDKey))
		{
			quizzes.GET("", r.Quizzes.GetQuiz)
			quizzes.POST("/submit", r.RateLimiter.Limit(r.SubmitLimit), r.Quizzes.SubmitQuiz)
		}

		api.GET("/attempts/:id", middleware.ExtractUUIDParam("id", attemptIDKey), r.Quizzes.GetAttempt)

		// Администрирование
		adminGroup := api.Group("/admin")
		{
			adminGroup.POST("/login", r.RateLimiter.LimitByIP(middleware.LoginRateLimitConfig()), r.Auth.Login)

			admin := adminGroup.Group("")
			admin.Use(r.AdminAuth.RequireAdmin())
			{
				admin.GET("/tree", r.Courses.AdminTree)
				admin.POST("/courses", r.Courses.CreateCourse)

				course := admin.Group("/courses/:id")
				course.Use(middleware.ExtractUUIDParam("id", courseIDKey))
				{
					course.DELETE("", r.Courses.DeleteCourse)
					course.POST("/lessons", r.Courses.CreateLesson)
				}

				lesson := admin.Group("/lessons/:id")
				lesson.Use(middleware.ExtractUUIDParam("id", lessonIDKey))
				{
					lesson.DELETE("", r.Courses.DeleteLesson)
					lesson.POST("/blocks", r.Content.CreateBlock)
				}

				admin.DELETE("/blocks/:id", middleware.ExtractUUIDParam("id", blockIDKey), r.Content.DeleteBlock)
				admin.GET("/quizzes/:id/attempts/export", middleware.ExtractUUIDParam("id", quizIDKey), r.Quizzes.ExportAttempts)
			}
		}
	}
}
