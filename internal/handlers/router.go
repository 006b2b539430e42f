package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/learnhub/course-service/internal/models"
	"github.com/learnhub/course-service/internal/repositories"
	"github.com/learnhub/course-service/internal/services"
	"github.com/learnhub/course-service/internal/utils"
	"github.com/learnhub/course-service/internal/validator"
)

type HandlerManager struct {
	authHandler           *AuthHandler
	courseHandler         *CourseHandler
	lessonHandler         *LessonHandler
	enrollmentHandler     *EnrollmentHandler
	recommendationHandler *RecommendationHandler
	authMiddleware        *JWTAuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	jwtSecret string,
	secureCookies bool,
	userRepo repositories.UserRepository,
) *HandlerManager {
	authMiddleware := NewJWTAuthMiddleware(jwtSecret, secureCookies, userRepo)

	return &HandlerManager{
		authHandler:           NewAuthHandler(serviceManager.Auth(), authMiddleware, logger),
		courseHandler:         NewCourseHandler(serviceManager.Course(), serviceManager.Report(), validator, logger),
		lessonHandler:         NewLessonHandler(serviceManager.Lesson(), validator, logger),
		enrollmentHandler:     NewEnrollmentHandler(serviceManager.Enrollment(), validator, logger),
		recommendationHandler: NewRecommendationHandler(serviceManager.Recommendation(), logger),
		authMiddleware:        authMiddleware,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		// Auth routes
		auth := v1.Group("/auth")
		{
			auth.POST("/register", hm.authHandler.Register)
			auth.POST("/login", hm.authHandler.Login)
			auth.POST("/logout", hm.authHandler.Logout)
			auth.GET("/me", hm.authMiddleware.AuthMiddleware(), hm.authHandler.Me)
		}

		// Course routes. The catalog is public; authoring requires an
		// instructor or admin session (ownership is checked in the service).
		courses := v1.Group("/courses")
		{
			courses.GET("", hm.courseHandler.ListCourses)
			courses.GET("/:id", hm.courseHandler.GetCourse)

			courses.POST("", hm.authMiddleware.AuthMiddleware(), hm.authMiddleware.RequireRoleMiddleware(models.RoleInstructor, models.RoleAdmin), hm.courseHandler.CreateCourse)
			courses.PUT("/:id", hm.authMiddleware.AuthMiddleware(), hm.authMiddleware.RequireRoleMiddleware(models.RoleInstructor, models.RoleAdmin), hm.courseHandler.UpdateCourse)
			courses.DELETE("/:id", hm.authMiddleware.AuthMiddleware(), hm.authMiddleware.RequireRoleMiddleware(models.RoleInstructor, models.RoleAdmin), hm.courseHandler.DeleteCourse)

			courses.GET("/:id/enrollments/export", hm.authMiddleware.AuthMiddleware(), hm.authMiddleware.RequireRoleMiddleware(models.RoleInstructor, models.RoleAdmin), hm.courseHandler.ExportEnrollments)
		}

		// Lesson routes. Reading is public like the catalog.
		lessons := v1.Group("/lessons")
		{
			lessons.GET("", hm.lessonHandler.ListLessons)
			lessons.GET("/:id", hm.lessonHandler.GetLesson)

			lessons.POST("", hm.authMiddleware.AuthMiddleware(), hm.authMiddleware.RequireRoleMiddleware(models.RoleInstructor, models.RoleAdmin), hm.lessonHandler.CreateLesson)
			lessons.PUT("/:id", hm.authMiddleware.AuthMiddleware(), hm.authMiddleware.RequireRoleMiddleware(models.RoleInstructor, models.RoleAdmin), hm.lessonHandler.UpdateLesson)
			lessons.DELETE("/:id", hm.authMiddleware.AuthMiddleware(), hm.authMiddleware.RequireRoleMiddleware(models.RoleInstructor, models.RoleAdmin), hm.lessonHandler.DeleteLesson)
		}

		// Enrollment routes - authenticated users act on their own ledger
		enrollments := v1.Group("/enrollments")
		enrollments.Use(hm.authMiddleware.AuthMiddleware())
		{
			enrollments.POST("", hm.enrollmentHandler.Enroll)
			enrollments.GET("", hm.enrollmentHandler.ListEnrollments)
			enrollments.DELETE("/:courseId", hm.enrollmentHandler.Unenroll)
			enrollments.PUT("/:courseId/progress", hm.enrollmentHandler.UpdateProgress)
		}

		// Recommendation routes
		v1.GET("/ai/recommendations", hm.authMiddleware.AuthMiddleware(), hm.recommendationHandler.GetRecommendations)
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "course-service",
		})
	})
}
