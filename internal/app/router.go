package app

import (
	"academy_backend/docs"
	"academy_backend/internal/config"
	"academy_backend/internal/middleware"
	"academy_backend/internal/model"
	"academy_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg.JWT.Secret, a.services.tokens))
	{
		a.registerAccountRoutes(authGroup, c)
		a.registerCourseRoutes(authGroup, c)
		a.registerQuestionRoutes(authGroup, c)
		a.registerCertificateRoutes(authGroup, c)

		// 题库仅教师和管理员
		pools := authGroup.Group("/question-pools")
		pools.Use(middleware.RoleMiddleware(model.Trainer))
		{
			pools.GET("", c.questionPool.SearchPools)
			pools.POST("", c.questionPool.CreatePool)
			pools.GET("/:identity", c.questionPool.GetPool)
			pools.PUT("/:identity", c.questionPool.UpdatePool)
			pools.DELETE("/:identity", c.questionPool.DeletePool)
			pools.POST("/:identity/teachers", c.questionPool.AddTeacher)
			pools.PUT("/:identity/teachers/:teacherId", c.questionPool.ChangeTeacherRole)
			pools.DELETE("/:identity/teachers/:teacherId", c.questionPool.RemoveTeacher)
		}

		authGroup.POST("/media", c.media.Upload)
		authGroup.DELETE("/media", c.media.Delete)
	}

	// 3. 管理员相关接口
	admin := authGroup.Group("/admin")
	admin.Use(middleware.RoleMiddleware(model.Admin))
	{
		admin.GET("/certificates", c.certificate.ReviewList)
		admin.PUT("/certificates/:id/verify", c.certificate.Verify)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/login", c.auth.Login)
	}
}

func (a *App) registerAccountRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.POST("/auth/logout", c.auth.Logout)
	rg.GET("/auth/me", c.auth.Me)
	rg.PUT("/auth/password", c.auth.ChangePassword)

	rg.GET("/users", c.user.SearchUsers)
	rg.POST("/users", c.user.CreateUser)
	rg.GET("/users/:id", c.user.GetUser)
	rg.PUT("/users/:id", c.user.UpdateUser)
	rg.DELETE("/users/:id", c.user.DeleteUser)
	rg.PUT("/users/:id/status", c.user.ChangeStatus)
	rg.GET("/users/:id/certificates", c.certificate.UserCertificates)
}

func (a *App) registerCourseRoutes(rg *gin.RouterGroup, c *controllers) {
	courses := rg.Group("/courses")
	{
		courses.GET("", c.course.SearchCourses)
		courses.POST("", c.course.CreateCourse)
		courses.GET("/:identity", c.course.GetCourse)
		courses.PUT("/:identity", c.course.UpdateCourse)
		courses.DELETE("/:identity", c.course.DeleteCourse)
		courses.PUT("/:identity/status", c.course.ChangeStatus)
		courses.POST("/:identity/teachers", c.course.AddTeacher)
		courses.DELETE("/:identity/teachers/:teacherId", c.course.RemoveTeacher)
		courses.POST("/:identity/sections", c.course.AddSection)

		// 课时
		courses.GET("/:identity/lessons", c.lesson.SearchLessons)
		courses.POST("/:identity/lessons", c.lesson.CreateLesson)
		courses.GET("/:identity/lessons/:lessonIdentity", c.lesson.GetLesson)
		courses.PUT("/:identity/lessons/:lessonIdentity", c.lesson.UpdateLesson)
		courses.DELETE("/:identity/lessons/:lessonIdentity", c.lesson.DeleteLesson)
	}

	rg.PUT("/lessons/:lessonIdentity/status", c.lesson.ChangeStatus)
	rg.GET("/lessons/:lessonIdentity/watch-history", c.lesson.WatchHistory)
}

// registerQuestionRoutes 作业与反馈
func (a *App) registerQuestionRoutes(rg *gin.RouterGroup, c *controllers) {
	lessons := rg.Group("/lessons/:lessonIdentity")
	{
		lessons.GET("/assignments", c.assignment.SearchAssignments)
		lessons.POST("/assignments", c.assignment.CreateAssignment)
		lessons.POST("/assignments/submissions", c.assignment.Submit)
		lessons.GET("/assignments/students", c.assignment.SubmittedStudents)

		lessons.GET("/feedbacks", c.feedback.SearchFeedbacks)
		lessons.POST("/feedbacks", c.feedback.CreateFeedback)
		lessons.POST("/feedbacks/submissions", c.feedback.Submit)
		lessons.GET("/feedbacks/students", c.feedback.SubmittedStudents)
		lessons.GET("/feedbacks/chart", c.feedback.Chart)
	}

	rg.GET("/assignments/:id", c.assignment.GetAssignment)
	rg.PUT("/assignments/:id", c.assignment.UpdateAssignment)
	rg.DELETE("/assignments/:id", c.assignment.DeleteAssignment)

	rg.GET("/feedbacks/:id", c.feedback.GetFeedback)
	rg.PUT("/feedbacks/:id", c.feedback.UpdateFeedback)
	rg.DELETE("/feedbacks/:id", c.feedback.DeleteFeedback)
}

func (a *App) registerCertificateRoutes(rg *gin.RouterGroup, c *controllers) {
	certs := rg.Group("/certificates")
	{
		certs.GET("", c.certificate.MyCertificates)
		certs.POST("", c.certificate.SaveCertificate)
		certs.GET("/:id", c.certificate.GetCertificate)
		certs.PUT("/:id", c.certificate.UpdateCertificate)
		certs.DELETE("/:id", c.certificate.DeleteCertificate)
	}
}
