package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-academic-api/internal/middleware"
	"github.com/noah-isme/uni-academic-api/internal/models"
)

// Handlers groups the route handlers mounted under the API prefix.
type Handlers struct {
	Auth            *AuthHandler
	Users           *UserHandler
	Students        *StudentHandler
	Courses         *CourseHandler
	Enrollments     *EnrollmentHandler
	AcademicRecords *AcademicRecordHandler
	Fees            *FeeHandler
	Transcripts     *TranscriptHandler
	Finance         *FinanceHandler
}

// RouteDeps carries the middleware collaborators used by RegisterRoutes.
type RouteDeps struct {
	Tokens   middleware.TokenValidator
	Students middleware.StudentResolver
	Audit    middleware.AuditWriter
	Logger   *zap.Logger
}

// RegisterRoutes mounts every API route on api.
func RegisterRoutes(api *gin.RouterGroup, h Handlers, deps RouteDeps) {
	const (
		superAdmin = string(models.RoleSuperAdmin)
		admin      = string(models.RoleAdmin)
		finance    = string(models.RoleFinance)
		lecturer   = string(models.RoleLecturer)
		student    = string(models.RoleStudent)
	)
	adminOnly := middleware.RBAC(admin, superAdmin)

	auth := api.Group("/auth")
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)

	api.GET("/export/:token",
		middleware.Audit(deps.Audit, deps.Logger, models.AuditActionExportDownload, "exports", ""),
		h.Transcripts.Download)

	secured := api.Group("")
	secured.Use(middleware.JWT(deps.Tokens))

	secured.POST("/auth/logout", h.Auth.Logout)
	secured.POST("/auth/change-password", h.Auth.ChangePassword)
	secured.GET("/auth/me", h.Auth.Me)

	secured.GET("/users", adminOnly, h.Users.List)
	secured.POST("/users", adminOnly, h.Users.Create)

	secured.GET("/students", adminOnly, h.Students.List)
	secured.POST("/students", adminOnly, h.Students.Create)
	secured.GET("/students/:id", adminOnly, h.Students.Get)
	secured.PUT("/students/:id", adminOnly, h.Students.Update)
	secured.GET("/students/:id/transcript",
		middleware.RBACWithSelf(deps.Students, admin, superAdmin, lecturer, middleware.Self),
		h.Transcripts.Get)
	secured.POST("/students/:id/transcript/export",
		middleware.RBACWithSelf(deps.Students, admin, superAdmin, middleware.Self),
		middleware.Audit(deps.Audit, deps.Logger, models.AuditActionTranscriptExport, "students", "id"),
		h.Transcripts.Export)
	secured.GET("/students/:id/finance",
		middleware.RBACWithSelf(deps.Students, admin, superAdmin, finance, middleware.Self),
		h.Finance.Ledger)

	me := secured.Group("/me", middleware.RBAC(student))
	me.GET("/transcript", h.Transcripts.Mine)
	me.GET("/finance", h.Finance.Mine)

	secured.GET("/courses", h.Courses.List)
	secured.GET("/courses/:id", h.Courses.Get)
	secured.POST("/courses", adminOnly, h.Courses.Create)

	secured.GET("/enrollments", adminOnly, h.Enrollments.List)
	secured.POST("/enrollments", adminOnly,
		middleware.Audit(deps.Audit, deps.Logger, models.AuditActionEnroll, "enrollments", ""),
		h.Enrollments.Enroll)
	secured.DELETE("/enrollments/:id", adminOnly,
		middleware.Audit(deps.Audit, deps.Logger, models.AuditActionEnrollmentDrop, "enrollments", "id"),
		h.Enrollments.Drop)

	gradeWriters := middleware.RBAC(lecturer, admin, superAdmin)
	secured.GET("/academic-records", gradeWriters, h.AcademicRecords.List)
	secured.POST("/academic-records", gradeWriters, h.AcademicRecords.Post)

	secured.POST("/fees", middleware.RBAC(admin, superAdmin, finance), h.Fees.Create)
	secured.POST("/finance/payments", middleware.RBAC(admin, superAdmin, finance, student), h.Finance.SubmitPayment)
}
