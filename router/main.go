package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/career-guidance-api/config"
	"github.com/sahilchouksey/career-guidance-api/database"
	"github.com/sahilchouksey/career-guidance-api/handlers"
	admin_handlers "github.com/sahilchouksey/career-guidance-api/handlers/admin"
	application_handlers "github.com/sahilchouksey/career-guidance-api/handlers/application"
	auth_handlers "github.com/sahilchouksey/career-guidance-api/handlers/auth"
	institute_handlers "github.com/sahilchouksey/career-guidance-api/handlers/institute"
	order_handlers "github.com/sahilchouksey/career-guidance-api/handlers/order"
	student_handlers "github.com/sahilchouksey/career-guidance-api/handlers/student"
	"github.com/sahilchouksey/career-guidance-api/model"
	"github.com/sahilchouksey/career-guidance-api/services"
	"github.com/sahilchouksey/career-guidance-api/services/storage"
	"github.com/sahilchouksey/career-guidance-api/utils"
	"github.com/sahilchouksey/career-guidance-api/utils/auth"
	"github.com/sahilchouksey/career-guidance-api/utils/cache"
	"github.com/sahilchouksey/career-guidance-api/utils/middleware"
)

// Dependencies is everything the routes need, built once at startup.
// Cache and Objects are optional.
type Dependencies struct {
	Config  *config.EnvironmentVariable
	Store   database.Storage
	Cache   *cache.RedisCache
	Objects storage.ObjectStore
}

func SetupRoutes(app *fiber.App, deps Dependencies) {
	store := deps.Store

	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret:        deps.Config.JWT_SECRET,
		Expiry:        deps.Config.JWT_EXPIRY,
		RefreshExpiry: deps.Config.JWT_REFRESH_EXPIRY,
		Issuer:        deps.Config.JWT_ISSUER,
	})

	// nil when Redis is not configured
	bruteForceProtection := middleware.NewBruteForceProtection(deps.Cache)

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, store)
	requireDB := middleware.RequireDatabase(store)

	authHandler := auth_handlers.NewAuthHandler(store, jwtManager, bruteForceProtection)
	instituteHandler := institute_handlers.NewInstituteHandler(store, deps.Cache)
	studentHandler := student_handlers.NewStudentHandler(store)
	applicationHandler := application_handlers.NewApplicationHandler(store, deps.Objects)
	orderHandler := order_handlers.NewOrderHandler(store)
	exporter := services.NewExportService(store, deps.Objects)

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    deps.Config.AllowedOrigins(),
		RateLimitRequests: deps.Config.RATE_LIMIT_REQUESTS,
		RateLimitWindow:   1 * time.Minute,
	})

	// Diagnostics (public, work while degraded)
	app.Get("/", handlers.Root)
	app.Get("/ping", handlers.Ping)

	api := app.Group("/api")
	api.Get("/health", utils.MakeHTTPHandleFunc(handlers.HealthCheck, store))
	api.Get("/test", handlers.TestRoutes(app))

	// Groups carry no handlers; fiber would run them for unknown paths under
	// the prefix too.
	student := authMiddleware.RequireRole(model.RoleStudent)
	owner := authMiddleware.RequireRole(model.RoleInstitute)
	admin := authMiddleware.RequireAdmin()
	audit := func(action, resource string) fiber.Handler {
		return middleware.AdminAuditLog(store, action, resource)
	}
	withStore := func(h func(*fiber.Ctx, database.Storage) error) fiber.Handler {
		return utils.MakeHTTPHandleFunc(h, store)
	}

	// Auth
	authGroup := api.Group("/auth")
	authGroup.Post("/register", requireDB, authHandler.Register)
	authGroup.Post("/login", requireDB, bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	authGroup.Post("/refresh", requireDB, authHandler.RefreshToken)
	authGroup.Get("/me", requireDB, authMiddleware.Required(), authHandler.Me)
	authGroup.Post("/logout", requireDB, authMiddleware.Required(), authHandler.Logout)

	// Institutes: owner routes are registered before "/:id" so "me" is not taken for an id
	institutes := api.Group("/institutes")
	institutes.Get("/me", requireDB, owner, instituteHandler.GetMyInstitute)
	institutes.Put("/me", requireDB, owner, instituteHandler.UpdateMyInstitute)
	institutes.Post("/faculties", requireDB, owner, instituteHandler.CreateFaculty)
	institutes.Put("/faculties/:facultyId", requireDB, owner, instituteHandler.UpdateFaculty)
	institutes.Delete("/faculties/:facultyId", requireDB, owner, instituteHandler.DeleteFaculty)
	institutes.Post("/faculties/:facultyId/courses", requireDB, owner, instituteHandler.CreateCourse)
	institutes.Get("/courses/:courseId", requireDB, instituteHandler.GetCourse) // Public
	institutes.Put("/courses/:courseId", requireDB, owner, instituteHandler.UpdateCourse)
	institutes.Delete("/courses/:courseId", requireDB, owner, instituteHandler.DeleteCourse)
	institutes.Post("/admission-periods", requireDB, owner, instituteHandler.CreateAdmissionPeriod)
	institutes.Put("/admission-periods/:periodId", requireDB, owner, instituteHandler.UpdateAdmissionPeriod)
	institutes.Delete("/admission-periods/:periodId", requireDB, owner, instituteHandler.DeleteAdmissionPeriod)
	institutes.Get("/applications", requireDB, owner, instituteHandler.ListApplications)
	institutes.Put("/applications/:applicationId/status", requireDB, owner, instituteHandler.UpdateApplicationStatus)

	// Public catalogue
	institutes.Get("/", requireDB, instituteHandler.ListInstitutes)
	institutes.Get("/:id", requireDB, instituteHandler.GetInstitute)
	institutes.Get("/:id/faculties", requireDB, instituteHandler.ListFaculties)
	institutes.Get("/:id/courses", requireDB, instituteHandler.ListCourses)
	institutes.Get("/:id/admission-periods", requireDB, instituteHandler.ListAdmissionPeriods)

	// Students
	students := api.Group("/students")
	students.Get("/profile", requireDB, student, studentHandler.GetProfile)
	students.Put("/profile", requireDB, student, studentHandler.UpdateProfile)

	// Applications
	applications := api.Group("/applications")
	applications.Post("/apply", requireDB, student, applicationHandler.Apply)
	applications.Get("/my", requireDB, student, applicationHandler.MyApplications)
	applications.Get("/:id", requireDB, student, applicationHandler.GetApplication)
	applications.Put("/:id/withdraw", requireDB, student, applicationHandler.Withdraw)
	applications.Delete("/:id", requireDB, student, applicationHandler.DeleteApplication)
	applications.Post("/:id/documents", requireDB, student, applicationHandler.UploadDocument)

	// Admin
	adminGroup := api.Group("/admin")
	adminGroup.Get("/stats/public", requireDB, withStore(admin_handlers.GetPublicStats))
	adminGroup.Get("/stats", requireDB, admin, withStore(admin_handlers.GetStats))
	adminGroup.Get("/users", requireDB, admin, withStore(admin_handlers.ListUsers))
	adminGroup.Put("/users/:userId/verification", requireDB, admin, audit("user_verification", "users"), withStore(admin_handlers.UpdateUserVerification))
	adminGroup.Delete("/users/:userId", requireDB, admin, audit("user_delete", "users"), withStore(admin_handlers.DeleteUser))
	adminGroup.Get("/applications", requireDB, admin, withStore(admin_handlers.ListApplications))
	adminGroup.Post("/institutes", requireDB, admin, audit("institute_create", "institutes"), func(c *fiber.Ctx) error { return admin_handlers.CreateInstitute(c, store, deps.Cache) })
	adminGroup.Delete("/institutes/:id", requireDB, admin, audit("institute_delete", "institutes"), func(c *fiber.Ctx) error { return admin_handlers.DeleteInstitute(c, store, deps.Cache) })
	adminGroup.Get("/database", requireDB, admin, withStore(admin_handlers.GetDatabaseSnapshot))
	adminGroup.Post("/database/export", requireDB, admin, audit("database_export", "database"), func(c *fiber.Ctx) error { return admin_handlers.ExportDatabase(c, exporter) })
	adminGroup.Get("/audit-logs", requireDB, admin, withStore(admin_handlers.ListAuditLogs))

	// Bakery orders
	orders := api.Group("/orders")
	orders.Get("/", requireDB, orderHandler.ListOrders)
	orders.Post("/", requireDB, orderHandler.CreateOrder)
	orders.Put("/:id", requireDB, orderHandler.UpdateOrder)
	orders.Delete("/:id", requireDB, orderHandler.DeleteOrder)

	app.Use(handlers.NotFound(app))
}
