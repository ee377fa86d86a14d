package routes

import (
	"strings"

	"progresshub/backend/config"
	"progresshub/backend/controllers"
	"progresshub/backend/middleware"
	"progresshub/backend/services"
	"progresshub/backend/storage"
	"progresshub/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Deps is everything the HTTP layer needs from main.
type Deps struct {
	Cfg      *config.Config
	Log      *utils.Logger
	Services *services.Services
	Files    *storage.LocalStore
	Cleaner  *storage.Cleaner
}

// NewApp builds the Fiber app with the shared middleware stack.
func NewApp(cfg *config.Config, logger *utils.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "progress-hub",
		ErrorHandler: utils.ErrorHandler,
		BodyLimit:    cfg.MaxUploadMB * 1024 * 1024,
		Immutable:    true,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(logger))
	return app
}

// uploadHeaders keeps browsers from rendering uploaded files inline. Only raster images
// are displayed; everything else, SVG included, is sent as a download.
func uploadHeaders(c *fiber.Ctx) error {
	c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
	ct := string(c.Response().Header.ContentType())
	if !strings.HasPrefix(ct, "image/") || strings.HasPrefix(ct, "image/svg") {
		c.Attachment()
	}
	return nil
}

func SetupRoutes(app *fiber.App, d Deps) {
	svc := d.Services
	uploads := &controllers.Uploads{Files: d.Files, Cleaner: d.Cleaner}

	app.Static(storage.PublicPrefix, d.Files.Dir(), fiber.Static{ModifyResponse: uploadHeaders})

	// Auth routes
	authController := controllers.NewAuthController(svc.Users, d.Cfg, d.Log)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)
	app.Get("/api/auth/seed-demo", authController.SeedDemo)
	app.Post("/api/auth/seed-demo", authController.SeedDemo)

	// Public portfolio, authorised by a share token instead of a session
	portfolioController := controllers.NewPortfolioController(svc.Portfolio, d.Cfg, d.Log)
	app.Get("/api/public/portfolio", portfolioController.PublicPortfolio)

	api := app.Group("/api", middleware.AuthMiddleware(d.Cfg))

	// Student profile
	profileController := controllers.NewProfileController(svc.Profiles, uploads, d.Log)
	api.Get("/student", profileController.GetProfile)
	api.Post("/student", profileController.SaveProfile)

	// Courses
	coursesController := controllers.NewCoursesController(svc.Courses, d.Log)
	api.Get("/courses", coursesController.GetCourses)
	api.Post("/courses", coursesController.CreateCourse)
	api.Get("/courses/:id", coursesController.GetCourse)
	api.Put("/courses/:id", coursesController.UpdateCourse)
	api.Delete("/courses/:id", coursesController.DeleteCourse)

	// Projects
	projectsController := controllers.NewProjectsController(svc.Projects, uploads, d.Log)
	api.Get("/projects", projectsController.GetProjects)
	api.Post("/projects", projectsController.CreateProject)
	api.Post("/projects/reorder", projectsController.ReorderProjects)
	api.Put("/projects/:id", projectsController.UpdateProject)
	api.Delete("/projects/:id", projectsController.DeleteProject)

	// Progress and achievements
	progressController := controllers.NewProgressController(svc.Progress, svc.Awards, d.Log)
	api.Get("/progress", progressController.GetProgress)
	api.Get("/progress/overview", progressController.GetProgressOverview)
	api.Get("/achievements", progressController.GetAchievements)

	// Export and sharing
	api.Get("/export", portfolioController.Export)
	api.Get("/portfolio/share-token", portfolioController.ShareToken)

	// Homework
	submissionsController := controllers.NewSubmissionsController(svc.Submissions, uploads, d.Log)
	api.Get("/submissions", submissionsController.GetSubmissions)
	api.Post("/submissions", submissionsController.CreateSubmission)

	instructorController := controllers.NewInstructorController(svc.Submissions, d.Log)
	instructor := api.Group("/instructor")
	instructor.Get("/groups", instructorController.GetGroups)
	instructor.Post("/groups", instructorController.AddGroup)
	instructor.Delete("/groups/:id", instructorController.RemoveGroup)
	instructor.Get("/submissions", instructorController.GetSubmissions)
}
