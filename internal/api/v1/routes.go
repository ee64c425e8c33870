package v1

import (
	"task-manager-api/internal/api/v1/handlers"
	"task-manager-api/internal/middleware"
	"task-manager-api/pkg/auth"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(app *fiber.App, h *handlers.Handler, authSvc *auth.Service) {
	gate := middleware.TokenGate(authSvc)

	// Auth
	authRoutes := app.Group("/auth")
	authRoutes.Post("/register", h.Register)
	authRoutes.Post("/login", h.Login)

	meRoutes := authRoutes.Group("/me", gate)
	meRoutes.Get("/", h.GetCurrentUser)
	meRoutes.Put("/", h.UpdateProfile)
	meRoutes.Delete("/", h.DeleteAccount)

	// Task
	// Route statis didaftarkan sebelum /:id karena Fiber mencocokkan
	// sesuai urutan registrasi.
	taskRoutes := app.Group("/tasks", gate)
	taskRoutes.Get("/statistics", h.TaskStatistics)
	taskRoutes.Get("/category/:id", h.ListTasksByCategory)
	taskRoutes.Get("/", h.ListTasks)
	taskRoutes.Post("/", h.CreateTask)
	taskRoutes.Get("/:id", h.GetTask)
	taskRoutes.Put("/:id", h.UpdateTask)
	taskRoutes.Delete("/:id", h.DeleteTask)

	// Category
	categoryRoutes := app.Group("/categories", gate)
	categoryRoutes.Get("/", h.ListCategories)
	categoryRoutes.Post("/", h.CreateCategory)
	categoryRoutes.Get("/:id", h.GetCategory)
	categoryRoutes.Put("/:id", h.UpdateCategory)
	categoryRoutes.Delete("/:id", h.DeleteCategory)
}
