package handlers

import (
	"strconv"
	"time"

	"task-manager-api/internal/models"
	"task-manager-api/internal/repository"
	"task-manager-api/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Task handlers

// publishTaskEvent mengirim event ke hub websocket jika aktif.
func (h *Handler) publishTaskEvent(action string, task models.Task) {
	if h.Hub != nil {
		h.Hub.Publish(action, task)
	}
}

// ListTasks mengambil semua task milik caller, terbaru lebih dulu.
// Query param status, priority, dan category_id menyaring hasil.
func (h *Handler) ListTasks(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int)

	filter := repository.TaskFilter{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
	}
	if raw := c.Query("category_id"); raw != "" {
		categoryID, err := strconv.Atoi(raw)
		if err != nil {
			return fail(c, fiber.StatusBadRequest, "Invalid category ID")
		}
		filter.CategoryID = categoryID
	}

	tasks, err := h.Tasks.ListByUser(userID, filter)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching tasks", zap.Error(err))
		return serverError(c)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"status":  200,
		"count":   len(tasks),
		"data":    tasks,
	})
}

// GetTask mengambil satu task milik caller.
// Task milik user lain dijawab 404, bukan 403, agar keberadaannya
// tidak bocor.
func (h *Handler) GetTask(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int)

	taskID, err := c.ParamsInt("id")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid task ID")
	}

	// Coba ambil dari cache Redis dulu
	var cached models.Task
	if h.cacheGet(c.Context(), taskCacheKey(taskID), &cached) {
		if cached.UserID != userID {
			return fail(c, fiber.StatusNotFound, "Task not found")
		}
		return c.JSON(fiber.Map{
			"message": "Task found (from cache)",
			"success": true,
			"status":  200,
			"data":    cached,
		})
	}

	task, err := h.Tasks.FindByIDAndUser(taskID, userID)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching task", zap.Error(err))
		return serverError(c)
	}
	if task == nil {
		return fail(c, fiber.StatusNotFound, "Task not found")
	}

	h.cacheSet(c.Context(), taskCacheKey(taskID), task)

	return c.JSON(fiber.Map{
		"success": true,
		"status":  200,
		"data":    task,
	})
}

// CreateTask membuat task baru milik caller.
// category_id yang dikirim harus kategori milik caller sendiri.
func (h *Handler) CreateTask(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int)

	type CreateTaskRequest struct {
		Title       string     `json:"title" validate:"required"`
		Description *string    `json:"description"`
		Status      string     `json:"status" validate:"omitempty,oneof=pending in_progress completed cancelled"`
		Priority    string     `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
		DueDate     *time.Time `json:"due_date"`
		CategoryID  *int       `json:"category_id"`
	}

	var req CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in create task", zap.Error(err))
		return fail(c, fiber.StatusBadRequest, "Bad request")
	}

	if req.Title == "" {
		return fail(c, fiber.StatusBadRequest, "Title is required")
	}

	if err := h.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation error",
			"errors":  err.Error(),
			"success": false,
			"status":  400,
		})
	}

	// Default status dan priority
	if req.Status == "" {
		req.Status = models.StatusPending
	}
	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	}

	// Validasi kepemilikan kategori
	categoryID := req.CategoryID
	if categoryID != nil && *categoryID == 0 {
		categoryID = nil
	}
	if categoryID != nil {
		category, err := h.Categories.FindByIDAndUser(*categoryID, userID)
		if err != nil {
			logger.ErrorLogger.Error("Error checking category", zap.Error(err))
			return serverError(c)
		}
		if category == nil {
			return fail(c, fiber.StatusBadRequest, "Category not found or does not belong to you")
		}
	}

	task, err := h.Tasks.Create(userID, repository.TaskCreate{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		CategoryID:  categoryID,
	})
	if err != nil {
		logger.ErrorLogger.Error("Error creating task", zap.Error(err))
		return serverError(c)
	}

	h.cacheSet(c.Context(), taskCacheKey(task.ID), task)
	h.publishTaskEvent("task_created", *task)

	logger.AuditLogger.Info("Task created successfully",
		zap.Int("task_id", task.ID), zap.Int("user_id", userID))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Task created successfully",
		"success": true,
		"status":  201,
		"data":    task,
	})
}

// UpdateTask menerapkan patch sebagian pada task.
// Field yang tidak dikirim tidak berubah. category_id 0 melepas
// referensi kategori.
func (h *Handler) UpdateTask(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int)

	taskID, err := c.ParamsInt("id")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid task ID")
	}

	existing, err := h.Tasks.FindByIDAndUser(taskID, userID)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching task", zap.Error(err))
		return serverError(c)
	}
	if existing == nil {
		return fail(c, fiber.StatusNotFound, "Task not found or you do not have permission to update it")
	}

	// pointer (*) untuk membedakan field yang tidak dikirim
	type UpdateTaskRequest struct {
		Title       *string    `json:"title"`
		Description *string    `json:"description"`
		Status      *string    `json:"status"`
		Priority    *string    `json:"priority"`
		DueDate     *time.Time `json:"due_date"`
		CategoryID  *int       `json:"category_id"`
	}

	var req UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in update task", zap.Error(err))
		return fail(c, fiber.StatusBadRequest, "Bad request")
	}

	if req.Status != nil && !models.ValidStatus(*req.Status) {
		return fail(c, fiber.StatusBadRequest, "Invalid status")
	}
	if req.Priority != nil && !models.ValidPriority(*req.Priority) {
		return fail(c, fiber.StatusBadRequest, "Invalid priority")
	}

	patch := repository.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	}

	if req.CategoryID != nil {
		patch.SetCategory = true
		if *req.CategoryID != 0 {
			category, err := h.Categories.FindByIDAndUser(*req.CategoryID, userID)
			if err != nil {
				logger.ErrorLogger.Error("Error checking category", zap.Error(err))
				return serverError(c)
			}
			if category == nil {
				return fail(c, fiber.StatusBadRequest, "Category not found or does not belong to you")
			}
			patch.CategoryID = req.CategoryID
		}
	}

	updated, err := h.Tasks.Update(taskID, userID, patch)
	if err != nil {
		logger.ErrorLogger.Error("Error updating task", zap.Error(err))
		return serverError(c)
	}
	if updated == nil {
		return fail(c, fiber.StatusNotFound, "Task not found or you do not have permission to update it")
	}

	h.cacheSet(c.Context(), taskCacheKey(taskID), updated)
	h.publishTaskEvent("task_updated", *updated)

	logger.AuditLogger.Info("Task updated successfully", zap.Int("task_id", taskID))
	return c.JSON(fiber.Map{
		"message": "Task updated successfully",
		"success": true,
		"status":  200,
		"data":    updated,
	})
}

// DeleteTask menghapus task milik caller.
func (h *Handler) DeleteTask(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int)

	taskID, err := c.ParamsInt("id")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid task ID")
	}

	existing, err := h.Tasks.FindByIDAndUser(taskID, userID)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching task", zap.Error(err))
		return serverError(c)
	}
	if existing == nil {
		return fail(c, fiber.StatusNotFound, "Task not found or you do not have permission to delete it")
	}

	found, err := h.Tasks.Delete(taskID, userID)
	if err != nil {
		logger.ErrorLogger.Error("Error deleting task", zap.Error(err))
		return serverError(c)
	}
	if !found {
		return fail(c, fiber.StatusNotFound, "Task not found or you do not have permission to delete it")
	}

	h.cacheDel(c.Context(), taskCacheKey(taskID))
	h.publishTaskEvent("task_deleted", *existing)

	logger.AuditLogger.Info("Task deleted successfully", zap.Int("task_id", taskID))
	return c.JSON(fiber.Map{
		"message": "Task deleted successfully",
		"success": true,
		"status":  200,
	})
}

// ListTasksByCategory mengambil task caller dalam satu kategori.
// Kategori milik user lain dijawab 404.
func (h *Handler) ListTasksByCategory(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int)

	categoryID, err := c.ParamsInt("id")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid category ID")
	}

	category, err := h.Categories.FindByIDAndUser(categoryID, userID)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching category", zap.Error(err))
		return serverError(c)
	}
	if category == nil {
		return fail(c, fiber.StatusNotFound, "Category not found or does not belong to you")
	}

	tasks, err := h.Tasks.ListByCategory(categoryID, userID)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching tasks by category", zap.Error(err))
		return serverError(c)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"status":  200,
		"count":   len(tasks),
		"data":    tasks,
	})
}

// TaskStatistics mengembalikan agregat task milik caller.
func (h *Handler) TaskStatistics(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int)

	stats, err := h.Tasks.Statistics(userID)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching task statistics", zap.Error(err))
		return serverError(c)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"status":  200,
		"data":    stats,
	})
}
