package handlers

import (
	"task-manager-api/internal/repository"
	"task-manager-api/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Category handlers

// ListCategories mengambil semua kategori milik caller, urut nama.
func (h *Handler) ListCategories(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int)

	categories, err := h.Categories.ListByUser(userID)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching categories", zap.Error(err))
		return serverError(c)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"status":  200,
		"count":   len(categories),
		"data":    categories,
	})
}

// GetCategory mengambil satu kategori beserta jumlah task di dalamnya.
func (h *Handler) GetCategory(c *fiber.Ctx) error {
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
		return fail(c, fiber.StatusNotFound, "Category not found")
	}

	taskCount, err := h.Categories.CountTasks(categoryID, userID)
	if err != nil {
		logger.ErrorLogger.Error("Error counting tasks in category", zap.Error(err))
		return serverError(c)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"status":  200,
		"data": fiber.Map{
			"id":          category.ID,
			"name":        category.Name,
			"description": category.Description,
			"user_id":     category.UserID,
			"created_at":  category.CreatedAt,
			"updated_at":  category.UpdatedAt,
			"task_count":  taskCount,
		},
	})
}

// CreateCategory membuat kategori baru.
// Nama unik per user; duplikat ditolak 400.
func (h *Handler) CreateCategory(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int)

	type CreateCategoryRequest struct {
		Name        string  `json:"name" validate:"required"`
		Description *string `json:"description"`
	}

	var req CreateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in create category", zap.Error(err))
		return fail(c, fiber.StatusBadRequest, "Bad request")
	}

	if req.Name == "" {
		return fail(c, fiber.StatusBadRequest, "Category name is required")
	}

	category, err := h.Categories.Create(req.Name, req.Description, userID)
	if err != nil {
		if isUniqueViolation(err) {
			return fail(c, fiber.StatusBadRequest, "A category with this name already exists")
		}
		logger.ErrorLogger.Error("Error creating category", zap.Error(err))
		return serverError(c)
	}

	logger.AuditLogger.Info("Category created successfully",
		zap.Int("category_id", category.ID), zap.Int("user_id", userID))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Category created successfully",
		"success": true,
		"status":  201,
		"data":    category,
	})
}

// UpdateCategory menerapkan patch sebagian pada kategori.
func (h *Handler) UpdateCategory(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int)

	categoryID, err := c.ParamsInt("id")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid category ID")
	}

	// pointer (*) untuk membedakan field yang tidak dikirim
	type UpdateCategoryRequest struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}

	var req UpdateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in update category", zap.Error(err))
		return fail(c, fiber.StatusBadRequest, "Bad request")
	}

	if req.Name == nil && req.Description == nil {
		return fail(c, fiber.StatusBadRequest, "No fields provided for update")
	}

	existing, err := h.Categories.FindByIDAndUser(categoryID, userID)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching category", zap.Error(err))
		return serverError(c)
	}
	if existing == nil {
		return fail(c, fiber.StatusNotFound, "Category not found or you do not have permission to update it")
	}

	updated, err := h.Categories.Update(categoryID, userID, repository.CategoryPatch{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fail(c, fiber.StatusBadRequest, "A category with this name already exists")
		}
		logger.ErrorLogger.Error("Error updating category", zap.Error(err))
		return serverError(c)
	}
	if updated == nil {
		return fail(c, fiber.StatusNotFound, "Category not found or you do not have permission to update it")
	}

	logger.AuditLogger.Info("Category updated successfully", zap.Int("category_id", categoryID))
	return c.JSON(fiber.Map{
		"message": "Category updated successfully",
		"success": true,
		"status":  200,
		"data":    updated,
	})
}

// DeleteCategory menghapus kategori.
// Task di dalamnya tidak ikut terhapus: referensinya dilepas ke null
// lebih dulu, baru kategorinya dihapus.
func (h *Handler) DeleteCategory(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int)

	categoryID, err := c.ParamsInt("id")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid category ID")
	}

	existing, err := h.Categories.FindByIDAndUser(categoryID, userID)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching category", zap.Error(err))
		return serverError(c)
	}
	if existing == nil {
		return fail(c, fiber.StatusNotFound, "Category not found or you do not have permission to delete it")
	}

	releasedIDs, err := h.Tasks.ReleaseCategory(categoryID, userID)
	if err != nil {
		logger.ErrorLogger.Error("Error releasing tasks from category", zap.Error(err))
		return serverError(c)
	}

	// Task yang dilepas masih bisa nyangkut di cache dengan category_id lama
	keys := make([]string, 0, len(releasedIDs))
	for _, id := range releasedIDs {
		keys = append(keys, taskCacheKey(id))
	}
	h.cacheDel(c.Context(), keys...)

	found, err := h.Categories.Delete(categoryID, userID)
	if err != nil {
		logger.ErrorLogger.Error("Error deleting category", zap.Error(err))
		return serverError(c)
	}
	if !found {
		return fail(c, fiber.StatusNotFound, "Category not found or you do not have permission to delete it")
	}

	logger.AuditLogger.Info("Category deleted successfully",
		zap.Int("category_id", categoryID), zap.Int("released_tasks", len(releasedIDs)))
	return c.JSON(fiber.Map{
		"message": "Category deleted successfully",
		"success": true,
		"status":  200,
	})
}
