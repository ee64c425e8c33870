package handlers

import (
	"task-manager-api/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Auth handlers

// Register membuat user baru dan langsung mengembalikan token.
func (h *Handler) Register(c *fiber.Ctx) error {
	// struct RegisterRequest menerima inputan dari user
	type RegisterRequest struct {
		Username string `json:"username" validate:"required,excludesall=@?"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=6"`
	}

	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in register", zap.Error(err))
		return fail(c, fiber.StatusBadRequest, "Bad request")
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		return fail(c, fiber.StatusBadRequest, "Username, email, and password are required")
	}

	// Validasi format dengan validator
	if err := h.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error during register", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation error",
			"errors":  err.Error(),
			"success": false,
			"status":  400,
		})
	}

	// Pre-check duplikat. Race dengan register lain tetap tertangkap
	// oleh unique constraint di bawah.
	existingEmail, err := h.Users.FindByEmail(req.Email)
	if err != nil {
		logger.ErrorLogger.Error("Error checking email", zap.Error(err))
		return serverError(c)
	}
	existingUsername, err := h.Users.FindByUsername(req.Username)
	if err != nil {
		logger.ErrorLogger.Error("Error checking username", zap.Error(err))
		return serverError(c)
	}
	if existingEmail != nil || existingUsername != nil {
		logger.SecurityLogger.Warn("Duplicate registration attempt", zap.String("username", req.Username))
		return fail(c, fiber.StatusBadRequest, "User already exists with that username or email")
	}

	hashedPassword, err := h.Auth.HashPassword(req.Password)
	if err != nil {
		logger.ErrorLogger.Error("Error hashing password", zap.Error(err))
		return serverError(c)
	}

	userID, err := h.Users.Create(req.Username, req.Email, hashedPassword)
	if err != nil {
		if isUniqueViolation(err) {
			logger.SecurityLogger.Warn("Duplicate username or email", zap.String("username", req.Username))
			return fail(c, fiber.StatusBadRequest, "User already exists with that username or email")
		}
		logger.ErrorLogger.Error("Error creating user", zap.Error(err))
		return serverError(c)
	}

	token, err := h.Auth.IssueToken(userID, req.Username, req.Email)
	if err != nil {
		logger.ErrorLogger.Error("Error generating token", zap.Error(err))
		return serverError(c)
	}

	logger.AuditLogger.Info("User registered successfully", zap.Int("user_id", userID))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"success": true,
		"status":  201,
		"data": fiber.Map{
			"id":       userID,
			"username": req.Username,
			"email":    req.Email,
		},
		"token": token,
	})
}

// Login memverifikasi email + password dan menerbitkan token baru.
// Email tak dikenal dan password salah menghasilkan pesan 401 yang sama.
func (h *Handler) Login(c *fiber.Ctx) error {
	type LoginRequest struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in login", zap.Error(err))
		return fail(c, fiber.StatusBadRequest, "Bad request")
	}

	if req.Email == "" || req.Password == "" {
		return fail(c, fiber.StatusBadRequest, "Email and password are required")
	}

	user, err := h.Users.FindByEmail(req.Email)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching user for login", zap.Error(err))
		return serverError(c)
	}
	if user == nil {
		logger.SecurityLogger.Warn("Login with unknown email", zap.String("email", req.Email))
		return fail(c, fiber.StatusUnauthorized, "Invalid credentials")
	}

	if !h.Auth.VerifyPassword(req.Password, user.Password) {
		logger.SecurityLogger.Warn("Invalid password", zap.Int("user_id", user.ID))
		return fail(c, fiber.StatusUnauthorized, "Invalid credentials")
	}

	token, err := h.Auth.IssueToken(user.ID, user.Username, user.Email)
	if err != nil {
		logger.ErrorLogger.Error("Error generating token", zap.Error(err))
		return serverError(c)
	}

	logger.AuditLogger.Info("Login successful", zap.Int("user_id", user.ID))
	return c.JSON(fiber.Map{
		"message": "Login successful",
		"success": true,
		"status":  200,
		"data": fiber.Map{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
		"token": token,
	})
}

// GetCurrentUser mengembalikan profil caller sendiri.
// ID selalu diambil dari token, bukan dari klien.
func (h *Handler) GetCurrentUser(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int)

	// Coba ambil dari cache Redis dulu
	var cached map[string]interface{}
	if h.cacheGet(c.Context(), userCacheKey(userID), &cached) {
		return c.JSON(fiber.Map{
			"message": "User found (from cache)",
			"success": true,
			"status":  200,
			"data":    cached,
		})
	}

	user, err := h.Users.FindByID(userID)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching user", zap.Error(err))
		return serverError(c)
	}
	if user == nil {
		return fail(c, fiber.StatusNotFound, "User not found")
	}

	h.cacheSet(c.Context(), userCacheKey(userID), user)

	return c.JSON(fiber.Map{
		"success": true,
		"status":  200,
		"data":    user,
	})
}

// UpdateProfile mengganti username dan email caller.
func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int)

	type UpdateProfileRequest struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in update profile", zap.Error(err))
		return fail(c, fiber.StatusBadRequest, "Bad request")
	}

	if req.Username == "" || req.Email == "" {
		return fail(c, fiber.StatusBadRequest, "Username and email are required")
	}

	found, err := h.Users.UpdateProfile(userID, req.Username, req.Email)
	if err != nil {
		if isUniqueViolation(err) {
			return fail(c, fiber.StatusBadRequest, "Username or email already in use")
		}
		logger.ErrorLogger.Error("Error updating user", zap.Error(err))
		return serverError(c)
	}
	if !found {
		return fail(c, fiber.StatusNotFound, "User not found")
	}

	h.cacheDel(c.Context(), userCacheKey(userID))

	logger.AuditLogger.Info("User profile updated successfully", zap.Int("user_id", userID))
	return c.JSON(fiber.Map{
		"message": "User profile updated successfully",
		"success": true,
		"status":  200,
	})
}

// DeleteAccount menghapus akun caller.
// Task dan kategori miliknya ikut terhapus lewat FK CASCADE.
func (h *Handler) DeleteAccount(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int)

	found, err := h.Users.Delete(userID)
	if err != nil {
		logger.ErrorLogger.Error("Error deleting user", zap.Error(err))
		return serverError(c)
	}
	if !found {
		return fail(c, fiber.StatusNotFound, "User not found")
	}

	h.cacheDel(c.Context(), userCacheKey(userID))

	logger.AuditLogger.Info("User account deleted successfully", zap.Int("user_id", userID))
	return c.JSON(fiber.Map{
		"message": "User account deleted successfully",
		"success": true,
		"status":  200,
	})
}
