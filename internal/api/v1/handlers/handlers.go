package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"task-manager-api/internal/repository"
	ws "task-manager-api/internal/websocket"
	"task-manager-api/pkg/auth"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/lib/pq"
)

const cacheTTL = time.Hour

// Handler memegang semua dependency yang dibutuhkan endpoint.
// Semuanya di-inject dari main; tidak ada state global.
type Handler struct {
	Users      *repository.UserRepo
	Categories *repository.CategoryRepo
	Tasks      *repository.TaskRepo
	Auth       *auth.Service
	Cache      *redis.Client
	Validate   *validator.Validate
	Hub        *ws.Hub
}

func New(db *sql.DB, cache *redis.Client, authSvc *auth.Service, hub *ws.Hub) *Handler {
	return &Handler{
		Users:      repository.NewUserRepo(db),
		Categories: repository.NewCategoryRepo(db),
		Tasks:      repository.NewTaskRepo(db),
		Auth:       authSvc,
		Cache:      cache,
		Validate:   validator.New(),
		Hub:        hub,
	}
}

// fail mengirim envelope gagal dengan status code yang diberikan.
func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"success": false,
		"status":  status,
	})
}

// serverError menyembunyikan detail internal dari klien;
// detailnya sudah masuk ke log error.
func serverError(c *fiber.Ctx) error {
	return fail(c, fiber.StatusInternalServerError, "Server error")
}

// isUniqueViolation mendeteksi pelanggaran unique constraint Postgres.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func userCacheKey(id int) string {
	return fmt.Sprintf("user:%d", id)
}

func taskCacheKey(id int) string {
	return fmt.Sprintf("task:%d", id)
}

// cacheGet mengisi dest dari Redis; false jika tidak ada atau rusak.
func (h *Handler) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if h.Cache == nil {
		return false
	}
	cached, err := h.Cache.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(cached), dest) == nil
}

// cacheSet menyimpan value sebagai JSON dengan TTL 1 jam.
// Kegagalan cache tidak menggagalkan request.
func (h *Handler) cacheSet(ctx context.Context, key string, value interface{}) {
	if h.Cache == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	h.Cache.SetEX(ctx, key, payload, cacheTTL)
}

func (h *Handler) cacheDel(ctx context.Context, keys ...string) {
	if h.Cache == nil || len(keys) == 0 {
		return
	}
	h.Cache.Del(ctx, keys...)
}
