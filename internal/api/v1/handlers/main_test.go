package handlers_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	v1 "task-manager-api/internal/api/v1"
	"task-manager-api/internal/api/v1/handlers"
	"task-manager-api/internal/middleware"
	"task-manager-api/internal/repository"
	"task-manager-api/pkg/auth"
	"task-manager-api/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	_ "github.com/lib/pq"
	"github.com/ory/dockertest/v3"
)

var (
	testDB    *sql.DB
	testCache *redis.Client
	testAuth  *auth.Service
)

// TestMain menjalankan Postgres dan Redis sekali pakai lewat dockertest,
// lalu menjalankan seluruh suite terhadap keduanya.
func TestMain(m *testing.M) {
	logger.InitLoggers()
	defer logger.SyncLoggers()

	testAuth = auth.NewService("test-secret", 24*time.Hour)

	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("Could not construct docker pool: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		log.Fatalf("Could not connect to Docker: %v", err)
	}
	pool.MaxWait = 2 * time.Minute

	pgResource, err := pool.Run("postgres", "16-alpine", []string{
		"POSTGRES_USER=taskapi",
		"POSTGRES_PASSWORD=taskapi",
		"POSTGRES_DB=taskapi_test",
	})
	if err != nil {
		log.Fatalf("Could not start postgres: %v", err)
	}

	if err := pool.Retry(func() error {
		var err error
		testDB, err = sql.Open("postgres", fmt.Sprintf(
			"host=localhost port=%s user=taskapi password=taskapi dbname=taskapi_test sslmode=disable",
			pgResource.GetPort("5432/tcp")))
		if err != nil {
			return err
		}
		return testDB.Ping()
	}); err != nil {
		log.Fatalf("Could not connect to postgres: %v", err)
	}

	redisResource, err := pool.Run("redis", "7-alpine", nil)
	if err != nil {
		log.Fatalf("Could not start redis: %v", err)
	}

	if err := pool.Retry(func() error {
		testCache = redis.NewClient(&redis.Options{
			Addr: "localhost:" + redisResource.GetPort("6379/tcp"),
		})
		return testCache.Ping(context.Background()).Err()
	}); err != nil {
		log.Fatalf("Could not connect to redis: %v", err)
	}

	if err := repository.CreateTablesIfNotExist(testDB); err != nil {
		log.Fatalf("Error creating tables: %v", err)
	}

	code := m.Run()

	_ = repository.DropAllTables(testDB)
	testDB.Close()
	testCache.Close()
	_ = pool.Purge(pgResource)
	_ = pool.Purge(redisResource)

	os.Exit(code)
}

// createTestApp menginisialisasi aplikasi Fiber dengan route yang akan di-test
func createTestApp() *fiber.App {
	app := fiber.New()
	app.Use(middleware.ErrorHandler())
	h := handlers.New(testDB, testCache, testAuth, nil)
	v1.RegisterRoutes(app, h, testAuth)
	return app
}

// doRequest mengirim request JSON dan men-decode response body.
func doRequest(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Error encoding request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil && err != io.EOF {
		t.Fatalf("Error decoding response of %s %s: %v", method, path, err)
	}
	return resp, result
}

// registerUser mendaftarkan user unik dan mengembalikan token + id-nya.
func registerUser(t *testing.T, app *fiber.App) (string, int, string) {
	t.Helper()

	unique := fmt.Sprintf("user_%d", time.Now().UnixNano())
	email := unique + "@example.com"
	resp, result := doRequest(t, app, "POST", "/auth/register", "", map[string]string{
		"username": unique,
		"email":    email,
		"password": "secret123",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected status 201 on register, got %d", resp.StatusCode)
	}

	token, ok := result["token"].(string)
	if !ok || token == "" {
		t.Fatalf("Expected token in register response")
	}
	data, ok := result["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected data field in register response")
	}
	userID := int(data["id"].(float64))

	return token, userID, email
}

// createCategory membuat kategori dan mengembalikan id-nya.
func createCategory(t *testing.T, app *fiber.App, token, name string) int {
	t.Helper()

	resp, result := doRequest(t, app, "POST", "/categories", token, map[string]string{
		"name": name,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected status 201 on create category, got %d", resp.StatusCode)
	}
	data := result["data"].(map[string]interface{})
	return int(data["id"].(float64))
}

// createTask membuat task dan mengembalikan data task dari response.
func createTask(t *testing.T, app *fiber.App, token string, body map[string]interface{}) map[string]interface{} {
	t.Helper()

	resp, result := doRequest(t, app, "POST", "/tasks", token, body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected status 201 on create task, got %d (%v)", resp.StatusCode, result["message"])
	}
	data, ok := result["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected data field in create task response")
	}
	return data
}
