package middleware

import (
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"task-manager-api/pkg/auth"
	"task-manager-api/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

func TestMain(m *testing.M) {
	logger.InitLoggers()
	defer logger.SyncLoggers()
	os.Exit(m.Run())
}

func protectedApp(authSvc *auth.Service) *fiber.App {
	app := fiber.New()
	app.Get("/protected", TokenGate(authSvc), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":  c.Locals("userID").(int),
			"username": c.Locals("username").(string),
		})
	})
	return app
}

func TestTokenGateNoToken(t *testing.T) {
	app := protectedApp(auth.NewService("test-secret", time.Hour))

	req := httptest.NewRequest("GET", "/protected", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", resp.StatusCode)
	}
}

func TestTokenGateMalformedHeader(t *testing.T) {
	app := protectedApp(auth.NewService("test-secret", time.Hour))

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "NotBearer abc")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", resp.StatusCode)
	}
}

func TestTokenGateInvalidToken(t *testing.T) {
	app := protectedApp(auth.NewService("test-secret", time.Hour))

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", resp.StatusCode)
	}
}

func TestTokenGateValidToken(t *testing.T) {
	authSvc := auth.NewService("test-secret", time.Hour)
	app := protectedApp(authSvc)

	token, err := authSvc.IssueToken(7, "budi", "budi@example.com")
	if err != nil {
		t.Fatalf("Error issuing token: %v", err)
	}

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
}

func TestTokenGateQueryParamToken(t *testing.T) {
	authSvc := auth.NewService("test-secret", time.Hour)
	app := protectedApp(authSvc)

	token, err := authSvc.IssueToken(7, "budi", "budi@example.com")
	if err != nil {
		t.Fatalf("Error issuing token: %v", err)
	}

	req := httptest.NewRequest("GET", "/protected?token="+token, nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
}

func TestTokenGateExpiredToken(t *testing.T) {
	authSvc := auth.NewService("test-secret", -time.Minute)
	app := protectedApp(authSvc)

	token, err := authSvc.IssueToken(7, "budi", "budi@example.com")
	if err != nil {
		t.Fatalf("Error issuing token: %v", err)
	}

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", resp.StatusCode)
	}
}
