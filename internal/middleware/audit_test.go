package middleware

import (
	"bytes"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestAuditLogsAuthenticatedUser(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	app := fiber.New()
	app.Use(Audit(logger))
	app.Get("/me", func(c *fiber.Ctx) error {
		c.Locals("user_id", "user-42")
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/me", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, fiber.StatusOK)
	}

	line := buf.String()
	if !strings.Contains(line, `"user_id":"user-42"`) {
		t.Fatalf("log line missing user_id: %s", line)
	}
	if !strings.Contains(line, `"path":"/me"`) || !strings.Contains(line, `"status":200`) {
		t.Fatalf("log line missing request fields: %s", line)
	}
}

func TestAuditOmitsUserWhenAnonymous(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	app := fiber.New()
	app.Use(Audit(logger))
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	if _, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/ping", nil)); err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if strings.Contains(buf.String(), "user_id") {
		t.Fatalf("anonymous request should not carry user_id: %s", buf.String())
	}
}
