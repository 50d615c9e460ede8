package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"game-platform/services"

	"github.com/gofiber/fiber/v2"
)

func TestGatewayAuthMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(GatewayAuthMiddleware("secret"))
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong", "Bearer nope", http.StatusUnauthorized},
		{"bearer", "Bearer secret", http.StatusOK},
		{"raw", "secret", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, resp.StatusCode)
			}
		})
	}
}

func TestGatewayAuthDisabledWithoutToken(t *testing.T) {
	app := fiber.New()
	app.Use(GatewayAuthMiddleware(""))
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

type stubResolver map[string]services.Caller

func (s stubResolver) Caller(userID string) (services.Caller, error) {
	c, ok := s[userID]
	if !ok {
		return services.Caller{}, errors.New("unknown")
	}
	return c, nil
}

func TestUserContextAndRequireAdmin(t *testing.T) {
	resolver := stubResolver{
		"u1": {UserID: "u1"},
		"a1": {UserID: "a1", Admin: true},
	}
	app := fiber.New()
	app.Get("/me", UserContextMiddleware(resolver), func(c *fiber.Ctx) error {
		return c.SendString(CallerFrom(c).UserID)
	})
	app.Get("/admin", UserContextMiddleware(resolver), RequireAdmin(), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	tests := []struct {
		path, user string
		want       int
	}{
		{"/me", "", http.StatusUnauthorized},
		{"/me", "ghost", http.StatusUnauthorized},
		{"/me", "u1", http.StatusOK},
		{"/admin", "u1", http.StatusForbidden},
		{"/admin", "a1", http.StatusOK},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.path, nil)
		if tt.user != "" {
			req.Header.Set("X-User-ID", tt.user)
		}
		resp, err := app.Test(req)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != tt.want {
			t.Fatalf("%s as %q: expected %d, got %d", tt.path, tt.user, tt.want, resp.StatusCode)
		}
	}
}
