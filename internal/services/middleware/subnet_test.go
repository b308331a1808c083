package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func guardedApp(subnetsOnly string) *fiber.App {
	app := fiber.New()
	app.Use(NewSubnetGuard(subnetsOnly).Handler())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestSubnetGuardAllowsConfiguredSubnet(t *testing.T) {
	app := guardedApp("10.0.0.0/8")

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(fiber.HeaderXForwardedFor, "10.1.2.3")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestSubnetGuardDeniesOutsideSubnet(t *testing.T) {
	app := guardedApp("10.0.0.0/8")

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(fiber.HeaderXForwardedFor, "192.168.1.1")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestSubnetGuardAlwaysAllowsLocalhost(t *testing.T) {
	app := guardedApp("10.0.0.0/8")

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(fiber.HeaderXForwardedFor, "127.0.0.1")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestSubnetGuardUsesFirstForwardedHop(t *testing.T) {
	app := guardedApp("10.0.0.0/8")

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(fiber.HeaderXForwardedFor, "10.1.2.3, 198.51.100.7")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestSubnetGuardDisabledWhenUnconfigured(t *testing.T) {
	app := guardedApp("")

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(fiber.HeaderXForwardedFor, "198.51.100.7")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestSubnetGuardSkipsInvalidCIDRs(t *testing.T) {
	app := guardedApp("not-a-cidr, 10.0.0.0/8")

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(fiber.HeaderXForwardedFor, "10.1.2.3")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
