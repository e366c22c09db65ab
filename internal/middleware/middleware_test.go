package middleware

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "mw.db")), &gorm.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestSession(t *testing.T) {
	db := openDB(t)
	app := fiber.New()

	var seen []*gorm.DB
	app.Get("/outside", func(c *fiber.Ctx) error {
		assert.Nil(t, DB(c))
		return c.SendStatus(http.StatusNoContent)
	})
	app.Get("/inside", Session(db), func(c *fiber.Ctx) error {
		s := DB(c)
		assert.NotNil(t, s)
		assert.NotSame(t, db, s)
		seen = append(seen, s)
		return c.SendStatus(http.StatusNoContent)
	})

	for _, path := range []string{"/outside", "/inside", "/inside"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	}

	require.Len(t, seen, 2)
	assert.NotSame(t, seen[0], seen[1], "sessions must not be shared across requests")
}

func TestSession_ReleasedOnError(t *testing.T) {
	db := openDB(t)
	app := fiber.New()

	var held, released bool
	app.Get("/fail", func(c *fiber.Ctx) error {
		err := c.Next()
		released = DB(c) == nil
		return err
	}, Session(db), func(c *fiber.Ctx) error {
		held = DB(c) != nil
		return fiber.NewError(http.StatusTeapot, "boom")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/fail", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
	assert.True(t, held)
	assert.True(t, released)
}

func TestRequestIDAndLogger(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())
	app.Use(Logger(zerolog.Nop()))

	var rid string
	app.Get("/", func(c *fiber.Ctx) error {
		rid, _ = c.Locals("requestid").(string)
		assert.NotNil(t, zerolog.Ctx(c.UserContext()))
		return c.SendString("ok")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	assert.NotEmpty(t, rid)
	assert.Equal(t, rid, resp.Header.Get(fiber.HeaderXRequestID))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(fiber.HeaderXRequestID, "client-id")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "client-id", resp.Header.Get(fiber.HeaderXRequestID))
	assert.Equal(t, "client-id", rid)
}

func TestLogger_RendersHandlerErrors(t *testing.T) {
	app := fiber.New()
	app.Use(Logger(zerolog.Nop()))
	app.Get("/", func(c *fiber.Ctx) error {
		return fiber.ErrBadRequest
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
