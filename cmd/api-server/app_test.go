package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"houseoflove/internal/catalog"
	"houseoflove/internal/notify"
	"houseoflove/internal/profile"
	"houseoflove/internal/storage"
	"houseoflove/pkg/database"
	"houseoflove/pkg/utils"
)

func newTestApp(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	path := filepath.Join(t.TempDir(), "app.db")
	db, err := database.Open(database.Config{Path: path})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db))

	cfg := &utils.Config{Env: "test"}
	cfg.Auth = utils.AuthConfig{JWTSecret: "test", JWTIssuer: "houseoflove", JWTDuration: time.Hour}
	cfg.Storage = utils.StorageConfig{Backend: "sqlite", MaxBooks: 8}

	app := &App{
		Config:   cfg,
		DB:       db,
		DBPath:   path,
		Storage:  storage.NewSQLite(db),
		Catalog:  catalog.MustLoad(),
		Notifier: notify.NewLogOnly(nil),
		Log:      zap.NewNop(),
	}
	return app.Router()
}

type client struct {
	t     *testing.T
	r     *gin.Engine
	token string
	prof  string
}

func (c *client) do(method, path string, body any) (int, map[string]any) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.prof != "" {
		req.Header.Set(profile.Header, c.prof)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.r.ServeHTTP(w, req)
	out := map[string]any{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w.Code, out
}

func TestHealth(t *testing.T) {
	c := &client{t: t, r: newTestApp(t)}
	code, out := c.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", out["status"])

	code, out = c.do(http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ready", out["status"])
}

func TestStorefrontJourney(t *testing.T) {
	c := &client{t: t, r: newTestApp(t), prof: "browser-1"}

	code, _ := c.do(http.MethodPost, "/auth/register", map[string]string{
		"email": "njeri@example.com", "password": "secret1", "confirm_password": "secret1",
	})
	require.Equal(t, http.StatusCreated, code)

	code, out := c.do(http.MethodPost, "/auth/login", map[string]string{"email": "njeri@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, code)
	c.token = out["token"].(string)

	code, _ = c.do(http.MethodPut, "/books/mom/daughter-to-mom/pages/0/text", map[string]string{"text": "Thank you, Mom"})
	require.Equal(t, http.StatusOK, code)

	code, out = c.do(http.MethodPost, "/preview/mom/daughter-to-mom/cart", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, out["count"])

	code, _ = c.do(http.MethodPost, "/cart", map[string]any{"product_id": "3"})
	require.Equal(t, http.StatusOK, code)

	code, out = c.do(http.MethodPost, "/favorites/toggle", map[string]any{"product_id": "3"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, out["favorite"])

	code, out = c.do(http.MethodPost, "/checkout", map[string]string{"name": "Njeri", "email": "njeri@example.com"})
	require.Equal(t, http.StatusCreated, code)
	order := out["order"].(map[string]any)
	assert.Equal(t, "4400", order["total"])

	code, out = c.do(http.MethodGet, "/cart", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 0, out["count"])

	code, out = c.do(http.MethodGet, "/users/orders", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, out["total"])

	// book state was kept across the checkout
	code, out = c.do(http.MethodGet, "/books/mom/daughter-to-mom", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Thank you, Mom", out["texts"].([]any)[0])
}

func TestProfileRequired(t *testing.T) {
	c := &client{t: t, r: newTestApp(t)}
	code, _ := c.do(http.MethodGet, "/cart", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = c.do(http.MethodGet, "/catalog/products", nil)
	assert.Equal(t, http.StatusOK, code)
}
