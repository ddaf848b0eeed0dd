package favorites

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"houseoflove/internal/catalog"
	"houseoflove/internal/profile"
	"houseoflove/internal/storage"
)

func TestFavoritesHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s, err := Load(context.Background(), storage.For(storage.NewMemory(), "browser-1"), nil)
	require.NoError(t, err)

	r := gin.New()
	NewHandler(func(context.Context, string) (*Store, error) { return s, nil }, catalog.MustLoad(), nil).
		RegisterRoutes(r.Group("/favorites", profile.Middleware()))

	call := func(method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
		req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(profile.Header, "browser-1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		var out map[string]any
		_ = json.Unmarshal(w.Body.Bytes(), &out)
		return w, out
	}

	w, out := call(http.MethodPost, "/favorites/toggle", `{"product_id":"4"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, out["favorite"])
	assert.EqualValues(t, 1, out["count"])

	w, out = call(http.MethodPost, "/favorites/toggle", `{"product_id":"4"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, out["favorite"])

	w, _ = call(http.MethodPost, "/favorites/toggle", `{"product_id":"nope"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = call(http.MethodPost, "/favorites", `{"product_id":"2"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w, out = call(http.MethodDelete, "/favorites/2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, out["count"])

	w, _ = call(http.MethodDelete, "/favorites/2", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
