package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
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

type countingPublisher struct{ n int }

func (p *countingPublisher) Publish(string, string, any) { p.n++ }

func newTestRouter(t *testing.T) (*gin.Engine, *countingPublisher) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s, err := Load(context.Background(), storage.For(storage.NewMemory(), "browser-1"), nil)
	require.NoError(t, err)
	stores := func(context.Context, string) (*Store, error) { return s, nil }

	pub := &countingPublisher{}
	r := gin.New()
	NewHandler(stores, catalog.MustLoad(), pub).RegisterRoutes(r.Group("/cart", profile.Middleware()))
	return r, pub
}

func call(t *testing.T, r *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, Summary) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(profile.Header, "browser-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var sum Summary
	_ = json.Unmarshal(w.Body.Bytes(), &sum)
	return w, sum
}

func TestCartHandlerFlow(t *testing.T) {
	r, pub := newTestRouter(t)

	w, sum := call(t, r, http.MethodPost, "/cart", gin.H{"product_id": "1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, sum.Count)
	assert.Equal(t, "1500.00", sum.Total)

	w, sum = call(t, r, http.MethodPost, "/cart", gin.H{"product_id": "2", "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, sum.Count)
	assert.Equal(t, "3100.00", sum.Total)

	w, sum = call(t, r, http.MethodPut, "/cart/2", gin.H{"quantity": 0})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, sum.Count)

	w, _ = call(t, r, http.MethodDelete, "/cart/2", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, sum = call(t, r, http.MethodDelete, "/cart", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, sum.Count)

	assert.Equal(t, 4, pub.n)
}

func TestCartHandlerRejects(t *testing.T) {
	r, pub := newTestRouter(t)

	w, _ := call(t, r, http.MethodPost, "/cart", gin.H{"product_id": "999"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = call(t, r, http.MethodPost, "/cart", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = call(t, r, http.MethodPut, "/cart/1", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Zero(t, pub.n)
}

func TestCartHandlerQuantityLimit(t *testing.T) {
	r, pub := newTestRouter(t)

	w, _ := call(t, r, http.MethodPost, "/cart", gin.H{"product_id": "1", "quantity": math.MaxInt64})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = call(t, r, http.MethodPost, "/cart", gin.H{"product_id": "1", "quantity": MaxQuantity})
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = call(t, r, http.MethodPost, "/cart", gin.H{"product_id": "1", "quantity": 2})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = call(t, r, http.MethodPut, "/cart/1", gin.H{"quantity": MaxQuantity + 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	_, sum := call(t, r, http.MethodGet, "/cart", nil)
	require.Len(t, sum.Items, 1)
	assert.Equal(t, MaxQuantity, sum.Items[0].Quantity)
	assert.Equal(t, "1498500.00", sum.Total)
	assert.Equal(t, 1, pub.n)
}
