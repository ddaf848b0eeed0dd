package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"houseoflove/internal/cart"
	"houseoflove/internal/profile"
)

func newCheckoutRouter(t *testing.T, n Notifier, c *cart.Store) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := NewHandler(NewService(newTestRepo(t), n, nil, nil), func(context.Context, string) (*cart.Store, error) { return c, nil })
	r := gin.New()
	h.RegisterRoutes(r.Group("/checkout", profile.Middleware()))
	return r
}

func post(t *testing.T, r *gin.Engine, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(http.MethodPost, "/checkout", &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(profile.Header, "p1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	out := map[string]any{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestCheckoutHandler(t *testing.T) {
	r := newCheckoutRouter(t, &fakeNotifier{}, filledCart(t))

	w, _ := post(t, r, gin.H{"name": "Achieng", "email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, out := post(t, r, customer)
	require.Equal(t, http.StatusCreated, w.Code)
	order, _ := out["order"].(map[string]any)
	assert.NotEmpty(t, order["order_number"])
	assert.NotContains(t, out, "notification_error")

	w, _ = post(t, r, customer)
	assert.Equal(t, http.StatusBadRequest, w.Code, "cart is empty after checkout")
}

func TestCheckoutHandlerNotificationFailure(t *testing.T) {
	r := newCheckoutRouter(t, &fakeNotifier{ownerErr: errors.New("sms rejected")}, filledCart(t))

	w, out := post(t, r, customer)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, out["notification_error"], "sms rejected")
	assert.Contains(t, out, "order")
}
