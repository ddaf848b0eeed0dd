package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"houseoflove/internal/auth"
	"houseoflove/internal/profile"
)

func TestWebsocketURL(t *testing.T) {
	u, err := websocketURL("https://shop.example.com", "/ws", "p 1")
	require.NoError(t, err)
	assert.Equal(t, "wss://shop.example.com/ws?profile=p+1", u)

	u, err = websocketURL("http://localhost:8080", "/ws", "p1")
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8080/ws?profile=p1", u)
}

func TestStateRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	st, err := loadState(path)
	require.NoError(t, err)
	assert.NotEmpty(t, st.Profile)

	st.Token = "tok"
	st.User = &auth.User{ID: "u1", Email: "a@example.com"}
	require.NoError(t, saveState(path, st))

	again, err := loadState(path)
	require.NoError(t, err)
	assert.Equal(t, st.Profile, again.Profile)
	assert.Equal(t, "tok", again.Token)
	assert.Equal(t, "a@example.com", again.User.Email)
}

func TestDoJSONSendsProfileAndToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "p1", r.Header.Get(profile.Header))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"count":2}`))
	}))
	defer srv.Close()

	a := &api{client: srv.Client(), baseURL: srv.URL, profile: "p1", token: func() string { return "tok" }}
	var out struct {
		Count int `json:"count"`
	}
	require.NoError(t, a.doJSON(context.Background(), http.MethodGet, "/cart", nil, &out))
	assert.Equal(t, 2, out.Count)
}

func TestSessionOverRemoteProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/auth/login":
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid email or password","kind":"invalid_credentials"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	a := &api{client: srv.Client(), baseURL: srv.URL, profile: "p1"}
	sess := auth.NewSession(remoteProvider{api: a})
	a.token = sess.Token

	err := sess.Login(context.Background(), "a@example.com", "secret1")
	require.Error(t, err)
	assert.Equal(t, auth.KindInvalidCredentials, auth.KindOf(err))
	assert.Nil(t, sess.Current())
}
