package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"houseoflove/internal/auth"
	"houseoflove/internal/profile"
)

// state is what the CLI remembers between runs: its profile (the cart,
// favorites and books live under it) and the signed-in session.
type state struct {
	Profile string     `json:"profile"`
	Token   string     `json:"token,omitempty"`
	User    *auth.User `json:"user,omitempty"`
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./.houseoflove-session.json"
	}
	return filepath.Join(home, ".houseoflove", "session.json")
}

func loadState(path string) (*state, error) {
	st := &state{}
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, st); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if st.Profile == "" {
		st.Profile = uuid.NewString()
	}
	return st, nil
}

func saveState(path string, st *state) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// api talks to the server on behalf of one profile.
type api struct {
	client  *http.Client
	baseURL string
	profile string
	token   func() string
}

type apiError struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func (a *api) doJSON(ctx context.Context, method, path string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = strings.NewReader(string(b))
	}
	endpoint := a.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.profile != "" {
		req.Header.Set(profile.Header, a.profile)
	}
	if a.token != nil {
		if token := a.token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		var ae apiError
		if json.Unmarshal(data, &ae) == nil && ae.Kind != "" {
			return &auth.AuthError{Kind: auth.Kind(ae.Kind), Msg: ae.Error}
		}
		return fmt.Errorf("%s %s failed: %s", method, endpoint, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

// remoteProvider is auth.Provider over the HTTP API.
type remoteProvider struct {
	api *api
}

var _ auth.Provider = remoteProvider{}

func (p remoteProvider) Register(ctx context.Context, email, password string) error {
	return p.api.doJSON(ctx, http.MethodPost, "/auth/register", map[string]string{
		"email": email, "password": password,
	}, nil)
}

func (p remoteProvider) Login(ctx context.Context, email, password string) (*auth.User, string, error) {
	var resp struct {
		User  *auth.User `json:"user"`
		Token string     `json:"token"`
	}
	if err := p.api.doJSON(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email": email, "password": password,
	}, &resp); err != nil {
		return nil, "", err
	}
	if resp.Token == "" || resp.User == nil {
		return nil, "", errors.New("login response without token")
	}
	return resp.User, resp.Token, nil
}

func (p remoteProvider) Logout(ctx context.Context, _ string) error {
	return p.api.doJSON(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

func websocketURL(baseURL, path, profileID string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	return (&url.URL{
		Scheme:   scheme,
		Host:     u.Host,
		Path:     path,
		RawQuery: url.Values{"profile": {profileID}}.Encode(),
	}).String(), nil
}
