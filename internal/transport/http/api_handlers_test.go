package http

import (
	"net/http"
	"testing"
)

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.server.Client().Get(env.server.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestRegisterEndpoint(t *testing.T) {
	env := newTestEnv(t)

	var resp AuthResponse
	status := env.doJSON(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{
		Username: "alice",
		Name:     "Alice A",
		Email:    "alice@example.com",
		Password: "password123",
	}, &resp)
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}
	if resp.Token == "" || resp.User.Username != "alice" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	// Duplicate registration conflicts.
	status = env.doJSON(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{
		Username: "alice",
		Name:     "Alice A",
		Email:    "alice@example.com",
		Password: "password123",
	}, nil)
	if status != http.StatusConflict {
		t.Fatalf("expected 409, got %d", status)
	}
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	status := env.doJSON(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{
		Username: "al",
		Name:     "Alice A",
		Email:    "alice@example.com",
		Password: "password123",
	}, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for short username, got %d", status)
	}

	status = env.doJSON(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{
		Username: "alice",
		Name:     "Alice A",
		Email:    "not-an-email",
		Password: "password123",
	}, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad email, got %d", status)
	}
}

func TestLoginEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "alice")

	var resp AuthResponse
	status := env.doJSON(t, http.MethodPost, "/api/auth/login", "", LoginRequest{
		Email:    "alice@example.com",
		Password: "password123",
	}, &resp)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if resp.Token == "" {
		t.Fatalf("expected token")
	}

	status = env.doJSON(t, http.MethodPost, "/api/auth/login", "", LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong-password",
	}, nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", status)
	}
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	env := newTestEnv(t)

	status := env.doJSON(t, http.MethodGet, "/api/users/me", "", nil, nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", status)
	}

	status = env.doJSON(t, http.MethodGet, "/api/users/me", "garbage-token", nil, nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 for garbage token, got %d", status)
	}
}
