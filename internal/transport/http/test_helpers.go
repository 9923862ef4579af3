package http

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/monster-anshu/api-social-media/internal/auth"
	"github.com/monster-anshu/api-social-media/internal/chat"
	"github.com/monster-anshu/api-social-media/internal/config"
	"github.com/monster-anshu/api-social-media/internal/presence"
	"github.com/monster-anshu/api-social-media/internal/service/follows"
	"github.com/monster-anshu/api-social-media/internal/store"
	"github.com/monster-anshu/api-social-media/internal/store/sqlite"
)

// testEnv bundles everything handler tests need.
type testEnv struct {
	server *httptest.Server
	store  store.Store
	auth   *auth.Service
	hub    *presence.Hub
}

// newTestEnv spins up the full HTTP stack on an in-memory store.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewWithSetup(":memory:", func(db *sql.DB) error {
		_, err := db.Exec(sqlite.Schema)
		return err
	})
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	logger := zerolog.Nop()

	jwtConfig := &auth.JWTConfig{
		Secret:   []byte("test-secret-change-me"),
		Issuer:   "test",
		Audience: "test",
		TTL:      24 * time.Hour,
	}
	authService := auth.NewService(st, jwtConfig)

	hub := presence.NewHub(st, &logger, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	chatService := chat.NewService(st, hub, &logger)
	followService := follows.New(st)

	server := NewServer(Deps{
		Store:   st,
		Auth:    authService,
		Follows: followService,
		Chat:    chatService,
		Hub:     hub,
	}, config.Config{
		Addr:              ":0",
		ReadHeaderTimeout: time.Second,
		ShutdownTimeout:   time.Second,
		FeedLimit:         50,
		WSMessageLimit:    32 * 1024,
	}, &logger)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return &testEnv{
		server: ts,
		store:  st,
		auth:   authService,
		hub:    hub,
	}
}

// registerUser creates an account through the API and returns its token
// and user ID.
func (e *testEnv) registerUser(t *testing.T, username string) (string, int64) {
	t.Helper()

	token, user, err := e.auth.Register(context.Background(), username, "Name "+username, username+"@example.com", "password123")
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return token, user.ID
}

// doJSON performs an authenticated request with an optional JSON body
// and decodes the JSON response into out when non-nil.
func (e *testEnv) doJSON(t *testing.T, method, path, token string, body any, out any) int {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reqBody = bytes.NewBuffer(raw)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reqBody)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.server.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response of %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}
