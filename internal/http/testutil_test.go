package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"notekeeper/internal/config"
	"notekeeper/internal/domain"
	"notekeeper/internal/repository"
	"notekeeper/internal/service"
)

type testServer struct {
	router  *gin.Engine
	codec   *service.TokenCodec
	notes   *repository.MemoryOwnedStore[domain.Note, domain.NotePatch]
	budgets *repository.MemoryOwnedStore[domain.BudgetEntry, domain.BudgetPatch]
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	users := repository.NewMemoryUserRepository()
	notes := repository.NewMemoryNoteRepository()
	budgets := repository.NewMemoryBudgetRepository()

	codec := service.NewTokenCodec(
		service.TokenConfig{Secret: "test-secret", Issuer: "notekeeper", TTL: time.Hour},
		service.WithDenylist(service.NewMemoryTokenDenylist()),
	)
	userSvc := service.NewUserService(logger, users, service.NewPasswordHasher(bcrypt.MinCost), config.DefaultPasswordPolicy(), service.NewLoginRateLimiter(time.Minute, 5))

	router := NewRouter(
		logger,
		RouterConfig{AuthHeader: "auth-token", CORSOrigin: "*", RequestTimeout: 5 * time.Second},
		codec,
		NewUserHandler(logger, userSvc, codec),
		NewNoteHandler(logger, service.NewNoteService(logger, notes)),
		NewBudgetHandler(logger, service.NewBudgetService(logger, budgets)),
		NewHealthHandler(logger, nil),
	)
	return &testServer{router: router, codec: codec, notes: notes, budgets: budgets}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("auth-token", token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// register crea un usuario y devuelve su token.
func (s *testServer) register(t *testing.T, handle, email string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/auth/createuser", "", map[string]string{
		"handle": handle, "email": email, "password": "secret1",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d: %s", handle, rec.Code, rec.Body.String())
	}
	var resp struct {
		Success   bool   `json:"success"`
		AuthToken string `json:"authToken"`
	}
	decode(t, rec, &resp)
	if !resp.Success || resp.AuthToken == "" {
		t.Fatalf("expected token in response, got %s", rec.Body.String())
	}
	return resp.AuthToken
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}
