package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/taskman/internal/middleware"
	"github.com/hitoshi/taskman/internal/model"
)

// --- テストヘルパー ---

// withAccount はリクエストコンテキストに認証済みユーザーを注入する。
func withAccount(req *http.Request, account *model.User) *http.Request {
	ctx := middleware.ContextWithUser(req.Context(), account)
	return req.WithContext(ctx)
}

func testAccount() *model.User {
	return &model.User{
		ID:        "user-123",
		Email:     "alice@example.com",
		Username:  "alice",
		IsActive:  true,
		CreatedAt: time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC),
	}
}

func decodeErrorBody(t *testing.T, resp *http.Response) apiErrorResponse {
	t.Helper()
	var body apiErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return body
}

// --- モック定義 ---

// mockAuthService はAuthServiceInterfaceのモック実装。
type mockAuthService struct {
	registerFn func(ctx context.Context, email, username, password string) (*model.User, error)
	loginFn    func(ctx context.Context, username, password string) (string, error)
}

func (m *mockAuthService) Register(ctx context.Context, email, username, password string) (*model.User, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, email, username, password)
	}
	return testAccount(), nil
}

func (m *mockAuthService) Login(ctx context.Context, username, password string) (string, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, username, password)
	}
	return "", nil
}

// --- POST /api/v1/auth/register テスト ---

func TestAuthHandler_Register_Success(t *testing.T) {
	svc := &mockAuthService{
		registerFn: func(ctx context.Context, email, username, password string) (*model.User, error) {
			if email != "alice@example.com" || username != "alice" || password != "Secur3!pass" {
				t.Errorf("unexpected args: %q %q %q", email, username, password)
			}
			return testAccount(), nil
		},
	}
	h := NewAuthHandler(svc)

	body := `{"email":"alice@example.com","username":"alice","password":"Secur3!pass"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Register(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	var got userResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if got.ID != "user-123" || got.Username != "alice" {
		t.Errorf("body = %+v", got)
	}
}

func TestAuthHandler_Register_ResponseOmitsPasswordHash(t *testing.T) {
	svc := &mockAuthService{
		registerFn: func(ctx context.Context, email, username, password string) (*model.User, error) {
			account := testAccount()
			account.PasswordHash = "$2a$12$secret"
			return account, nil
		},
	}
	h := NewAuthHandler(svc)

	body := `{"email":"alice@example.com","username":"alice","password":"Secur3!pass"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Register(w, req)

	raw := w.Body.String()
	if strings.Contains(raw, "secret") || strings.Contains(raw, "password_hash") {
		t.Errorf("response leaks password hash: %s", raw)
	}
}

func TestAuthHandler_Register_InvalidJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader("{not json"))
	w := httptest.NewRecorder()

	h.Register(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestAuthHandler_Register_PolicyErrorMappedTo400(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"weak password", model.NewWeakPasswordError("パスワードが短すぎます"), http.StatusBadRequest, model.ErrCodeWeakPassword},
		{"email taken", model.NewEmailTakenError(), http.StatusBadRequest, model.ErrCodeEmailTaken},
		{"reserved username", model.NewReservedUsernameError("admin"), http.StatusBadRequest, model.ErrCodeReservedUsername},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAuthService{
				registerFn: func(ctx context.Context, email, username, password string) (*model.User, error) {
					return nil, tt.err
				},
			}
			h := NewAuthHandler(svc)

			body := `{"email":"a@example.com","username":"alice","password":"x"}`
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
			w := httptest.NewRecorder()

			h.Register(w, req)

			resp := w.Result()
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if got := decodeErrorBody(t, resp); got.Code != tt.code {
				t.Errorf("code = %s, want %s", got.Code, tt.code)
			}
		})
	}
}

// --- POST /api/v1/auth/login テスト ---

func TestAuthHandler_Login_Success(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, username, password string) (string, error) {
			return "issued-token", nil
		},
	}
	h := NewAuthHandler(svc)

	body := `{"username":"alice","password":"Secur3!pass"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Login(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var got tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if got.AccessToken != "issued-token" {
		t.Errorf("access_token = %q, want issued-token", got.AccessToken)
	}
	if got.TokenType != "bearer" {
		t.Errorf("token_type = %q, want bearer", got.TokenType)
	}
}

func TestAuthHandler_Login_Unauthorized(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, username, password string) (string, error) {
			return "", model.NewUnauthorizedError()
		},
	}
	h := NewAuthHandler(svc)

	body := `{"username":"alice","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Login(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
	if got := decodeErrorBody(t, resp); got.Code != model.ErrCodeUnauthorized {
		t.Errorf("code = %s, want %s", got.Code, model.ErrCodeUnauthorized)
	}
}

func TestAuthHandler_Login_InvalidJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(""))
	w := httptest.NewRecorder()

	h.Login(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}
