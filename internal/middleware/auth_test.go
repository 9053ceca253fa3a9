package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/taskman/internal/model"
)

type mockAuthenticator struct {
	authenticateFn func(ctx context.Context, token string) (*model.User, error)
}

func (m *mockAuthenticator) Authenticate(ctx context.Context, token string) (*model.User, error) {
	return m.authenticateFn(ctx, token)
}

func TestAuthMiddleware_InjectsUserIntoContext(t *testing.T) {
	user := &model.User{ID: "user-1", Username: "alice", IsActive: true}
	authn := &mockAuthenticator{
		authenticateFn: func(ctx context.Context, token string) (*model.User, error) {
			if token != "valid-token" {
				t.Errorf("token = %q, want valid-token", token)
			}
			return user, nil
		},
	}
	mw := NewAuthMiddleware(authn)

	var gotUser *model.User
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := UserFromContext(r.Context())
		if err != nil {
			t.Errorf("UserFromContext returned error: %v", err)
		}
		gotUser = u
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
	if gotUser == nil || gotUser.ID != "user-1" {
		t.Errorf("context user = %+v, want user-1", gotUser)
	}
}

func TestAuthMiddleware_Returns401(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer scheme", "Basic dXNlcjpwYXNz"},
		{"bare token without scheme", "some-token"},
		{"rejected token", "Bearer bad-token"},
	}

	authn := &mockAuthenticator{
		authenticateFn: func(ctx context.Context, token string) (*model.User, error) {
			return nil, model.NewUnauthorizedError()
		},
	}
	mw := NewAuthMiddleware(authn)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled := false
			handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Result().StatusCode != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
			}
			if handlerCalled {
				t.Error("handler was called despite failed authentication")
			}
		})
	}
}

func TestUserFromContext_NotAuthenticated(t *testing.T) {
	if _, err := UserFromContext(context.Background()); err == nil {
		t.Error("UserFromContext did not return error for unauthenticated context")
	}
	if _, err := UserIDFromContext(context.Background()); err == nil {
		t.Error("UserIDFromContext did not return error for unauthenticated context")
	}
}

func TestContextWithUser_Roundtrip(t *testing.T) {
	user := &model.User{ID: "user-1"}
	ctx := ContextWithUser(context.Background(), user)

	got, err := UserFromContext(ctx)
	if err != nil {
		t.Fatalf("UserFromContext returned error: %v", err)
	}
	if got.ID != "user-1" {
		t.Errorf("ID = %q, want user-1", got.ID)
	}

	id, err := UserIDFromContext(ctx)
	if err != nil {
		t.Fatalf("UserIDFromContext returned error: %v", err)
	}
	if id != "user-1" {
		t.Errorf("user ID = %q, want user-1", id)
	}
}
