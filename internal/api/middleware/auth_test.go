package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"petshop/internal/domain/model"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("passed"))
	})
}

func withIdentity(r *http.Request, identity *model.Identity) *http.Request {
	ctx := context.WithValue(r.Context(), identityCtxKey, identity)
	return r.WithContext(ctx)
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Error
}

func TestRequireLogin(t *testing.T) {
	handler := RequireLogin(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if msg := errorBody(t, rec); msg != "You are not logged in!" {
		t.Fatalf("unexpected message: %q", msg)
	}

	rec = httptest.NewRecorder()
	req := withIdentity(httptest.NewRequest(http.MethodGet, "/", nil), &model.Identity{ID: "u-1"})
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "passed" {
		t.Fatalf("authenticated request blocked: %d %q", rec.Code, rec.Body.String())
	}
}

func TestRequirePermission(t *testing.T) {
	handler := RequirePermission("insertPet")(okHandler())

	t.Run("no identity", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		if msg := errorBody(t, rec); msg != "You are not logged in!" {
			t.Fatalf("unexpected message: %q", msg)
		}
	})

	t.Run("no permission set", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := withIdentity(httptest.NewRequest(http.MethodPut, "/", nil), &model.Identity{ID: "u-1"})
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
		if msg := errorBody(t, rec); msg != "You do not have any permissions!" {
			t.Fatalf("unexpected message: %q", msg)
		}
	})

	t.Run("permission absent", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := withIdentity(httptest.NewRequest(http.MethodPut, "/", nil), &model.Identity{
			ID:          "u-1",
			Permissions: map[string]bool{"updatePet": true},
		})
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
		if msg := errorBody(t, rec); msg != "You do not have permission insertPet!" {
			t.Fatalf("unexpected message: %q", msg)
		}
	})

	t.Run("permission explicitly false", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := withIdentity(httptest.NewRequest(http.MethodPut, "/", nil), &model.Identity{
			ID:          "u-1",
			Permissions: map[string]bool{"insertPet": false},
		})
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("permission granted", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := withIdentity(httptest.NewRequest(http.MethodPut, "/", nil), &model.Identity{
			ID:          "u-1",
			Permissions: map[string]bool{"insertPet": true},
		})
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK || rec.Body.String() != "passed" {
			t.Fatalf("granted request blocked: %d %q", rec.Code, rec.Body.String())
		}
	})
}

func TestIdentityFromContextMissing(t *testing.T) {
	if _, ok := IdentityFromContext(context.Background()); ok {
		t.Fatal("expected no identity on a bare context")
	}
}
