package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sentinela-gov/sentinela/internal/auth"
	"github.com/sentinela-gov/sentinela/internal/perfil"
	"github.com/sentinela-gov/sentinela/internal/repo"
)

type stubLoader struct {
	user repo.Usuario
}

func (s *stubLoader) Me(ctx context.Context, id int64) (repo.Usuario, error) {
	if id != s.user.ID {
		return repo.Usuario{}, repo.ErrNotFound
	}
	return s.user, nil
}

func okHandler(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUsuario(r.Context()); !ok {
			t.Error("expected usuario in context")
		}
		w.WriteHeader(http.StatusOK)
	})
}

func decodeDetail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body.Detail
}

func newToken(t *testing.T, mgr *auth.JWTManager, user repo.Usuario) string {
	t.Helper()
	token, _, err := mgr.GenerateAccessToken(user.ID, user.Email, user.Perfil, user.EntidadeID)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

func TestAuthMiddleware(t *testing.T) {
	jwtMgr := auth.NewJWTManager(strings.Repeat("a", 32), time.Minute)
	user := repo.Usuario{ID: 3, Email: "auditor@sentinela.app", Perfil: "AUDITOR", Ativo: true}
	loader := &stubLoader{user: user}
	handler := Auth(jwtMgr, loader)(okHandler(t))

	t.Run("sem token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		if got := decodeDetail(t, rec); got != "Token inválido ou expirado" {
			t.Fatalf("unexpected detail %q", got)
		}
	})

	t.Run("token adulterado", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.Header.Set("Authorization", "Bearer nao-e-um-jwt")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("token válido", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+newToken(t, jwtMgr, user))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("usuário desativado", func(t *testing.T) {
		inativo := user
		inativo.Ativo = false
		inativoHandler := Auth(jwtMgr, &stubLoader{user: inativo})(okHandler(t))

		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+newToken(t, jwtMgr, inativo))
		rec := httptest.NewRecorder()
		inativoHandler.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
		if got := decodeDetail(t, rec); got != "Usuário inativo" {
			t.Fatalf("unexpected detail %q", got)
		}
	})

	t.Run("usuário removido", func(t *testing.T) {
		removido := repo.Usuario{ID: 42, Email: "ex@sentinela.app", Perfil: "APOIO", Ativo: true}
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+newToken(t, jwtMgr, removido))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestRequirePerfil(t *testing.T) {
	gate := RequirePerfil(perfil.Root, perfil.Gestor)

	serve := func(t *testing.T, user repo.Usuario) *httptest.ResponseRecorder {
		t.Helper()
		handler := gate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		req := httptest.NewRequest(http.MethodPost, "/usuarios", nil)
		req = req.WithContext(context.WithValue(req.Context(), ContextKeyUsuario, user))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	t.Run("perfil permitido", func(t *testing.T) {
		rec := serve(t, repo.Usuario{ID: 1, Perfil: "GESTOR", Ativo: true})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("perfil fora da lista", func(t *testing.T) {
		rec := serve(t, repo.Usuario{ID: 2, Perfil: "AUDITOR", Ativo: true})
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
		if got := decodeDetail(t, rec); !strings.Contains(got, "Perfis permitidos") {
			t.Fatalf("detail should name allowed perfis, got %q", got)
		}
	})
}
