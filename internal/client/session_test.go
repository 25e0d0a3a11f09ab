package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
)

const testToken = "token-valido"

// backendStub simula o backend Sentinela para os fluxos de sessão.
type backendStub struct {
	usuario      Usuario
	senha        string
	totpPendente bool
	meCalls      atomic.Int32
}

func (b *backendStub) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Senha    string `json:"senha"`
			TOTPCode string `json:"totp_code"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		if req.Email != b.usuario.Email || req.Senha != b.senha {
			writeDetail(w, http.StatusUnauthorized, "Email ou senha incorretos")
			return
		}
		if b.totpPendente && req.TOTPCode == "" {
			writeDetail(w, http.StatusUnauthorized, "Código TOTP necessário")
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": testToken,
			"token_type":   "bearer",
			"usuario":      b.usuario,
		})
	})

	mux.HandleFunc("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		b.meCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer "+testToken {
			writeDetail(w, http.StatusUnauthorized, "Token inválido ou expirado")
			return
		}
		json.NewEncoder(w).Encode(b.usuario)
	})

	mux.HandleFunc("/contratos", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+testToken {
			writeDetail(w, http.StatusUnauthorized, "Token inválido ou expirado")
			return
		}
		json.NewEncoder(w).Encode([]Contrato{})
	})

	return mux
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}

func newTestManager(t *testing.T, srv *httptest.Server) (*Manager, *APIClient, *Store) {
	t.Helper()
	api := NewAPIClient(srv.URL, 0)
	store := NewStore(filepath.Join(t.TempDir(), "sessao.json"))
	manager := NewManager(api, store, zerolog.Nop())
	return manager, api, store
}

func adminBackend() *backendStub {
	entidade := int64(1)
	return &backendStub{
		usuario: Usuario{
			ID:         1,
			EntidadeID: &entidade,
			Nome:       "Administrador",
			Email:      "admin@sentinela.app",
			Perfil:     "ROOT",
			Ativo:      true,
		},
		senha: "admin123",
	}
}

func TestLoginLogoutPersistence(t *testing.T) {
	backend := adminBackend()
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	manager, _, store := newTestManager(t, srv)
	manager.Initialize(context.Background())

	if manager.IsAuthenticated() {
		t.Fatal("fresh manager must start unauthenticated")
	}

	for i := 0; i < 3; i++ {
		if err := manager.Login(context.Background(), "admin@sentinela.app", "admin123", ""); err != nil {
			t.Fatalf("login %d failed: %v", i, err)
		}
		if !manager.IsAuthenticated() {
			t.Fatal("expected authenticated after login")
		}
		if _, err := store.Load(); err != nil {
			t.Fatalf("expected persisted record after login: %v", err)
		}

		manager.Logout()
		if manager.IsAuthenticated() {
			t.Fatal("expected unauthenticated after logout")
		}
		if _, err := store.Load(); !errors.Is(err, ErrNoSession) {
			t.Fatalf("expected empty store after logout, got %v", err)
		}

		// Logout repetido é no-op.
		manager.Logout()
	}
}

func TestLoginFailureLeavesSessionUntouched(t *testing.T) {
	backend := adminBackend()
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	manager, _, store := newTestManager(t, srv)
	manager.Initialize(context.Background())

	err := manager.Login(context.Background(), "admin@sentinela.app", "senha-errada", "")
	if err == nil {
		t.Fatal("expected login error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Detail != "Email ou senha incorretos" {
		t.Fatalf("unexpected detail %q", apiErr.Detail)
	}
	if apiErr.TOTPRequired() {
		t.Fatal("credential failure must not look like TOTP-required")
	}
	if manager.IsAuthenticated() {
		t.Fatal("failed login must not mutate session")
	}
	if _, err := store.Load(); !errors.Is(err, ErrNoSession) {
		t.Fatal("failed login must not persist a record")
	}
}

func TestLoginTOTPRequiredIsSoftError(t *testing.T) {
	backend := adminBackend()
	backend.totpPendente = true
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	manager, _, store := newTestManager(t, srv)
	manager.Initialize(context.Background())

	err := manager.Login(context.Background(), "admin@sentinela.app", "admin123", "")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || !apiErr.TOTPRequired() {
		t.Fatalf("expected TOTP-required soft error, got %v", err)
	}
	if manager.IsAuthenticated() {
		t.Fatal("TOTP-required must leave session unauthenticated")
	}
	if _, err := store.Load(); !errors.Is(err, ErrNoSession) {
		t.Fatal("TOTP-required must not persist a record")
	}
}

func TestInitializeRestoresValidSession(t *testing.T) {
	backend := adminBackend()
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	manager, _, store := newTestManager(t, srv)
	if err := store.Save(Record{Token: testToken, Usuario: backend.usuario}); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	if !manager.IsLoading() {
		t.Fatal("manager must start loading")
	}
	manager.Initialize(context.Background())

	if manager.IsLoading() {
		t.Fatal("loading must be false after Initialize")
	}
	if !manager.IsAuthenticated() {
		t.Fatal("valid persisted session must survive revalidation")
	}
	if got := backend.meCalls.Load(); got != 1 {
		t.Fatalf("expected 1 revalidation call, got %d", got)
	}
}

func TestInitializeClearsRejectedSession(t *testing.T) {
	backend := adminBackend()
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	manager, _, store := newTestManager(t, srv)
	if err := store.Save(Record{Token: "token-vencido", Usuario: backend.usuario}); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	manager.Initialize(context.Background())

	if manager.IsLoading() {
		t.Fatal("loading must be false after Initialize")
	}
	if manager.IsAuthenticated() {
		t.Fatal("rejected token must clear the session")
	}
	if _, err := store.Load(); !errors.Is(err, ErrNoSession) {
		t.Fatal("rejected token must erase the persisted record")
	}
}

func TestInitializeWithoutRecordSkipsBackend(t *testing.T) {
	backend := adminBackend()
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	manager, _, _ := newTestManager(t, srv)
	manager.Initialize(context.Background())

	if manager.IsAuthenticated() {
		t.Fatal("no record means unauthenticated")
	}
	if got := backend.meCalls.Load(); got != 0 {
		t.Fatalf("no record must not hit the backend, got %d calls", got)
	}
}

func TestGlobalUnauthorizedClearsAndRedirectsOnce(t *testing.T) {
	backend := adminBackend()
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	manager, api, store := newTestManager(t, srv)
	manager.Initialize(context.Background())

	var redirects atomic.Int32
	manager.OnSessionExpired(func() { redirects.Add(1) })

	if err := manager.Login(context.Background(), "admin@sentinela.app", "admin123", ""); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	// Token revogado no servidor: a próxima chamada autenticada leva 401.
	api.SetToken("token-revogado")

	_, err := api.ListContratos(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}

	if got := redirects.Load(); got != 1 {
		t.Fatalf("expected exactly one redirect per failing call, got %d", got)
	}
	if manager.IsAuthenticated() {
		t.Fatal("401 must clear the in-memory session")
	}
	if _, err := store.Load(); !errors.Is(err, ErrNoSession) {
		t.Fatal("401 must erase the persisted record")
	}
}

func TestCorruptStoreReadsAsCorrupt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sessao.json")

	casos := map[string][]byte{
		"não é json":     []byte("{nao é json"),
		"sem token":      []byte(`{"usuario":{"id":1}}`),
		"sem identidade": []byte(`{"token":"abc"}`),
	}
	for nome, raw := range casos {
		t.Run(nome, func(t *testing.T) {
			if err := os.WriteFile(path, raw, 0o600); err != nil {
				t.Fatal(err)
			}
			store := NewStore(path)
			if _, err := store.Load(); !errors.Is(err, ErrCorruptSession) {
				t.Fatalf("invalid record must read as ErrCorruptSession, got %v", err)
			}
		})
	}
}

func TestInitializeErasesCorruptRecord(t *testing.T) {
	backend := adminBackend()
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	manager, _, store := newTestManager(t, srv)
	if err := os.WriteFile(store.path, []byte("{nao é json"), 0o600); err != nil {
		t.Fatal(err)
	}

	manager.Initialize(context.Background())

	if manager.IsAuthenticated() {
		t.Fatal("corrupt record must not authenticate")
	}
	if manager.IsLoading() {
		t.Fatal("loading must drop after Initialize")
	}
	if got := backend.meCalls.Load(); got != 0 {
		t.Fatalf("corrupt record must not hit the backend, got %d calls", got)
	}
	if _, err := os.Stat(store.path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("corrupt record must be erased, stat returned %v", err)
	}
	if _, err := store.Load(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("store must read as empty after the erase, got %v", err)
	}
}
