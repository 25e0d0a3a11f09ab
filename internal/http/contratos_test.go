package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/sentinela-gov/sentinela/internal/http/middleware"
	"github.com/sentinela-gov/sentinela/internal/repo"
)

// stubStore serve os handlers com dados em memória. Métodos não
// implementados vêm do dataStore embutido e explodem se chamados.
type stubStore struct {
	dataStore
	contratos []repo.Contrato
	etapas    []repo.CronogramaFisicoFin
}

func (s *stubStore) GetContratoByID(ctx context.Context, id int64) (repo.Contrato, error) {
	for _, c := range s.contratos {
		if c.ID == id {
			return c, nil
		}
	}
	return repo.Contrato{}, repo.ErrNotFound
}

func (s *stubStore) ListContratos(ctx context.Context, entidadeID *int64) ([]repo.Contrato, error) {
	if entidadeID == nil {
		return s.contratos, nil
	}
	var out []repo.Contrato
	for _, c := range s.contratos {
		if c.EntidadeID == *entidadeID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *stubStore) GetCronogramaByID(ctx context.Context, id int64) (repo.CronogramaFisicoFin, error) {
	for _, e := range s.etapas {
		if e.ID == id {
			return e, nil
		}
	}
	return repo.CronogramaFisicoFin{}, repo.ErrNotFound
}

func seededStore() *stubStore {
	return &stubStore{
		contratos: []repo.Contrato{
			{ID: 10, EntidadeID: 1, NumeroContrato: "001/2026", Objeto: "Merenda escolar", FornecedorID: 1, ValorGlobal: 1000},
			{ID: 20, EntidadeID: 2, NumeroContrato: "007/2026", Objeto: "Obras de pavimentação", FornecedorID: 2, ValorGlobal: 5000},
		},
		etapas: []repo.CronogramaFisicoFin{
			{ID: 5, ContratoID: 10},
		},
	}
}

func usuarioDaEntidade(perfilNome string, entidadeID int64) repo.Usuario {
	return repo.Usuario{ID: 99, EntidadeID: &entidadeID, Email: "fiscal@sentinela.app", Perfil: perfilNome, Ativo: true}
}

func usuarioRoot() repo.Usuario {
	return repo.Usuario{ID: 1, Email: "root@sentinela.app", Perfil: "ROOT", Ativo: true}
}

// serveAs roteia a requisição já com o usuário no contexto, como o
// middleware de autenticação faria.
func serveAs(t *testing.T, h *Handler, user repo.Usuario, method, target string) *httptest.ResponseRecorder {
	t.Helper()

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), middleware.ContextKeyUsuario, user)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Get("/contratos", h.ListContratos)
	r.Get("/contratos/{id}", h.GetContrato)
	r.Get("/cronogramas/{id}", h.GetCronograma)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decodeDetailBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body.Detail
}

func TestGetContratoTenantScope(t *testing.T) {
	h := &Handler{repo: seededStore()}

	t.Run("fiscal lê contrato da própria entidade", func(t *testing.T) {
		rec := serveAs(t, h, usuarioDaEntidade("FISCAL_TECNICO", 1), http.MethodGet, "/contratos/10")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("fiscal não lê contrato de outra entidade", func(t *testing.T) {
		rec := serveAs(t, h, usuarioDaEntidade("FISCAL_TECNICO", 1), http.MethodGet, "/contratos/20")
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
		if got := decodeDetailBody(t, rec); got != "Acesso negado" {
			t.Fatalf("unexpected detail %q", got)
		}
	})

	t.Run("root lê contrato de qualquer entidade", func(t *testing.T) {
		rec := serveAs(t, h, usuarioRoot(), http.MethodGet, "/contratos/20")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})
}

func TestListContratosTenantScope(t *testing.T) {
	h := &Handler{repo: seededStore()}

	decode := func(t *testing.T, rec *httptest.ResponseRecorder) []repo.Contrato {
		t.Helper()
		var out []repo.Contrato
		if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		return out
	}

	t.Run("root vê todas as entidades", func(t *testing.T) {
		rec := serveAs(t, h, usuarioRoot(), http.MethodGet, "/contratos")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got := decode(t, rec); len(got) != 2 {
			t.Fatalf("root should see 2 contratos, got %d", len(got))
		}
	})

	t.Run("gestor vê apenas a própria entidade", func(t *testing.T) {
		rec := serveAs(t, h, usuarioDaEntidade("GESTOR", 2), http.MethodGet, "/contratos")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		got := decode(t, rec)
		if len(got) != 1 || got[0].EntidadeID != 2 {
			t.Fatalf("gestor should see only entidade 2, got %+v", got)
		}
	})

	t.Run("usuário sem entidade não vê nada", func(t *testing.T) {
		user := repo.Usuario{ID: 7, Email: "orfao@sentinela.app", Perfil: "APOIO", Ativo: true}
		rec := serveAs(t, h, user, http.MethodGet, "/contratos")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got := decode(t, rec); len(got) != 0 {
			t.Fatalf("user without entidade should see nothing, got %+v", got)
		}
	})
}
