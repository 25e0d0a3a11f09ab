package http

import (
	"net/http"
	"testing"
)

func TestGetCronograma(t *testing.T) {
	h := &Handler{repo: seededStore()}

	t.Run("etapa do escopo do solicitante", func(t *testing.T) {
		rec := serveAs(t, h, usuarioDaEntidade("FISCAL_TECNICO", 1), http.MethodGet, "/cronogramas/5")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("etapa de contrato de outra entidade", func(t *testing.T) {
		rec := serveAs(t, h, usuarioDaEntidade("FISCAL_TECNICO", 2), http.MethodGet, "/cronogramas/5")
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("etapa inexistente", func(t *testing.T) {
		rec := serveAs(t, h, usuarioRoot(), http.MethodGet, "/cronogramas/404")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		if got := decodeDetailBody(t, rec); got != "Etapa do cronograma não encontrada" {
			t.Fatalf("unexpected detail %q", got)
		}
	})
}
