package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestBuildResumoAggregatesAndDegrades(t *testing.T) {
	agora := time.Now()
	vence := agora.Add(10 * 24 * time.Hour)
	longe := agora.Add(90 * 24 * time.Hour)

	mux := http.NewServeMux()
	mux.HandleFunc("/entidades", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]Entidade{{ID: 1}, {ID: 2}})
	})
	// Falha parcial: usuários fora do ar não derruba o painel.
	mux.HandleFunc("/usuarios", func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusInternalServerError, "erro interno")
	})
	mux.HandleFunc("/fornecedores", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]Fornecedor{{ID: 1}})
	})
	mux.HandleFunc("/contratos", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]Contrato{
			{ID: 1, ValorGlobal: 1000, ValorExecutado: 400, Status: "VIGENTE", DataTermino: &vence},
			{ID: 2, ValorGlobal: 500, ValorExecutado: 500, Status: "CONCLUIDO", DataTermino: &longe},
		})
	})
	mux.HandleFunc("/cronogramas", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]Cronograma{{ID: 1}, {ID: 2}, {ID: 3}})
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	api := NewAPIClient(srv.URL, 0)
	api.SetToken("qualquer")

	resumo := BuildResumo(context.Background(), api, zerolog.Nop())

	if resumo.TotalEntidades != 2 {
		t.Fatalf("expected 2 entidades, got %d", resumo.TotalEntidades)
	}
	if resumo.TotalUsuarios != 0 {
		t.Fatalf("failed fetch must degrade to zero, got %d", resumo.TotalUsuarios)
	}
	if resumo.TotalFornecedores != 1 || resumo.TotalContratos != 2 || resumo.TotalCronogramas != 3 {
		t.Fatalf("unexpected totals %+v", resumo)
	}
	if resumo.ValorGlobalTotal != 1500 || resumo.ValorExecutado != 900 {
		t.Fatalf("unexpected sums %+v", resumo)
	}
	if resumo.ContratosVigentes != 1 {
		t.Fatalf("expected 1 vigente, got %d", resumo.ContratosVigentes)
	}
	if resumo.ContratosVencendo != 1 {
		t.Fatalf("expected 1 vencendo na janela, got %d", resumo.ContratosVencendo)
	}
}
