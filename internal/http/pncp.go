package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sentinela-gov/sentinela/internal/http/middleware"
	"github.com/sentinela-gov/sentinela/internal/pncp"
	"github.com/sentinela-gov/sentinela/internal/repo"
	"github.com/sentinela-gov/sentinela/internal/util"
)

// PNCPValidarFornecedor consulta a situação cadastral de um CNPJ no portal.
// Falha de integração vira payload status=erro em vez de 5xx, o console
// continua funcionando sem o portal.
func (h *Handler) PNCPValidarFornecedor(w http.ResponseWriter, r *http.Request) {
	current, _ := middleware.GetUsuario(r.Context())

	cnpj := util.OnlyDigits(chi.URLParam(r, "cnpj"))
	if err := util.ValidateCNPJ(cnpj); err != nil {
		WriteDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	resultado, err := h.pncp.ValidarFornecedor(r.Context(), cnpj)
	if err != nil {
		WriteJSON(w, http.StatusOK, map[string]any{
			"status":   "erro",
			"cnpj":     cnpj,
			"validado": false,
			"erro":     err.Error(),
			"fonte":    "PNCP",
		})
		return
	}

	// Cruzamento com o cadastro local da entidade do solicitante.
	var fornecedorExistente *int64
	if current.EntidadeID != nil {
		f, err := h.repo.GetFornecedorByCNPJ(r.Context(), *current.EntidadeID, cnpj)
		if err == nil {
			fornecedorExistente = &f.ID
		} else if !errors.Is(err, repo.ErrNotFound) {
			WriteDetail(w, http.StatusInternalServerError, "erro interno")
			return
		}
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"status":   "sucesso",
		"cnpj":     cnpj,
		"validado": true,
		"dados": map[string]any{
			"razao_social":       resultado.RazaoSocial,
			"nome_fantasia":      resultado.NomeFantasia,
			"situacao_cadastral": resultado.SituacaoCadastral,
			"regularidade_geral": resultado.Regularidade,
			"certidoes_vencidas": resultado.CertidoesVencidas,
			"impedimentos":       resultado.Impedimentos,
		},
		"fornecedor_existente": fornecedorExistente,
		"fonte":                "PNCP",
	})
}

// PNCPContratosFornecedor lista contratos publicados para um CNPJ.
func (h *Handler) PNCPContratosFornecedor(w http.ResponseWriter, r *http.Request) {
	cnpj := util.OnlyDigits(chi.URLParam(r, "cnpj"))
	if err := util.ValidateCNPJ(cnpj); err != nil {
		WriteDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	pagina := queryInt(r, "pagina", 1)
	tamanho := queryInt(r, "tamanho_pagina", pncp.DefaultPageSize)

	page, err := h.pncp.BuscarContratosFornecedor(r.Context(), cnpj, pagina, tamanho)
	if err != nil {
		WriteJSON(w, http.StatusOK, map[string]any{
			"status":    "erro",
			"cnpj":      cnpj,
			"erro":      err.Error(),
			"contratos": []pncp.Contrato{},
			"fonte":     "PNCP",
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"status":          "sucesso",
		"cnpj":            cnpj,
		"total_contratos": page.Total,
		"pagina":          pagina,
		"tamanho_pagina":  tamanho,
		"contratos":       page.Contratos,
		"fonte":           "PNCP",
	})
}

// PNCPCertidoesFornecedor verifica certidões e, quando o fornecedor existe
// no cadastro da entidade, grava o resultado da verificação.
func (h *Handler) PNCPCertidoesFornecedor(w http.ResponseWriter, r *http.Request) {
	current, _ := middleware.GetUsuario(r.Context())

	cnpj := util.OnlyDigits(chi.URLParam(r, "cnpj"))
	if err := util.ValidateCNPJ(cnpj); err != nil {
		WriteDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	resultado, err := h.pncp.VerificarCertidoes(r.Context(), cnpj, time.Now().UTC())
	if err != nil {
		WriteJSON(w, http.StatusOK, map[string]any{
			"status":    "erro",
			"cnpj":      cnpj,
			"erro":      err.Error(),
			"certidoes": []pncp.Certidao{},
			"fonte":     "PNCP",
		})
		return
	}

	var fornecedorAtualizado *int64
	if current.EntidadeID != nil {
		f, err := h.repo.GetFornecedorByCNPJ(r.Context(), *current.EntidadeID, cnpj)
		switch {
		case err == nil:
			if err := h.repo.MarkFornecedorVerificado(r.Context(), f.ID, resultado.Regularidade, resultado.Vencidas, time.Now().UTC()); err != nil {
				WriteDetail(w, http.StatusInternalServerError, "erro interno")
				return
			}
			fornecedorAtualizado = &f.ID
		case !errors.Is(err, repo.ErrNotFound):
			WriteDetail(w, http.StatusInternalServerError, "erro interno")
			return
		}
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"status":                "sucesso",
		"cnpj":                  cnpj,
		"fornecedor_atualizado": fornecedorAtualizado,
		"dados": map[string]any{
			"total_certidoes":    len(resultado.Certidoes),
			"certidoes_vencidas": resultado.Vencidas,
			"regularidade_geral": resultado.Regularidade,
			"certidoes":          resultado.Certidoes,
		},
		"fonte": "PNCP",
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}
