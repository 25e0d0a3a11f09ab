package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sentinela-gov/sentinela/internal/http/middleware"
	"github.com/sentinela-gov/sentinela/internal/repo"
	"github.com/sentinela-gov/sentinela/internal/service"
	"github.com/sentinela-gov/sentinela/internal/util"
)

// ListEntidades lista entidades visíveis ao solicitante.
func (h *Handler) ListEntidades(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUsuario(r.Context())

	entidades, err := h.repo.ListEntidades(r.Context(), service.TenantScope(user))
	if err != nil {
		WriteDetail(w, http.StatusInternalServerError, "erro interno")
		return
	}
	if entidades == nil {
		entidades = []repo.Entidade{}
	}
	WriteJSON(w, http.StatusOK, entidades)
}

// GetEntidade devolve uma entidade dentro do escopo do solicitante.
func (h *Handler) GetEntidade(w http.ResponseWriter, r *http.Request) {
	current, _ := middleware.GetUsuario(r.Context())

	id, err := parseIDParam(r, "id")
	if err != nil {
		WriteDetail(w, http.StatusUnprocessableEntity, "id inválido")
		return
	}

	if !service.CanAccessEntidade(current, id) {
		WriteDetail(w, http.StatusForbidden, "Acesso negado")
		return
	}

	entidade, err := h.repo.GetEntidadeByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			WriteDetail(w, http.StatusNotFound, "Entidade não encontrada")
			return
		}
		WriteDetail(w, http.StatusInternalServerError, "erro interno")
		return
	}

	WriteJSON(w, http.StatusOK, entidade)
}

type entidadeCreateRequest struct {
	CNPJ         string  `json:"cnpj"`
	RazaoSocial  string  `json:"razao_social"`
	NomeFantasia *string `json:"nome_fantasia"`
	UGCodigo     *string `json:"ug_codigo"`
	LogoURL      *string `json:"logo_url"`
}

// CreateEntidade cadastra entidade (apenas ROOT).
func (h *Handler) CreateEntidade(w http.ResponseWriter, r *http.Request) {
	var req entidadeCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteDetail(w, http.StatusUnprocessableEntity, "corpo inválido")
		return
	}

	if err := util.ValidateCNPJ(req.CNPJ); err != nil {
		WriteDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := util.RequireString(req.RazaoSocial, "razao_social"); err != nil {
		WriteDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	entidade, err := h.repo.InsertEntidade(r.Context(), repo.InsertEntidadeParams{
		CNPJ:         util.OnlyDigits(req.CNPJ),
		RazaoSocial:  req.RazaoSocial,
		NomeFantasia: req.NomeFantasia,
		UGCodigo:     req.UGCodigo,
		LogoURL:      req.LogoURL,
	})
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			WriteDetail(w, http.StatusBadRequest, "CNPJ já cadastrado")
			return
		}
		WriteDetail(w, http.StatusInternalServerError, "erro interno")
		return
	}

	WriteJSON(w, http.StatusOK, entidade)
}

type entidadeUpdateRequest struct {
	RazaoSocial  *string `json:"razao_social"`
	NomeFantasia *string `json:"nome_fantasia"`
	UGCodigo     *string `json:"ug_codigo"`
	Status       *string `json:"status"`
	MotivoStatus *string `json:"motivo_status"`
	LogoURL      *string `json:"logo_url"`
}

// UpdateEntidade aplica alterações parciais (ROOT e GESTOR).
func (h *Handler) UpdateEntidade(w http.ResponseWriter, r *http.Request) {
	current, _ := middleware.GetUsuario(r.Context())

	id, err := parseIDParam(r, "id")
	if err != nil {
		WriteDetail(w, http.StatusUnprocessableEntity, "id inválido")
		return
	}

	if !service.CanAccessEntidade(current, id) {
		WriteDetail(w, http.StatusForbidden, "Acesso negado")
		return
	}

	var req entidadeUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteDetail(w, http.StatusUnprocessableEntity, "corpo inválido")
		return
	}

	entidade, err := h.repo.UpdateEntidade(r.Context(), id, repo.UpdateEntidadeParams{
		RazaoSocial:  req.RazaoSocial,
		NomeFantasia: req.NomeFantasia,
		UGCodigo:     req.UGCodigo,
		Status:       req.Status,
		MotivoStatus: req.MotivoStatus,
		LogoURL:      req.LogoURL,
	})
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			WriteDetail(w, http.StatusNotFound, "Entidade não encontrada")
			return
		}
		WriteDetail(w, http.StatusInternalServerError, "erro interno")
		return
	}

	WriteJSON(w, http.StatusOK, entidade)
}

// DeleteEntidade remove entidade (apenas ROOT).
func (h *Handler) DeleteEntidade(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		WriteDetail(w, http.StatusUnprocessableEntity, "id inválido")
		return
	}

	if err := h.repo.DeleteEntidade(r.Context(), id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			WriteDetail(w, http.StatusNotFound, "Entidade não encontrada")
			return
		}
		WriteDetail(w, http.StatusInternalServerError, "erro interno")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"message": "Entidade removida com sucesso"})
}
