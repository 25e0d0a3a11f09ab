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

// ListFornecedores lista fornecedores visíveis ao solicitante.
func (h *Handler) ListFornecedores(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUsuario(r.Context())

	fornecedores, err := h.repo.ListFornecedores(r.Context(), service.TenantScope(user))
	if err != nil {
		WriteDetail(w, http.StatusInternalServerError, "erro interno")
		return
	}
	if fornecedores == nil {
		fornecedores = []repo.Fornecedor{}
	}
	WriteJSON(w, http.StatusOK, fornecedores)
}

// GetFornecedor devolve um fornecedor dentro do escopo do solicitante.
func (h *Handler) GetFornecedor(w http.ResponseWriter, r *http.Request) {
	current, _ := middleware.GetUsuario(r.Context())

	id, err := parseIDParam(r, "id")
	if err != nil {
		WriteDetail(w, http.StatusUnprocessableEntity, "id inválido")
		return
	}

	fornecedor, err := h.repo.GetFornecedorByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			WriteDetail(w, http.StatusNotFound, "Fornecedor não encontrado")
			return
		}
		WriteDetail(w, http.StatusInternalServerError, "erro interno")
		return
	}

	if !service.CanAccessEntidade(current, fornecedor.EntidadeID) {
		WriteDetail(w, http.StatusForbidden, "Acesso negado")
		return
	}

	WriteJSON(w, http.StatusOK, fornecedor)
}

type fornecedorCreateRequest struct {
	EntidadeID   *int64  `json:"entidade_id"`
	CNPJ         *string `json:"cnpj"`
	CPF          *string `json:"cpf"`
	RazaoSocial  string  `json:"razao_social"`
	NomeFantasia *string `json:"nome_fantasia"`
}

// CreateFornecedor cadastra fornecedor na entidade do solicitante.
func (h *Handler) CreateFornecedor(w http.ResponseWriter, r *http.Request) {
	current, _ := middleware.GetUsuario(r.Context())

	var req fornecedorCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteDetail(w, http.StatusUnprocessableEntity, "corpo inválido")
		return
	}

	entidadeID, ok := resolveEntidade(current, req.EntidadeID)
	if !ok {
		WriteDetail(w, http.StatusBadRequest, "entidade_id obrigatório")
		return
	}
	if !service.CanAccessEntidade(current, entidadeID) {
		WriteDetail(w, http.StatusForbidden, "Acesso negado")
		return
	}

	if err := util.RequireString(req.RazaoSocial, "razao_social"); err != nil {
		WriteDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.CNPJ != nil {
		if err := util.ValidateCNPJ(*req.CNPJ); err != nil {
			WriteDetail(w, http.StatusBadRequest, err.Error())
			return
		}
		cleaned := util.OnlyDigits(*req.CNPJ)
		req.CNPJ = &cleaned
	}

	fornecedor, err := h.repo.InsertFornecedor(r.Context(), repo.InsertFornecedorParams{
		EntidadeID:   entidadeID,
		CNPJ:         req.CNPJ,
		CPF:          req.CPF,
		RazaoSocial:  req.RazaoSocial,
		NomeFantasia: req.NomeFantasia,
	})
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			WriteDetail(w, http.StatusBadRequest, "Fornecedor já cadastrado para esta entidade")
			return
		}
		WriteDetail(w, http.StatusInternalServerError, "erro interno")
		return
	}

	WriteJSON(w, http.StatusOK, fornecedor)
}

type fornecedorUpdateRequest struct {
	RazaoSocial       *string `json:"razao_social"`
	NomeFantasia      *string `json:"nome_fantasia"`
	SituacaoCadastral *string `json:"situacao_cadastral"`
	RegularidadeGeral *string `json:"regularidade_geral"`
	Ativo             *bool   `json:"ativo"`
}

// UpdateFornecedor aplica alterações parciais dentro do escopo.
func (h *Handler) UpdateFornecedor(w http.ResponseWriter, r *http.Request) {
	current, _ := middleware.GetUsuario(r.Context())

	id, err := parseIDParam(r, "id")
	if err != nil {
		WriteDetail(w, http.StatusUnprocessableEntity, "id inválido")
		return
	}

	existing, err := h.repo.GetFornecedorByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			WriteDetail(w, http.StatusNotFound, "Fornecedor não encontrado")
			return
		}
		WriteDetail(w, http.StatusInternalServerError, "erro interno")
		return
	}

	if !service.CanAccessEntidade(current, existing.EntidadeID) {
		WriteDetail(w, http.StatusForbidden, "Acesso negado")
		return
	}

	var req fornecedorUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteDetail(w, http.StatusUnprocessableEntity, "corpo inválido")
		return
	}

	fornecedor, err := h.repo.UpdateFornecedor(r.Context(), id, repo.UpdateFornecedorParams{
		RazaoSocial:       req.RazaoSocial,
		NomeFantasia:      req.NomeFantasia,
		SituacaoCadastral: req.SituacaoCadastral,
		RegularidadeGeral: req.RegularidadeGeral,
		Ativo:             req.Ativo,
	})
	if err != nil {
		WriteDetail(w, http.StatusInternalServerError, "erro interno")
		return
	}

	WriteJSON(w, http.StatusOK, fornecedor)
}

// DeleteFornecedor remove fornecedor dentro do escopo.
func (h *Handler) DeleteFornecedor(w http.ResponseWriter, r *http.Request) {
	current, _ := middleware.GetUsuario(r.Context())

	id, err := parseIDParam(r, "id")
	if err != nil {
		WriteDetail(w, http.StatusUnprocessableEntity, "id inválido")
		return
	}

	existing, err := h.repo.GetFornecedorByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			WriteDetail(w, http.StatusNotFound, "Fornecedor não encontrado")
			return
		}
		WriteDetail(w, http.StatusInternalServerError, "erro interno")
		return
	}

	if !service.CanAccessEntidade(current, existing.EntidadeID) {
		WriteDetail(w, http.StatusForbidden, "Acesso negado")
		return
	}

	if err := h.repo.DeleteFornecedor(r.Context(), id); err != nil {
		WriteDetail(w, http.StatusInternalServerError, "erro interno")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"message": "Fornecedor removido com sucesso"})
}

// resolveEntidade escolhe a entidade alvo: ROOT precisa informar, os demais
// herdam a própria.
func resolveEntidade(current repo.Usuario, requested *int64) (int64, bool) {
	if requested != nil {
		return *requested, true
	}
	if current.EntidadeID != nil {
		return *current.EntidadeID, true
	}
	return 0, false
}
