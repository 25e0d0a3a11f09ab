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

// ListContratos lista contratos visíveis ao solicitante.
func (h *Handler) ListContratos(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUsuario(r.Context())

	contratos, err := h.repo.ListContratos(r.Context(), service.TenantScope(user))
	if err != nil {
		WriteDetail(w, http.StatusInternalServerError, "erro interno")
		return
	}
	if contratos == nil {
		contratos = []repo.Contrato{}
	}
	WriteJSON(w, http.StatusOK, contratos)
}

// GetContrato devolve um contrato dentro do escopo do solicitante.
func (h *Handler) GetContrato(w http.ResponseWriter, r *http.Request) {
	current, _ := middleware.GetUsuario(r.Context())

	id, err := parseIDParam(r, "id")
	if err != nil {
		WriteDetail(w, http.StatusUnprocessableEntity, "id inválido")
		return
	}

	contrato, err := h.repo.GetContratoByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			WriteDetail(w, http.StatusNotFound, "Contrato não encontrado")
			return
		}
		WriteDetail(w, http.StatusInternalServerError, "erro interno")
		return
	}

	if !service.CanAccessEntidade(current, contrato.EntidadeID) {
		WriteDetail(w, http.StatusForbidden, "Acesso negado")
		return
	}

	WriteJSON(w, http.StatusOK, contrato)
}

type contratoCreateRequest struct {
	EntidadeID     *int64   `json:"entidade_id"`
	NumeroContrato string   `json:"numero_contrato"`
	NumeroProcesso *string  `json:"numero_processo"`
	Objeto         string   `json:"objeto"`
	FornecedorID   int64    `json:"fornecedor_id"`
	ValorGlobal    float64  `json:"valor_global"`
	DataAssinatura *string  `json:"data_assinatura"`
	DataInicio     *string  `json:"data_inicio"`
	DataTermino    *string  `json:"data_termino"`
	VigenciaMeses  *int     `json:"vigencia_meses"`
	Modalidade     *string  `json:"modalidade"`
	TipoContrato   *string  `json:"tipo_contrato"`
	GestorID       *int64   `json:"gestor_id"`
}

// CreateContrato cadastra contrato na entidade do solicitante.
func (h *Handler) CreateContrato(w http.ResponseWriter, r *http.Request) {
	current, _ := middleware.GetUsuario(r.Context())

	var req contratoCreateRequest
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

	if err := util.RequireString(req.NumeroContrato, "numero_contrato"); err != nil {
		WriteDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := util.RequireString(req.Objeto, "objeto"); err != nil {
		WriteDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	// Fornecedor precisa existir e pertencer à mesma entidade.
	fornecedor, err := h.repo.GetFornecedorByID(r.Context(), req.FornecedorID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			WriteDetail(w, http.StatusBadRequest, "Fornecedor não encontrado")
			return
		}
		WriteDetail(w, http.StatusInternalServerError, "erro interno")
		return
	}
	if fornecedor.EntidadeID != entidadeID {
		WriteDetail(w, http.StatusBadRequest, "Fornecedor pertence a outra entidade")
		return
	}

	contrato, err := h.repo.InsertContrato(r.Context(), repo.InsertContratoParams{
		EntidadeID:     entidadeID,
		NumeroContrato: req.NumeroContrato,
		NumeroProcesso: req.NumeroProcesso,
		Objeto:         req.Objeto,
		FornecedorID:   req.FornecedorID,
		ValorGlobal:    req.ValorGlobal,
		DataAssinatura: req.DataAssinatura,
		DataInicio:     req.DataInicio,
		DataTermino:    req.DataTermino,
		VigenciaMeses:  req.VigenciaMeses,
		Modalidade:     req.Modalidade,
		TipoContrato:   req.TipoContrato,
		GestorID:       req.GestorID,
	})
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			WriteDetail(w, http.StatusBadRequest, "Número de contrato já cadastrado para esta entidade")
			return
		}
		WriteDetail(w, http.StatusInternalServerError, "erro interno")
		return
	}

	WriteJSON(w, http.StatusOK, contrato)
}

type contratoUpdateRequest struct {
	Objeto         *string  `json:"objeto"`
	ValorGlobal    *float64 `json:"valor_global"`
	ValorExecutado *float64 `json:"valor_executado"`
	DataTermino    *string  `json:"data_termino"`
	Status         *string  `json:"status"`
	GestorID       *int64   `json:"gestor_id"`
}

// UpdateContrato aplica alterações parciais dentro do escopo.
func (h *Handler) UpdateContrato(w http.ResponseWriter, r *http.Request) {
	current, _ := middleware.GetUsuario(r.Context())

	id, err := parseIDParam(r, "id")
	if err != nil {
		WriteDetail(w, http.StatusUnprocessableEntity, "id inválido")
		return
	}

	existing, err := h.repo.GetContratoByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			WriteDetail(w, http.StatusNotFound, "Contrato não encontrado")
			return
		}
		WriteDetail(w, http.StatusInternalServerError, "erro interno")
		return
	}

	if !service.CanAccessEntidade(current, existing.EntidadeID) {
		WriteDetail(w, http.StatusForbidden, "Acesso negado")
		return
	}

	var req contratoUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteDetail(w, http.StatusUnprocessableEntity, "corpo inválido")
		return
	}

	contrato, err := h.repo.UpdateContrato(r.Context(), id, repo.UpdateContratoParams{
		Objeto:         req.Objeto,
		ValorGlobal:    req.ValorGlobal,
		ValorExecutado: req.ValorExecutado,
		DataTermino:    req.DataTermino,
		Status:         req.Status,
		GestorID:       req.GestorID,
	})
	if err != nil {
		WriteDetail(w, http.StatusInternalServerError, "erro interno")
		return
	}

	WriteJSON(w, http.StatusOK, contrato)
}

// DeleteContrato remove contrato e cronograma associado dentro do escopo.
func (h *Handler) DeleteContrato(w http.ResponseWriter, r *http.Request) {
	current, _ := middleware.GetUsuario(r.Context())

	id, err := parseIDParam(r, "id")
	if err != nil {
		WriteDetail(w, http.StatusUnprocessableEntity, "id inválido")
		return
	}

	existing, err := h.repo.GetContratoByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			WriteDetail(w, http.StatusNotFound, "Contrato não encontrado")
			return
		}
		WriteDetail(w, http.StatusInternalServerError, "erro interno")
		return
	}

	if !service.CanAccessEntidade(current, existing.EntidadeID) {
		WriteDetail(w, http.StatusForbidden, "Acesso negado")
		return
	}

	if err := h.repo.DeleteContrato(r.Context(), id); err != nil {
		WriteDetail(w, http.StatusInternalServerError, "erro interno")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"message": "Contrato removido com sucesso"})
}
