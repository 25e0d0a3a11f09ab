package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/sentinela-gov/sentinela/internal/http/middleware"
	"github.com/sentinela-gov/sentinela/internal/repo"
	"github.com/sentinela-gov/sentinela/internal/service"
)

// ListCronogramas lista etapas de cronograma no escopo do solicitante.
// Aceita ?contrato_id= para limitar a um contrato.
func (h *Handler) ListCronogramas(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUsuario(r.Context())

	var contratoID *int64
	if raw := r.URL.Query().Get("contrato_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			WriteDetail(w, http.StatusUnprocessableEntity, "contrato_id inválido")
			return
		}
		contratoID = &id
	}

	etapas, err := h.repo.ListCronogramas(r.Context(), service.TenantScope(user), contratoID)
	if err != nil {
		WriteDetail(w, http.StatusInternalServerError, "erro interno")
		return
	}
	if etapas == nil {
		etapas = []repo.CronogramaFisicoFin{}
	}
	WriteJSON(w, http.StatusOK, etapas)
}

// GetCronograma devolve uma etapa do cronograma dentro do escopo do
// solicitante.
func (h *Handler) GetCronograma(w http.ResponseWriter, r *http.Request) {
	current, _ := middleware.GetUsuario(r.Context())

	id, err := parseIDParam(r, "id")
	if err != nil {
		WriteDetail(w, http.StatusUnprocessableEntity, "id inválido")
		return
	}

	etapa, err := h.repo.GetCronogramaByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			WriteDetail(w, http.StatusNotFound, "Etapa do cronograma não encontrada")
			return
		}
		WriteDetail(w, http.StatusInternalServerError, "erro interno")
		return
	}

	contrato, err := h.repo.GetContratoByID(r.Context(), etapa.ContratoID)
	if err != nil {
		WriteDetail(w, http.StatusInternalServerError, "erro interno")
		return
	}
	if !service.CanAccessEntidade(current, contrato.EntidadeID) {
		WriteDetail(w, http.StatusForbidden, "Acesso negado")
		return
	}

	WriteJSON(w, http.StatusOK, etapa)
}

type cronogramaCreateRequest struct {
	ContratoID          int64    `json:"contrato_id"`
	Etapa               *string  `json:"etapa"`
	PercentualPlanejado *float64 `json:"percentual_planejado"`
	DataPrevista        *string  `json:"data_prevista"`
	Status              *string  `json:"status"`
}

// CreateCronograma cadastra etapa vinculada a contrato do escopo.
func (h *Handler) CreateCronograma(w http.ResponseWriter, r *http.Request) {
	current, _ := middleware.GetUsuario(r.Context())

	var req cronogramaCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteDetail(w, http.StatusUnprocessableEntity, "corpo inválido")
		return
	}

	contrato, err := h.repo.GetContratoByID(r.Context(), req.ContratoID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			WriteDetail(w, http.StatusBadRequest, "Contrato não encontrado")
			return
		}
		WriteDetail(w, http.StatusInternalServerError, "erro interno")
		return
	}
	if !service.CanAccessEntidade(current, contrato.EntidadeID) {
		WriteDetail(w, http.StatusForbidden, "Acesso negado")
		return
	}

	etapa, err := h.repo.InsertCronograma(r.Context(), repo.InsertCronogramaParams{
		ContratoID:          req.ContratoID,
		Etapa:               req.Etapa,
		PercentualPlanejado: req.PercentualPlanejado,
		DataPrevista:        req.DataPrevista,
		Status:              req.Status,
	})
	if err != nil {
		WriteDetail(w, http.StatusInternalServerError, "erro interno")
		return
	}

	WriteJSON(w, http.StatusOK, etapa)
}

type cronogramaUpdateRequest struct {
	PercentualExecutado *float64 `json:"percentual_executado"`
	DataRealizada       *string  `json:"data_realizada"`
	Status              *string  `json:"status"`
}

// UpdateCronograma registra execução de uma etapa do escopo.
func (h *Handler) UpdateCronograma(w http.ResponseWriter, r *http.Request) {
	current, _ := middleware.GetUsuario(r.Context())

	id, err := parseIDParam(r, "id")
	if err != nil {
		WriteDetail(w, http.StatusUnprocessableEntity, "id inválido")
		return
	}

	existing, err := h.repo.GetCronogramaByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			WriteDetail(w, http.StatusNotFound, "Etapa não encontrada")
			return
		}
		WriteDetail(w, http.StatusInternalServerError, "erro interno")
		return
	}

	contrato, err := h.repo.GetContratoByID(r.Context(), existing.ContratoID)
	if err != nil {
		WriteDetail(w, http.StatusInternalServerError, "erro interno")
		return
	}
	if !service.CanAccessEntidade(current, contrato.EntidadeID) {
		WriteDetail(w, http.StatusForbidden, "Acesso negado")
		return
	}

	var req cronogramaUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteDetail(w, http.StatusUnprocessableEntity, "corpo inválido")
		return
	}

	etapa, err := h.repo.UpdateCronograma(r.Context(), id, repo.UpdateCronogramaParams{
		PercentualExecutado: req.PercentualExecutado,
		DataRealizada:       req.DataRealizada,
		Status:              req.Status,
	})
	if err != nil {
		WriteDetail(w, http.StatusInternalServerError, "erro interno")
		return
	}

	WriteJSON(w, http.StatusOK, etapa)
}
