package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sentinela-gov/sentinela/internal/http/middleware"
	"github.com/sentinela-gov/sentinela/internal/perfil"
	"github.com/sentinela-gov/sentinela/internal/repo"
	"github.com/sentinela-gov/sentinela/internal/service"
)

func parseIDParam(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

// ListUsuarios lista usuários visíveis ao solicitante.
func (h *Handler) ListUsuarios(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUsuario(r.Context())

	usuarios, err := h.repo.ListUsuarios(r.Context(), service.TenantScope(user))
	if err != nil {
		WriteDetail(w, http.StatusInternalServerError, "erro interno")
		return
	}
	if usuarios == nil {
		usuarios = []repo.Usuario{}
	}
	WriteJSON(w, http.StatusOK, usuarios)
}

// GetUsuario devolve um usuário dentro do escopo do solicitante.
func (h *Handler) GetUsuario(w http.ResponseWriter, r *http.Request) {
	current, _ := middleware.GetUsuario(r.Context())

	id, err := parseIDParam(r, "id")
	if err != nil {
		WriteDetail(w, http.StatusUnprocessableEntity, "id inválido")
		return
	}

	user, err := h.repo.GetUsuarioByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			WriteDetail(w, http.StatusNotFound, "Usuário não encontrado")
			return
		}
		WriteDetail(w, http.StatusInternalServerError, "erro interno")
		return
	}

	if user.EntidadeID != nil && !service.CanAccessEntidade(current, *user.EntidadeID) && current.ID != user.ID {
		WriteDetail(w, http.StatusForbidden, "Acesso negado")
		return
	}

	WriteJSON(w, http.StatusOK, user)
}

// CreateUsuario cadastra usuário (ROOT e GESTOR).
func (h *Handler) CreateUsuario(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteDetail(w, http.StatusUnprocessableEntity, "corpo inválido")
		return
	}

	current, _ := middleware.GetUsuario(r.Context())
	// GESTOR só cria usuários na própria entidade.
	if current.Perfil != perfil.Root.String() {
		req.EntidadeID = current.EntidadeID
	}

	user, err := h.authService.Register(r.Context(), service.RegisterParams{
		EntidadeID: req.EntidadeID,
		Nome:       req.Nome,
		CPF:        req.CPF,
		Email:      req.Email,
		Senha:      req.Senha,
		Perfil:     req.Perfil,
	})
	if err != nil {
		WriteDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, user)
}

type usuarioUpdateRequest struct {
	Nome   *string `json:"nome"`
	Email  *string `json:"email"`
	Senha  *string `json:"senha"`
	Perfil *string `json:"perfil"`
	Ativo  *bool   `json:"ativo"`
}

// UpdateUsuario aplica alterações parciais em um usuário do escopo.
func (h *Handler) UpdateUsuario(w http.ResponseWriter, r *http.Request) {
	current, _ := middleware.GetUsuario(r.Context())

	id, err := parseIDParam(r, "id")
	if err != nil {
		WriteDetail(w, http.StatusUnprocessableEntity, "id inválido")
		return
	}

	target, err := h.repo.GetUsuarioByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			WriteDetail(w, http.StatusNotFound, "Usuário não encontrado")
			return
		}
		WriteDetail(w, http.StatusInternalServerError, "erro interno")
		return
	}

	if target.EntidadeID != nil && !service.CanAccessEntidade(current, *target.EntidadeID) && current.ID != target.ID {
		WriteDetail(w, http.StatusForbidden, "Acesso negado")
		return
	}

	var req usuarioUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteDetail(w, http.StatusUnprocessableEntity, "corpo inválido")
		return
	}

	if req.Perfil != nil {
		if _, err := perfil.Parse(*req.Perfil); err != nil {
			WriteDetail(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	params := repo.UpdateUsuarioParams{
		Nome:   req.Nome,
		Email:  req.Email,
		Perfil: req.Perfil,
		Ativo:  req.Ativo,
	}
	if req.Senha != nil {
		hash, err := h.authService.HashPassword(*req.Senha)
		if err != nil {
			WriteDetail(w, http.StatusBadRequest, err.Error())
			return
		}
		params.SenhaHash = &hash
	}

	updated, err := h.repo.UpdateUsuario(r.Context(), id, params)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			WriteDetail(w, http.StatusBadRequest, "Email já cadastrado")
			return
		}
		WriteDetail(w, http.StatusInternalServerError, "erro interno")
		return
	}

	WriteJSON(w, http.StatusOK, updated)
}

// DeleteUsuario remove usuário (ROOT e GESTOR).
func (h *Handler) DeleteUsuario(w http.ResponseWriter, r *http.Request) {
	current, _ := middleware.GetUsuario(r.Context())

	id, err := parseIDParam(r, "id")
	if err != nil {
		WriteDetail(w, http.StatusUnprocessableEntity, "id inválido")
		return
	}

	target, err := h.repo.GetUsuarioByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			WriteDetail(w, http.StatusNotFound, "Usuário não encontrado")
			return
		}
		WriteDetail(w, http.StatusInternalServerError, "erro interno")
		return
	}

	if target.EntidadeID != nil && !service.CanAccessEntidade(current, *target.EntidadeID) {
		WriteDetail(w, http.StatusForbidden, "Acesso negado")
		return
	}

	if err := h.repo.DeleteUsuario(r.Context(), id); err != nil {
		WriteDetail(w, http.StatusInternalServerError, "erro interno")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"message": "Usuário removido com sucesso"})
}
