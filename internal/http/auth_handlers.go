package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sentinela-gov/sentinela/internal/http/middleware"
	"github.com/sentinela-gov/sentinela/internal/service"
)

type loginRequest struct {
	Email    string `json:"email"`
	Senha    string `json:"senha"`
	TOTPCode string `json:"totp_code"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Usuario     any    `json:"usuario"`
}

// Login autentica usuário e retorna token JWT.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteDetail(w, http.StatusUnprocessableEntity, "corpo inválido")
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Senha, req.TOTPCode)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials),
			errors.Is(err, service.ErrTOTPRequired),
			errors.Is(err, service.ErrTOTPInvalid):
			WriteDetail(w, http.StatusUnauthorized, err.Error())
		case errors.Is(err, service.ErrAccountDisabled):
			WriteDetail(w, http.StatusForbidden, err.Error())
		default:
			WriteDetail(w, http.StatusInternalServerError, "erro interno")
		}
		return
	}

	WriteJSON(w, http.StatusOK, loginResponse{
		AccessToken: result.AccessToken,
		TokenType:   "bearer",
		Usuario:     result.Usuario,
	})
}

type registerRequest struct {
	EntidadeID *int64 `json:"entidade_id"`
	Nome       string `json:"nome"`
	CPF        string `json:"cpf"`
	Email      string `json:"email"`
	Senha      string `json:"senha"`
	Perfil     string `json:"perfil"`
}

// Register cadastra novo usuário.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteDetail(w, http.StatusUnprocessableEntity, "corpo inválido")
		return
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

// Me retorna dados do usuário autenticado.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUsuario(r.Context())
	if !ok {
		WriteDetail(w, http.StatusUnauthorized, "Token inválido")
		return
	}
	WriteJSON(w, http.StatusOK, user)
}

type totpSetupResponse struct {
	Secret string `json:"secret"`
	URI    string `json:"uri"`
	QRCode string `json:"qr_code"`
}

// TOTPSetup inicia o cadastro do segundo fator do usuário autenticado.
func (h *Handler) TOTPSetup(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUsuario(r.Context())
	if !ok {
		WriteDetail(w, http.StatusUnauthorized, "Token inválido")
		return
	}

	enrollment, err := h.authService.SetupTOTP(r.Context(), user)
	if err != nil {
		WriteDetail(w, http.StatusInternalServerError, "erro interno")
		return
	}

	WriteJSON(w, http.StatusOK, totpSetupResponse{
		Secret: enrollment.Secret,
		URI:    enrollment.URI,
		QRCode: enrollment.QRCode,
	})
}

type totpVerifyRequest struct {
	TOTPCode string `json:"totp_code"`
}

type totpVerifyResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// TOTPVerify confirma e ativa o segundo fator.
func (h *Handler) TOTPVerify(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUsuario(r.Context())
	if !ok {
		WriteDetail(w, http.StatusUnauthorized, "Token inválido")
		return
	}

	var req totpVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteDetail(w, http.StatusUnprocessableEntity, "corpo inválido")
		return
	}

	success, message, err := h.authService.VerifyTOTPSetup(r.Context(), user, req.TOTPCode)
	if err != nil {
		if errors.Is(err, service.ErrTOTPNotPending) {
			WriteDetail(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteDetail(w, http.StatusInternalServerError, "erro interno")
		return
	}

	WriteJSON(w, http.StatusOK, totpVerifyResponse{Success: success, Message: message})
}

type totpDisableRequest struct {
	Senha string `json:"senha"`
}

// TOTPDisable desativa o segundo fator mediante senha.
func (h *Handler) TOTPDisable(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUsuario(r.Context())
	if !ok {
		WriteDetail(w, http.StatusUnauthorized, "Token inválido")
		return
	}

	var req totpDisableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteDetail(w, http.StatusUnprocessableEntity, "corpo inválido")
		return
	}

	if err := h.authService.DisableTOTP(r.Context(), user, req.Senha); err != nil {
		if errors.Is(err, service.ErrWrongPassword) {
			WriteDetail(w, http.StatusUnauthorized, err.Error())
			return
		}
		WriteDetail(w, http.StatusInternalServerError, "erro interno")
		return
	}

	WriteJSON(w, http.StatusOK, totpVerifyResponse{Success: true, Message: "TOTP desativado com sucesso"})
}
