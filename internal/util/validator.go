package util

import (
	"errors"
	"net/mail"
	"strings"
)

// ValidateEmail retorna erro para e-mails inválidos.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errors.New("email obrigatório")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return errors.New("email inválido")
	}
	return nil
}

// ValidatePassword verifica requisitos mínimos de senha.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("senha deve ter pelo menos 8 caracteres")
	}
	return nil
}

// RequireString garante string não vazia.
func RequireString(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New(field + " obrigatório")
	}
	return nil
}

// ValidateCPF exige exatamente 11 dígitos numéricos.
func ValidateCPF(cpf string) error {
	cpf = OnlyDigits(cpf)
	if len(cpf) != 11 {
		return errors.New("cpf deve conter 11 dígitos")
	}
	return nil
}

// ValidateCNPJ exige exatamente 14 dígitos numéricos.
func ValidateCNPJ(cnpj string) error {
	if len(OnlyDigits(cnpj)) != 14 {
		return errors.New("CNPJ inválido. Deve conter 14 dígitos.")
	}
	return nil
}

// OnlyDigits remove pontuação de documentos (CPF/CNPJ).
func OnlyDigits(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
