// Package perfil define o conjunto fechado de perfis de acesso do Sentinela
// e a avaliação de política usada para liberar ou negar regiões do sistema.
package perfil

import (
	"fmt"
	"strings"
)

// Perfil classifica o papel de um usuário no sistema.
type Perfil string

const (
	Root          Perfil = "ROOT"
	Gestor        Perfil = "GESTOR"
	FiscalTecnico Perfil = "FISCAL_TECNICO"
	FiscalAdm     Perfil = "FISCAL_ADM"
	Apoio         Perfil = "APOIO"
	Auditor       Perfil = "AUDITOR"
)

// Todos lista os perfis válidos em ordem estável.
func Todos() []Perfil {
	return []Perfil{Root, Gestor, FiscalTecnico, FiscalAdm, Apoio, Auditor}
}

// Parse valida uma string contra o conjunto fechado de perfis.
func Parse(value string) (Perfil, error) {
	switch Perfil(strings.ToUpper(strings.TrimSpace(value))) {
	case Root:
		return Root, nil
	case Gestor:
		return Gestor, nil
	case FiscalTecnico:
		return FiscalTecnico, nil
	case FiscalAdm:
		return FiscalAdm, nil
	case Apoio:
		return Apoio, nil
	case Auditor:
		return Auditor, nil
	default:
		return "", fmt.Errorf("perfil desconhecido: %q", value)
	}
}

// String devolve a forma canônica do perfil.
func (p Perfil) String() string {
	return string(p)
}

// Valido informa se o valor pertence ao conjunto fechado.
func (p Perfil) Valido() bool {
	_, err := Parse(string(p))
	return err == nil
}
