package service

import (
	"github.com/sentinela-gov/sentinela/internal/perfil"
	"github.com/sentinela-gov/sentinela/internal/repo"
)

// TenantScope devolve o filtro de entidade para consultas: ROOT enxerga
// todos os registros, os demais perfis apenas os da própria entidade.
// Usuário sem entidade vinculada não enxerga nada (ids começam em 1).
func TenantScope(user repo.Usuario) *int64 {
	if user.Perfil == perfil.Root.String() {
		return nil
	}
	if user.EntidadeID == nil {
		none := int64(0)
		return &none
	}
	return user.EntidadeID
}

// CanAccessEntidade verifica se o usuário alcança dados de uma entidade.
func CanAccessEntidade(user repo.Usuario, entidadeID int64) bool {
	if user.Perfil == perfil.Root.String() {
		return true
	}
	return user.EntidadeID != nil && *user.EntidadeID == entidadeID
}
