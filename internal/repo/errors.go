package repo

import "errors"

var (
	// ErrNotFound é retornado quando nenhum registro é encontrado.
	ErrNotFound = errors.New("registro não encontrado")
	// ErrDuplicate é retornado quando uma restrição de unicidade é violada.
	ErrDuplicate = errors.New("registro duplicado")
)
