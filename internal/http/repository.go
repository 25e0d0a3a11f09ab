package http

import (
	"context"
	"time"

	"github.com/sentinela-gov/sentinela/internal/repo"
)

// dataStore é o que os handlers precisam da camada de persistência.
// *repo.Queries implementa; testes usam stubs.
type dataStore interface {
	GetUsuarioByID(ctx context.Context, id int64) (repo.Usuario, error)
	ListUsuarios(ctx context.Context, entidadeID *int64) ([]repo.Usuario, error)
	UpdateUsuario(ctx context.Context, id int64, arg repo.UpdateUsuarioParams) (repo.Usuario, error)
	DeleteUsuario(ctx context.Context, id int64) error

	GetEntidadeByID(ctx context.Context, id int64) (repo.Entidade, error)
	ListEntidades(ctx context.Context, entidadeID *int64) ([]repo.Entidade, error)
	InsertEntidade(ctx context.Context, arg repo.InsertEntidadeParams) (repo.Entidade, error)
	UpdateEntidade(ctx context.Context, id int64, arg repo.UpdateEntidadeParams) (repo.Entidade, error)
	DeleteEntidade(ctx context.Context, id int64) error

	GetFornecedorByID(ctx context.Context, id int64) (repo.Fornecedor, error)
	GetFornecedorByCNPJ(ctx context.Context, entidadeID int64, cnpj string) (repo.Fornecedor, error)
	ListFornecedores(ctx context.Context, entidadeID *int64) ([]repo.Fornecedor, error)
	InsertFornecedor(ctx context.Context, arg repo.InsertFornecedorParams) (repo.Fornecedor, error)
	UpdateFornecedor(ctx context.Context, id int64, arg repo.UpdateFornecedorParams) (repo.Fornecedor, error)
	MarkFornecedorVerificado(ctx context.Context, id int64, regularidade string, certidoesVencidas int, when time.Time) error
	DeleteFornecedor(ctx context.Context, id int64) error

	GetContratoByID(ctx context.Context, id int64) (repo.Contrato, error)
	ListContratos(ctx context.Context, entidadeID *int64) ([]repo.Contrato, error)
	InsertContrato(ctx context.Context, arg repo.InsertContratoParams) (repo.Contrato, error)
	UpdateContrato(ctx context.Context, id int64, arg repo.UpdateContratoParams) (repo.Contrato, error)
	DeleteContrato(ctx context.Context, id int64) error

	GetCronogramaByID(ctx context.Context, id int64) (repo.CronogramaFisicoFin, error)
	ListCronogramas(ctx context.Context, entidadeID *int64, contratoID *int64) ([]repo.CronogramaFisicoFin, error)
	InsertCronograma(ctx context.Context, arg repo.InsertCronogramaParams) (repo.CronogramaFisicoFin, error)
	UpdateCronograma(ctx context.Context, id int64, arg repo.UpdateCronogramaParams) (repo.CronogramaFisicoFin, error)
}

var _ dataStore = (*repo.Queries)(nil)
