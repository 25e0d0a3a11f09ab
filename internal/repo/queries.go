package repo

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Queries agrupa o acesso a dados sobre o pool pgx.
type Queries struct {
	db *pgxpool.Pool
}

// New cria o repositório.
func New(db *pgxpool.Pool) *Queries {
	return &Queries{db: db}
}

// mapError traduz erros do driver para sentinelas do repositório.
func mapError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}
