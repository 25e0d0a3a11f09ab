package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

const entidadeColumns = `id, cnpj, razao_social, nome_fantasia, ug_codigo, status, data_status, motivo_status, logo_url, created_at`

func scanEntidade(row pgx.Row) (Entidade, error) {
	var e Entidade
	err := row.Scan(&e.ID, &e.CNPJ, &e.RazaoSocial, &e.NomeFantasia, &e.UGCodigo,
		&e.Status, &e.DataStatus, &e.MotivoStatus, &e.LogoURL, &e.CriadoEm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entidade{}, ErrNotFound
		}
		return Entidade{}, err
	}
	return e, nil
}

// GetEntidadeByID busca entidade pelo id.
func (q *Queries) GetEntidadeByID(ctx context.Context, id int64) (Entidade, error) {
	row := q.db.QueryRow(ctx, `SELECT `+entidadeColumns+` FROM entidade WHERE id = $1`, id)
	return scanEntidade(row)
}

// ListEntidades lista entidades; entidadeID nulo devolve todas.
func (q *Queries) ListEntidades(ctx context.Context, entidadeID *int64) ([]Entidade, error) {
	rows, err := q.db.Query(ctx, `
        SELECT `+entidadeColumns+` FROM entidade
        WHERE $1::bigint IS NULL OR id = $1
        ORDER BY id`, entidadeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entidades []Entidade
	for rows.Next() {
		e, err := scanEntidade(rows)
		if err != nil {
			return nil, err
		}
		entidades = append(entidades, e)
	}
	return entidades, rows.Err()
}

// InsertEntidadeParams reúne os campos aceitos na criação.
type InsertEntidadeParams struct {
	CNPJ         string
	RazaoSocial  string
	NomeFantasia *string
	UGCodigo     *string
	LogoURL      *string
}

// InsertEntidade cria entidade e devolve o registro persistido.
func (q *Queries) InsertEntidade(ctx context.Context, arg InsertEntidadeParams) (Entidade, error) {
	row := q.db.QueryRow(ctx, `
        INSERT INTO entidade (cnpj, razao_social, nome_fantasia, ug_codigo, logo_url)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING `+entidadeColumns,
		arg.CNPJ, arg.RazaoSocial, arg.NomeFantasia, arg.UGCodigo, arg.LogoURL)

	e, err := scanEntidade(row)
	if err != nil {
		return Entidade{}, mapError(err)
	}
	return e, nil
}

// UpdateEntidadeParams reúne alterações parciais de entidade.
type UpdateEntidadeParams struct {
	RazaoSocial  *string
	NomeFantasia *string
	UGCodigo     *string
	Status       *string
	MotivoStatus *string
	LogoURL      *string
}

// UpdateEntidade aplica alterações parciais e devolve o registro atualizado.
func (q *Queries) UpdateEntidade(ctx context.Context, id int64, arg UpdateEntidadeParams) (Entidade, error) {
	row := q.db.QueryRow(ctx, `
        UPDATE entidade SET
            razao_social = COALESCE($2, razao_social),
            nome_fantasia = COALESCE($3, nome_fantasia),
            ug_codigo = COALESCE($4, ug_codigo),
            status = COALESCE($5, status),
            data_status = CASE WHEN $5::varchar IS NULL THEN data_status ELSE now() END,
            motivo_status = COALESCE($6, motivo_status),
            logo_url = COALESCE($7, logo_url),
            updated_at = now()
        WHERE id = $1
        RETURNING `+entidadeColumns,
		id, arg.RazaoSocial, arg.NomeFantasia, arg.UGCodigo, arg.Status, arg.MotivoStatus, arg.LogoURL)

	e, err := scanEntidade(row)
	if err != nil {
		return Entidade{}, mapError(err)
	}
	return e, nil
}

// DeleteEntidade remove entidade pelo id.
func (q *Queries) DeleteEntidade(ctx context.Context, id int64) error {
	cmd, err := q.db.Exec(ctx, `DELETE FROM entidade WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
