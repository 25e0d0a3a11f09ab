package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/sentinela-gov/sentinela/internal/db"
)

const contratoColumns = `id, entidade_id, numero_contrato, numero_processo, objeto, fornecedor_id, valor_global, valor_executado, data_assinatura, data_inicio, data_termino, vigencia_meses, modalidade, tipo_contrato, gestor_id, status, created_at`

func scanContrato(row pgx.Row) (Contrato, error) {
	var c Contrato
	err := row.Scan(&c.ID, &c.EntidadeID, &c.NumeroContrato, &c.NumeroProcesso, &c.Objeto,
		&c.FornecedorID, &c.ValorGlobal, &c.ValorExecutado, &c.DataAssinatura, &c.DataInicio,
		&c.DataTermino, &c.VigenciaMeses, &c.Modalidade, &c.TipoContrato, &c.GestorID,
		&c.Status, &c.CriadoEm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Contrato{}, ErrNotFound
		}
		return Contrato{}, err
	}
	return c, nil
}

// GetContratoByID busca contrato pelo id.
func (q *Queries) GetContratoByID(ctx context.Context, id int64) (Contrato, error) {
	row := q.db.QueryRow(ctx, `SELECT `+contratoColumns+` FROM contrato WHERE id = $1`, id)
	return scanContrato(row)
}

// ListContratos lista contratos; entidadeID nulo devolve todos.
func (q *Queries) ListContratos(ctx context.Context, entidadeID *int64) ([]Contrato, error) {
	rows, err := q.db.Query(ctx, `
        SELECT `+contratoColumns+` FROM contrato
        WHERE $1::bigint IS NULL OR entidade_id = $1
        ORDER BY id`, entidadeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contratos []Contrato
	for rows.Next() {
		c, err := scanContrato(rows)
		if err != nil {
			return nil, err
		}
		contratos = append(contratos, c)
	}
	return contratos, rows.Err()
}

// InsertContratoParams reúne os campos aceitos na criação.
type InsertContratoParams struct {
	EntidadeID     int64
	NumeroContrato string
	NumeroProcesso *string
	Objeto         string
	FornecedorID   int64
	ValorGlobal    float64
	DataAssinatura *string
	DataInicio     *string
	DataTermino    *string
	VigenciaMeses  *int
	Modalidade     *string
	TipoContrato   *string
	GestorID       *int64
}

// InsertContrato cria contrato e devolve o registro persistido.
func (q *Queries) InsertContrato(ctx context.Context, arg InsertContratoParams) (Contrato, error) {
	row := q.db.QueryRow(ctx, `
        INSERT INTO contrato (entidade_id, numero_contrato, numero_processo, objeto, fornecedor_id,
            valor_global, data_assinatura, data_inicio, data_termino, vigencia_meses, modalidade,
            tipo_contrato, gestor_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7::date, $8::date, $9::date, $10, $11, $12, $13)
        RETURNING `+contratoColumns,
		arg.EntidadeID, arg.NumeroContrato, arg.NumeroProcesso, arg.Objeto, arg.FornecedorID,
		arg.ValorGlobal, arg.DataAssinatura, arg.DataInicio, arg.DataTermino, arg.VigenciaMeses,
		arg.Modalidade, arg.TipoContrato, arg.GestorID)

	c, err := scanContrato(row)
	if err != nil {
		return Contrato{}, mapError(err)
	}
	return c, nil
}

// UpdateContratoParams reúne alterações parciais de contrato.
type UpdateContratoParams struct {
	Objeto         *string
	ValorGlobal    *float64
	ValorExecutado *float64
	DataTermino    *string
	Status         *string
	GestorID       *int64
}

// UpdateContrato aplica alterações parciais e devolve o registro atualizado.
func (q *Queries) UpdateContrato(ctx context.Context, id int64, arg UpdateContratoParams) (Contrato, error) {
	row := q.db.QueryRow(ctx, `
        UPDATE contrato SET
            objeto = COALESCE($2, objeto),
            valor_global = COALESCE($3, valor_global),
            valor_executado = COALESCE($4, valor_executado),
            data_termino = COALESCE($5::date, data_termino),
            status = COALESCE($6, status),
            gestor_id = COALESCE($7, gestor_id),
            updated_at = now()
        WHERE id = $1
        RETURNING `+contratoColumns,
		id, arg.Objeto, arg.ValorGlobal, arg.ValorExecutado, arg.DataTermino, arg.Status, arg.GestorID)

	c, err := scanContrato(row)
	if err != nil {
		return Contrato{}, mapError(err)
	}
	return c, nil
}

// DeleteContrato remove contrato e respectivo cronograma na mesma transação.
func (q *Queries) DeleteContrato(ctx context.Context, id int64) error {
	return db.WithTx(ctx, q.db, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM cronograma_fisico_fin WHERE contrato_id = $1`, id); err != nil {
			return err
		}
		cmd, err := tx.Exec(ctx, `DELETE FROM contrato WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}
