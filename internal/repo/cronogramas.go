package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

const cronogramaColumns = `id, contrato_id, etapa, percentual_planejado, percentual_executado, data_prevista, data_realizada, status`

func scanCronograma(row pgx.Row) (CronogramaFisicoFin, error) {
	var c CronogramaFisicoFin
	err := row.Scan(&c.ID, &c.ContratoID, &c.Etapa, &c.PercentualPlanejado,
		&c.PercentualExecutado, &c.DataPrevista, &c.DataRealizada, &c.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return CronogramaFisicoFin{}, ErrNotFound
		}
		return CronogramaFisicoFin{}, err
	}
	return c, nil
}

// GetCronogramaByID busca etapa de cronograma pelo id.
func (q *Queries) GetCronogramaByID(ctx context.Context, id int64) (CronogramaFisicoFin, error) {
	row := q.db.QueryRow(ctx, `SELECT `+cronogramaColumns+` FROM cronograma_fisico_fin WHERE id = $1`, id)
	return scanCronograma(row)
}

// ListCronogramas lista etapas; entidadeID nulo devolve todas, contratoID
// opcionalmente restringe a um contrato.
func (q *Queries) ListCronogramas(ctx context.Context, entidadeID *int64, contratoID *int64) ([]CronogramaFisicoFin, error) {
	rows, err := q.db.Query(ctx, `
        SELECT c.id, c.contrato_id, c.etapa, c.percentual_planejado, c.percentual_executado,
               c.data_prevista, c.data_realizada, c.status
        FROM cronograma_fisico_fin c
        JOIN contrato ct ON ct.id = c.contrato_id
        WHERE ($1::bigint IS NULL OR ct.entidade_id = $1)
          AND ($2::bigint IS NULL OR c.contrato_id = $2)
        ORDER BY c.id`, entidadeID, contratoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var etapas []CronogramaFisicoFin
	for rows.Next() {
		c, err := scanCronograma(rows)
		if err != nil {
			return nil, err
		}
		etapas = append(etapas, c)
	}
	return etapas, rows.Err()
}

// InsertCronogramaParams reúne os campos aceitos na criação.
type InsertCronogramaParams struct {
	ContratoID          int64
	Etapa               *string
	PercentualPlanejado *float64
	DataPrevista        *string
	Status              *string
}

// InsertCronograma cria etapa e devolve o registro persistido.
func (q *Queries) InsertCronograma(ctx context.Context, arg InsertCronogramaParams) (CronogramaFisicoFin, error) {
	row := q.db.QueryRow(ctx, `
        INSERT INTO cronograma_fisico_fin (contrato_id, etapa, percentual_planejado, data_prevista, status)
        VALUES ($1, $2, $3, $4::date, $5)
        RETURNING `+cronogramaColumns,
		arg.ContratoID, arg.Etapa, arg.PercentualPlanejado, arg.DataPrevista, arg.Status)

	c, err := scanCronograma(row)
	if err != nil {
		return CronogramaFisicoFin{}, mapError(err)
	}
	return c, nil
}

// UpdateCronogramaParams reúne alterações parciais de etapa.
type UpdateCronogramaParams struct {
	PercentualExecutado *float64
	DataRealizada       *string
	Status              *string
}

// UpdateCronograma aplica alterações parciais e devolve o registro atualizado.
func (q *Queries) UpdateCronograma(ctx context.Context, id int64, arg UpdateCronogramaParams) (CronogramaFisicoFin, error) {
	row := q.db.QueryRow(ctx, `
        UPDATE cronograma_fisico_fin SET
            percentual_executado = COALESCE($2, percentual_executado),
            data_realizada = COALESCE($3::date, data_realizada),
            status = COALESCE($4, status)
        WHERE id = $1
        RETURNING `+cronogramaColumns,
		id, arg.PercentualExecutado, arg.DataRealizada, arg.Status)

	c, err := scanCronograma(row)
	if err != nil {
		return CronogramaFisicoFin{}, mapError(err)
	}
	return c, nil
}
