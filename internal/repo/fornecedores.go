package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

const fornecedorColumns = `id, entidade_id, cnpj, cpf, razao_social, nome_fantasia, situacao_cadastral, regularidade_geral, data_ultima_verificacao, total_certidoes_vencidas, ativo, created_at`

func scanFornecedor(row pgx.Row) (Fornecedor, error) {
	var f Fornecedor
	err := row.Scan(&f.ID, &f.EntidadeID, &f.CNPJ, &f.CPF, &f.RazaoSocial, &f.NomeFantasia,
		&f.SituacaoCadastral, &f.RegularidadeGeral, &f.DataUltimaVerificacao,
		&f.TotalCertidoesVencidas, &f.Ativo, &f.CriadoEm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Fornecedor{}, ErrNotFound
		}
		return Fornecedor{}, err
	}
	return f, nil
}

// GetFornecedorByID busca fornecedor pelo id.
func (q *Queries) GetFornecedorByID(ctx context.Context, id int64) (Fornecedor, error) {
	row := q.db.QueryRow(ctx, `SELECT `+fornecedorColumns+` FROM fornecedor WHERE id = $1`, id)
	return scanFornecedor(row)
}

// GetFornecedorByCNPJ busca fornecedor pelo CNPJ dentro de uma entidade.
func (q *Queries) GetFornecedorByCNPJ(ctx context.Context, entidadeID int64, cnpj string) (Fornecedor, error) {
	row := q.db.QueryRow(ctx, `SELECT `+fornecedorColumns+` FROM fornecedor WHERE entidade_id = $1 AND cnpj = $2`,
		entidadeID, cnpj)
	return scanFornecedor(row)
}

// ListFornecedores lista fornecedores; entidadeID nulo devolve todos.
func (q *Queries) ListFornecedores(ctx context.Context, entidadeID *int64) ([]Fornecedor, error) {
	rows, err := q.db.Query(ctx, `
        SELECT `+fornecedorColumns+` FROM fornecedor
        WHERE $1::bigint IS NULL OR entidade_id = $1
        ORDER BY id`, entidadeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fornecedores []Fornecedor
	for rows.Next() {
		f, err := scanFornecedor(rows)
		if err != nil {
			return nil, err
		}
		fornecedores = append(fornecedores, f)
	}
	return fornecedores, rows.Err()
}

// InsertFornecedorParams reúne os campos aceitos na criação.
type InsertFornecedorParams struct {
	EntidadeID   int64
	CNPJ         *string
	CPF          *string
	RazaoSocial  string
	NomeFantasia *string
}

// InsertFornecedor cria fornecedor e devolve o registro persistido.
func (q *Queries) InsertFornecedor(ctx context.Context, arg InsertFornecedorParams) (Fornecedor, error) {
	row := q.db.QueryRow(ctx, `
        INSERT INTO fornecedor (entidade_id, cnpj, cpf, razao_social, nome_fantasia)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING `+fornecedorColumns,
		arg.EntidadeID, arg.CNPJ, arg.CPF, arg.RazaoSocial, arg.NomeFantasia)

	f, err := scanFornecedor(row)
	if err != nil {
		return Fornecedor{}, mapError(err)
	}
	return f, nil
}

// UpdateFornecedorParams reúne alterações parciais de fornecedor.
type UpdateFornecedorParams struct {
	RazaoSocial       *string
	NomeFantasia      *string
	SituacaoCadastral *string
	RegularidadeGeral *string
	Ativo             *bool
}

// UpdateFornecedor aplica alterações parciais e devolve o registro atualizado.
func (q *Queries) UpdateFornecedor(ctx context.Context, id int64, arg UpdateFornecedorParams) (Fornecedor, error) {
	row := q.db.QueryRow(ctx, `
        UPDATE fornecedor SET
            razao_social = COALESCE($2, razao_social),
            nome_fantasia = COALESCE($3, nome_fantasia),
            situacao_cadastral = COALESCE($4, situacao_cadastral),
            regularidade_geral = COALESCE($5, regularidade_geral),
            ativo = COALESCE($6, ativo),
            updated_at = now()
        WHERE id = $1
        RETURNING `+fornecedorColumns,
		id, arg.RazaoSocial, arg.NomeFantasia, arg.SituacaoCadastral, arg.RegularidadeGeral, arg.Ativo)

	f, err := scanFornecedor(row)
	if err != nil {
		return Fornecedor{}, mapError(err)
	}
	return f, nil
}

// MarkFornecedorVerificado registra resultado de verificação no PNCP.
func (q *Queries) MarkFornecedorVerificado(ctx context.Context, id int64, regularidade string, certidoesVencidas int, when time.Time) error {
	cmd, err := q.db.Exec(ctx, `
        UPDATE fornecedor SET
            regularidade_geral = $2,
            total_certidoes_vencidas = $3,
            data_ultima_verificacao = $4,
            updated_at = now()
        WHERE id = $1`, id, regularidade, certidoesVencidas, when)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteFornecedor remove fornecedor pelo id.
func (q *Queries) DeleteFornecedor(ctx context.Context, id int64) error {
	cmd, err := q.db.Exec(ctx, `DELETE FROM fornecedor WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
