package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

const usuarioColumns = `id, entidade_id, nome, cpf, email, senha_hash, perfil, ativo, totp_secret, totp_habilitado, ultimo_login, created_at`

func scanUsuario(row pgx.Row) (Usuario, error) {
	var u Usuario
	err := row.Scan(&u.ID, &u.EntidadeID, &u.Nome, &u.CPF, &u.Email, &u.SenhaHash,
		&u.Perfil, &u.Ativo, &u.TOTPSecret, &u.TOTPHabilitado, &u.UltimoLogin, &u.CriadoEm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Usuario{}, ErrNotFound
		}
		return Usuario{}, err
	}
	return u, nil
}

// GetUsuarioByEmail busca usuário pelo e-mail normalizado.
func (q *Queries) GetUsuarioByEmail(ctx context.Context, email string) (Usuario, error) {
	row := q.db.QueryRow(ctx, `SELECT `+usuarioColumns+` FROM usuario WHERE lower(email) = $1`,
		strings.ToLower(strings.TrimSpace(email)))
	return scanUsuario(row)
}

// GetUsuarioByID busca usuário pelo id.
func (q *Queries) GetUsuarioByID(ctx context.Context, id int64) (Usuario, error) {
	row := q.db.QueryRow(ctx, `SELECT `+usuarioColumns+` FROM usuario WHERE id = $1`, id)
	return scanUsuario(row)
}

// InsertUsuarioParams reúne os campos aceitos na criação.
type InsertUsuarioParams struct {
	EntidadeID *int64
	Nome       string
	CPF        string
	Email      string
	SenhaHash  string
	Perfil     string
}

// InsertUsuario cria usuário e devolve o registro persistido.
func (q *Queries) InsertUsuario(ctx context.Context, arg InsertUsuarioParams) (Usuario, error) {
	row := q.db.QueryRow(ctx, `
        INSERT INTO usuario (entidade_id, nome, cpf, email, senha_hash, perfil)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING `+usuarioColumns,
		arg.EntidadeID, arg.Nome, arg.CPF, strings.ToLower(strings.TrimSpace(arg.Email)), arg.SenhaHash, arg.Perfil)

	u, err := scanUsuario(row)
	if err != nil {
		return Usuario{}, mapError(err)
	}
	return u, nil
}

// UpdateUsuarioParams reúne alterações parciais de usuário.
type UpdateUsuarioParams struct {
	Nome      *string
	Email     *string
	SenhaHash *string
	Perfil    *string
	Ativo     *bool
}

// UpdateUsuario aplica alterações parciais e devolve o registro atualizado.
func (q *Queries) UpdateUsuario(ctx context.Context, id int64, arg UpdateUsuarioParams) (Usuario, error) {
	row := q.db.QueryRow(ctx, `
        UPDATE usuario SET
            nome = COALESCE($2, nome),
            email = COALESCE($3, email),
            senha_hash = COALESCE($4, senha_hash),
            perfil = COALESCE($5, perfil),
            ativo = COALESCE($6, ativo),
            updated_at = now()
        WHERE id = $1
        RETURNING `+usuarioColumns,
		id, arg.Nome, lowerPtr(arg.Email), arg.SenhaHash, arg.Perfil, arg.Ativo)

	u, err := scanUsuario(row)
	if err != nil {
		return Usuario{}, mapError(err)
	}
	return u, nil
}

// ListUsuarios lista usuários; entidadeID nulo devolve todos.
func (q *Queries) ListUsuarios(ctx context.Context, entidadeID *int64) ([]Usuario, error) {
	rows, err := q.db.Query(ctx, `
        SELECT `+usuarioColumns+` FROM usuario
        WHERE $1::bigint IS NULL OR entidade_id = $1
        ORDER BY id`, entidadeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var usuarios []Usuario
	for rows.Next() {
		u, err := scanUsuario(rows)
		if err != nil {
			return nil, err
		}
		usuarios = append(usuarios, u)
	}
	return usuarios, rows.Err()
}

// DeleteUsuario remove usuário pelo id.
func (q *Queries) DeleteUsuario(ctx context.Context, id int64) error {
	cmd, err := q.db.Exec(ctx, `DELETE FROM usuario WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// TouchUltimoLogin registra o instante do login bem-sucedido.
func (q *Queries) TouchUltimoLogin(ctx context.Context, id int64, when time.Time) error {
	_, err := q.db.Exec(ctx, `UPDATE usuario SET ultimo_login = $2, updated_at = now() WHERE id = $1`, id, when)
	return err
}

// SetTOTPSecret grava o segredo definitivo e ativa o segundo fator.
func (q *Queries) SetTOTPSecret(ctx context.Context, id int64, secret string) error {
	cmd, err := q.db.Exec(ctx, `
        UPDATE usuario SET totp_secret = $2, totp_habilitado = TRUE, updated_at = now()
        WHERE id = $1`, id, secret)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearTOTPSecret desativa o segundo fator e descarta o segredo.
func (q *Queries) ClearTOTPSecret(ctx context.Context, id int64) error {
	cmd, err := q.db.Exec(ctx, `
        UPDATE usuario SET totp_secret = NULL, totp_habilitado = FALSE, updated_at = now()
        WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func lowerPtr(s *string) *string {
	if s == nil {
		return nil
	}
	lowered := strings.ToLower(strings.TrimSpace(*s))
	return &lowered
}
