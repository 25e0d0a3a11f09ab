package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/sentinela-gov/sentinela/internal/auth"
	"github.com/sentinela-gov/sentinela/internal/perfil"
	"github.com/sentinela-gov/sentinela/internal/repo"
	"github.com/sentinela-gov/sentinela/internal/util"
)

var (
	// ErrInvalidCredentials indica falha na autenticação.
	ErrInvalidCredentials = errors.New("Email ou senha incorretos")
	// ErrAccountDisabled indica conta desativada.
	ErrAccountDisabled = errors.New("Usuário inativo")
	// ErrTOTPRequired indica que a conta exige segundo fator no login.
	ErrTOTPRequired = errors.New("Código TOTP necessário")
	// ErrTOTPInvalid indica código de segundo fator incorreto no login.
	ErrTOTPInvalid = errors.New("Código TOTP inválido")
	// ErrTOTPNotPending indica verificação sem cadastro iniciado.
	ErrTOTPNotPending = errors.New("TOTP não foi configurado")
	// ErrWrongPassword indica senha incorreta ao desativar o segundo fator.
	ErrWrongPassword = errors.New("Senha incorreta")
	// ErrEmailTaken indica e-mail já cadastrado.
	ErrEmailTaken = errors.New("Email já cadastrado")
	// ErrCPFTaken indica CPF já cadastrado.
	ErrCPFTaken = errors.New("CPF já cadastrado")
)

type authRepository interface {
	GetUsuarioByEmail(ctx context.Context, email string) (repo.Usuario, error)
	GetUsuarioByID(ctx context.Context, id int64) (repo.Usuario, error)
	InsertUsuario(ctx context.Context, arg repo.InsertUsuarioParams) (repo.Usuario, error)
	TouchUltimoLogin(ctx context.Context, id int64, when time.Time) error
	SetTOTPSecret(ctx context.Context, id int64, secret string) error
	ClearTOTPSecret(ctx context.Context, id int64) error
}

type redisCommander interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// AuthService concentra regras de autenticação e segundo fator.
type AuthService struct {
	repo       authRepository
	redis      redisCommander
	jwt        *auth.JWTManager
	issuer     string
	pendingTTL time.Duration
}

// NewAuthService cria novo serviço.
func NewAuthService(r *repo.Queries, redisClient *redis.Client, jwtMgr *auth.JWTManager, issuer string, pendingTTL time.Duration) *AuthService {
	return &AuthService{repo: r, redis: redisClient, jwt: jwtMgr, issuer: issuer, pendingTTL: pendingTTL}
}

// JWT expõe gerenciador de JWT (útil em middlewares).
func (s *AuthService) JWT() *auth.JWTManager {
	return s.jwt
}

// LoginResult representa retorno do login bem-sucedido.
type LoginResult struct {
	AccessToken string
	Usuario     repo.Usuario
}

// Login autentica por e-mail e senha, exigindo TOTP quando habilitado.
func (s *AuthService) Login(ctx context.Context, email, senha, totpCode string) (*LoginResult, error) {
	user, err := s.repo.GetUsuarioByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			log.Warn().Msg("login: usuário não encontrado")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := auth.Verify(senha, user.SenhaHash)
	if err != nil {
		log.Warn().Err(err).Msg("login: verificação de senha falhou")
		return nil, ErrInvalidCredentials
	}
	if !ok {
		log.Warn().Msg("login: senha inválida")
		return nil, ErrInvalidCredentials
	}

	if !user.Ativo {
		return nil, ErrAccountDisabled
	}

	if user.TOTPHabilitado {
		if totpCode == "" {
			return nil, ErrTOTPRequired
		}
		if user.TOTPSecret == nil || !auth.VerifyTOTP(*user.TOTPSecret, totpCode) {
			log.Warn().Int64("usuario_id", user.ID).Msg("login: código TOTP inválido")
			return nil, ErrTOTPInvalid
		}
	}

	if err := s.repo.TouchUltimoLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		return nil, err
	}

	token, _, err := s.jwt.GenerateAccessToken(user.ID, user.Email, user.Perfil, user.EntidadeID)
	if err != nil {
		return nil, err
	}

	return &LoginResult{AccessToken: token, Usuario: user}, nil
}

// RegisterParams reúne dados de cadastro de usuário.
type RegisterParams struct {
	EntidadeID *int64
	Nome       string
	CPF        string
	Email      string
	Senha      string
	Perfil     string
}

// Register cadastra novo usuário após validar campos e perfil.
func (s *AuthService) Register(ctx context.Context, arg RegisterParams) (repo.Usuario, error) {
	if err := util.ValidateEmail(arg.Email); err != nil {
		return repo.Usuario{}, err
	}
	if err := util.ValidatePassword(arg.Senha); err != nil {
		return repo.Usuario{}, err
	}
	if err := util.RequireString(arg.Nome, "nome"); err != nil {
		return repo.Usuario{}, err
	}
	if err := util.ValidateCPF(arg.CPF); err != nil {
		return repo.Usuario{}, err
	}

	p, err := perfil.Parse(arg.Perfil)
	if err != nil {
		return repo.Usuario{}, err
	}

	if _, err := s.repo.GetUsuarioByEmail(ctx, arg.Email); err == nil {
		return repo.Usuario{}, ErrEmailTaken
	} else if !errors.Is(err, repo.ErrNotFound) {
		return repo.Usuario{}, err
	}

	hash, err := auth.Hash(arg.Senha)
	if err != nil {
		return repo.Usuario{}, err
	}

	user, err := s.repo.InsertUsuario(ctx, repo.InsertUsuarioParams{
		EntidadeID: arg.EntidadeID,
		Nome:       strings.TrimSpace(arg.Nome),
		CPF:        arg.CPF,
		Email:      arg.Email,
		SenhaHash:  hash,
		Perfil:     p.String(),
	})
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return repo.Usuario{}, ErrCPFTaken
		}
		return repo.Usuario{}, err
	}
	return user, nil
}

// HashPassword valida e gera hash de senha para atualizações de cadastro.
func (s *AuthService) HashPassword(senha string) (string, error) {
	if err := util.ValidatePassword(senha); err != nil {
		return "", err
	}
	return auth.Hash(senha)
}

// Me devolve o usuário autenticado a partir do subject do token.
func (s *AuthService) Me(ctx context.Context, id int64) (repo.Usuario, error) {
	return s.repo.GetUsuarioByID(ctx, id)
}

func totpPendingKey(usuarioID int64) string {
	return fmt.Sprintf("totp:pending:%d", usuarioID)
}

// SetupTOTP inicia o cadastro do segundo fator. O segredo fica estacionado
// no Redis com TTL até ser confirmado; nada muda na conta ainda.
func (s *AuthService) SetupTOTP(ctx context.Context, user repo.Usuario) (*auth.TOTPEnrollment, error) {
	enrollment, err := auth.NewTOTPEnrollment(s.issuer, user.Email)
	if err != nil {
		return nil, err
	}

	if err := s.redis.Set(ctx, totpPendingKey(user.ID), enrollment.Secret, s.pendingTTL).Err(); err != nil {
		return nil, err
	}

	return enrollment, nil
}

// VerifyTOTPSetup confirma o cadastro do segundo fator. Código errado não é
// rejeição: devolve success=false com mensagem, como o restante da API.
func (s *AuthService) VerifyTOTPSetup(ctx context.Context, user repo.Usuario, code string) (bool, string, error) {
	secret, err := s.redis.Get(ctx, totpPendingKey(user.ID)).Result()
	if err == redis.Nil {
		return false, "", ErrTOTPNotPending
	}
	if err != nil {
		return false, "", err
	}

	if !auth.VerifyTOTP(secret, code) {
		return false, "Código TOTP inválido", nil
	}

	if err := s.repo.SetTOTPSecret(ctx, user.ID, secret); err != nil {
		return false, "", err
	}
	if err := s.redis.Del(ctx, totpPendingKey(user.ID)).Err(); err != nil && err != redis.Nil {
		log.Warn().Err(err).Int64("usuario_id", user.ID).Msg("totp: falha ao limpar segredo pendente")
	}

	return true, "TOTP ativado com sucesso", nil
}

// DisableTOTP desativa o segundo fator mediante confirmação de senha.
func (s *AuthService) DisableTOTP(ctx context.Context, user repo.Usuario, senha string) error {
	ok, err := auth.Verify(senha, user.SenhaHash)
	if err != nil || !ok {
		return ErrWrongPassword
	}
	return s.repo.ClearTOTPSecret(ctx, user.ID)
}
