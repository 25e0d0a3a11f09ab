package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/redis/go-redis/v9"

	"github.com/sentinela-gov/sentinela/internal/auth"
	"github.com/sentinela-gov/sentinela/internal/repo"
)

type stubAuthRepo struct {
	user        repo.Usuario
	insertErr   error
	lastLogin   *time.Time
	savedSecret string
}

func (s *stubAuthRepo) GetUsuarioByEmail(ctx context.Context, email string) (repo.Usuario, error) {
	if strings.EqualFold(email, s.user.Email) {
		return s.user, nil
	}
	return repo.Usuario{}, repo.ErrNotFound
}

func (s *stubAuthRepo) GetUsuarioByID(ctx context.Context, id int64) (repo.Usuario, error) {
	if id == s.user.ID {
		return s.user, nil
	}
	return repo.Usuario{}, repo.ErrNotFound
}

func (s *stubAuthRepo) InsertUsuario(ctx context.Context, arg repo.InsertUsuarioParams) (repo.Usuario, error) {
	if s.insertErr != nil {
		return repo.Usuario{}, s.insertErr
	}
	return repo.Usuario{
		ID:         99,
		EntidadeID: arg.EntidadeID,
		Nome:       arg.Nome,
		Email:      arg.Email,
		Perfil:     arg.Perfil,
		Ativo:      true,
	}, nil
}

func (s *stubAuthRepo) TouchUltimoLogin(ctx context.Context, id int64, when time.Time) error {
	s.lastLogin = &when
	return nil
}

func (s *stubAuthRepo) SetTOTPSecret(ctx context.Context, id int64, secret string) error {
	if id != s.user.ID {
		return repo.ErrNotFound
	}
	s.savedSecret = secret
	return nil
}

func (s *stubAuthRepo) ClearTOTPSecret(ctx context.Context, id int64) error {
	if id != s.user.ID {
		return repo.ErrNotFound
	}
	s.savedSecret = ""
	return nil
}

type stubRedis struct {
	store map[string]string
}

func (s *stubRedis) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if s.store == nil {
		s.store = make(map[string]string)
	}
	s.store[key] = fmt.Sprint(value)
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("OK")
	return cmd
}

func (s *stubRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	val, ok := s.store[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(val)
	return cmd
}

func (s *stubRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var removed int64
	for _, key := range keys {
		if _, ok := s.store[key]; ok {
			delete(s.store, key)
			removed++
		}
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(removed)
	return cmd
}

func newTestService(t *testing.T, repoStub *stubAuthRepo, redisStub *stubRedis) *AuthService {
	t.Helper()
	jwtMgr := auth.NewJWTManager(strings.Repeat("a", 32), time.Minute)
	return &AuthService{
		repo:       repoStub,
		redis:      redisStub,
		jwt:        jwtMgr,
		issuer:     "Sentinela",
		pendingTTL: 10 * time.Minute,
	}
}

func testUser(t *testing.T, senha string) repo.Usuario {
	t.Helper()
	hash, err := auth.Hash(senha)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	entidade := int64(1)
	return repo.Usuario{
		ID:         7,
		EntidadeID: &entidade,
		Nome:       "Fiscal Teste",
		Email:      "fiscal@sentinela.app",
		SenhaHash:  hash,
		Perfil:     "FISCAL_TECNICO",
		Ativo:      true,
	}
}

func TestLoginSuccess(t *testing.T) {
	senha := "SenhaForte123!"
	repoStub := &stubAuthRepo{user: testUser(t, senha)}
	svc := newTestService(t, repoStub, &stubRedis{})

	result, err := svc.Login(context.Background(), "FISCAL@sentinela.app", senha, "")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.AccessToken == "" {
		t.Fatal("expected access token")
	}
	if repoStub.lastLogin == nil {
		t.Fatal("expected ultimo_login to be touched")
	}

	claims, err := svc.JWT().ParseAndValidate(result.AccessToken)
	if err != nil {
		t.Fatalf("token did not validate: %v", err)
	}
	id, err := claims.UsuarioID()
	if err != nil || id != 7 {
		t.Fatalf("expected subject 7, got %d (%v)", id, err)
	}
	if claims.Perfil != "FISCAL_TECNICO" {
		t.Fatalf("expected perfil FISCAL_TECNICO, got %s", claims.Perfil)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	repoStub := &stubAuthRepo{user: testUser(t, "SenhaForte123!")}
	svc := newTestService(t, repoStub, &stubRedis{})

	_, err := svc.Login(context.Background(), "fiscal@sentinela.app", "errada", "")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	repoStub := &stubAuthRepo{user: testUser(t, "SenhaForte123!")}
	svc := newTestService(t, repoStub, &stubRedis{})

	_, err := svc.Login(context.Background(), "ninguem@sentinela.app", "SenhaForte123!", "")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginInactiveAccount(t *testing.T) {
	user := testUser(t, "SenhaForte123!")
	user.Ativo = false
	repoStub := &stubAuthRepo{user: user}
	svc := newTestService(t, repoStub, &stubRedis{})

	_, err := svc.Login(context.Background(), user.Email, "SenhaForte123!", "")
	if !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("expected ErrAccountDisabled, got %v", err)
	}
}

func TestLoginTOTPRequired(t *testing.T) {
	senha := "SenhaForte123!"
	user := testUser(t, senha)
	secret := "JBSWY3DPEHPK3PXP"
	user.TOTPHabilitado = true
	user.TOTPSecret = &secret
	repoStub := &stubAuthRepo{user: user}
	svc := newTestService(t, repoStub, &stubRedis{})

	_, err := svc.Login(context.Background(), user.Email, senha, "")
	if !errors.Is(err, ErrTOTPRequired) {
		t.Fatalf("expected ErrTOTPRequired, got %v", err)
	}

	_, err = svc.Login(context.Background(), user.Email, senha, "000000")
	if !errors.Is(err, ErrTOTPInvalid) {
		t.Fatalf("expected ErrTOTPInvalid, got %v", err)
	}

	code, err := totp.GenerateCode(secret, time.Now())
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}
	result, err := svc.Login(context.Background(), user.Email, senha, code)
	if err != nil {
		t.Fatalf("login with valid TOTP failed: %v", err)
	}
	if result.AccessToken == "" {
		t.Fatal("expected access token")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repoStub := &stubAuthRepo{user: testUser(t, "SenhaForte123!")}
	svc := newTestService(t, repoStub, &stubRedis{})

	_, err := svc.Register(context.Background(), RegisterParams{
		Nome:   "Outro Usuário",
		CPF:    "12345678901",
		Email:  "fiscal@sentinela.app",
		Senha:  "OutraSenha123",
		Perfil: "APOIO",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegisterDuplicateCPF(t *testing.T) {
	repoStub := &stubAuthRepo{
		user:      testUser(t, "SenhaForte123!"),
		insertErr: repo.ErrDuplicate,
	}
	svc := newTestService(t, repoStub, &stubRedis{})

	_, err := svc.Register(context.Background(), RegisterParams{
		Nome:   "Outro Usuário",
		CPF:    "12345678901",
		Email:  "novo@sentinela.app",
		Senha:  "OutraSenha123",
		Perfil: "APOIO",
	})
	if !errors.Is(err, ErrCPFTaken) {
		t.Fatalf("expected ErrCPFTaken, got %v", err)
	}
}

func TestRegisterRejectsUnknownPerfil(t *testing.T) {
	repoStub := &stubAuthRepo{user: testUser(t, "SenhaForte123!")}
	svc := newTestService(t, repoStub, &stubRedis{})

	_, err := svc.Register(context.Background(), RegisterParams{
		Nome:   "Outro Usuário",
		CPF:    "12345678901",
		Email:  "novo@sentinela.app",
		Senha:  "OutraSenha123",
		Perfil: "SUPERADMIN",
	})
	if err == nil {
		t.Fatal("expected perfil validation error")
	}
}

func TestSetupAndVerifyTOTP(t *testing.T) {
	user := testUser(t, "SenhaForte123!")
	repoStub := &stubAuthRepo{user: user}
	redisStub := &stubRedis{}
	svc := newTestService(t, repoStub, redisStub)

	enrollment, err := svc.SetupTOTP(context.Background(), user)
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if enrollment.Secret == "" || enrollment.URI == "" {
		t.Fatal("expected secret and provisioning URI")
	}
	if !strings.HasPrefix(enrollment.QRCode, "data:image/png;base64,") {
		t.Fatal("expected base64 PNG data URL")
	}

	ok, msg, err := svc.VerifyTOTPSetup(context.Background(), user, "000000")
	if err != nil {
		t.Fatalf("verify with wrong code errored: %v", err)
	}
	if ok {
		t.Fatal("expected wrong code to be rejected")
	}
	if msg != "Código TOTP inválido" {
		t.Fatalf("unexpected message %q", msg)
	}
	if repoStub.savedSecret != "" {
		t.Fatal("wrong code must not persist the secret")
	}

	code, err := totp.GenerateCode(enrollment.Secret, time.Now())
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}
	ok, msg, err = svc.VerifyTOTPSetup(context.Background(), user, code)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if !ok || msg != "TOTP ativado com sucesso" {
		t.Fatalf("expected success, got ok=%v msg=%q", ok, msg)
	}
	if repoStub.savedSecret != enrollment.Secret {
		t.Fatal("expected secret to be persisted")
	}
	if len(redisStub.store) != 0 {
		t.Fatal("expected pending secret to be removed")
	}
}

func TestVerifyTOTPWithoutSetup(t *testing.T) {
	user := testUser(t, "SenhaForte123!")
	svc := newTestService(t, &stubAuthRepo{user: user}, &stubRedis{})

	_, _, err := svc.VerifyTOTPSetup(context.Background(), user, "123456")
	if !errors.Is(err, ErrTOTPNotPending) {
		t.Fatalf("expected ErrTOTPNotPending, got %v", err)
	}
}

func TestDisableTOTPRequiresPassword(t *testing.T) {
	user := testUser(t, "SenhaForte123!")
	secret := "JBSWY3DPEHPK3PXP"
	user.TOTPSecret = &secret
	repoStub := &stubAuthRepo{user: user, savedSecret: secret}
	svc := newTestService(t, repoStub, &stubRedis{})

	if err := svc.DisableTOTP(context.Background(), user, "errada"); !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}
	if repoStub.savedSecret != secret {
		t.Fatal("wrong password must not clear the secret")
	}

	if err := svc.DisableTOTP(context.Background(), user, "SenhaForte123!"); err != nil {
		t.Fatalf("disable failed: %v", err)
	}
	if repoStub.savedSecret != "" {
		t.Fatal("expected secret cleared")
	}
}
