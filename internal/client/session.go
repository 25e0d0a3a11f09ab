package client

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// Manager é a fonte única de verdade sobre quem está logado e com qual
// credencial. Toda mutação de sessão passa por aqui.
type Manager struct {
	api   *APIClient
	store *Store
	log   zerolog.Logger

	mu      sync.RWMutex
	token   string
	usuario *Usuario
	loading bool

	loadingDone sync.Once
	onExpired   func()
}

// NewManager cria o gerenciador e registra o efeito global de 401 no
// cliente HTTP. A sessão nasce vazia e em estado de carga até Initialize
// resolver.
func NewManager(api *APIClient, store *Store, logger zerolog.Logger) *Manager {
	m := &Manager{
		api:     api,
		store:   store,
		log:     logger,
		loading: true,
	}
	api.SetUnauthorizedHook(m.sessionExpired)
	return m
}

// OnSessionExpired registra o redirecionamento disparado quando qualquer
// chamada autenticada devolve 401.
func (m *Manager) OnSessionExpired(fn func()) {
	m.mu.Lock()
	m.onExpired = fn
	m.mu.Unlock()
}

// IsLoading informa se a checagem inicial de validade ainda está em curso.
// Depois que vira false, nunca mais volta a true.
func (m *Manager) IsLoading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// IsAuthenticated vale exatamente quando token e usuário estão presentes.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token != "" && m.usuario != nil
}

// Usuario devolve a identidade corrente, quando autenticado.
func (m *Manager) Usuario() (Usuario, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.usuario == nil {
		return Usuario{}, false
	}
	return *m.usuario, true
}

// Token devolve o bearer corrente, vazio quando não autenticado.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *Manager) setAuthenticated(token string, u Usuario) {
	m.mu.Lock()
	m.token = token
	m.usuario = &u
	m.mu.Unlock()
	m.api.SetToken(token)
}

func (m *Manager) clear() {
	m.mu.Lock()
	m.token = ""
	m.usuario = nil
	m.mu.Unlock()
	m.api.ClearToken()
}

func (m *Manager) finishLoading() {
	m.loadingDone.Do(func() {
		m.mu.Lock()
		m.loading = false
		m.mu.Unlock()
	})
}

// Initialize restaura a sessão persistida de forma otimista e revalida o
// token em /auth/me. Qualquer falha — rede, 401, registro malformado —
// limpa memória e arquivo. O flag de carga baixa exatamente uma vez, ao
// final, seja qual for o desfecho.
func (m *Manager) Initialize(ctx context.Context) {
	defer m.finishLoading()

	rec, err := m.store.Load()
	if err != nil {
		switch {
		case errors.Is(err, ErrNoSession):
		case errors.Is(err, ErrCorruptSession):
			m.log.Warn().Msg("registro de sessão corrompido; apagando")
			if clearErr := m.store.Clear(); clearErr != nil {
				m.log.Warn().Err(clearErr).Msg("falha ao apagar sessão persistida")
			}
		default:
			m.log.Warn().Err(err).Msg("falha ao ler sessão persistida")
		}
		return
	}

	m.setAuthenticated(rec.Token, rec.Usuario)

	u, err := m.api.Me(ctx)
	if err != nil {
		m.log.Info().Err(err).Msg("sessão persistida rejeitada pelo backend")
		m.clear()
		if clearErr := m.store.Clear(); clearErr != nil {
			m.log.Warn().Err(clearErr).Msg("falha ao apagar sessão persistida")
		}
		return
	}

	// O snapshot do arquivo pode estar defasado; o backend manda.
	m.setAuthenticated(rec.Token, u)
}

// Login autentica e, no sucesso, popula sessão e registro persistido de
// uma vez. Falha não mexe em nada: o erro sobe com o detail do backend,
// e *APIError.TOTPRequired distingue o caso de segundo fator pendente.
func (m *Manager) Login(ctx context.Context, email, senha, totpCode string) error {
	result, err := m.api.Login(ctx, email, senha, totpCode)
	if err != nil {
		return err
	}

	m.setAuthenticated(result.AccessToken, result.Usuario)
	if err := m.store.Save(Record{Token: result.AccessToken, Usuario: result.Usuario}); err != nil {
		m.log.Warn().Err(err).Msg("falha ao persistir sessão")
	}
	return nil
}

// Logout limpa sessão e registro persistido. Chamado sem sessão ativa é
// um no-op.
func (m *Manager) Logout() {
	m.clear()
	if err := m.store.Clear(); err != nil {
		m.log.Warn().Err(err).Msg("falha ao apagar sessão persistida")
	}
}

// SetupTOTP inicia o cadastro do segundo fator. Não mexe na sessão.
func (m *Manager) SetupTOTP(ctx context.Context) (TOTPEnrollment, error) {
	return m.api.TOTPSetup(ctx)
}

// VerifyTOTPSetup confirma o cadastro do segundo fator. Não mexe na
// sessão; quem quiser o flag totp_habilitado atualizado chama RefreshUser.
func (m *Manager) VerifyTOTPSetup(ctx context.Context, code string) (TOTPVerifyResult, error) {
	return m.api.TOTPVerify(ctx, code)
}

// RefreshUser rebusca a identidade no backend e atualiza o snapshot em
// memória e no arquivo.
func (m *Manager) RefreshUser(ctx context.Context) error {
	u, err := m.api.Me(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	token := m.token
	m.usuario = &u
	m.mu.Unlock()

	if token != "" {
		if err := m.store.Save(Record{Token: token, Usuario: u}); err != nil {
			m.log.Warn().Err(err).Msg("falha ao persistir sessão")
		}
	}
	return nil
}

// sessionExpired é o efeito global de 401: limpa tudo e dispara o
// redirecionamento registrado. Limpezas repetidas são inofensivas.
func (m *Manager) sessionExpired() {
	m.clear()
	if err := m.store.Clear(); err != nil {
		m.log.Warn().Err(err).Msg("falha ao apagar sessão persistida")
	}

	m.mu.RLock()
	fn := m.onExpired
	m.mu.RUnlock()
	if fn != nil {
		fn()
	}
}
