package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

const defaultTimeout = 15 * time.Second

// Usuario é a cópia somente-leitura da identidade autenticada, válida
// apenas durante a sessão corrente.
type Usuario struct {
	ID             int64   `json:"id"`
	EntidadeID     *int64  `json:"entidade_id"`
	Nome           string  `json:"nome"`
	CPF            *string `json:"cpf"`
	Email          string  `json:"email"`
	Perfil         string  `json:"perfil"`
	Ativo          bool    `json:"ativo"`
	TOTPHabilitado bool    `json:"totp_habilitado"`
}

// APIError carrega o detail devolvido pelo backend em respostas não-2xx.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("api: status %d", e.Status)
}

// TOTPRequired indica o erro suave de segundo fator pendente no login.
// O backend sinaliza pela mensagem, não por status próprio; o mapeamento
// fica concentrado aqui para o resto do código tratar de forma tipada.
func (e *APIError) TOTPRequired() bool {
	return e.Status == http.StatusUnauthorized && strings.Contains(e.Detail, "TOTP")
}

// APIClient fala com o backend Sentinela. O token corrente é injetado em
// toda chamada autenticada; respostas 401 dessas chamadas disparam o hook
// de sessão expirada uma única vez por chamada.
type APIClient struct {
	httpClient *http.Client
	baseURL    string

	mu             sync.RWMutex
	token          string
	onUnauthorized func()
}

// NewAPIClient cria o cliente HTTP do console.
func NewAPIClient(baseURL string, timeout time.Duration) *APIClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &APIClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
	}
}

// SetToken define o bearer usado nas próximas chamadas.
func (c *APIClient) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// ClearToken descarta o bearer corrente.
func (c *APIClient) ClearToken() {
	c.SetToken("")
}

// SetUnauthorizedHook registra o efeito global de 401 em chamada
// autenticada (limpeza de sessão + redirecionamento para o login).
func (c *APIClient) SetUnauthorizedHook(fn func()) {
	c.mu.Lock()
	c.onUnauthorized = fn
	c.mu.Unlock()
}

func (c *APIClient) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *APIClient) do(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token := c.currentToken()
	authenticated := token != ""
	if authenticated {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload struct {
			Detail string `json:"detail"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&payload); decodeErr == nil {
			apiErr.Detail = payload.Detail
		}

		if authenticated && resp.StatusCode == http.StatusUnauthorized {
			c.mu.RLock()
			hook := c.onUnauthorized
			c.mu.RUnlock()
			if hook != nil {
				hook()
			}
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: resposta inválida: %w", err)
	}
	return nil
}

// LoginResult é o payload de autenticação bem-sucedida.
type LoginResult struct {
	AccessToken string  `json:"access_token"`
	TokenType   string  `json:"token_type"`
	Usuario     Usuario `json:"usuario"`
}

// Login autentica com email, senha e código TOTP opcional.
func (c *APIClient) Login(ctx context.Context, email, senha, totpCode string) (LoginResult, error) {
	body := map[string]string{"email": email, "senha": senha}
	if totpCode != "" {
		body["totp_code"] = totpCode
	}

	var result LoginResult
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &result); err != nil {
		return LoginResult{}, err
	}
	return result, nil
}

// Me devolve a identidade dona do token corrente.
func (c *APIClient) Me(ctx context.Context) (Usuario, error) {
	var u Usuario
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &u); err != nil {
		return Usuario{}, err
	}
	return u, nil
}

// TOTPEnrollment é o material de cadastro do segundo fator.
type TOTPEnrollment struct {
	Secret string `json:"secret"`
	URI    string `json:"uri"`
	QRCode string `json:"qr_code"`
}

// TOTPSetup inicia o cadastro do segundo fator.
func (c *APIClient) TOTPSetup(ctx context.Context) (TOTPEnrollment, error) {
	var enrollment TOTPEnrollment
	if err := c.do(ctx, http.MethodPost, "/auth/totp/setup", nil, &enrollment); err != nil {
		return TOTPEnrollment{}, err
	}
	return enrollment, nil
}

// TOTPVerifyResult informa o desfecho da confirmação do segundo fator.
// Código errado vem como Success=false, não como erro de transporte.
type TOTPVerifyResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// TOTPVerify confirma o cadastro com um código de 6 dígitos.
func (c *APIClient) TOTPVerify(ctx context.Context, code string) (TOTPVerifyResult, error) {
	var result TOTPVerifyResult
	if err := c.do(ctx, http.MethodPost, "/auth/totp/verify", map[string]string{"totp_code": code}, &result); err != nil {
		return TOTPVerifyResult{}, err
	}
	return result, nil
}

// TOTPDisable desativa o segundo fator mediante a senha atual.
func (c *APIClient) TOTPDisable(ctx context.Context, senha string) error {
	return c.do(ctx, http.MethodPost, "/auth/totp/disable", map[string]string{"senha": senha}, nil)
}

// Entidade espelha o registro de entidade devolvido nas listagens.
type Entidade struct {
	ID          int64  `json:"id"`
	CNPJ        string `json:"cnpj"`
	RazaoSocial string `json:"razao_social"`
	Municipio   string `json:"municipio"`
	UF          string `json:"uf"`
	Status      string `json:"status"`
}

// Fornecedor espelha o registro de fornecedor devolvido nas listagens.
type Fornecedor struct {
	ID           int64  `json:"id"`
	EntidadeID   int64  `json:"entidade_id"`
	CNPJ         string `json:"cnpj"`
	RazaoSocial  string `json:"razao_social"`
	Regularidade string `json:"regularidade_geral"`
}

// Contrato espelha o registro de contrato devolvido nas listagens.
type Contrato struct {
	ID             int64      `json:"id"`
	EntidadeID     int64      `json:"entidade_id"`
	NumeroContrato string     `json:"numero_contrato"`
	Objeto         string     `json:"objeto"`
	ValorGlobal    float64    `json:"valor_global"`
	ValorExecutado float64    `json:"valor_executado"`
	DataTermino    *time.Time `json:"data_termino"`
	Status         string     `json:"status"`
}

// Cronograma espelha a etapa de cronograma devolvida nas listagens.
type Cronograma struct {
	ID                  int64    `json:"id"`
	ContratoID          int64    `json:"contrato_id"`
	Etapa               *string  `json:"etapa"`
	PercentualPlanejado *float64 `json:"percentual_planejado"`
	PercentualExecutado *float64 `json:"percentual_executado"`
	Status              *string  `json:"status"`
}

// ListEntidades lista entidades visíveis ao usuário corrente.
func (c *APIClient) ListEntidades(ctx context.Context) ([]Entidade, error) {
	var out []Entidade
	if err := c.do(ctx, http.MethodGet, "/entidades", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListUsuarios lista usuários visíveis ao usuário corrente.
func (c *APIClient) ListUsuarios(ctx context.Context) ([]Usuario, error) {
	var out []Usuario
	if err := c.do(ctx, http.MethodGet, "/usuarios", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListFornecedores lista fornecedores visíveis ao usuário corrente.
func (c *APIClient) ListFornecedores(ctx context.Context) ([]Fornecedor, error) {
	var out []Fornecedor
	if err := c.do(ctx, http.MethodGet, "/fornecedores", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListContratos lista contratos visíveis ao usuário corrente.
func (c *APIClient) ListContratos(ctx context.Context) ([]Contrato, error) {
	var out []Contrato
	if err := c.do(ctx, http.MethodGet, "/contratos", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListCronogramas lista etapas de cronograma visíveis ao usuário corrente.
func (c *APIClient) ListCronogramas(ctx context.Context) ([]Cronograma, error) {
	var out []Cronograma
	if err := c.do(ctx, http.MethodGet, "/cronogramas", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
