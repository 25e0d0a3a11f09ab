package pncp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://pncp.gov.br/api"

// Limites de paginação aceitos pela API pública.
const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// Client encapsula chamadas ao Portal Nacional de Contratações Públicas.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// New cria um cliente para a API pública do PNCP. baseURL vazio usa o
// endpoint oficial.
func New(baseURL string) *Client {
	base := strings.TrimSpace(baseURL)
	if base == "" {
		base = defaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(base, "/"),
	}
}

// Fornecedor descreve a situação cadastral devolvida pelo PNCP.
type Fornecedor struct {
	CNPJ              string   `json:"cnpj"`
	RazaoSocial       string   `json:"razao_social"`
	NomeFantasia      string   `json:"nome_fantasia"`
	SituacaoCadastral string   `json:"situacao_cadastral"`
	Regularidade      string   `json:"regularidade_geral"`
	CertidoesVencidas int      `json:"certidoes_vencidas"`
	Impedimentos      []string `json:"impedimentos"`
}

// Contrato descreve um contrato publicado no portal.
type Contrato struct {
	NumeroContrato string  `json:"numero_contrato"`
	NumeroProcesso string  `json:"numero_processo"`
	Objeto         string  `json:"objeto"`
	Orgao          string  `json:"orgao"`
	ValorGlobal    float64 `json:"valor_global"`
	ValorExecutado float64 `json:"valor_executado"`
	DataAssinatura *string `json:"data_assinatura"`
	DataInicio     *string `json:"data_inicio"`
	DataTermino    *string `json:"data_termino"`
	Status         string  `json:"status"`
	Modalidade     *string `json:"modalidade"`
}

// ContratosPage é uma página de contratos de um fornecedor.
type ContratosPage struct {
	Total     int        `json:"total"`
	Contratos []Contrato `json:"contratos"`
}

// Certidao descreve uma certidão registrada para o fornecedor.
type Certidao struct {
	Tipo         string  `json:"tipo"`
	Numero       string  `json:"numero"`
	DataEmissao  *string `json:"data_emissao"`
	DataValidade *string `json:"data_validade"`
	Situacao     string  `json:"situacao"`
	OrgaoEmissor string  `json:"orgao_emissor"`
}

// Certidoes resume a regularidade documental de um fornecedor.
type Certidoes struct {
	Certidoes    []Certidao
	Vencidas     int
	Regularidade string
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	u := c.baseURL + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("pncp: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pncp: status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("pncp: resposta inválida: %w", err)
	}
	return nil
}

// ErrNotFound indica que o portal não conhece o recurso consultado.
var ErrNotFound = errors.New("pncp: registro não encontrado")

// ValidarFornecedor consulta a situação cadastral de um fornecedor.
// cnpj precisa já estar normalizado (14 dígitos).
func (c *Client) ValidarFornecedor(ctx context.Context, cnpj string) (Fornecedor, error) {
	var payload struct {
		RazaoSocial       string   `json:"razao_social"`
		NomeFantasia      string   `json:"nome_fantasia"`
		SituacaoCadastral string   `json:"situacao_cadastral"`
		Regularidade      string   `json:"regularidade_geral"`
		CertidoesVencidas int      `json:"certidoes_vencidas"`
		Impedimentos      []string `json:"impedimentos"`
	}
	if err := c.get(ctx, "/fornecedores/"+cnpj, nil, &payload); err != nil {
		return Fornecedor{}, err
	}

	f := Fornecedor{
		CNPJ:              cnpj,
		RazaoSocial:       payload.RazaoSocial,
		NomeFantasia:      payload.NomeFantasia,
		SituacaoCadastral: payload.SituacaoCadastral,
		Regularidade:      payload.Regularidade,
		CertidoesVencidas: payload.CertidoesVencidas,
		Impedimentos:      payload.Impedimentos,
	}
	if f.SituacaoCadastral == "" {
		f.SituacaoCadastral = "ATIVO"
	}
	if f.Regularidade == "" {
		f.Regularidade = "REGULAR"
	}
	if f.Impedimentos == nil {
		f.Impedimentos = []string{}
	}
	return f, nil
}

// BuscarContratosFornecedor lista contratos publicados para o fornecedor.
func (c *Client) BuscarContratosFornecedor(ctx context.Context, cnpj string, pagina, tamanhoPagina int) (ContratosPage, error) {
	if pagina < 1 {
		pagina = 1
	}
	if tamanhoPagina < 1 {
		tamanhoPagina = DefaultPageSize
	}
	if tamanhoPagina > MaxPageSize {
		tamanhoPagina = MaxPageSize
	}

	params := url.Values{}
	params.Set("pagina", strconv.Itoa(pagina))
	params.Set("tamanhoPagina", strconv.Itoa(tamanhoPagina))

	var page ContratosPage
	if err := c.get(ctx, "/fornecedores/"+cnpj+"/contratos", params, &page); err != nil {
		return ContratosPage{}, err
	}
	if page.Contratos == nil {
		page.Contratos = []Contrato{}
	}
	for i := range page.Contratos {
		if page.Contratos[i].Status == "" {
			page.Contratos[i].Status = "VIGENTE"
		}
	}
	return page, nil
}

// VerificarCertidoes lista certidões do fornecedor e conta as vencidas
// pela data de validade.
func (c *Client) VerificarCertidoes(ctx context.Context, cnpj string, hoje time.Time) (Certidoes, error) {
	var payload struct {
		Certidoes []Certidao `json:"certidoes"`
	}
	if err := c.get(ctx, "/fornecedores/"+cnpj+"/certidoes", nil, &payload); err != nil {
		return Certidoes{}, err
	}

	result := Certidoes{Certidoes: payload.Certidoes}
	if result.Certidoes == nil {
		result.Certidoes = []Certidao{}
	}

	dia := hoje.Truncate(24 * time.Hour)
	for i := range result.Certidoes {
		cert := &result.Certidoes[i]
		if cert.Situacao == "" {
			cert.Situacao = "VÁLIDA"
		}
		if cert.DataValidade == nil {
			continue
		}
		validade, err := time.Parse("2006-01-02", *cert.DataValidade)
		if err != nil {
			continue
		}
		if validade.Before(dia) {
			result.Vencidas++
		}
	}

	result.Regularidade = "REGULAR"
	if result.Vencidas > 0 {
		result.Regularidade = "IRREGULAR"
	}
	return result, nil
}
