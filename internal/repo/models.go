package repo

import (
	"time"
)

// Usuario representa um usuário do sistema com perfil de acesso.
type Usuario struct {
	ID             int64      `json:"id"`
	EntidadeID     *int64     `json:"entidade_id"`
	Nome           string     `json:"nome"`
	CPF            string     `json:"cpf"`
	Email          string     `json:"email"`
	SenhaHash      string     `json:"-"`
	Perfil         string     `json:"perfil"`
	Ativo          bool       `json:"ativo"`
	TOTPSecret     *string    `json:"-"`
	TOTPHabilitado bool       `json:"totp_habilitado"`
	UltimoLogin    *time.Time `json:"ultimo_login"`
	CriadoEm       time.Time  `json:"created_at"`
}

// Entidade representa o órgão contratante dono dos dados.
type Entidade struct {
	ID           int64     `json:"id"`
	CNPJ         string    `json:"cnpj"`
	RazaoSocial  string    `json:"razao_social"`
	NomeFantasia *string   `json:"nome_fantasia"`
	UGCodigo     *string   `json:"ug_codigo"`
	Status       string    `json:"status"`
	DataStatus   time.Time `json:"data_status"`
	MotivoStatus *string   `json:"motivo_status,omitempty"`
	LogoURL      *string   `json:"logo_url,omitempty"`
	CriadoEm     time.Time `json:"created_at"`
}

// Fornecedor representa empresa ou pessoa contratada por uma entidade.
type Fornecedor struct {
	ID                     int64      `json:"id"`
	EntidadeID             int64      `json:"entidade_id"`
	CNPJ                   *string    `json:"cnpj"`
	CPF                    *string    `json:"cpf"`
	RazaoSocial            string     `json:"razao_social"`
	NomeFantasia           *string    `json:"nome_fantasia"`
	SituacaoCadastral      string     `json:"situacao_cadastral"`
	RegularidadeGeral      string     `json:"regularidade_geral"`
	DataUltimaVerificacao  *time.Time `json:"data_ultima_verificacao,omitempty"`
	TotalCertidoesVencidas int        `json:"total_certidoes_vencidas"`
	Ativo                  bool       `json:"ativo"`
	CriadoEm               time.Time  `json:"created_at"`
}

// Contrato representa um contrato administrativo sob fiscalização.
type Contrato struct {
	ID             int64      `json:"id"`
	EntidadeID     int64      `json:"entidade_id"`
	NumeroContrato string     `json:"numero_contrato"`
	NumeroProcesso *string    `json:"numero_processo"`
	Objeto         string     `json:"objeto"`
	FornecedorID   int64      `json:"fornecedor_id"`
	ValorGlobal    float64    `json:"valor_global"`
	ValorExecutado float64    `json:"valor_executado"`
	DataAssinatura *time.Time `json:"data_assinatura"`
	DataInicio     *time.Time `json:"data_inicio"`
	DataTermino    *time.Time `json:"data_termino"`
	VigenciaMeses  *int       `json:"vigencia_meses,omitempty"`
	Modalidade     *string    `json:"modalidade,omitempty"`
	TipoContrato   *string    `json:"tipo_contrato,omitempty"`
	GestorID       *int64     `json:"gestor_id,omitempty"`
	Status         string     `json:"status"`
	CriadoEm       time.Time  `json:"created_at"`
}

// CronogramaFisicoFin representa uma etapa do cronograma físico-financeiro.
type CronogramaFisicoFin struct {
	ID                  int64      `json:"id"`
	ContratoID          int64      `json:"contrato_id"`
	Etapa               *string    `json:"etapa"`
	PercentualPlanejado *float64   `json:"percentual_planejado"`
	PercentualExecutado float64    `json:"percentual_executado"`
	DataPrevista        *time.Time `json:"data_prevista"`
	DataRealizada       *time.Time `json:"data_realizada"`
	Status              *string    `json:"status"`
}
