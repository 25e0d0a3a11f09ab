package client

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// JanelaVencimento é o horizonte usado para contar contratos prestes a
// vencer no painel.
const JanelaVencimento = 30 * 24 * time.Hour

// Resumo agrega os números exibidos no painel inicial.
type Resumo struct {
	TotalEntidades    int     `json:"total_entidades"`
	TotalUsuarios     int     `json:"total_usuarios"`
	TotalFornecedores int     `json:"total_fornecedores"`
	TotalContratos    int     `json:"total_contratos"`
	TotalCronogramas  int     `json:"total_cronogramas"`
	ValorGlobalTotal  float64 `json:"valor_global_total"`
	ValorExecutado    float64 `json:"valor_executado_total"`
	ContratosVencendo int     `json:"contratos_vencendo"`
	ContratosVigentes int     `json:"contratos_vigentes"`
}

// BuildResumo monta o painel a partir das cinco listagens. Cada busca que
// falhar é registrada e degrada para zero sem derrubar o restante.
func BuildResumo(ctx context.Context, api *APIClient, logger zerolog.Logger) Resumo {
	var resumo Resumo
	agora := time.Now()

	if entidades, err := api.ListEntidades(ctx); err != nil {
		logger.Warn().Err(err).Msg("painel: falha ao listar entidades")
	} else {
		resumo.TotalEntidades = len(entidades)
	}

	if usuarios, err := api.ListUsuarios(ctx); err != nil {
		logger.Warn().Err(err).Msg("painel: falha ao listar usuários")
	} else {
		resumo.TotalUsuarios = len(usuarios)
	}

	if fornecedores, err := api.ListFornecedores(ctx); err != nil {
		logger.Warn().Err(err).Msg("painel: falha ao listar fornecedores")
	} else {
		resumo.TotalFornecedores = len(fornecedores)
	}

	if contratos, err := api.ListContratos(ctx); err != nil {
		logger.Warn().Err(err).Msg("painel: falha ao listar contratos")
	} else {
		resumo.TotalContratos = len(contratos)
		for _, c := range contratos {
			resumo.ValorGlobalTotal += c.ValorGlobal
			resumo.ValorExecutado += c.ValorExecutado
			if c.Status == "VIGENTE" {
				resumo.ContratosVigentes++
			}
			if vencendo(c.DataTermino, agora) {
				resumo.ContratosVencendo++
			}
		}
	}

	if cronogramas, err := api.ListCronogramas(ctx); err != nil {
		logger.Warn().Err(err).Msg("painel: falha ao listar cronogramas")
	} else {
		resumo.TotalCronogramas = len(cronogramas)
	}

	return resumo
}

func vencendo(dataTermino *time.Time, agora time.Time) bool {
	if dataTermino == nil {
		return false
	}
	if dataTermino.Before(agora) {
		return false
	}
	return dataTermino.Sub(agora) <= JanelaVencimento
}
