package client

import (
	"time"

	"github.com/sentinela-gov/sentinela/internal/perfil"
)

// DelayRedirecionamentoNegado é quanto a UI espera antes de redirecionar
// ao painel padrão quando o perfil está fora da lista de permitidos.
const DelayRedirecionamentoNegado = 3 * time.Second

// Estado é o desfecho da guarda de rota para uma tentativa de navegação.
type Estado int

const (
	// EstadoVerificando vale enquanto a checagem inicial de sessão roda.
	EstadoVerificando Estado = iota
	// EstadoNaoAutenticado manda para a tela de login.
	EstadoNaoAutenticado
	// EstadoBloqueado renderiza aviso de acesso restrito, sem redirecionar.
	EstadoBloqueado
	// EstadoNaoPermitido renderiza aviso e redireciona ao painel padrão
	// após DelayRedirecionamentoNegado.
	EstadoNaoPermitido
	// EstadoPermitido libera o conteúdo da região.
	EstadoPermitido
)

func (e Estado) String() string {
	switch e {
	case EstadoVerificando:
		return "VERIFICANDO"
	case EstadoNaoAutenticado:
		return "NAO_AUTENTICADO"
	case EstadoBloqueado:
		return "BLOQUEADO"
	case EstadoNaoPermitido:
		return "NAO_PERMITIDO"
	case EstadoPermitido:
		return "PERMITIDO"
	default:
		return "DESCONHECIDO"
	}
}

// Guard é o ponto único de decisão antes de renderizar região protegida.
// Não guarda estado próprio: cada avaliação deriva do Manager e da
// configuração da região no momento da chamada.
type Guard struct {
	manager *Manager
}

// NewGuard cria a guarda sobre o gerenciador de sessão.
func NewGuard(manager *Manager) *Guard {
	return &Guard{manager: manager}
}

// Avaliar decide o estado da tentativa de navegação para a região.
// Autenticação vem antes de política: sem sessão não há decisão de perfil.
func (g *Guard) Avaliar(regiao perfil.Regiao) Estado {
	if g.manager.IsLoading() {
		return EstadoVerificando
	}

	u, ok := g.manager.Usuario()
	if !ok || !g.manager.IsAuthenticated() {
		return EstadoNaoAutenticado
	}

	switch perfil.Avaliar(u.Perfil, regiao) {
	case perfil.NegadoBloqueado:
		return EstadoBloqueado
	case perfil.NegadoNaoPermitido:
		return EstadoNaoPermitido
	default:
		return EstadoPermitido
	}
}
