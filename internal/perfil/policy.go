package perfil

// Decisao é o resultado da avaliação de acesso a uma região.
type Decisao int

const (
	// Permitido libera a região.
	Permitido Decisao = iota
	// NegadoBloqueado indica perfil presente na lista de bloqueio.
	NegadoBloqueado
	// NegadoNaoPermitido indica perfil ausente da lista de permissão.
	NegadoNaoPermitido
)

// String descreve a decisão para logs e mensagens.
func (d Decisao) String() string {
	switch d {
	case Permitido:
		return "permitido"
	case NegadoBloqueado:
		return "negado-bloqueado"
	case NegadoNaoPermitido:
		return "negado-nao-permitido"
	default:
		return "desconhecido"
	}
}

// Regiao configura as listas de acesso de uma região navegável.
// Bloqueados vence sobre Permitidos; listas vazias liberam todo mundo.
type Regiao struct {
	Nome       string
	Bloqueados []Perfil
	Permitidos []Perfil
}

// Avaliar decide o acesso de um perfil a uma região. O perfil chega como
// string não confiável: valores fora do enum nunca recebem tratamento
// especial, apenas falham os testes de pertinência como qualquer outro.
func Avaliar(raw string, regiao Regiao) Decisao {
	p := Perfil(raw)

	for _, bloqueado := range regiao.Bloqueados {
		if p == bloqueado {
			return NegadoBloqueado
		}
	}

	if len(regiao.Permitidos) > 0 {
		for _, permitido := range regiao.Permitidos {
			if p == permitido {
				return Permitido
			}
		}
		return NegadoNaoPermitido
	}

	return Permitido
}
