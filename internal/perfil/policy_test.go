package perfil

import "testing"

func TestAvaliarBloqueadosVencemPermitidos(t *testing.T) {
	regiao := Regiao{
		Nome:       "operacional",
		Bloqueados: []Perfil{Root, Gestor},
		Permitidos: []Perfil{Root, Gestor, Auditor},
	}

	for _, p := range []Perfil{Root, Gestor} {
		if got := Avaliar(p.String(), regiao); got != NegadoBloqueado {
			t.Fatalf("perfil %s: esperado NegadoBloqueado, obteve %s", p, got)
		}
	}
}

func TestAvaliarSemListasLiberaTudo(t *testing.T) {
	regiao := Regiao{Nome: "dashboard"}

	for _, p := range Todos() {
		if got := Avaliar(p.String(), regiao); got != Permitido {
			t.Fatalf("perfil %s: esperado Permitido, obteve %s", p, got)
		}
	}
	if got := Avaliar("QUALQUER_COISA", regiao); got != Permitido {
		t.Fatalf("perfil desconhecido sem listas: esperado Permitido, obteve %s", got)
	}
}

func TestAvaliarForaDaListaDePermissao(t *testing.T) {
	regiao := Regiao{
		Nome:       "auditoria",
		Permitidos: []Perfil{Auditor, Root},
	}

	cases := []struct {
		raw  string
		want Decisao
	}{
		{"AUDITOR", Permitido},
		{"ROOT", Permitido},
		{"APOIO", NegadoNaoPermitido},
		{"FISCAL_TECNICO", NegadoNaoPermitido},
		{"PERFIL_INEXISTENTE", NegadoNaoPermitido},
		{"", NegadoNaoPermitido},
	}

	for _, tc := range cases {
		if got := Avaliar(tc.raw, regiao); got != tc.want {
			t.Fatalf("perfil %q: esperado %s, obteve %s", tc.raw, tc.want, got)
		}
	}
}

func TestParseRejeitaValoresForaDoEnum(t *testing.T) {
	if _, err := Parse("SUPERADMIN"); err == nil {
		t.Fatal("esperado erro para perfil fora do enum")
	}

	p, err := Parse(" fiscal_adm ")
	if err != nil {
		t.Fatalf("parse com espaços e caixa baixa: %v", err)
	}
	if p != FiscalAdm {
		t.Fatalf("esperado FISCAL_ADM, obteve %s", p)
	}

	for _, p := range Todos() {
		if !p.Valido() {
			t.Fatalf("perfil %s deveria ser válido", p)
		}
	}
}
