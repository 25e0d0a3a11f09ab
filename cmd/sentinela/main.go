package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sentinela-gov/sentinela/internal/client"
	"github.com/sentinela-gov/sentinela/internal/perfil"
)

const usage = `uso: sentinela <comando> [opções]

comandos:
  login        autentica com email e senha (e código TOTP, se exigido)
  logout       encerra a sessão corrente
  me           mostra a identidade autenticada
  totp-setup   inicia o cadastro do segundo fator
  totp-verify  confirma o cadastro do segundo fator
  dashboard    mostra o painel de números agregados
  acesso       avalia o acesso a uma região: acesso <regiao>

regiões: operacional, gestao, auditoria, dashboard`

// regiaoPadrao é o destino do redirecionamento quando o perfil não está
// na lista de permitidos de uma região.
const regiaoPadrao = "dashboard"

func regioes() map[string]perfil.Regiao {
	return map[string]perfil.Regiao{
		"operacional": {Nome: "operacional", Bloqueados: []perfil.Perfil{perfil.Root, perfil.Gestor}},
		"gestao":      {Nome: "gestao", Permitidos: []perfil.Perfil{perfil.Root, perfil.Gestor}},
		"auditoria":   {Nome: "auditoria", Permitidos: []perfil.Perfil{perfil.Auditor, perfil.Root}},
		regiaoPadrao:  {Nome: regiaoPadrao},
	}
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "erro:", err)
		os.Exit(1)
	}
}

func run() error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	configPath, err := client.DefaultConfigPath()
	if err != nil {
		return err
	}
	cfg, err := client.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	storePath := cfg.ArquivoSessao
	if storePath == "" {
		storePath, err = client.DefaultStorePath()
		if err != nil {
			return err
		}
	}

	api := client.NewAPIClient(cfg.BaseURL, cfg.Timeout())
	store := client.NewStore(storePath)
	manager := client.NewManager(api, store, log.Logger)
	manager.OnSessionExpired(func() {
		fmt.Println("Sessão expirada. Faça login novamente: sentinela login")
	})

	ctx := context.Background()
	manager.Initialize(ctx)

	switch os.Args[1] {
	case "login":
		return cmdLogin(ctx, manager, os.Args[2:])
	case "logout":
		manager.Logout()
		fmt.Println("Sessão encerrada.")
		return nil
	case "me":
		return cmdMe(manager)
	case "totp-setup":
		return cmdTOTPSetup(ctx, manager)
	case "totp-verify":
		return cmdTOTPVerify(ctx, manager, os.Args[2:])
	case "dashboard":
		return cmdDashboard(ctx, api, manager)
	case "acesso":
		return cmdAcesso(ctx, api, manager, os.Args[2:])
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
		return nil
	}
}

func cmdLogin(ctx context.Context, manager *client.Manager, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "email do usuário")
	senha := fs.String("senha", "", "senha do usuário")
	totp := fs.String("totp", "", "código TOTP de 6 dígitos (quando habilitado)")
	fs.Parse(args)

	if *email == "" || *senha == "" {
		return errors.New("login exige -email e -senha")
	}

	err := manager.Login(ctx, *email, *senha, *totp)
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.TOTPRequired() {
			fmt.Println("Conta protegida por segundo fator. Repita com -totp <código>.")
			return nil
		}
		return err
	}

	u, _ := manager.Usuario()
	fmt.Printf("Autenticado como %s (%s)\n", u.Nome, u.Perfil)
	return nil
}

func cmdMe(manager *client.Manager) error {
	u, ok := manager.Usuario()
	if !ok {
		return errors.New("nenhuma sessão ativa")
	}
	raw, err := json.MarshalIndent(u, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(raw))
	return nil
}

func cmdTOTPSetup(ctx context.Context, manager *client.Manager) error {
	if !manager.IsAuthenticated() {
		return errors.New("nenhuma sessão ativa")
	}

	enrollment, err := manager.SetupTOTP(ctx)
	if err != nil {
		return err
	}

	fmt.Println("Segredo:", enrollment.Secret)
	fmt.Println("URI:", enrollment.URI)
	fmt.Println("QR (data URL PNG):", enrollment.QRCode)
	fmt.Println("Confirme com: sentinela totp-verify -codigo <código>")
	return nil
}

func cmdTOTPVerify(ctx context.Context, manager *client.Manager, args []string) error {
	fs := flag.NewFlagSet("totp-verify", flag.ExitOnError)
	codigo := fs.String("codigo", "", "código TOTP de 6 dígitos")
	fs.Parse(args)

	if *codigo == "" {
		return errors.New("totp-verify exige -codigo")
	}
	if !manager.IsAuthenticated() {
		return errors.New("nenhuma sessão ativa")
	}

	result, err := manager.VerifyTOTPSetup(ctx, *codigo)
	if err != nil {
		return err
	}
	fmt.Println(result.Message)
	if result.Success {
		if err := manager.RefreshUser(ctx); err != nil {
			log.Warn().Err(err).Msg("falha ao atualizar identidade após cadastro do TOTP")
		}
	}
	return nil
}

func cmdDashboard(ctx context.Context, api *client.APIClient, manager *client.Manager) error {
	if !manager.IsAuthenticated() {
		return errors.New("nenhuma sessão ativa")
	}

	resumo := client.BuildResumo(ctx, api, log.Logger)
	raw, err := json.MarshalIndent(resumo, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(raw))
	return nil
}

func cmdAcesso(ctx context.Context, api *client.APIClient, manager *client.Manager, args []string) error {
	if len(args) < 1 {
		return errors.New("acesso exige o nome da região")
	}

	regiao, ok := regioes()[args[0]]
	if !ok {
		return fmt.Errorf("região desconhecida: %s", args[0])
	}

	guard := client.NewGuard(manager)
	switch guard.Avaliar(regiao) {
	case client.EstadoVerificando:
		fmt.Println("Verificando sessão...")
	case client.EstadoNaoAutenticado:
		fmt.Println("Não autenticado. Redirecionando para o login: sentinela login")
	case client.EstadoBloqueado:
		u, _ := manager.Usuario()
		fmt.Printf("Acesso restrito: o perfil %s não utiliza a região %s.\n", u.Perfil, regiao.Nome)
	case client.EstadoNaoPermitido:
		u, _ := manager.Usuario()
		fmt.Printf("Acesso negado: o perfil %s não tem permissão para a região %s.\n", u.Perfil, regiao.Nome)
		fmt.Printf("Redirecionando para %s em %s...\n", regiaoPadrao, client.DelayRedirecionamentoNegado)
		time.Sleep(client.DelayRedirecionamentoNegado)
		return cmdDashboard(ctx, api, manager)
	case client.EstadoPermitido:
		fmt.Printf("Acesso liberado à região %s.\n", regiao.Nome)
	}
	return nil
}
