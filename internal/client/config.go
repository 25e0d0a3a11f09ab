package client

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config é a configuração do console, lida de um arquivo TOML no
// diretório de configuração do usuário.
type Config struct {
	BaseURL         string `toml:"base_url"`
	TimeoutSegundos int    `toml:"timeout_segundos"`
	ArquivoSessao   string `toml:"arquivo_sessao"`
}

// Timeout converte o timeout configurado para duração, com o padrão do
// cliente quando ausente.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSegundos <= 0 {
		return defaultTimeout
	}
	return time.Duration(c.TimeoutSegundos) * time.Second
}

// DefaultConfigPath devolve o caminho padrão do arquivo de configuração.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "sentinela", "config.toml"), nil
}

// LoadConfig lê a configuração do caminho informado. Arquivo ausente
// devolve os padrões; arquivo malformado é erro.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		BaseURL: "http://localhost:8000",
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, err
	}

	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, err
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8000"
	}
	return cfg, nil
}
