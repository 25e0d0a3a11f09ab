package client

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrNoSession indica que não há registro de sessão persistido.
var ErrNoSession = errors.New("client: nenhuma sessão persistida")

// ErrCorruptSession indica que existe arquivo de sessão, mas o conteúdo
// não é um registro válido. O chamador deve apagar o arquivo.
var ErrCorruptSession = errors.New("client: registro de sessão corrompido")

// Record é o espelho persistido da sessão: token e identidade serializada
// sempre juntos — os dois presentes ou nenhum.
type Record struct {
	Token   string  `json:"token"`
	Usuario Usuario `json:"usuario"`
}

// Store guarda o registro de credencial em arquivo no diretório de
// configuração do usuário.
type Store struct {
	path string
}

// NewStore cria um store sobre o caminho informado.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultStorePath devolve o caminho padrão do registro de sessão.
func DefaultStorePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "sentinela", "sessao.json"), nil
}

// Load lê o registro persistido. Ausência vira ErrNoSession; registro
// corrompido ou sem um dos campos vira ErrCorruptSession, para o
// chamador apagar o arquivo e seguir sem sessão.
func (s *Store) Load() (Record, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Record{}, ErrNoSession
		}
		return Record{}, err
	}

	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Record{}, ErrCorruptSession
	}
	if rec.Token == "" || rec.Usuario.ID == 0 {
		return Record{}, ErrCorruptSession
	}
	return rec, nil
}

// Save grava token e identidade de forma atômica, com permissão restrita
// ao dono.
func (s *Store) Save(rec Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "sessao-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, s.path)
}

// Clear apaga o registro. Chamadas repetidas são inofensivas.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
