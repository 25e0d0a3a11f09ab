package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sentinela-gov/sentinela/internal/auth"
	"github.com/sentinela-gov/sentinela/internal/repo"
)

type contextKey string

const (
	// ContextKeyUsuario guarda o usuário autenticado da requisição.
	ContextKeyUsuario contextKey = "usuario"
)

// UsuarioLoader carrega o usuário dono do token a cada requisição, para que
// desativações de conta tenham efeito imediato.
type UsuarioLoader interface {
	Me(ctx context.Context, id int64) (repo.Usuario, error)
}

// Auth valida JWT de acesso, carrega o usuário e injeta no contexto.
func Auth(jwtManager *auth.JWTManager, loader UsuarioLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeDetail(w, http.StatusUnauthorized, "Token inválido ou expirado")
				return
			}

			claims, err := jwtManager.ParseAndValidate(parts[1])
			if err != nil {
				writeDetail(w, http.StatusUnauthorized, "Token inválido ou expirado")
				return
			}

			usuarioID, err := claims.UsuarioID()
			if err != nil {
				writeDetail(w, http.StatusUnauthorized, "Token inválido")
				return
			}

			user, err := loader.Me(r.Context(), usuarioID)
			if err != nil {
				if errors.Is(err, repo.ErrNotFound) {
					writeDetail(w, http.StatusUnauthorized, "Usuário não encontrado")
					return
				}
				writeDetail(w, http.StatusInternalServerError, "erro interno")
				return
			}

			if !user.Ativo {
				writeDetail(w, http.StatusForbidden, "Usuário inativo")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUsuario, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUsuario recupera o usuário autenticado do contexto.
func GetUsuario(ctx context.Context) (repo.Usuario, bool) {
	user, ok := ctx.Value(ContextKeyUsuario).(repo.Usuario)
	return user, ok
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
