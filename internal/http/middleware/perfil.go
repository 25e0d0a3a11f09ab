package middleware

import (
	"net/http"
	"strings"

	"github.com/sentinela-gov/sentinela/internal/perfil"
)

// RequirePerfil garante que o usuário autenticado possua um dos perfis
// informados. A mensagem de negação nomeia os perfis aceitos.
func RequirePerfil(perfis ...perfil.Perfil) func(http.Handler) http.Handler {
	nomes := make([]string, 0, len(perfis))
	for _, p := range perfis {
		nomes = append(nomes, p.String())
	}
	detail := "Acesso negado. Perfis permitidos: " + strings.Join(nomes, ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUsuario(r.Context())
			if !ok {
				writeDetail(w, http.StatusUnauthorized, "Token inválido")
				return
			}

			for _, p := range perfis {
				if user.Perfil == p.String() {
					next.ServeHTTP(w, r)
					return
				}
			}

			writeDetail(w, http.StatusForbidden, detail)
		})
	}
}
