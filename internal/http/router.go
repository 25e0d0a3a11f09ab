package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/sentinela-gov/sentinela/internal/config"
	httpmiddleware "github.com/sentinela-gov/sentinela/internal/http/middleware"
	"github.com/sentinela-gov/sentinela/internal/perfil"
	"github.com/sentinela-gov/sentinela/internal/pncp"
	"github.com/sentinela-gov/sentinela/internal/repo"
	"github.com/sentinela-gov/sentinela/internal/service"
)

type Handler struct {
	cfg           *config.Config
	pool          *pgxpool.Pool
	redis         *redis.Client
	repo          dataStore
	authService   *service.AuthService
	pncp          *pncp.Client
	publicLimiter *httpmiddleware.RateLimiter
	authLimiter   *httpmiddleware.RateLimiter
}

// NewRouter devolve roteador configurado.
func NewRouter(cfg *config.Config, pool *pgxpool.Pool, redisClient *redis.Client, authService *service.AuthService) http.Handler {
	h := &Handler{
		cfg:           cfg,
		pool:          pool,
		redis:         redisClient,
		repo:          repo.New(pool),
		authService:   authService,
		pncp:          pncp.New(cfg.PNCPBaseURL),
		publicLimiter: httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst),
		authLimiter:   httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst),
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	r.Group(func(public chi.Router) {
		public.Use(httpmiddleware.IPRateLimit(h.publicLimiter))

		public.Get("/health", h.Health)
		public.Get("/ready", h.Ready)

		public.Route("/auth", func(auth chi.Router) {
			auth.Post("/login", h.Login)
			auth.Post("/register", h.Register)
		})
	})

	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.Auth(authService.JWT(), authService))
		private.Use(httpmiddleware.UserRateLimit(h.authLimiter))

		private.Route("/auth", func(auth chi.Router) {
			auth.Get("/me", h.Me)
			auth.Post("/totp/setup", h.TOTPSetup)
			auth.Post("/totp/verify", h.TOTPVerify)
			auth.Post("/totp/disable", h.TOTPDisable)
		})

		private.Route("/usuarios", func(u chi.Router) {
			u.Get("/", h.ListUsuarios)
			u.Get("/{id}", h.GetUsuario)
			u.Put("/{id}", h.UpdateUsuario)
			u.Group(func(gestao chi.Router) {
				gestao.Use(httpmiddleware.RequirePerfil(perfil.Root, perfil.Gestor))
				gestao.Post("/", h.CreateUsuario)
				gestao.Delete("/{id}", h.DeleteUsuario)
			})
		})

		private.Route("/entidades", func(e chi.Router) {
			e.Get("/", h.ListEntidades)
			e.Get("/{id}", h.GetEntidade)
			e.With(httpmiddleware.RequirePerfil(perfil.Root, perfil.Gestor)).
				Put("/{id}", h.UpdateEntidade)
			e.Group(func(root chi.Router) {
				root.Use(httpmiddleware.RequirePerfil(perfil.Root))
				root.Post("/", h.CreateEntidade)
				root.Delete("/{id}", h.DeleteEntidade)
			})
		})

		private.Route("/fornecedores", func(f chi.Router) {
			f.Get("/", h.ListFornecedores)
			f.Get("/{id}", h.GetFornecedor)
			f.Post("/", h.CreateFornecedor)
			f.Put("/{id}", h.UpdateFornecedor)
			f.Delete("/{id}", h.DeleteFornecedor)
		})

		private.Route("/contratos", func(c chi.Router) {
			c.Get("/", h.ListContratos)
			c.Get("/{id}", h.GetContrato)
			c.Post("/", h.CreateContrato)
			c.Put("/{id}", h.UpdateContrato)
			c.Delete("/{id}", h.DeleteContrato)
		})

		private.Route("/cronogramas", func(c chi.Router) {
			c.Get("/", h.ListCronogramas)
			c.Get("/{id}", h.GetCronograma)
			c.With(httpmiddleware.RequirePerfil(perfil.Root, perfil.Gestor)).
				Post("/", h.CreateCronograma)
			c.With(httpmiddleware.RequirePerfil(perfil.Root, perfil.Gestor, perfil.FiscalTecnico)).
				Put("/{id}", h.UpdateCronograma)
		})

		private.Route("/pncp", func(p chi.Router) {
			p.With(httpmiddleware.RequirePerfil(perfil.Root, perfil.Gestor, perfil.Auditor, perfil.Apoio)).
				Get("/fornecedor/validar/{cnpj}", h.PNCPValidarFornecedor)
			p.With(httpmiddleware.RequirePerfil(perfil.Root, perfil.Gestor, perfil.Auditor)).
				Get("/fornecedor/{cnpj}/contratos", h.PNCPContratosFornecedor)
			p.With(httpmiddleware.RequirePerfil(perfil.Root, perfil.Gestor, perfil.Auditor, perfil.Apoio)).
				Get("/fornecedor/{cnpj}/certidoes", h.PNCPCertidoesFornecedor)
		})
	})

	return r
}
