package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wirasakti/partmap/api/controllers"
	"github.com/wirasakti/partmap/api/middleware"
	"github.com/wirasakti/partmap/internal/auth"
	"github.com/wirasakti/partmap/internal/catalog"
	"github.com/wirasakti/partmap/internal/workspace"
	"github.com/wirasakti/partmap/pkg/auth/session"
	"github.com/wirasakti/partmap/pkg/config"
	"github.com/wirasakti/partmap/pkg/db"
	"github.com/wirasakti/partmap/pkg/logger"
	"github.com/wirasakti/partmap/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	sessionManager *session.Manager,
	authService auth.Service,
	catalogService catalog.Service,
	workspaces *workspace.Store,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(nil),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbClient, redisClient))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, logg))
		r.Post("/refresh", controllers.AuthRefresh(authService, logg))
		r.Post("/logout", controllers.AuthLogout(authService, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", controllers.ProfileFetch(authService, logg))
			r.Put("/", controllers.ProfileUpdate(authService, logg))
			r.Put("/password", controllers.PasswordChange(authService, logg))
		})

		r.Get("/catalog", controllers.CatalogItems(catalogService, logg))

		r.Route("/workspaces", func(r chi.Router) {
			r.Post("/", controllers.WorkspaceCreate(workspaces, catalogService, cfg.Workspace, logg))
			r.Get("/", controllers.WorkspaceList(workspaces, logg))

			r.Route("/{workspaceId}", func(r chi.Router) {
				r.Get("/", controllers.WorkspaceFetch(workspaces, logg))
				r.Delete("/", controllers.WorkspaceDelete(workspaces, logg))
				r.Post("/image", controllers.WorkspaceUploadImage(workspaces, cfg.Workspace, logg))
				r.Get("/search", controllers.WorkspaceSearch(workspaces, logg))
				r.Get("/cart", controllers.CartFetch(workspaces, logg))

				r.Route("/tags", func(r chi.Router) {
					r.Post("/", controllers.TagCreate(workspaces, logg))
					r.Put("/{tagId}/position", controllers.TagMove(workspaces, logg))
					r.Put("/{tagId}/items", controllers.TagUpdateItems(workspaces, logg))
					r.Delete("/{tagId}", controllers.TagDelete(workspaces, logg))
				})

				r.Route("/selection", func(r chi.Router) {
					r.Post("/open", controllers.SelectionOpenCreate(workspaces, logg))
					r.Post("/edit/{tagId}", controllers.SelectionOpenEdit(workspaces, logg))
					r.Post("/toggle", controllers.SelectionToggle(workspaces, logg))
					r.Post("/query", controllers.SelectionQuery(workspaces, logg))
					r.Post("/commit", controllers.SelectionCommit(workspaces, logg))
					r.Post("/cancel", controllers.SelectionCancel(workspaces, logg))
				})

				r.Route("/export", func(r chi.Router) {
					r.Get("/image", controllers.ExportImage(workspaces, logg))
					r.Post("/sheet", controllers.ExportSheet(workspaces, cfg.Export, logg))
				})
			})
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))
		r.Use(middleware.RequireAdmin(logg))

		r.Route("/references/{kind}", func(r chi.Router) {
			r.Get("/", controllers.ReferenceList(catalogService, logg))
			r.Post("/", controllers.ReferenceCreate(catalogService, logg))
			r.Put("/{referenceId}", controllers.ReferenceUpdate(catalogService, logg))
			r.Delete("/{referenceId}", controllers.ReferenceDelete(catalogService, logg))
		})

		r.Route("/parts", func(r chi.Router) {
			r.Post("/", controllers.PartCreate(catalogService, logg))
			r.Put("/{partId}", controllers.PartUpdate(catalogService, logg))
			r.Delete("/{partId}", controllers.PartDelete(catalogService, logg))
		})
	})

	return r
}
