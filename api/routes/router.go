package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yanchenliu/moodlog-backend/api/controllers"
	"github.com/yanchenliu/moodlog-backend/api/middleware"
	"github.com/yanchenliu/moodlog-backend/internal/auth"
	"github.com/yanchenliu/moodlog-backend/internal/profiles"
	"github.com/yanchenliu/moodlog-backend/internal/records"
	"github.com/yanchenliu/moodlog-backend/internal/seeder"
	"github.com/yanchenliu/moodlog-backend/pkg/auth/session"
	"github.com/yanchenliu/moodlog-backend/pkg/config"
	"github.com/yanchenliu/moodlog-backend/pkg/logger"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	sessionManager sessionManager,
	authService auth.Service,
	profileService profiles.Service,
	recordsService records.Service,
	seederService seeder.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(authService, logg))
		r.Post("/login", controllers.AuthLogin(authService, logg))
		r.Post("/logout", controllers.AuthLogout(sessionManager, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(sessionManager, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))

		r.Get("/auth/session", controllers.AuthSession(authService, logg))

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", controllers.ProfileGet(profileService, logg))
			r.Put("/", controllers.ProfilePut(profileService, logg))
		})

		r.Route("/records", func(r chi.Router) {
			r.Get("/", controllers.RecordsList(recordsService, logg))
			r.Post("/", controllers.RecordsCreate(recordsService, logg))
			r.Post("/{recordId}/analyses", controllers.AnalysesCreate(recordsService, logg))
		})

		r.Post("/rpc/create-sample-data", controllers.RPCCreateSampleData(seederService, logg))
	})

	return r
}
