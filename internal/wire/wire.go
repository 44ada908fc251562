package wire

import (
	"net/http"

	"bizdesk/internal/adaptor"
	"bizdesk/internal/data/repository"
	"bizdesk/internal/usecase"
	"bizdesk/pkg/middleware"
	"bizdesk/pkg/notify"
	"bizdesk/pkg/otp"
	"bizdesk/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// App holds the router and the services background jobs need.
type App struct {
	Router  *chi.Mux
	Service *usecase.Service
	OTP     *otp.Cache
}

// Wiring builds services and handlers and mounts every route.
func Wiring(
	repo *repository.Repository,
	otps *otp.Cache,
	notifier notify.Notifier,
	config *utils.Config,
	logger *zap.Logger,
) *App {
	service := usecase.NewService(repo, otps, notifier, config, logger)
	handler := adaptor.NewHandler(service, config, logger)

	router := setupRouter(handler, service.Session, repo, config, logger)

	return &App{
		Router:  router,
		Service: service,
		OTP:     otps,
	}
}

// gates bundles the session middleware variants the route files share.
type gates struct {
	verifier middleware.SessionVerifier
	config   utils.SessionConfig
	log      *zap.Logger
}

// api authenticates with the user cookie first.
func (g gates) api() func(http.Handler) http.Handler {
	return middleware.AuthSession(g.verifier, []string{g.config.CookieName, g.config.AdminCookieName}, g.log)
}

// adminAPI authenticates with the admin cookie first and only admits
// sessions issued by the admin login.
func (g gates) adminAPI() func(http.Handler) http.Handler {
	authenticate := middleware.AuthSession(g.verifier, []string{g.config.AdminCookieName, g.config.CookieName}, g.log)
	adminOnly := middleware.RequireAdminSession(g.log)
	return func(next http.Handler) http.Handler {
		return authenticate(adminOnly(next))
	}
}

func setupRouter(
	handler *adaptor.Handler,
	verifier middleware.SessionVerifier,
	repo *repository.Repository,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS(config.App.CORSOrigins))

	g := gates{verifier: verifier, config: config.Session, log: logger}

	wireAuth(r, handler.Auth, g)
	wireUser(r, handler.User, g)
	wireAdmin(r, handler.Admin, g)
	wireCompany(r, handler.Company, handler.Invitation, g)
	wireComplaint(r, handler.Complaint, g)
	wirePage(r, handler.Page, g)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := repo.Ping(r.Context()); err != nil {
			logger.Warn("Health check failed", zap.Error(err))
			utils.ResponseJSON(w, http.StatusServiceUnavailable, false, "database unavailable", nil, nil)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
