package router

import (
	"database/sql"
	"net/http"
	"os"

	mem "pet-lost-found/internal/adapters/storage/memory"
	pg "pet-lost-found/internal/adapters/storage/postgres"
	"pet-lost-found/internal/domain/matching"
	"pet-lost-found/internal/domain/notifications"
	"pet-lost-found/internal/domain/reports"
	"pet-lost-found/internal/middleware"
	"pet-lost-found/internal/platform/logger"
	"pet-lost-found/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)
	Logger       logger.Logger

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB
}

// NewRouter arma el árbol de rutas y devuelve también el service de matching
// para que main pueda lanzar el sweeper sobre el mismo grafo de deps.
func NewRouter(opts Options) (http.Handler, *matching.Service) {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	log := opts.Logger
	if log == nil {
		log = logger.NewFromEnv()
	}

	var (
		reportsRepo reports.Repository
		matchesRepo matching.Repository
		notifRepo   notifications.Repository
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			} else {
				log.Warn("postgres unavailable, falling back to in-memory", map[string]any{"error": err.Error()})
			}
		}
	}

	if db != nil {
		reportsRepo = pg.NewReportsRepo(db)
		matchesRepo = pg.NewMatchesRepo(db)
		notifRepo = pg.NewNotificationsRepo(db)
	} else {
		memReports := mem.NewReportsRepo()
		reportsRepo = memReports
		matchesRepo = mem.NewMatchesRepo(memReports)
		notifRepo = mem.NewNotificationsRepo()
	}

	// Services por módulo. El dispatcher implementa matching.Notifier.
	dispatcher := notifications.NewDispatcher(notifRepo, reportsRepo, log)
	reportsSvc := reports.NewService(reportsRepo)
	matchingSvc := matching.NewService(matchesRepo, reportsRepo, dispatcher, log)
	notifSvc := notifications.NewService(notifRepo)

	// Rutas por módulo
	reports.RegisterRoutes(r, reportsSvc, matchingSvc)
	matching.RegisterRoutes(r, matchingSvc)
	notifications.RegisterRoutes(r, notifSvc)

	return r, matchingSvc
}
