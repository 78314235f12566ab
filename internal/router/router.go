package router

import (
	"database/sql"
	"net/http"
	"os"

	"med-reminders/internal/adapters/identity/directory"
	mem "med-reminders/internal/adapters/storage/memory"
	mongostore "med-reminders/internal/adapters/storage/mongo"
	pg "med-reminders/internal/adapters/storage/postgres"
	"med-reminders/internal/domain/activity"
	"med-reminders/internal/domain/medications"
	"med-reminders/internal/domain/reminders"
	"med-reminders/internal/middleware"
	"med-reminders/internal/platform/logger"
	"med-reminders/internal/ports/auth"
	"med-reminders/internal/ports/identity"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Resolver de identidad dual (id interno <-> email). Si es nil se arma
	// desde env (DIRECTORY_BASE_URL) o queda passthrough.
	Resolver identity.Resolver

	// Opcional: si viene Mongo se usa; si no, DB (Postgres); si no, in-memory.
	Mongo *mongodrv.Database
	DB    *sql.DB

	Logger logger.Logger
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.NewFromEnv()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	var (
		remRepo reminders.Repository
		medRepo medications.Repository
		actRepo activity.Repository
	)

	// Si no te pasan stores explícitos, intenta por env (dev/handoff):
	// MONGO_URI > DB_DSN > in-memory.
	mdb := opts.Mongo
	if mdb == nil {
		if uri := os.Getenv("MONGO_URI"); uri != "" {
			opened, err := mongostore.Open(uri, os.Getenv("MONGO_DB"))
			if err == nil {
				mdb = opened
			} else {
				log.Warn("mongo open failed, trying next store", map[string]any{"error": err.Error()})
			}
		}
	}

	db := opts.DB
	if mdb == nil && db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			} else {
				log.Warn("postgres open failed, falling back to memory", map[string]any{"error": err.Error()})
			}
		}
	}

	switch {
	case mdb != nil:
		remRepo = mongostore.NewRemindersRepo(mdb)
		medRepo = mongostore.NewMedicationsRepo(mdb)
		actRepo = mongostore.NewActivityRepo(mdb)
		log.Info("using mongo store", nil)
	case db != nil:
		remRepo = pg.NewRemindersRepo(db)
		medRepo = pg.NewMedicationsRepo(db)
		actRepo = pg.NewActivityRepo(db)
		log.Info("using postgres store", nil)
	default:
		remRepo = mem.NewReminderRepo()
		medRepo = mem.NewMedicationRepo()
		actRepo = mem.NewActivityRepo()
		log.Info("using in-memory store", nil)
	}

	resolver := opts.Resolver
	if resolver == nil {
		if base := os.Getenv("DIRECTORY_BASE_URL"); base != "" {
			resolver = directory.NewResolver(directory.NewClient(directory.Config{BaseURL: base}), log)
		} else {
			resolver = identity.Passthrough{}
		}
	}

	// Services por módulo. El trail de actividad entra a reminders y
	// medications como recorder best-effort.
	actSvc := activity.NewService(actRepo, resolver)
	remSvc := reminders.NewService(remRepo, resolver, actSvc, log)
	medSvc := medications.NewService(medRepo, resolver, actSvc)

	reminders.RegisterRoutes(r, remSvc, medSvc)
	medications.RegisterRoutes(r, medSvc)
	activity.RegisterRoutes(r, actSvc)

	return r
}
