package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	authmw "github.com/mind-engage/mindengage-qtype/internal/auth/middleware"
	"github.com/mind-engage/mindengage-qtype/internal/qtype"
	"github.com/mind-engage/mindengage-qtype/internal/qtype/enable"
	"github.com/mind-engage/mindengage-qtype/internal/rbac"
	syncx "github.com/mind-engage/mindengage-qtype/internal/sync"
)

// Deps are the collaborators the HTTP surface needs. Flags and Events may be
// nil, in which case the matching admin routes are not mounted.
type Deps struct {
	Dispatcher  *qtype.Dispatcher
	Auth        *authmw.AuthService
	Admin       *authmw.Admin // nil disables /auth/login
	Checker     *rbac.Checker
	Flags       enable.Writer
	Events      *syncx.EventRepo
	Logger      *zap.Logger
	CORSOrigins []string
}

func NewRouter(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Checker == nil {
		d.Checker = rbac.NewChecker(nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger(d.Logger), middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if d.Admin != nil {
		r.Post("/auth/login", authmw.LoginHandler(d.Auth, *d.Admin))
	}

	r.Group(func(pr chi.Router) {
		pr.Use(authmw.JWTMiddleware(d.Auth))

		pr.With(d.Checker.RequireAny("qtype:view", "qtype:manage")).
			Get("/qtypes", ListQtypesHandler(d.Dispatcher))

		pr.With(d.Checker.Require("qtype:evaluate")).
			Post("/questions/evaluate", EvaluateHandler(d.Dispatcher))
		pr.With(d.Checker.Require("qtype:evaluate")).
			Post("/questions/evaluate/batch", EvaluateBatchHandler(d.Dispatcher))
		pr.With(d.Checker.Require("qtype:evaluate")).
			Post("/questions/same", SameResponseHandler(d.Dispatcher))

		if d.Flags != nil {
			pr.With(d.Checker.Require("qtype:manage")).
				Put("/admin/qtypes/{type}/enabled", SetEnabledHandler(d.Dispatcher, d.Flags, d.Events, d.Logger))
		}
		if d.Events != nil {
			pr.With(d.Checker.Require("qtype:manage")).
				Get("/admin/events", ListEventsHandler(d.Events))
		}
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	return r
}

// requestLogger logs one line per request with zap.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Info("http",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("took", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
