package api

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/Harshitk-cp/mentora/internal/api/handlers"
	mw "github.com/Harshitk-cp/mentora/internal/api/middleware"
	"github.com/Harshitk-cp/mentora/internal/domain"
	"github.com/Harshitk-cp/mentora/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// AccountsService names the accounts app in logs, metrics and health.
const AccountsService = "accounts"

// Pinger reports database reachability for /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	Logger *zap.Logger
	// DB is pinged by /health. Nil reports the database as disabled.
	DB             Pinger
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
}

// App is the HTTP surface of one service.
type App struct {
	Router  *chi.Mux
	Service string
}

func newRouter(ctx context.Context, name string, opts Options) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.Metrics(name))
	r.Use(mw.Logging(opts.Logger, name))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", mw.RequestIDHeader},
		ExposedHeaders:   []string{mw.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if opts.RateLimitRPS > 0 {
		r.Use(mw.RateLimit(ctx, name, opts.RateLimitRPS, opts.RateLimitBurst))
	}

	r.Handle("/metrics", promhttp.Handler())
	return r
}

// NewPredictionApp routes one prediction service: its legacy routes plus
// the shared /v1 surface.
func NewPredictionApp(ctx context.Context, svc *service.PredictionService, opts Options) *App {
	def := svc.Definition()
	name := string(def.Service)
	h := handlers.NewPredictionHandler(svc)
	r := newRouter(ctx, name, opts)

	r.Get("/health", healthHandler(name, opts.DB, svc.ModelLoaded))

	switch def.Service {
	case domain.ServiceStress:
		r.Post("/predict", h.Predict)
		r.Get("/predictions/history", h.History(handlers.HistoryV1))
		r.Get("/predictions/{id}", h.Get)
		r.Get("/stats", h.Stats)
		r.Get("/stresshistory", h.History(handlers.HistoryStress))
	case domain.ServiceAcademic:
		r.Post("/predictacademicperformance", h.Predict)
		r.Get("/get_today_prediction", h.Today)
		r.Get("/academichistory", h.History(handlers.HistoryAcademic))
	case domain.ServiceMental:
		r.Post("/predictmentalhealth", h.Predict)
		r.Get("/user/{user_id}/history", h.History(handlers.HistoryMental))
	case domain.ServiceMobile:
		r.Post("/analyze_mobile_usage", h.Predict)
		r.Get("/get_today_prediction", h.Today)
		r.Get("/get_user_history", h.History(handlers.HistoryMobile))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/predict", h.Predict)
		r.Get("/history", h.History(handlers.HistoryV1))
		r.Get("/predictions/{id}", h.Get)
		r.Get("/stats", h.Stats)
		r.Get("/today", h.Today)
	})

	r.Get("/", bannerHandler(def.Banner, r))
	return &App{Router: r, Service: name}
}

// NewAccountsApp routes signup, login and profile management.
func NewAccountsApp(ctx context.Context, svc *service.AccountService, opts Options) *App {
	h := handlers.NewAccountHandler(svc)
	r := newRouter(ctx, AccountsService, opts)

	r.Get("/health", healthHandler(AccountsService, opts.DB, nil))
	r.Post("/signup", h.Signup)
	r.Post("/login", h.Login)
	r.Get("/user/{id}", h.GetUser)
	r.Route("/profile/{id}", func(r chi.Router) {
		r.Get("/", h.GetProfile)
		r.Put("/", h.UpdateProfile)
	})

	r.Get("/", bannerHandler("Mentora Accounts API", r))
	return &App{Router: r, Service: AccountsService}
}

type healthResponse struct {
	Status      string `json:"status"`
	Service     string `json:"service"`
	ModelLoaded *bool  `json:"model_loaded,omitempty"`
	Database    string `json:"database"`
}

// healthHandler reports 503 when the model is not loaded or the database
// does not answer a ping. modelLoaded is nil for services without a model.
func healthHandler(name string, db Pinger, modelLoaded func() bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok", Service: name, Database: "disabled"}
		status := http.StatusOK

		if modelLoaded != nil {
			loaded := modelLoaded()
			resp.ModelLoaded = &loaded
			if !loaded {
				status = http.StatusServiceUnavailable
			}
		}
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			resp.Database = "ok"
			if err := db.Ping(ctx); err != nil {
				resp.Database = "unavailable"
				status = http.StatusServiceUnavailable
			}
		}
		if status != http.StatusOK {
			resp.Status = "degraded"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

type bannerResponse struct {
	Message string   `json:"message"`
	Routes  []string `json:"routes"`
}

// bannerHandler answers with the banner and every route registered on r.
func bannerHandler(banner string, r chi.Routes) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var routes []string
		_ = chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
			routes = append(routes, method+" "+route)
			return nil
		})
		sort.Strings(routes)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(bannerResponse{Message: banner, Routes: routes})
	}
}
