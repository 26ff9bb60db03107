package http

import (
	"Shortlink-Backend/internal/auth"
	"Shortlink-Backend/internal/config"
	"Shortlink-Backend/internal/metrics"
	"Shortlink-Backend/internal/repository"
	"net/http"
	"time"

	_ "Shortlink-Backend/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ClickQueue асинхронная очередь событий переходов
type ClickQueue interface {
	ClickSubmitter
	StatsProvider
}

// AccountService операции реестра, которые нужны и ссылкам, и аккаунтам
type AccountService interface {
	URLService
	auth.Accounts
}

// ServerDeps зависимости HTTP сервера. Clicks может быть nil, тогда
// события переходов не записываются.
type ServerDeps struct {
	Storage   repository.Storage
	URLs      AccountService
	Summaries Summarizer
	Clicks    ClickQueue
	JWT       *auth.JWTService
	Passwords *auth.PasswordService
	Config    *config.Config
	Log       *zap.Logger
}

// Server HTTP сервер с обработчиками
type Server struct {
	authHandlers     *auth.AuthHandlers
	linksHandler     *LinksHandler
	redirectHandler  *RedirectHandler
	analyticsHandler *AnalyticsHandler
	qrHandler        *QRHandler
	healthHandler    *HealthHandler
	authMiddleware   *auth.Middleware
	limiter          *IPRateLimiter
	allowedOrigins   []string
	log              *zap.Logger
}

// NewServer создает новый HTTP сервер
func NewServer(deps ServerDeps) *Server {
	cfg := deps.Config
	baseURL := cfg.URLShortener.BaseURL

	var clicks ClickSubmitter
	var stats StatsProvider
	if deps.Clicks != nil {
		clicks, stats = deps.Clicks, deps.Clicks
	}

	gate := auth.NewGate(deps.JWT, deps.Storage, deps.Log)

	s := &Server{
		authHandlers:     auth.NewAuthHandlers(deps.Storage, deps.URLs, deps.JWT, deps.Passwords, deps.Log),
		linksHandler:     NewLinksHandler(deps.URLs, deps.Log, baseURL),
		redirectHandler:  NewRedirectHandler(deps.URLs, deps.Storage, clicks, deps.Log),
		analyticsHandler: NewAnalyticsHandler(deps.Summaries, deps.URLs, cfg.Analytics.DefaultDays, deps.Log),
		qrHandler:        NewQRHandler(deps.URLs, baseURL, deps.Log),
		healthHandler:    NewHealthHandler(deps.Storage, stats, deps.Log),
		authMiddleware:   auth.NewMiddleware(gate, deps.Log),
		allowedOrigins:   cfg.HTTPServer.AllowedOrigins,
		log:              deps.Log,
	}

	if cfg.RateLimit.Enabled {
		s.limiter = NewIPRateLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst, deps.Log)
	}

	return s
}

// Router настраивает маршруты
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(metrics.Middleware)
	r.Use(auth.CORS(s.allowedOrigins))

	// Служебные endpoints без лимитов
	r.Get("/health", s.healthHandler.Health)
	r.Get("/ready", s.healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	r.Group(func(r chi.Router) {
		if s.limiter != nil {
			r.Use(s.limiter.Middleware)
		}

		r.Route("/api/v1", func(r chi.Router) {
			r.Post("/shorten", s.linksHandler.Shorten)
			r.Get("/stats/{short_code}", s.linksHandler.Stats)
			r.Get("/analytics/global", s.analyticsHandler.Global)
			r.Get("/analytics/{short_code}", s.analyticsHandler.ForURL)
			r.Get("/qr/{short_code}", s.qrHandler.PNG)

			r.Route("/auth", func(r chi.Router) {
				r.Post("/register", s.authHandlers.Register)
				r.Post("/login", s.authHandlers.Login)

				r.Group(func(r chi.Router) {
					r.Use(s.authMiddleware.RequireAuth)
					r.Get("/me", s.authHandlers.Me)
					r.Get("/me/urls", s.authHandlers.MeWithURLs)
					r.Delete("/me", s.authHandlers.DeleteMe)
				})
			})

			r.Route("/user", func(r chi.Router) {
				r.Use(s.authMiddleware.RequireAuth)
				r.Post("/shorten", s.linksHandler.UserShorten)
				r.Get("/urls", s.linksHandler.ListUserURLs)
				r.Put("/urls/{id}", s.linksHandler.UpdateURL)
				r.Delete("/urls/{id}", s.linksHandler.DeleteURL)
				r.Get("/urls/{id}/clicks", s.linksHandler.URLClicks)
				r.Get("/analytics", s.analyticsHandler.ForUser)
			})
		})

		// Редирект должен идти последним
		r.Get("/{short_code}", s.redirectHandler.HandleRedirect)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, "Not found", http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.log.Info("request completed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote_ip", clientIP(r)))
	})
}
