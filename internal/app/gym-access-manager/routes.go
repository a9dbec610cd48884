package gymaccessmanager

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/gym-access-manager/internal/http/handlers/access/history"
	"github.com/magabrotheeeer/gym-access-manager/internal/http/handlers/access/purge"
	"github.com/magabrotheeeer/gym-access-manager/internal/http/handlers/access/recent"
	"github.com/magabrotheeeer/gym-access-manager/internal/http/handlers/access/scan"
	"github.com/magabrotheeeer/gym-access-manager/internal/http/handlers/access/today"
	"github.com/magabrotheeeer/gym-access-manager/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/gym-access-manager/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/gym-access-manager/internal/http/handlers/client/create"
	"github.com/magabrotheeeer/gym-access-manager/internal/http/handlers/client/list"
	"github.com/magabrotheeeer/gym-access-manager/internal/http/handlers/client/read"
	"github.com/magabrotheeeer/gym-access-manager/internal/http/handlers/client/remove"
	"github.com/magabrotheeeer/gym-access-manager/internal/http/handlers/client/renew"
	"github.com/magabrotheeeer/gym-access-manager/internal/http/handlers/client/update"
	"github.com/magabrotheeeer/gym-access-manager/internal/http/handlers/health"
	"github.com/magabrotheeeer/gym-access-manager/internal/http/handlers/report/dashboard"
	"github.com/magabrotheeeer/gym-access-manager/internal/http/handlers/report/summary"
	"github.com/magabrotheeeer/gym-access-manager/internal/http/middlewarectx"
	accessservice "github.com/magabrotheeeer/gym-access-manager/internal/services/access"
	authservice "github.com/magabrotheeeer/gym-access-manager/internal/services/auth"
	clientservice "github.com/magabrotheeeer/gym-access-manager/internal/services/client"
	reportservice "github.com/magabrotheeeer/gym-access-manager/internal/services/report"
	"github.com/magabrotheeeer/gym-access-manager/internal/storage"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger,
	authService *authservice.Service,
	clientService *clientservice.Service,
	accessService *accessservice.Service,
	reportService *reportservice.Service,
	db *storage.Storage,
) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		middlewarectx.MetricsMiddleware(),
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, authService).ServeHTTP)
		r.Post("/login", login.New(logger, authService).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Post("/clients", create.New(logger, clientService).ServeHTTP)
			r.Get("/clients/list", list.New(logger, clientService).ServeHTTP)
			r.Get("/clients/{id}", read.New(logger, clientService).ServeHTTP)
			r.Put("/clients/{id}", update.New(logger, clientService).ServeHTTP)
			r.Post("/clients/{id}/renew", renew.New(logger, clientService).ServeHTTP)

			r.Post("/scan", scan.New(logger, clientService, accessService).ServeHTTP)
			r.Get("/access/today", today.New(logger, accessService).ServeHTTP)
			r.Get("/access/recent", recent.New(logger, accessService).ServeHTTP)
			r.Get("/access/history", history.New(logger, accessService).ServeHTTP)

			r.Get("/reports/dashboard", dashboard.New(logger, reportService).ServeHTTP)
			r.Get("/reports/summary", summary.New(logger, reportService).ServeHTTP)

			// Только для администратора
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.AdminOnlyMiddleware(logger))
				r.Delete("/clients/{id}", remove.New(logger, clientService).ServeHTTP)
				r.Delete("/access/purge", purge.New(logger, accessService).ServeHTTP)
			})
		})
	})

	r.Get("/health", health.New(logger, db).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
