// Package gymaccessmanager собирает основное HTTP-приложение:
// хранилище, кеш, сервисы и маршруты.
package gymaccessmanager

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/gym-access-manager/internal/cache"
	"github.com/magabrotheeeer/gym-access-manager/internal/config"
	"github.com/magabrotheeeer/gym-access-manager/internal/lib/civil"
	"github.com/magabrotheeeer/gym-access-manager/internal/lib/jwt"
	"github.com/magabrotheeeer/gym-access-manager/internal/migrations"
	accessservice "github.com/magabrotheeeer/gym-access-manager/internal/services/access"
	authservice "github.com/magabrotheeeer/gym-access-manager/internal/services/auth"
	clientservice "github.com/magabrotheeeer/gym-access-manager/internal/services/client"
	reportservice "github.com/magabrotheeeer/gym-access-manager/internal/services/report"
	"github.com/magabrotheeeer/gym-access-manager/internal/storage"
)

// App инкапсулирует HTTP-сервер и его зависимости.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
}

// New создает приложение: подключает базу и кеш, применяет миграции,
// собирает сервисы и маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	clock, err := civil.NewFixedZoneClock(cfg.TimeZone)
	if err != nil {
		return nil, err
	}

	jwtMaker := jwt.NewMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	authService := authservice.New(db, jwtMaker)
	clientService := clientservice.New(db, cacheRedis, clock, logger)
	accessService := accessservice.New(db, clock, logger)
	reportService := reportservice.New(db, db, clock, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, authService, clientService, accessService, reportService, db)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
	}, nil
}

// Run запускает сервер и останавливает его по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		_ = a.db.DB.Close()
		return err
	}
}
