// Package today реализует HTTP-обработчик журнала доступа за сегодняшний день.
package today

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gym-access-manager/internal/http/response"
	"github.com/magabrotheeeer/gym-access-manager/internal/lib/sl"
	"github.com/magabrotheeeer/gym-access-manager/internal/models"
)

// Handler управляет HTTP-запросами сегодняшнего журнала доступа.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс журнала доступа.
type Service interface {
	TodayEvents(ctx context.Context) ([]*models.AccessEvent, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary События доступа за сегодня
// @Description Возвращает все события доступа с начала текущего дня, новые первыми.
// @Tags Access
// @Produce  json
// @Success 200 {object} map[string]any "События за сегодня"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /access/today [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.access.today"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	events, err := h.service.TodayEvents(r.Context())
	if err != nil {
		log.Error("failed to list today's events", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list today's events"))
		return
	}

	render.JSON(w, r, response.OKWithData(events))
}
