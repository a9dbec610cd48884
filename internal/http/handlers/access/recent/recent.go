// Package recent реализует HTTP-обработчик последних событий доступа.
package recent

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gym-access-manager/internal/http/response"
	"github.com/magabrotheeeer/gym-access-manager/internal/lib/sl"
	"github.com/magabrotheeeer/gym-access-manager/internal/models"
)

const defaultLimit = 20

// Handler управляет HTTP-запросами последних событий доступа.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс журнала доступа.
type Service interface {
	Recent(ctx context.Context, limit int) ([]*models.AccessEvent, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Последние события доступа
// @Description Возвращает последние события доступа независимо от дня, новые первыми.
// @Tags Access
// @Produce  json
// @Param limit query int false "Сколько событий вернуть (по умолчанию 20)"
// @Success 200 {object} map[string]any "Последние события"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /access/recent [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.access.recent"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	events, err := h.service.Recent(r.Context(), limit)
	if err != nil {
		log.Error("failed to list recent events", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list recent events"))
		return
	}

	render.JSON(w, r, response.OKWithData(events))
}
