// Package purge реализует HTTP-обработчик полной очистки журнала доступа.
// Доступен только администраторам.
package purge

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gym-access-manager/internal/http/response"
	"github.com/magabrotheeeer/gym-access-manager/internal/lib/sl"
)

// Handler управляет HTTP-запросами очистки журнала.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс очистки журнала доступа.
type Service interface {
	Purge(ctx context.Context) (int, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Очистить журнал доступа
// @Description Удаляет все события доступа. Возвращает количество удаленных записей.
// @Tags Access
// @Produce  json
// @Success 200 {object} map[string]any "Количество удаленных событий"
// @Failure 403 {object} response.ErrorResponse "Требуется роль admin"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /access/purge [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.access.purge"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	count, err := h.service.Purge(r.Context())
	if err != nil {
		log.Error("failed to purge access log", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not purge access log"))
		return
	}

	log.Info("access log purged", slog.Int("removed", count))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"removed": count,
	}))
}
