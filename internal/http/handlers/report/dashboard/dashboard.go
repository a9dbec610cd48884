// Package dashboard реализует HTTP-обработчик сводки для главного экрана.
package dashboard

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

// Handler управляет HTTP-запросами сводки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс сервиса отчетов.
type Service interface {
	Dashboard(ctx context.Context) (*models.Dashboard, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Сводка для главного экрана
// @Description Возвращает счетчики живых статусов клиентов и разбивку сегодняшних событий доступа.
// @Tags Reports
// @Produce  json
// @Success 200 {object} map[string]any "Сводка"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /reports/dashboard [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.report.dashboard"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	result, err := h.service.Dashboard(r.Context())
	if err != nil {
		log.Error("failed to build dashboard", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not build dashboard"))
		return
	}

	render.JSON(w, r, response.OKWithData(result))
}
