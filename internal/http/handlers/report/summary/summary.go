// Package summary реализует HTTP-обработчик месячного отчета.
package summary

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/gym-access-manager/internal/http/response"
	"github.com/magabrotheeeer/gym-access-manager/internal/lib/sl"
	"github.com/magabrotheeeer/gym-access-manager/internal/lib/validation"
	"github.com/magabrotheeeer/gym-access-manager/internal/models"
)

// Request — параметры месячного отчета из строки запроса.
type Request struct {
	Month string `validate:"required,datetime=01-2006"`
}

// Handler управляет HTTP-запросами месячного отчета.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс сервиса отчетов.
type Service interface {
	MonthlySummary(ctx context.Context, month string) (*models.MonthlySummary, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validation.New(),
	}
}

// ServeHTTP godoc
// @Summary Месячный отчет
// @Description Возвращает отчет за календарный месяц: доход, новые клиенты и продления, распределение абонементов, посещаемость.
// @Tags Reports
// @Produce  json
// @Param month query string true "Месяц в формате MM-YYYY"
// @Success 200 {object} map[string]any "Отчет за месяц"
// @Failure 422 {object} response.ErrorResponse "Некорректный месяц"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /reports/summary [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.report.summary"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	req := Request{Month: r.URL.Query().Get("month")}
	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	result, err := h.service.MonthlySummary(r.Context(), req.Month)
	if err != nil {
		log.Error("failed to build monthly summary", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not build monthly summary"))
		return
	}

	log.Info("monthly summary built", slog.String("month", req.Month))
	render.JSON(w, r, response.OKWithData(result))
}
