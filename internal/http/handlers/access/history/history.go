// Package history реализует HTTP-обработчик полной истории доступа
// с необязательным фильтром по почте клиента.
package history

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

const defaultLimit = 100

// Handler управляет HTTP-запросами истории доступа.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс журнала доступа.
type Service interface {
	History(ctx context.Context, email string, limit, offset int) ([]*models.AccessEvent, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary История доступа
// @Description Возвращает страницу истории доступа, новые события первыми. Параметр email ограничивает выдачу одним клиентом.
// @Tags Access
// @Produce  json
// @Param email query string false "Почта клиента"
// @Param limit query int false "Размер страницы (по умолчанию 100)"
// @Param offset query int false "Смещение"
// @Success 200 {object} map[string]any "Страница истории"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /access/history [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.access.history"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	email := r.URL.Query().Get("email")
	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	offset := 0
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	events, err := h.service.History(r.Context(), email, limit, offset)
	if err != nil {
		log.Error("failed to list history", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list history"))
		return
	}

	log.Info("history listed", slog.Int("count", len(events)), slog.String("email", email))
	render.JSON(w, r, response.OKWithData(events))
}
