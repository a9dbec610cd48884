// Package scan реализует HTTP-обработчик сканирования на проходной.
//
// Тело запроса — сырые данные сканера: либо JSON с полями qr_code и pin,
// либо голый PIN. Обработчик разбирает учетные данные, находит клиента
// и передает решение о входе или выходе арбитру доступа. Результат
// каждого сканирования попадает в счетчик метрик.
package scan

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/magabrotheeeer/gym-access-manager/internal/http/response"
	"github.com/magabrotheeeer/gym-access-manager/internal/lib/credential"
	"github.com/magabrotheeeer/gym-access-manager/internal/lib/sl"
	"github.com/magabrotheeeer/gym-access-manager/internal/models"
	"github.com/magabrotheeeer/gym-access-manager/internal/storage"
)

// maxBodySize ограничивает тело запроса сканирования.
const maxBodySize = 4096

var scanOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "gym_scan_outcomes_total",
	Help: "Результаты сканирований на проходной.",
}, []string{"outcome"})

// Handler управляет HTTP-запросами сканирования.
type Handler struct {
	log     *slog.Logger
	clients ClientService
	access  AccessService
}

// ClientService описывает поиск клиента по учетным данным сканирования.
type ClientService interface {
	FindByCredential(ctx context.Context, cred credential.Credential) (*models.Client, error)
}

// AccessService описывает арбитра доступа.
type AccessService interface {
	HandleScan(ctx context.Context, client *models.Client) (models.Outcome, error)
}

// New создает новый Handler с переданными логгером и сервисами.
func New(log *slog.Logger, clients ClientService, access AccessService) *Handler {
	return &Handler{
		log:     log,
		clients: clients,
		access:  access,
	}
}

// ServeHTTP godoc
// @Summary Сканирование на проходной
// @Description Принимает данные сканера (JSON с qr_code/pin или голый PIN) и возвращает решение: вход, выход или отказ.
// @Tags Access
// @Accept  plain
// @Produce  json
// @Param request body string true "Данные сканера"
// @Success 200 {object} map[string]any "Решение арбитра"
// @Failure 400 {object} response.ErrorResponse "Нечитаемые учетные данные"
// @Failure 404 {object} response.ErrorResponse "Клиент не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /scan [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.access.scan"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		log.Error("failed to read request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	cred, err := credential.Parse(string(raw))
	if err != nil {
		log.Error("malformed credential", sl.Err(err))
		scanOutcomes.WithLabelValues("malformed").Inc()
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("malformed credential"))
		return
	}

	client, err := h.clients.FindByCredential(r.Context(), cred)
	if err != nil {
		if errors.Is(err, storage.ErrClientNotFound) {
			log.Error("unknown credential")
			scanOutcomes.WithLabelValues("unknown").Inc()
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("client not found"))
			return
		}
		log.Error("failed to find client", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	outcome, err := h.access.HandleScan(r.Context(), client)
	if err != nil {
		log.Error("scan arbitration failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not process scan"))
		return
	}

	scanOutcomes.WithLabelValues(string(outcome.Kind)).Inc()
	log.Info("scan processed",
		slog.String("email", client.Email),
		slog.String("outcome", string(outcome.Kind)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"client":  client.Name,
		"outcome": outcome,
	}))
}
