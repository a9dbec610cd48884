package renew_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/gym-access-manager/internal/http/handlers/client/renew"
	"github.com/magabrotheeeer/gym-access-manager/internal/models"
	"github.com/magabrotheeeer/gym-access-manager/internal/storage"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Renew(ctx context.Context, id int, req models.DummyRenew) (*models.Client, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Client), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRouter(handler http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/clients/{id}/renew", handler.ServeHTTP)
	return r
}

func TestRenewHandler(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		body           string
		setupMock      func(*ServiceMock)
		wantStatusCode int
		wantContains   string
	}{
		{
			name: "success",
			url:  "/clients/7/renew",
			body: `{"plan":"monthly","price":650,"payment_date":"10-03-2026"}`,
			setupMock: func(m *ServiceMock) {
				m.On("Renew", mock.Anything, 7, models.DummyRenew{
					Plan: "monthly", Price: 650, PaymentDate: "10-03-2026",
				}).Return(&models.Client{ID: 7, Status: models.StatusActive}, nil).Once()
			},
			wantStatusCode: http.StatusOK,
			wantContains:   `"status":"active"`,
		},
		{
			name:           "invalid id",
			url:            "/clients/abc/renew",
			body:           `{"plan":"monthly","price":650,"payment_date":"10-03-2026"}`,
			setupMock:      func(*ServiceMock) {},
			wantStatusCode: http.StatusBadRequest,
			wantContains:   "invalid client id",
		},
		{
			name:           "missing plan fails validation",
			url:            "/clients/7/renew",
			body:           `{"price":650,"payment_date":"10-03-2026"}`,
			setupMock:      func(*ServiceMock) {},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantContains:   "Plan",
		},
		{
			name:           "per_visit without visit days fails validation",
			url:            "/clients/7/renew",
			body:           `{"plan":"per_visit","price":400,"payment_date":"10-03-2026"}`,
			setupMock:      func(*ServiceMock) {},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantContains:   "VisitDays",
		},
		{
			name: "client not found",
			url:  "/clients/99/renew",
			body: `{"plan":"monthly","price":650,"payment_date":"10-03-2026"}`,
			setupMock: func(m *ServiceMock) {
				m.On("Renew", mock.Anything, 99, mock.Anything).
					Return(nil, storage.ErrClientNotFound).Once()
			},
			wantStatusCode: http.StatusNotFound,
			wantContains:   "client not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMock(svc)

			router := newRouter(renew.New(newNoopLogger(), svc))

			req := httptest.NewRequest(http.MethodPost, tt.url, bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantContains)
			svc.AssertExpectations(t)
		})
	}
}
