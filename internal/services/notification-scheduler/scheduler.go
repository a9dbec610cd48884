// Package scheduler периодически находит клиентов с истекающим в ближайшие
// дни абонементом и публикует напоминания в брокер уведомлений.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/gym-access-manager/internal/lib/civil"
	librabbitmq "github.com/magabrotheeeer/gym-access-manager/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/gym-access-manager/internal/lib/sl"
	"github.com/magabrotheeeer/gym-access-manager/internal/models"
	"github.com/magabrotheeeer/gym-access-manager/internal/rabbitmq"
	"github.com/magabrotheeeer/gym-access-manager/internal/services/status"
)

// ClientRepository описывает выборку клиентов по дате окончания абонемента.
type ClientRepository interface {
	ListClientsExpiringBetween(ctx context.Context, from, to time.Time) ([]*models.Client, error)
}

// Service находит истекающие абонементы и рассылает напоминания.
type Service struct {
	repo  ClientRepository
	clock civil.Clock
	log   *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo ClientRepository, clock civil.Clock, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		clock: clock,
		log:   log,
	}
}

// Run публикует напоминания сразу и затем с заданным интервалом,
// пока контекст не будет отменен.
func (s *Service) Run(ctx context.Context, channel *amqp.Channel, interval time.Duration) {
	s.publishReminders(ctx, channel)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.publishReminders(ctx, channel)
		case <-ctx.Done():
			return
		}
	}
}

// publishReminders находит клиентов, чей абонемент заканчивается в окне
// "expiring", и публикует по напоминанию на каждого.
func (s *Service) publishReminders(ctx context.Context, channel *amqp.Channel) {
	s.log.Info("starting expiring subscriptions lookup")

	now := s.clock.Now()
	to := now.AddDate(0, 0, status.ExpiringWindowDays)

	clients, err := s.repo.ListClientsExpiringBetween(ctx, now, to)
	if err != nil {
		s.log.Error("failed to list expiring clients", sl.Err(err))
		return
	}
	if len(clients) == 0 {
		s.log.Info("no expiring subscriptions found")
		return
	}
	s.log.Info("found expiring subscriptions", "count", len(clients))

	for _, c := range clients {
		reminder := models.ClientReminder{
			Name:           c.Name,
			Email:          c.Email,
			ExpirationDate: c.ExpirationDate.Format(civil.DateLayout),
			DaysRemaining:  status.DaysRemaining(c.ExpirationDate, now),
		}
		err = librabbitmq.PublishMessage(channel, rabbitmq.NotificationsExchange, rabbitmq.ExpiringRoutingKey, reminder)
		if err != nil {
			s.log.Error("failed to publish reminder", sl.Err(err), slog.String("email", c.Email))
		}
	}
}
