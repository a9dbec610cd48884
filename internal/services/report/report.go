// Package report собирает сводную статистику для панели управления
// и месячных отчетов из реестра клиентов и журнала доступа.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/magabrotheeeer/gym-access-manager/internal/lib/civil"
	"github.com/magabrotheeeer/gym-access-manager/internal/models"
	"github.com/magabrotheeeer/gym-access-manager/internal/services/status"
)

// MonthLayout формат параметра месяца в запросах отчетов.
const MonthLayout = "01-2006"

// topClientsLimit сколько самых частых посетителей попадает в месячный отчет.
const topClientsLimit = 5

// ClientSource читает реестр клиентов для агрегатов.
type ClientSource interface {
	ListAllClients(ctx context.Context) ([]*models.Client, error)
}

// EventSource читает журнал доступа для агрегатов.
type EventSource interface {
	ListEventsBetween(ctx context.Context, fromTS, toTS string) ([]*models.AccessEvent, error)
}

// Service считает агрегаты поверх живых статусов: счетчики клиентов
// никогда не берутся из сохраненных значений статуса.
type Service struct {
	clients ClientSource
	events  EventSource
	clock   civil.Clock
	log     *slog.Logger
}

// New создает новый экземпляр Service.
func New(clients ClientSource, events EventSource, clock civil.Clock, log *slog.Logger) *Service {
	return &Service{
		clients: clients,
		events:  events,
		clock:   clock,
		log:     log,
	}
}

// Dashboard собирает сводку для главного экрана: счетчики живых статусов
// клиентов и разбивка сегодняшних событий по виду и снимку статуса.
func (s *Service) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	const op = "report.Dashboard"

	now := s.clock.Now()

	clients, err := s.clients.ListAllClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := &models.Dashboard{}
	for _, c := range clients {
		switch status.Compute(c.ExpirationDate, now) {
		case models.StatusActive:
			result.ActiveClients++
		case models.StatusExpiring:
			result.ExpiringClients++
		}
	}

	from, to := civil.DayBounds(now)
	events, err := s.events.ListEventsBetween(ctx, civil.Format(from), civil.Format(to))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result.TodaysAccess = len(events)
	for _, e := range events {
		switch e.Kind {
		case models.EventEntry:
			result.CurrentOccupancy++
			switch e.StatusSnapshot {
			case models.StatusActive:
				result.ActiveEntries++
			case models.StatusExpiring:
				result.ExpiringEntries++
			}
		case models.EventExit:
			result.CurrentOccupancy--
			switch e.StatusSnapshot {
			case models.StatusActive:
				result.ActiveExits++
			case models.StatusExpiring:
				result.ExpiringExits++
			}
		case models.EventDenied:
			result.DeniedAccess++
		}
	}

	return result, nil
}

// MonthlySummary собирает отчет за календарный месяц: доход по датам оплаты,
// новые клиенты против продлений, распределение абонементов, посещаемость.
// month задается в формате MM-YYYY.
func (s *Service) MonthlySummary(ctx context.Context, month string) (*models.MonthlySummary, error) {
	const op = "report.MonthlySummary"

	parsed, err := time.Parse(MonthLayout, month)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid month: %w", op, err)
	}
	monthStart := time.Date(parsed.Year(), parsed.Month(), 1, 0, 0, 0, 0, s.clock.Now().Location())
	monthEnd := monthStart.AddDate(0, 1, 0)

	clients, err := s.clients.ListAllClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.clock.Now()
	result := &models.MonthlySummary{Month: month}
	for _, c := range clients {
		switch c.Plan {
		case models.PlanMonthly:
			result.MonthlyPlans++
		case models.PlanPerVisit:
			result.PerVisitPlans++
		}

		inMonth := !c.PaymentDate.Before(monthStart) && c.PaymentDate.Before(monthEnd)
		if inMonth {
			result.NewClients++
			result.Income += c.Price
		} else if status.Compute(c.ExpirationDate, now) != models.StatusExpired {
			result.Renewals++
		}
	}

	events, err := s.events.ListEventsBetween(ctx, civil.Format(monthStart), civil.Format(monthEnd))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	visitsByClient := make(map[string]*models.TopClient)
	for _, e := range events {
		if e.Kind != models.EventEntry {
			continue
		}
		result.TotalVisits++

		ts, err := civil.Parse(e.Timestamp, now.Location())
		if err != nil {
			s.log.Warn("skipping event with unparsable timestamp",
				slog.Int("id", e.ID), slog.String("ts", e.Timestamp))
			continue
		}
		result.VisitsByHour[ts.Hour()]++

		top, ok := visitsByClient[e.ClientEmail]
		if !ok {
			top = &models.TopClient{Name: e.ClientName, Email: e.ClientEmail}
			visitsByClient[e.ClientEmail] = top
		}
		top.Visits++
	}

	result.TopClients = rankTopClients(visitsByClient)
	return result, nil
}

// rankTopClients сортирует посетителей по убыванию входов,
// при равенстве по адресу почты для стабильного порядка.
func rankTopClients(visits map[string]*models.TopClient) []models.TopClient {
	ranked := make([]models.TopClient, 0, len(visits))
	for _, v := range visits {
		ranked = append(ranked, *v)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Visits != ranked[j].Visits {
			return ranked[i].Visits > ranked[j].Visits
		}
		return ranked[i].Email < ranked[j].Email
	})
	if len(ranked) > topClientsLimit {
		ranked = ranked[:topClientsLimit]
	}
	return ranked
}
