// Package access реализует арбитраж событий доступа: решение о том,
// является ли очередное сканирование входом, выходом или отказом.
//
// Состояние "клиент сейчас в зале" нигде не хранится — оно каждый раз
// восстанавливается из последовательности событий клиента за текущий
// календарный день. Решение — тотальная функция от вида последнего события:
// нет события, exit или denied — попытка входа; entry — попытка выхода.
// Попытка входа при истёкшем абонементе даёт отказ, но выход закрывается
// при любом статусе: нельзя запереть клиента внутри открытой сессии.
package access

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/magabrotheeeer/gym-access-manager/internal/lib/civil"
	"github.com/magabrotheeeer/gym-access-manager/internal/models"
	"github.com/magabrotheeeer/gym-access-manager/internal/services/status"
)

// DeniedReasonExpired причина отказа, записываемая в событие denied.
const DeniedReasonExpired = "subscription expired"

// EventStore определяет методы журнала доступа, нужные арбитру.
type EventStore interface {
	// AppendEvent добавляет событие и возвращает его ID. Запись долговечна
	// к моменту возврата.
	AppendEvent(ctx context.Context, event models.AccessEvent) (int, error)
	// ListEventsForClientBetween возвращает события клиента в интервале
	// [fromTS, toTS); desc=true — от новых к старым.
	ListEventsForClientBetween(ctx context.Context, email, fromTS, toTS string, desc bool) ([]*models.AccessEvent, error)
	// ListEventsBetween возвращает все события в интервале [fromTS, toTS).
	ListEventsBetween(ctx context.Context, fromTS, toTS string) ([]*models.AccessEvent, error)
	// ListRecentEvents возвращает последние события журнала.
	ListRecentEvents(ctx context.Context, limit int) ([]*models.AccessEvent, error)
	// ListHistory возвращает страницу журнала с фильтром по почте.
	ListHistory(ctx context.Context, email string, limit, offset int) ([]*models.AccessEvent, error)
	// PurgeEvents удаляет весь журнал.
	PurgeEvents(ctx context.Context) (int, error)
}

// Service реализует арбитраж сканирований и чтение журнала доступа.
type Service struct {
	store EventStore
	clock civil.Clock
	log   *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex // сериализация арбитража по клиенту
}

// New создает новый экземпляр Service.
func New(store EventStore, clock civil.Clock, log *slog.Logger) *Service {
	return &Service{
		store: store,
		clock: clock,
		log:   log,
		locks: map[string]*sync.Mutex{},
	}
}

// lockClient берёт мьютекс клиента: не больше одного арбитража на клиента
// одновременно, иначе два конкурентных сканирования могли бы оба прочитать
// "входа ещё не было" и оба записать entry.
func (s *Service) lockClient(email string) func() {
	s.mu.Lock()
	m, ok := s.locks[email]
	if !ok {
		m = &sync.Mutex{}
		s.locks[email] = m
	}
	s.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// HandleScan выполняет арбитраж одного сканирования для найденного клиента.
//
// Последовательность чтение-решение-запись выполняется целиком под мьютексом
// клиента и добавляет ровно одно событие. Ошибка хранилища проваливает всё
// сканирование: никакой исход не предполагается, вызывающая сторона повторяет
// HandleScan целиком.
func (s *Service) HandleScan(ctx context.Context, client *models.Client) (models.Outcome, error) {
	const op = "access.HandleScan"

	unlock := s.lockClient(client.Email)
	defer unlock()

	now := s.clock.Now()
	clientStatus := status.Compute(client.ExpirationDate, now)

	dayStart, dayNext := civil.DayBounds(now)
	todayEvents, err := s.store.ListEventsForClientBetween(ctx,
		client.Email, civil.Format(dayStart), civil.Format(dayNext), true)
	if err != nil {
		return models.Outcome{}, fmt.Errorf("%s: %w", op, err)
	}

	var lastEvent *models.AccessEvent
	if len(todayEvents) > 0 {
		lastEvent = todayEvents[0]
	}

	if lastEvent == nil || lastEvent.Kind != models.EventEntry {
		return s.arbitrateEntry(ctx, client, clientStatus, now)
	}
	return s.arbitrateExit(ctx, client, clientStatus, lastEvent, now)
}

// arbitrateEntry обрабатывает попытку входа. Проверка истечения абонемента
// выполняется только здесь: уже открытый вход закрывается при любом статусе.
func (s *Service) arbitrateEntry(ctx context.Context, client *models.Client, clientStatus models.Status, now time.Time) (models.Outcome, error) {
	const op = "access.arbitrateEntry"

	if clientStatus == models.StatusExpired {
		event := models.AccessEvent{
			ClientName:     client.Name,
			ClientEmail:    client.Email,
			Timestamp:      civil.Format(now),
			Kind:           models.EventDenied,
			StatusSnapshot: clientStatus,
			Reason:         DeniedReasonExpired,
		}
		if _, err := s.store.AppendEvent(ctx, event); err != nil {
			return models.Outcome{}, fmt.Errorf("%s: %w", op, err)
		}
		s.log.Info("entry denied",
			slog.String("client_email", client.Email),
			slog.String("reason", DeniedReasonExpired))
		return models.Outcome{Kind: models.OutcomeDenied, Reason: DeniedReasonExpired}, nil
	}

	event := models.AccessEvent{
		ClientName:     client.Name,
		ClientEmail:    client.Email,
		Timestamp:      civil.Format(now),
		Kind:           models.EventEntry,
		StatusSnapshot: clientStatus,
	}
	if _, err := s.store.AppendEvent(ctx, event); err != nil {
		return models.Outcome{}, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("entry recorded",
		slog.String("client_email", client.Email),
		slog.String("status", string(clientStatus)))
	return models.Outcome{Kind: models.OutcomeEntered, Status: clientStatus}, nil
}

// arbitrateExit закрывает открытый вход и считает время в зале.
// Минуты округляются к ближайшему целому, не усекаются.
func (s *Service) arbitrateExit(ctx context.Context, client *models.Client, clientStatus models.Status, entry *models.AccessEvent, now time.Time) (models.Outcome, error) {
	const op = "access.arbitrateExit"

	entryTime, err := civil.Parse(entry.Timestamp, now.Location())
	if err != nil {
		return models.Outcome{}, fmt.Errorf("%s: %w", op, err)
	}
	activeMinutes := int(math.Round(now.Sub(entryTime).Minutes()))

	event := models.AccessEvent{
		ClientName:     client.Name,
		ClientEmail:    client.Email,
		Timestamp:      civil.Format(now),
		Kind:           models.EventExit,
		StatusSnapshot: clientStatus,
		ActiveMinutes:  activeMinutes,
	}
	if _, err := s.store.AppendEvent(ctx, event); err != nil {
		return models.Outcome{}, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("exit recorded",
		slog.String("client_email", client.Email),
		slog.Int("active_minutes", activeMinutes))
	return models.Outcome{Kind: models.OutcomeExited, ActiveMinutes: activeMinutes}, nil
}

// TodayEvents возвращает все события текущего календарного дня.
func (s *Service) TodayEvents(ctx context.Context) ([]*models.AccessEvent, error) {
	const op = "access.TodayEvents"

	dayStart, dayNext := civil.DayBounds(s.clock.Now())
	events, err := s.store.ListEventsBetween(ctx, civil.Format(dayStart), civil.Format(dayNext))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return events, nil
}

// History возвращает страницу журнала доступа, от новых к старым.
// email пустой — без фильтра.
func (s *Service) History(ctx context.Context, email string, limit, offset int) ([]*models.AccessEvent, error) {
	const op = "access.History"

	events, err := s.store.ListHistory(ctx, email, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return events, nil
}

// Recent возвращает последние события журнала.
func (s *Service) Recent(ctx context.Context, limit int) ([]*models.AccessEvent, error) {
	const op = "access.Recent"

	events, err := s.store.ListRecentEvents(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return events, nil
}

// Purge удаляет весь журнал доступа и возвращает количество удалённых записей.
func (s *Service) Purge(ctx context.Context) (int, error) {
	const op = "access.Purge"

	count, err := s.store.PurgeEvents(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Warn("access history purged", slog.Int("removed", count))
	return count, nil
}
