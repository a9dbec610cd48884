package access

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/gym-access-manager/internal/lib/civil"
	"github.com/magabrotheeeer/gym-access-manager/internal/models"
)

// fakeStore журнал доступа в памяти с той же семантикой, что у хранилища:
// только добавление, порядок вставки, фильтр по [from, to).
type fakeStore struct {
	mu        sync.Mutex
	events    []models.AccessEvent
	nextID    int
	appendErr error
	listErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1}
}

func (f *fakeStore) AppendEvent(_ context.Context, event models.AccessEvent) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return 0, f.appendErr
	}
	event.ID = f.nextID
	f.nextID++
	f.events = append(f.events, event)
	return event.ID, nil
}

func (f *fakeStore) ListEventsForClientBetween(_ context.Context, email, fromTS, toTS string, desc bool) ([]*models.AccessEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*models.AccessEvent
	for i := range f.events {
		e := f.events[i]
		if e.ClientEmail != email || e.Timestamp < fromTS || e.Timestamp >= toTS {
			continue
		}
		out = append(out, &e)
	}
	if desc {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, nil
}

func (f *fakeStore) ListEventsBetween(_ context.Context, fromTS, toTS string) ([]*models.AccessEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.AccessEvent
	for i := range f.events {
		e := f.events[i]
		if e.Timestamp < fromTS || e.Timestamp >= toTS {
			continue
		}
		out = append(out, &e)
	}
	return out, nil
}

func (f *fakeStore) ListRecentEvents(_ context.Context, limit int) ([]*models.AccessEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.AccessEvent
	for i := len(f.events) - 1; i >= 0 && len(out) < limit; i-- {
		e := f.events[i]
		out = append(out, &e)
	}
	return out, nil
}

func (f *fakeStore) ListHistory(_ context.Context, email string, limit, offset int) ([]*models.AccessEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []*models.AccessEvent
	for i := len(f.events) - 1; i >= 0; i-- {
		e := f.events[i]
		if email != "" && e.ClientEmail != email {
			continue
		}
		all = append(all, &e)
	}
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (f *fakeStore) PurgeEvents(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(f.events)
	f.events = nil
	return n, nil
}

func (f *fakeStore) kinds() []models.EventKind {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.EventKind, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Kind)
	}
	return out
}

var testLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

func testClient(expiration time.Time) *models.Client {
	return &models.Client{
		ID:             1,
		Name:           "Ana Torres",
		Email:          "ana@example.com",
		Plan:           models.PlanMonthly,
		ExpirationDate: expiration,
	}
}

func loc(t *testing.T) *time.Location {
	t.Helper()
	l, err := time.LoadLocation("America/Mexico_City")
	require.NoError(t, err)
	return l
}

func TestHandleScan_FirstScanActiveClient_Enters(t *testing.T) {
	l := loc(t)
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, l)
	store := newFakeStore()
	svc := New(store, civil.StoppedClock{Moment: now}, testLogger)

	client := testClient(now.AddDate(0, 0, 20))
	outcome, err := svc.HandleScan(context.Background(), client)
	require.NoError(t, err)

	assert.Equal(t, models.OutcomeEntered, outcome.Kind)
	assert.Equal(t, models.StatusActive, outcome.Status)
	assert.Equal(t, []models.EventKind{models.EventEntry}, store.kinds())
	assert.Equal(t, models.StatusActive, store.events[0].StatusSnapshot)
	assert.Equal(t, "2024-03-15T09:00:00.000", store.events[0].Timestamp)
}

func TestHandleScan_SecondScan_ExitsWithRoundedMinutes(t *testing.T) {
	l := loc(t)
	entryAt := time.Date(2024, 3, 15, 9, 0, 0, 0, l)
	store := newFakeStore()
	client := testClient(entryAt.AddDate(0, 0, 20))

	svc := New(store, civil.StoppedClock{Moment: entryAt}, testLogger)
	_, err := svc.HandleScan(context.Background(), client)
	require.NoError(t, err)

	// Повторное сканирование в 10:30 того же дня — выход, 90 минут.
	svc = New(store, civil.StoppedClock{Moment: entryAt.Add(90 * time.Minute)}, testLogger)
	outcome, err := svc.HandleScan(context.Background(), client)
	require.NoError(t, err)

	assert.Equal(t, models.OutcomeExited, outcome.Kind)
	assert.Equal(t, 90, outcome.ActiveMinutes)
	assert.Equal(t, []models.EventKind{models.EventEntry, models.EventExit}, store.kinds())
	assert.Equal(t, 90, store.events[1].ActiveMinutes)
}

func TestHandleScan_ActiveMinutesRoundsToNearest(t *testing.T) {
	l := loc(t)
	entryAt := time.Date(2024, 3, 15, 9, 0, 0, 0, l)
	store := newFakeStore()
	client := testClient(entryAt.AddDate(0, 0, 20))

	svc := New(store, civil.StoppedClock{Moment: entryAt}, testLogger)
	_, err := svc.HandleScan(context.Background(), client)
	require.NoError(t, err)

	// 44 минуты 40 секунд: round даёт 45, floor дал бы 44.
	svc = New(store, civil.StoppedClock{Moment: entryAt.Add(44*time.Minute + 40*time.Second)}, testLogger)
	outcome, err := svc.HandleScan(context.Background(), client)
	require.NoError(t, err)

	assert.Equal(t, 45, outcome.ActiveMinutes)
}

func TestHandleScan_ExpiredClientNoEventsToday_Denied(t *testing.T) {
	l := loc(t)
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, l)
	store := newFakeStore()
	svc := New(store, civil.StoppedClock{Moment: now}, testLogger)

	client := testClient(now.AddDate(0, 0, -2))
	outcome, err := svc.HandleScan(context.Background(), client)
	require.NoError(t, err)

	assert.Equal(t, models.OutcomeDenied, outcome.Kind)
	assert.Equal(t, DeniedReasonExpired, outcome.Reason)
	// Ровно одно denied, ни одного entry/exit.
	assert.Equal(t, []models.EventKind{models.EventDenied}, store.kinds())
	assert.Equal(t, models.StatusExpired, store.events[0].StatusSnapshot)
	assert.Equal(t, DeniedReasonExpired, store.events[0].Reason)
}

func TestHandleScan_ExpiringClient_EnterallowedWithWarning(t *testing.T) {
	l := loc(t)
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, l)
	store := newFakeStore()
	svc := New(store, civil.StoppedClock{Moment: now}, testLogger)

	client := testClient(now.AddDate(0, 0, 2))
	outcome, err := svc.HandleScan(context.Background(), client)
	require.NoError(t, err)

	assert.Equal(t, models.OutcomeEntered, outcome.Kind)
	assert.Equal(t, models.StatusExpiring, outcome.Status)
}

// Абонемент истёк между входом и выходом: открытая сессия всё равно
// закрывается, отказ на выходе запер бы клиента внутри.
func TestHandleScan_ExpiredDuringVisit_ExitStillAllowed(t *testing.T) {
	l := loc(t)
	entryAt := time.Date(2024, 3, 15, 9, 0, 0, 0, l)
	store := newFakeStore()
	client := testClient(entryAt.Add(30 * time.Minute))

	svc := New(store, civil.StoppedClock{Moment: entryAt}, testLogger)
	_, err := svc.HandleScan(context.Background(), client)
	require.NoError(t, err)

	svc = New(store, civil.StoppedClock{Moment: entryAt.Add(2 * time.Hour)}, testLogger)
	outcome, err := svc.HandleScan(context.Background(), client)
	require.NoError(t, err)

	assert.Equal(t, models.OutcomeExited, outcome.Kind)
	assert.Equal(t, 120, outcome.ActiveMinutes)
	assert.Equal(t, models.StatusExpired, store.events[1].StatusSnapshot)
}

func TestHandleScan_AfterDenied_NextScanIsEntryAttempt(t *testing.T) {
	l := loc(t)
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, l)
	store := newFakeStore()
	client := testClient(now.AddDate(0, 0, -2))

	svc := New(store, civil.StoppedClock{Moment: now}, testLogger)
	_, err := svc.HandleScan(context.Background(), client)
	require.NoError(t, err)

	// Клиент продлил абонемент, сканирует снова: это попытка входа, не выход.
	client.ExpirationDate = now.AddDate(0, 1, 0)
	svc = New(store, civil.StoppedClock{Moment: now.Add(time.Hour)}, testLogger)
	outcome, err := svc.HandleScan(context.Background(), client)
	require.NoError(t, err)

	assert.Equal(t, models.OutcomeEntered, outcome.Kind)
	assert.Equal(t, []models.EventKind{models.EventDenied, models.EventEntry}, store.kinds())
}

// Незакрытый вход вчерашнего дня не делает сегодняшнее сканирование выходом:
// "сегодня" строго ограничено календарным днём.
func TestHandleScan_StaleEntryYesterday_TodayIsFreshEntry(t *testing.T) {
	l := loc(t)
	yesterday := time.Date(2024, 3, 14, 20, 0, 0, 0, l)
	store := newFakeStore()
	client := testClient(yesterday.AddDate(0, 0, 20))

	svc := New(store, civil.StoppedClock{Moment: yesterday}, testLogger)
	_, err := svc.HandleScan(context.Background(), client)
	require.NoError(t, err)

	today := time.Date(2024, 3, 15, 8, 0, 0, 0, l)
	svc = New(store, civil.StoppedClock{Moment: today}, testLogger)
	outcome, err := svc.HandleScan(context.Background(), client)
	require.NoError(t, err)

	assert.Equal(t, models.OutcomeEntered, outcome.Kind)
	assert.Equal(t, []models.EventKind{models.EventEntry, models.EventEntry}, store.kinds())
}

func TestHandleScan_StoreReadError_FailsWholeScan(t *testing.T) {
	l := loc(t)
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, l)
	store := newFakeStore()
	store.listErr = errors.New("connection refused")
	svc := New(store, civil.StoppedClock{Moment: now}, testLogger)

	_, err := svc.HandleScan(context.Background(), testClient(now.AddDate(0, 0, 20)))
	require.Error(t, err)
	assert.Empty(t, store.kinds())
}

func TestHandleScan_StoreAppendError_NoOutcomeAssumed(t *testing.T) {
	l := loc(t)
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, l)
	store := newFakeStore()
	store.appendErr = errors.New("connection reset")
	svc := New(store, civil.StoppedClock{Moment: now}, testLogger)

	outcome, err := svc.HandleScan(context.Background(), testClient(now.AddDate(0, 0, 20)))
	require.Error(t, err)
	assert.Empty(t, outcome.Kind)
}

// Конкурентные сканирования одного клиента сериализуются: ровно одно entry
// и одно exit, а не два entry.
func TestHandleScan_ConcurrentScansSameClient_Serialized(t *testing.T) {
	l := loc(t)
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, l)
	store := newFakeStore()
	svc := New(store, civil.StoppedClock{Moment: now}, testLogger)
	client := testClient(now.AddDate(0, 0, 20))

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.HandleScan(context.Background(), client)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, []models.EventKind{models.EventEntry, models.EventExit}, store.kinds())
}

func TestPurge_RemovesEverything(t *testing.T) {
	l := loc(t)
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, l)
	store := newFakeStore()
	svc := New(store, civil.StoppedClock{Moment: now}, testLogger)
	client := testClient(now.AddDate(0, 0, 20))

	_, err := svc.HandleScan(context.Background(), client)
	require.NoError(t, err)

	removed, err := svc.Purge(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Empty(t, store.kinds())
}
