package client

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/gym-access-manager/internal/lib/civil"
	"github.com/magabrotheeeer/gym-access-manager/internal/lib/credential"
	"github.com/magabrotheeeer/gym-access-manager/internal/models"
	"github.com/magabrotheeeer/gym-access-manager/internal/storage"
)

type fakeRepo struct {
	clients    map[int]models.Client
	nextID     int
	dupPINLeft int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{clients: make(map[int]models.Client), nextID: 1}
}

func (r *fakeRepo) CreateClient(_ context.Context, client models.Client) (int, error) {
	if r.dupPINLeft > 0 {
		r.dupPINLeft--
		return 0, storage.ErrDuplicatePIN
	}
	id := r.nextID
	r.nextID++
	client.ID = id
	r.clients[id] = client
	return id, nil
}

func (r *fakeRepo) GetClientByID(_ context.Context, id int) (*models.Client, error) {
	c, ok := r.clients[id]
	if !ok {
		return nil, storage.ErrClientNotFound
	}
	return &c, nil
}

func (r *fakeRepo) FindClientByCredential(_ context.Context, qrCode, pin string) (*models.Client, error) {
	for _, c := range r.clients {
		if (qrCode != "" && c.QRCode == qrCode) || (pin != "" && c.PIN == pin) {
			cc := c
			return &cc, nil
		}
	}
	return nil, storage.ErrClientNotFound
}

func (r *fakeRepo) ListClients(_ context.Context, limit, offset int) ([]*models.Client, error) {
	var res []*models.Client
	for id := 1; id < r.nextID; id++ {
		if c, ok := r.clients[id]; ok {
			cc := c
			res = append(res, &cc)
		}
	}
	if offset > len(res) {
		offset = len(res)
	}
	res = res[offset:]
	if limit < len(res) {
		res = res[:limit]
	}
	return res, nil
}

func (r *fakeRepo) UpdateClient(_ context.Context, client models.Client, id int) (int, error) {
	existing, ok := r.clients[id]
	if !ok {
		return 0, storage.ErrClientNotFound
	}
	client.ID = id
	client.PIN = existing.PIN
	client.QRCode = existing.QRCode
	r.clients[id] = client
	return 1, nil
}

func (r *fakeRepo) RemoveClient(_ context.Context, id int) (int, error) {
	if _, ok := r.clients[id]; !ok {
		return 0, storage.ErrClientNotFound
	}
	delete(r.clients, id)
	return 1, nil
}

type fakeCache struct {
	values map[string][]byte
	sets   int
	hits   int
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[string][]byte)}
}

func (c *fakeCache) Get(key string, result any) (bool, error) {
	raw, ok := c.values[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(raw, result)
}

func (c *fakeCache) Set(key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.values[key] = raw
	c.sets++
	return nil
}

func (c *fakeCache) Invalidate(key string) error {
	delete(c.values, key)
	return nil
}

func newTestService(repo *fakeRepo, cache *fakeCache, now time.Time) *Service {
	log := slog.New(slog.NewTextHandler(testWriter{}, nil))
	return New(repo, cache, civil.StoppedClock{Moment: now}, log)
}

type testWriter struct{}

func (testWriter) Write(p []byte) (int, error) { return len(p), nil }

func monthlyRequest() models.DummyClient {
	return models.DummyClient{
		Name:        "Ana Torres",
		Email:       "ana@example.com",
		Phone:       "5512345678",
		Plan:        "monthly",
		Price:       650,
		PaymentDate: "15-01-2026",
	}
}

func TestCreate_AssignsCredentialsAndExpiration(t *testing.T) {
	repo := newFakeRepo()
	now := time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC)
	svc := newTestService(repo, newFakeCache(), now)

	created, err := svc.Create(context.Background(), monthlyRequest())
	require.NoError(t, err)

	assert.Equal(t, 1, created.ID)
	assert.Regexp(t, `^\d{4}$`, created.PIN)
	assert.Equal(t, credential.QRCodeFor(created.PIN), created.QRCode)
	assert.Equal(t, time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC), created.ExpirationDate)
	assert.Equal(t, models.StatusActive, created.Status)
}

func TestCreate_PerVisitExpiration(t *testing.T) {
	repo := newFakeRepo()
	now := time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC)
	svc := newTestService(repo, newFakeCache(), now)

	req := monthlyRequest()
	req.Plan = "per_visit"
	req.VisitDays = 10

	created, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 25, 0, 0, 0, 0, time.UTC), created.ExpirationDate)
}

func TestCreate_RetriesOnDuplicatePIN(t *testing.T) {
	repo := newFakeRepo()
	repo.dupPINLeft = 2
	svc := newTestService(repo, newFakeCache(), time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC))

	created, err := svc.Create(context.Background(), monthlyRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, created.ID)
}

func TestCreate_GivesUpAfterRepeatedCollisions(t *testing.T) {
	repo := newFakeRepo()
	repo.dupPINLeft = pinAssignAttempts
	svc := newTestService(repo, newFakeCache(), time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC))

	_, err := svc.Create(context.Background(), monthlyRequest())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unique pin"))
}

func TestCreate_InvalidPaymentDate(t *testing.T) {
	svc := newTestService(newFakeRepo(), newFakeCache(), time.Now())

	req := monthlyRequest()
	req.PaymentDate = "2026-01-15"

	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
}

func TestRead_AttachesLiveStatus(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, newFakeCache(), time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC))

	created, err := svc.Create(context.Background(), monthlyRequest())
	require.NoError(t, err)

	// до 15 февраля остаётся меньше трёх дней
	got, err := svc.Read(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusExpiring, got.Status)
}

func TestFindByCredential_CachesAfterMiss(t *testing.T) {
	repo := newFakeRepo()
	cache := newFakeCache()
	svc := newTestService(repo, cache, time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC))

	created, err := svc.Create(context.Background(), monthlyRequest())
	require.NoError(t, err)

	cred := credential.Credential{QRCode: created.QRCode}

	first, err := svc.FindByCredential(context.Background(), cred)
	require.NoError(t, err)
	assert.Equal(t, created.ID, first.ID)
	assert.Equal(t, 1, cache.sets)

	second, err := svc.FindByCredential(context.Background(), cred)
	require.NoError(t, err)
	assert.Equal(t, created.ID, second.ID)
	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, models.StatusActive, second.Status)
}

func TestFindByCredential_UnknownPIN(t *testing.T) {
	svc := newTestService(newFakeRepo(), newFakeCache(), time.Now())

	_, err := svc.FindByCredential(context.Background(), credential.Credential{PIN: "0000"})
	require.ErrorIs(t, err, storage.ErrClientNotFound)
}

func TestUpdate_KeepsCredentialsAndRecomputesExpiration(t *testing.T) {
	repo := newFakeRepo()
	cache := newFakeCache()
	svc := newTestService(repo, cache, time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC))

	created, err := svc.Create(context.Background(), monthlyRequest())
	require.NoError(t, err)

	_, err = svc.FindByCredential(context.Background(), credential.Credential{QRCode: created.QRCode})
	require.NoError(t, err)

	req := monthlyRequest()
	req.PaymentDate = "01-03-2026"

	count, err := svc.Update(context.Background(), created.ID, req)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := svc.Read(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.PIN, got.PIN)
	assert.Equal(t, created.QRCode, got.QRCode)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), got.ExpirationDate)

	// кеш сброшен, следующий поиск идёт в хранилище
	assert.Empty(t, cache.values)
}

func TestRenew_ExtendsExpiredSubscription(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, newFakeCache(), time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	created, err := svc.Create(context.Background(), monthlyRequest())
	require.NoError(t, err)

	got, err := svc.Read(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusExpired, got.Status)

	renewed, err := svc.Renew(context.Background(), created.ID, models.DummyRenew{
		Plan:        "monthly",
		Price:       700,
		PaymentDate: "10-03-2026",
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC), renewed.ExpirationDate)
	assert.Equal(t, models.StatusActive, renewed.Status)
	assert.Equal(t, created.PIN, renewed.PIN)
	assert.Equal(t, "Ana Torres", renewed.Name)
}

func TestRenew_SwitchesPlan(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, newFakeCache(), time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC))

	created, err := svc.Create(context.Background(), monthlyRequest())
	require.NoError(t, err)

	renewed, err := svc.Renew(context.Background(), created.ID, models.DummyRenew{
		Plan:        "per_visit",
		VisitDays:   15,
		Price:       400,
		PaymentDate: "20-01-2026",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PlanPerVisit, renewed.Plan)
	assert.Equal(t, time.Date(2026, 2, 4, 0, 0, 0, 0, time.UTC), renewed.ExpirationDate)
}

func TestRemove_DeletesAndInvalidatesCache(t *testing.T) {
	repo := newFakeRepo()
	cache := newFakeCache()
	svc := newTestService(repo, cache, time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC))

	created, err := svc.Create(context.Background(), monthlyRequest())
	require.NoError(t, err)

	_, err = svc.FindByCredential(context.Background(), credential.Credential{PIN: created.PIN})
	require.NoError(t, err)

	count, err := svc.Remove(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Empty(t, cache.values)

	_, err = svc.Read(context.Background(), created.ID)
	require.ErrorIs(t, err, storage.ErrClientNotFound)
}

func TestList_PaginatesWithLiveStatus(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, newFakeCache(), time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC))

	for i := 0; i < 3; i++ {
		req := monthlyRequest()
		req.Email = req.Email + string(rune('a'+i))
		_, err := svc.Create(context.Background(), req)
		require.NoError(t, err)
	}

	page, err := svc.List(context.Background(), 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, 2, page[0].ID)
	assert.Equal(t, models.StatusActive, page[0].Status)
}
