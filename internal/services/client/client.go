// Package client содержит бизнес-логику реестра клиентов: регистрацию,
// редактирование, продление и поиск по учётным данным сканирования.
//
// Дата окончания абонемента — производная величина: она пересчитывается
// из даты оплаты, типа абонемента и количества дней посещений при каждом
// создании, редактировании и продлении и никогда не правится руками.
package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/gym-access-manager/internal/lib/civil"
	"github.com/magabrotheeeer/gym-access-manager/internal/lib/credential"
	"github.com/magabrotheeeer/gym-access-manager/internal/models"
	"github.com/magabrotheeeer/gym-access-manager/internal/services/status"
	"github.com/magabrotheeeer/gym-access-manager/internal/storage"
)

// pinAssignAttempts сколько раз перевыдаётся PIN при коллизии,
// прежде чем регистрация считается неудачной.
const pinAssignAttempts = 5

// Repository определяет методы реестра клиентов в хранилище.
type Repository interface {
	CreateClient(ctx context.Context, client models.Client) (int, error)
	GetClientByID(ctx context.Context, id int) (*models.Client, error)
	FindClientByCredential(ctx context.Context, qrCode, pin string) (*models.Client, error)
	ListClients(ctx context.Context, limit, offset int) ([]*models.Client, error)
	UpdateClient(ctx context.Context, client models.Client, id int) (int, error)
	RemoveClient(ctx context.Context, id int) (int, error)
}

// Cache описывает методы для кэширования карточек клиентов.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Service реализует бизнес-логику реестра клиентов, включая кеширование.
type Service struct {
	repo  Repository
	cache Cache
	clock civil.Clock
	log   *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, cache Cache, clock civil.Clock, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		clock: clock,
		log:   log,
	}
}

// Create регистрирует нового клиента: разбирает дату оплаты, вычисляет дату
// окончания, выдаёт PIN и токен QR-кода и возвращает карточку с живым статусом.
func (s *Service) Create(ctx context.Context, req models.DummyClient) (*models.Client, error) {
	const op = "client.Create"

	paymentDate, err := time.Parse(civil.DateLayout, req.PaymentDate)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid payment date: %w", op, err)
	}

	plan := models.Plan(req.Plan)
	entry := models.Client{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Plan:           plan,
		VisitDays:      req.VisitDays,
		Price:          req.Price,
		PaymentDate:    paymentDate,
		ExpirationDate: status.ComputeExpiration(paymentDate, plan, req.VisitDays),
	}

	for attempt := 0; attempt < pinAssignAttempts; attempt++ {
		pin, err := credential.NewPIN()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		entry.PIN = pin
		entry.QRCode = credential.QRCodeFor(pin)

		id, err := s.repo.CreateClient(ctx, entry)
		if errors.Is(err, storage.ErrDuplicatePIN) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		entry.ID = id
		entry.Status = status.Compute(entry.ExpirationDate, s.clock.Now())
		s.log.Info("registered new client", slog.Int("id", id), slog.String("email", entry.Email))
		return &entry, nil
	}

	return nil, fmt.Errorf("%s: failed to assign unique pin", op)
}

// Read возвращает клиента по ID с живым статусом.
func (s *Service) Read(ctx context.Context, id int) (*models.Client, error) {
	const op = "client.Read"

	client, err := s.repo.GetClientByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	client.Status = status.Compute(client.ExpirationDate, s.clock.Now())
	return client, nil
}

// List возвращает страницу клиентов, каждому приписан живой статус.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*models.Client, error) {
	const op = "client.List"

	clients, err := s.repo.ListClients(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	now := s.clock.Now()
	for _, c := range clients {
		c.Status = status.Compute(c.ExpirationDate, now)
	}
	return clients, nil
}

// FindByCredential ищет клиента по разобранным учётным данным сканирования:
// сначала по токену QR-кода, затем по PIN, с кешем перед хранилищем.
func (s *Service) FindByCredential(ctx context.Context, cred credential.Credential) (*models.Client, error) {
	const op = "client.FindByCredential"

	cacheKey := credentialCacheKey(cred)
	var cached models.Client
	if found, err := s.cache.Get(cacheKey, &cached); err == nil && found {
		cached.Status = status.Compute(cached.ExpirationDate, s.clock.Now())
		return &cached, nil
	}

	client, err := s.repo.FindClientByCredential(ctx, cred.QRCode, cred.PIN)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.cache.Set(cacheKey, client, time.Hour); err != nil {
		s.log.Warn("failed to cache client", slog.String("key", cacheKey), slog.Any("err", err))
	}

	client.Status = status.Compute(client.ExpirationDate, s.clock.Now())
	return client, nil
}

// Update редактирует карточку клиента. PIN и токен QR-кода не меняются,
// дата окончания пересчитывается из новых данных.
func (s *Service) Update(ctx context.Context, id int, req models.DummyClient) (int, error) {
	const op = "client.Update"

	paymentDate, err := time.Parse(civil.DateLayout, req.PaymentDate)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid payment date: %w", op, err)
	}

	existing, err := s.repo.GetClientByID(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	plan := models.Plan(req.Plan)
	entry := models.Client{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Plan:           plan,
		VisitDays:      req.VisitDays,
		Price:          req.Price,
		PaymentDate:    paymentDate,
		ExpirationDate: status.ComputeExpiration(paymentDate, plan, req.VisitDays),
	}

	count, err := s.repo.UpdateClient(ctx, entry, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidateCredentialCache(existing)
	return count, nil
}

// Renew продлевает абонемент: новая дата оплаты, пересчитанная дата окончания.
// Остальные данные карточки не меняются.
func (s *Service) Renew(ctx context.Context, id int, req models.DummyRenew) (*models.Client, error) {
	const op = "client.Renew"

	paymentDate, err := time.Parse(civil.DateLayout, req.PaymentDate)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid payment date: %w", op, err)
	}

	existing, err := s.repo.GetClientByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	plan := models.Plan(req.Plan)
	existing.Plan = plan
	existing.VisitDays = req.VisitDays
	existing.Price = req.Price
	existing.PaymentDate = paymentDate
	existing.ExpirationDate = status.ComputeExpiration(paymentDate, plan, req.VisitDays)

	if _, err := s.repo.UpdateClient(ctx, *existing, id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidateCredentialCache(existing)
	existing.Status = status.Compute(existing.ExpirationDate, s.clock.Now())
	s.log.Info("renewed subscription", slog.Int("id", id), slog.String("plan", req.Plan))
	return existing, nil
}

// Remove удаляет клиента. Его события доступа остаются в журнале:
// они несут денормализованные имя и почту.
func (s *Service) Remove(ctx context.Context, id int) (int, error) {
	const op = "client.Remove"

	existing, err := s.repo.GetClientByID(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	count, err := s.repo.RemoveClient(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidateCredentialCache(existing)
	return count, nil
}

func (s *Service) invalidateCredentialCache(client *models.Client) {
	for _, key := range []string{
		credentialCacheKey(credential.Credential{QRCode: client.QRCode}),
		credentialCacheKey(credential.Credential{PIN: client.PIN}),
	} {
		if err := s.cache.Invalidate(key); err != nil {
			s.log.Warn("failed to invalidate client cache", slog.String("key", key), slog.Any("err", err))
		}
	}
}

func credentialCacheKey(cred credential.Credential) string {
	if cred.QRCode != "" {
		return "client:qr:" + cred.QRCode
	}
	return "client:pin:" + cred.PIN
}
