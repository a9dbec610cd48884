package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/magabrotheeeer/gym-access-manager/internal/models"
)

const clientColumns = `id, name, email, phone, plan, visit_days, price, payment_date, expiration_date, pin, qr_code`

// CreateClient вставляет нового клиента и возвращает его ID.
// Нарушение уникальности почты или PIN транслируется в доменные ошибки,
// чтобы вызывающая сторона могла перевыдать PIN или отклонить регистрацию.
func (s *Storage) CreateClient(ctx context.Context, client models.Client) (int, error) {
	const op = "storage.CreateClient"

	query := `INSERT INTO clients (name, email, phone, plan, visit_days, price,
	              payment_date, expiration_date, pin, qr_code)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	          RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		client.Name, client.Email, client.Phone, client.Plan, client.VisitDays,
		client.Price, client.PaymentDate, client.ExpirationDate, client.PIN, client.QRCode).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, translateUniqueViolation(err))
	}
	return newID, nil
}

// GetClientByID возвращает клиента по ID.
func (s *Storage) GetClientByID(ctx context.Context, id int) (*models.Client, error) {
	const op = "storage.GetClientByID"

	row := s.DB.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = $1`, id)
	client, err := scanClient(row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return client, nil
}

// GetClientByEmail возвращает клиента по почте (уникальный бизнес-ключ).
func (s *Storage) GetClientByEmail(ctx context.Context, email string) (*models.Client, error) {
	const op = "storage.GetClientByEmail"

	row := s.DB.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE email = $1`, strings.TrimSpace(email))
	client, err := scanClient(row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return client, nil
}

// FindClientByCredential ищет клиента по учётным данным сканирования:
// сначала по токену QR-кода, затем по PIN. Возвращает ErrClientNotFound,
// если не совпало ни одно из полей.
func (s *Storage) FindClientByCredential(ctx context.Context, qrCode, pin string) (*models.Client, error) {
	const op = "storage.FindClientByCredential"

	if qrCode != "" {
		row := s.DB.QueryRowContext(ctx,
			`SELECT `+clientColumns+` FROM clients WHERE qr_code = $1`, qrCode)
		client, err := scanClient(row)
		if err == nil {
			return client, nil
		}
		if !errors.Is(err, ErrClientNotFound) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	if pin != "" {
		row := s.DB.QueryRowContext(ctx,
			`SELECT `+clientColumns+` FROM clients WHERE pin = $1`, pin)
		client, err := scanClient(row)
		if err == nil {
			return client, nil
		}
		if !errors.Is(err, ErrClientNotFound) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	return nil, fmt.Errorf("%s: %w", op, ErrClientNotFound)
}

// ListClients возвращает страницу клиентов, упорядоченных по имени.
func (s *Storage) ListClients(ctx context.Context, limit, offset int) ([]*models.Client, error) {
	const op = "storage.ListClients"

	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+clientColumns+` FROM clients ORDER BY name, id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	return collectClients(rows, op)
}

// ListAllClients возвращает всех клиентов. Используется отчётами,
// которым нужен живой статус каждого клиента.
func (s *Storage) ListAllClients(ctx context.Context) ([]*models.Client, error) {
	const op = "storage.ListAllClients"

	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+clientColumns+` FROM clients ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	return collectClients(rows, op)
}

// ListClientsExpiringBetween возвращает клиентов, чей абонемент заканчивается
// в интервале (from, to]. Используется планировщиком напоминаний.
func (s *Storage) ListClientsExpiringBetween(ctx context.Context, from, to time.Time) ([]*models.Client, error) {
	const op = "storage.ListClientsExpiringBetween"

	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+clientColumns+` FROM clients
		 WHERE expiration_date > $1 AND expiration_date <= $2
		 ORDER BY expiration_date, id`, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	return collectClients(rows, op)
}

// UpdateClient обновляет данные клиента по ID и возвращает количество
// обновлённых строк. PIN и токен QR-кода выданы один раз и не меняются.
func (s *Storage) UpdateClient(ctx context.Context, client models.Client, id int) (int, error) {
	const op = "storage.UpdateClient"

	query := `UPDATE clients
	          SET name = $1, email = $2, phone = $3, plan = $4, visit_days = $5,
	              price = $6, payment_date = $7, expiration_date = $8
	          WHERE id = $9`
	result, err := s.DB.ExecContext(ctx, query,
		client.Name, client.Email, client.Phone, client.Plan, client.VisitDays,
		client.Price, client.PaymentDate, client.ExpirationDate, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, translateUniqueViolation(err))
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemoveClient удаляет клиента по ID и возвращает количество удалённых строк.
// События доступа не трогаются: они несут денормализованные имя и почту
// и остаются читаемыми после удаления клиента.
func (s *Storage) RemoveClient(ctx context.Context, id int) (int, error) {
	const op = "storage.RemoveClient"

	result, err := s.DB.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

func scanClient(row *sql.Row) (*models.Client, error) {
	var c models.Client
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Plan, &c.VisitDays,
		&c.Price, &c.PaymentDate, &c.ExpirationDate, &c.PIN, &c.QRCode)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func collectClients(rows *sql.Rows, op string) ([]*models.Client, error) {
	var clients []*models.Client
	for rows.Next() {
		var c models.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Plan, &c.VisitDays,
			&c.Price, &c.PaymentDate, &c.ExpirationDate, &c.PIN, &c.QRCode); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		clients = append(clients, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return clients, nil
}

// translateUniqueViolation переводит нарушение уникального индекса PostgreSQL
// в доменную ошибку по имени ограничения.
func translateUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return err
	}
	switch {
	case strings.Contains(pgErr.ConstraintName, "email"):
		return ErrDuplicateEmail
	case strings.Contains(pgErr.ConstraintName, "pin"):
		return ErrDuplicatePIN
	case strings.Contains(pgErr.ConstraintName, "username"):
		return ErrDuplicateUsername
	default:
		return err
	}
}
