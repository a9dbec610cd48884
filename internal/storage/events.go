package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/gym-access-manager/internal/models"
)

const eventColumns = `id, client_name, client_email, ts, kind, status_snapshot, active_minutes, reason`

// AppendEvent добавляет событие в журнал доступа и возвращает его ID.
// Запись долговечна к моменту возврата; журнал только для добавления,
// записанные события никогда не изменяются.
func (s *Storage) AppendEvent(ctx context.Context, event models.AccessEvent) (int, error) {
	const op = "storage.AppendEvent"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO access_events (client_name, client_email, ts, kind,
	              status_snapshot, active_minutes, reason)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		event.ClientName, event.ClientEmail, event.Timestamp, event.Kind,
		event.StatusSnapshot, event.ActiveMinutes, event.Reason).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListEventsForClientBetween возвращает события клиента с метками времени
// в интервале [fromTS, toTS) — границы заданы строками гражданского времени.
// desc=true даёт порядок от новых к старым. Метки, равные в пределах секунды,
// упорядочиваются по id, то есть по порядку вставки, и никогда не
// пересортировываются при чтении.
func (s *Storage) ListEventsForClientBetween(ctx context.Context, email, fromTS, toTS string, desc bool) ([]*models.AccessEvent, error) {
	const op = "storage.ListEventsForClientBetween"

	order := "ASC"
	if desc {
		order = "DESC"
	}
	query := `SELECT ` + eventColumns + ` FROM access_events
	          WHERE client_email = $1 AND ts >= $2 AND ts < $3
	          ORDER BY ts ` + order + `, id ` + order
	rows, err := s.DB.QueryContext(ctx, query, email, fromTS, toTS)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	return collectEvents(rows, op)
}

// ListEventsBetween возвращает все события с метками времени в [fromTS, toTS),
// от старых к новым. Используется сводкой за день.
func (s *Storage) ListEventsBetween(ctx context.Context, fromTS, toTS string) ([]*models.AccessEvent, error) {
	const op = "storage.ListEventsBetween"

	query := `SELECT ` + eventColumns + ` FROM access_events
	          WHERE ts >= $1 AND ts < $2
	          ORDER BY ts, id`
	rows, err := s.DB.QueryContext(ctx, query, fromTS, toTS)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	return collectEvents(rows, op)
}

// ListRecentEvents возвращает последние события журнала, от новых к старым.
func (s *Storage) ListRecentEvents(ctx context.Context, limit int) ([]*models.AccessEvent, error) {
	const op = "storage.ListRecentEvents"

	query := `SELECT ` + eventColumns + ` FROM access_events
	          ORDER BY ts DESC, id DESC LIMIT $1`
	rows, err := s.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	return collectEvents(rows, op)
}

// ListHistory возвращает страницу журнала доступа, от новых к старым,
// с необязательным фильтром по почте клиента.
func (s *Storage) ListHistory(ctx context.Context, email string, limit, offset int) ([]*models.AccessEvent, error) {
	const op = "storage.ListHistory"

	var query string
	var args []any
	if email != "" {
		query = `SELECT ` + eventColumns + ` FROM access_events
		         WHERE client_email = $1
		         ORDER BY ts DESC, id DESC LIMIT $2 OFFSET $3`
		args = []any{email, limit, offset}
	} else {
		query = `SELECT ` + eventColumns + ` FROM access_events
		         ORDER BY ts DESC, id DESC LIMIT $1 OFFSET $2`
		args = []any{limit, offset}
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	return collectEvents(rows, op)
}

// PurgeEvents удаляет весь журнал доступа и возвращает количество
// удалённых записей. Единственная операция удаления в журнале,
// административная, доступна только администратору.
func (s *Storage) PurgeEvents(ctx context.Context) (int, error) {
	const op = "storage.PurgeEvents"

	result, err := s.DB.ExecContext(ctx, `DELETE FROM access_events`)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

func collectEvents(rows *sql.Rows, op string) ([]*models.AccessEvent, error) {
	var events []*models.AccessEvent
	for rows.Next() {
		var e models.AccessEvent
		if err := rows.Scan(&e.ID, &e.ClientName, &e.ClientEmail, &e.Timestamp,
			&e.Kind, &e.StatusSnapshot, &e.ActiveMinutes, &e.Reason); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return events, nil
}
