package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/gym-access-manager/internal/models"
)

// CreateUser вставляет учётную запись сотрудника.
func (s *Storage) CreateUser(ctx context.Context, user models.User) error {
	const op = "storage.CreateUser"

	query := `INSERT INTO users (uid, username, email, password_hash, role)
	          VALUES ($1, $2, $3, $4, $5)`
	_, err := s.DB.ExecContext(ctx, query,
		user.UID, user.Username, user.Email, user.PasswordHash, user.Role)
	if err != nil {
		return fmt.Errorf("%s: %w", op, translateUniqueViolation(err))
	}
	return nil
}

// GetUserByUsername возвращает учётную запись сотрудника по имени пользователя.
// Роль читается отсюда же: назначение ролей — данные, а не ветвление в коде
// по литеральным адресам почты.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"

	var u models.User
	err := s.DB.QueryRowContext(ctx,
		`SELECT uid, username, email, password_hash, role, created_at
		 FROM users WHERE username = $1`, username).
		Scan(&u.UID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &u, nil
}
