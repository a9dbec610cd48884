// Package storage реализует хранилище данных на основе PostgreSQL:
// реестр клиентов зала, журнал событий доступа и учётные записи персонала.
//
// Журнал доступа — только для добавления. Метки времени событий хранятся
// строками гражданского времени без смещения; лексикографический порядок
// таких строк совпадает с хронологическим, а равные в пределах секунды
// метки упорядочиваются по id, то есть по порядку вставки. Запись, успешно
// вернувшаяся из AppendEvent, видна немедленно следующему чтению: PostgreSQL
// даёт строгую консистентность сам по себе, обходные принудительные чтения
// с сервера, как в исходной системе, не нужны.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

var (
	// ErrClientNotFound клиент не найден ни по одному из идентификаторов.
	ErrClientNotFound = errors.New("client not found")
	// ErrUserNotFound учётная запись сотрудника не найдена.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateEmail клиент с такой почтой уже зарегистрирован.
	ErrDuplicateEmail = errors.New("client email already registered")
	// ErrDuplicatePIN выданный PIN уже занят, нужно выдать другой.
	ErrDuplicatePIN = errors.New("pin already assigned")
	// ErrDuplicateUsername сотрудник с таким именем уже существует.
	ErrDuplicateUsername = errors.New("username already taken")
)

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL и проверяет его доступность.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{DB: db}, nil
}

// CheckDatabaseReady проверяет, что схема применена и база готова к работе.
func (s *Storage) CheckDatabaseReady(ctx context.Context) error {
	var exists bool
	err := s.DB.QueryRowContext(ctx, `SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'clients'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table clients missing or query error: %w", err)
	}
	return nil
}
