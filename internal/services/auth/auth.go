// Package auth содержит логику регистрации и аутентификации персонала.
// Роль сотрудника хранится в таблице users и попадает в claims токена.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/gym-access-manager/internal/lib/jwt"
	"github.com/magabrotheeeer/gym-access-manager/internal/lib/password"
	"github.com/magabrotheeeer/gym-access-manager/internal/models"
)

// RoleAdmin и RoleStaff — допустимые роли сотрудников.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// ErrInvalidCredentials возвращается при неверном имени пользователя или пароле.
// Наружу уходит одна и та же ошибка, чтобы не раскрывать, что именно не совпало.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserRepository описывает контракт для работы с сотрудниками в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового сотрудника.
	CreateUser(ctx context.Context, user models.User) error

	// GetUserByUsername возвращает сотрудника по имени или ошибку, если не найден.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// Service отвечает за регистрацию, авторизацию и проверку JWT.
type Service struct {
	users    UserRepository
	jwtMaker jwt.Maker
}

// New создает новый экземпляр Service.
func New(users UserRepository, jwtMaker jwt.Maker) *Service {
	return &Service{
		users:    users,
		jwtMaker: jwtMaker,
	}
}

// Register создает нового сотрудника с хэшированием пароля.
// Пустая роль означает дефолтную роль staff.
func (s *Service) Register(ctx context.Context, email, username, rawPassword, role string) (string, error) {
	const op = "auth.Register"

	if role == "" {
		role = RoleStaff
	}
	if role != RoleAdmin && role != RoleStaff {
		return "", fmt.Errorf("%s: unknown role %q", op, role)
	}

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		UID:          uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hashed,
		Role:         role,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return user.UID, nil
}

// Login проверяет пароль сотрудника и генерирует JWT с его ролью.
func (s *Service) Login(ctx context.Context, username, rawPassword string) (token, role string, err error) {
	const op = "auth.Login"

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	token, err = s.jwtMaker.GenerateToken(user.Username, user.Role)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	return token, user.Role, nil
}

// ValidateToken проверяет JWT и возвращает имя пользователя и роль из claims.
func (s *Service) ValidateToken(_ context.Context, token string) (username, role string, err error) {
	const op = "auth.ValidateToken"

	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	return claims.Username, claims.Role, nil
}
