// Package models содержит доменную модель сотрудника зала,
// включающую данные учётной записи, хэш пароля и роль.
// Структура используется в бизнес‑логике и при работе с хранилищем.
package models

import "time"

// User представляет сотрудника зала с учётной записью в системе.
// Роль хранится в таблице users как данные, а не зашивается в код
// сопоставлением по адресам почты.
type User struct {
	UID          string    // Уникальный идентификатор сотрудника
	Username     string    // Имя пользователя (уникальное)
	Email        string    // Электронная почта
	PasswordHash string    // Хэш пароля
	Role         string    // Роль: admin или staff
	CreatedAt    time.Time // Дата создания учётной записи
}
