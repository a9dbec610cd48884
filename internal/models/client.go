// Package models содержит доменные структуры приложения: клиенты зала,
// события доступа и учётные записи персонала, а также вспомогательные
// типы для приёма данных из JSON-запросов.
package models

import "time"

// Plan тип абонемента клиента.
type Plan string

const (
	// PlanMonthly — месячный абонемент.
	PlanMonthly Plan = "monthly"
	// PlanPerVisit — абонемент на фиксированное количество дней посещений.
	PlanPerVisit Plan = "per_visit"
)

// Status статус абонемента, всегда вычисляется от даты окончания,
// никогда не хранится в таблице клиентов как источник истины.
type Status string

const (
	// StatusActive — абонемент действует.
	StatusActive Status = "active"
	// StatusExpiring — до окончания абонемента осталось не более трёх дней.
	StatusExpiring Status = "expiring"
	// StatusExpired — абонемент истёк.
	StatusExpired Status = "expired"
)

// Client представляет клиента зала.
// ExpirationDate всегда пересчитывается из PaymentDate, Plan и VisitDays
// при создании, редактировании и продлении. PIN и QRCode выдаются один раз
// при регистрации и не меняются за всё время жизни клиента.
type Client struct {
	ID             int       `json:"id"`               // Идентификатор, выдаётся хранилищем
	Name           string    `json:"name"`             // Имя клиента
	Email          string    `json:"email"`            // Электронная почта, уникальный бизнес-ключ
	Phone          string    `json:"phone"`            // Телефон
	Plan           Plan      `json:"plan"`             // Тип абонемента
	VisitDays      int       `json:"visit_days"`       // Количество дней посещений (только для per_visit, 10 или 15)
	Price          int       `json:"price"`            // Стоимость абонемента в сентаво
	PaymentDate    time.Time `json:"payment_date"`     // Дата начала текущего оплаченного периода
	ExpirationDate time.Time `json:"expiration_date"`  // Дата окончания, производная величина
	PIN            string    `json:"pin"`              // Четырёхзначный PIN
	QRCode         string    `json:"qr_code"`          // Токен QR-кода, "QR-" + PIN
	Status         Status    `json:"status,omitempty"` // Живой статус, заполняется при чтении, в БД не хранится
}

// DummyClient используется для приёма данных клиента из JSON-запроса
// до их валидации и преобразования в Client. Даты приходят строками.
type DummyClient struct {
	Name        string `json:"name" validate:"required"`                             // Имя клиента
	Email       string `json:"email" validate:"required,email"`                      // Электронная почта
	Phone       string `json:"phone" validate:"required"`                            // Телефон
	Plan        string `json:"plan" validate:"required,oneof=monthly per_visit"`     // Тип абонемента
	VisitDays   int    `json:"visit_days" validate:"omitempty,oneof=10 15"`          // Дни посещений для per_visit
	Price       int    `json:"price" validate:"required,gt=0"`                       // Стоимость (>0)
	PaymentDate string `json:"payment_date" validate:"required,datetime=02-01-2006"` // Дата оплаты в формате 02-01-2006
}

// DummyRenew используется для приёма данных о продлении абонемента.
type DummyRenew struct {
	Plan        string `json:"plan" validate:"required,oneof=monthly per_visit"`     // Тип абонемента
	VisitDays   int    `json:"visit_days" validate:"omitempty,oneof=10 15"`          // Дни посещений для per_visit
	Price       int    `json:"price" validate:"required,gt=0"`                       // Стоимость (>0)
	PaymentDate string `json:"payment_date" validate:"required,datetime=02-01-2006"` // Новая дата оплаты в формате 02-01-2006
}

// ClientReminder сообщение для очереди уведомлений о скором окончании абонемента.
type ClientReminder struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	ExpirationDate string `json:"expiration_date"`
	DaysRemaining  int    `json:"days_remaining"`
}
