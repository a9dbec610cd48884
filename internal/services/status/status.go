// Package status реализует вычисление статуса абонемента и даты его окончания.
//
// Статус — производная величина: он считается от даты окончания и "сейчас"
// при каждом чтении и никогда не сохраняется в карточке клиента как источник
// истины. Единственное место, где статус фиксируется, — снимок в историческом
// событии доступа, и он помечен именно как снимок.
package status

import (
	"time"

	"github.com/magabrotheeeer/gym-access-manager/internal/models"
)

// ExpiringWindowDays за сколько дней до окончания абонемент считается "expiring".
const ExpiringWindowDays = 3

// Compute возвращает статус абонемента на момент now.
//
// daysRemaining = ceil((expirationDate - now) / 24h):
// daysRemaining <= 0 — expired, 1..3 — expiring, иначе active.
// Функция тотальна и чистая, ошибок не бывает.
func Compute(expirationDate, now time.Time) models.Status {
	daysRemaining := DaysRemaining(expirationDate, now)

	switch {
	case daysRemaining <= 0:
		return models.StatusExpired
	case daysRemaining <= ExpiringWindowDays:
		return models.StatusExpiring
	default:
		return models.StatusActive
	}
}

// DaysRemaining возвращает ceil((expirationDate - now) / 24h).
// Ноль и отрицательные значения означают истекший абонемент.
func DaysRemaining(expirationDate, now time.Time) int {
	diff := expirationDate.Sub(now)
	days := int(diff / (24 * time.Hour))
	if diff%(24*time.Hour) > 0 {
		days++
	}
	return days
}

// ComputeExpiration возвращает дату окончания абонемента.
//
// Для monthly добавляется один календарный месяц по правилам time.AddDate:
// переполнение конца месяца нормализуется вперёд (31 января + 1 месяц даёт
// 2 или 3 марта). Для per_visit добавляется visitDays дней; допустимость
// visitDays (10 или 15) проверяет слой форм, не эта функция.
func ComputeExpiration(paymentDate time.Time, plan models.Plan, visitDays int) time.Time {
	if plan == models.PlanMonthly {
		return paymentDate.AddDate(0, 1, 0)
	}
	return paymentDate.AddDate(0, 0, visitDays)
}
