// Package civil реализует работу с гражданским временем зала.
//
// Все метки времени в журнале доступа хранятся строками локального
// гражданского времени без смещения UTC, привязанными к одной фиксированной
// тайм-зоне на всё развёртывание. Границы "сегодня", сортировка и группировка
// по дням зависят от того, что запись и чтение всегда считаются в одной зоне,
// поэтому зона задаётся явно в конфигурации, а не берётся из окружения.
package civil

import (
	"fmt"
	"time"
)

// Layout формат метки времени журнала доступа: локальное гражданское время
// с миллисекундами, без смещения.
const Layout = "2006-01-02T15:04:05.000"

// DateLayout формат дат в запросах (дата оплаты, границы отчётов).
const DateLayout = "02-01-2006"

// Clock отдаёт текущее гражданское время зала. Интерфейс внедряется
// во все сервисы, чтобы тесты подставляли фиксированные часы вместо
// состояния окружения.
type Clock interface {
	Now() time.Time
}

// FixedZoneClock системные часы, переведённые в фиксированную зону зала.
type FixedZoneClock struct {
	loc *time.Location
}

// NewFixedZoneClock загружает тайм-зону по имени из базы IANA,
// например "America/Mexico_City".
func NewFixedZoneClock(zone string) (*FixedZoneClock, error) {
	const op = "civil.NewFixedZoneClock"
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &FixedZoneClock{loc: loc}, nil
}

// Now возвращает текущее время в зоне зала.
func (c *FixedZoneClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// StoppedClock часы, остановленные на заданном моменте. Используются в тестах.
type StoppedClock struct {
	Moment time.Time
}

// Now возвращает зафиксированный момент.
func (c StoppedClock) Now() time.Time {
	return c.Moment
}

// Format форматирует момент в строку журнала доступа.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// Parse разбирает строку журнала доступа в момент времени.
// Строка не несёт смещения, поэтому разбор идёт в той же зоне,
// в которой было отформатировано значение.
func Parse(s string, loc *time.Location) (time.Time, error) {
	const op = "civil.Parse"
	t, err := time.ParseInLocation(Layout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

// DayBounds возвращает границы календарного дня [start, next) для момента now.
// "Сегодня" никогда не захватывает предыдущие дни: незакрытый вход вчерашнего
// дня при сегодняшнем сканировании не учитывается.
func DayBounds(now time.Time) (start, next time.Time) {
	start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 0, 1)
}
