package models

// EventKind тип события доступа.
type EventKind string

const (
	// EventEntry — вход в зал.
	EventEntry EventKind = "entry"
	// EventExit — выход из зала.
	EventExit EventKind = "exit"
	// EventDenied — отказ во входе.
	EventDenied EventKind = "denied"
)

// AccessEvent запись журнала доступа. Журнал только для добавления:
// записанное событие никогда не изменяется и не пересчитывается.
// Имя и почта клиента денормализованы, чтобы история оставалась читаемой
// даже после редактирования или удаления клиента. StatusSnapshot — статус
// абонемента на момент события, он фиксируется при записи и отличается от
// живого статуса в карточке клиента.
type AccessEvent struct {
	ID             int       `json:"id"`                       // Идентификатор, выдаётся хранилищем
	ClientName     string    `json:"client_name"`              // Имя клиента на момент события
	ClientEmail    string    `json:"client_email"`             // Почта клиента на момент события
	Timestamp      string    `json:"timestamp"`                // Гражданское время зала, формат 2006-01-02T15:04:05.000, без смещения UTC
	Kind           EventKind `json:"kind"`                     // Тип события
	StatusSnapshot Status    `json:"status_snapshot"`          // Статус абонемента на момент события
	ActiveMinutes  int       `json:"active_minutes,omitempty"` // Минуты в зале, только для exit
	Reason         string    `json:"reason,omitempty"`         // Причина отказа, только для denied
}

// OutcomeKind результат обработки сканирования.
type OutcomeKind string

const (
	// OutcomeEntered — вход зарегистрирован.
	OutcomeEntered OutcomeKind = "entered"
	// OutcomeExited — выход зарегистрирован.
	OutcomeExited OutcomeKind = "exited"
	// OutcomeDenied — во входе отказано.
	OutcomeDenied OutcomeKind = "denied"
)

// Outcome итог арбитража одного сканирования.
// Для Entered заполняется Status (при expiring вызывающая сторона
// показывает предупреждение), для Exited — ActiveMinutes,
// для Denied — Reason. Отказ — не ошибка, а валидный исход.
type Outcome struct {
	Kind          OutcomeKind `json:"kind"`
	Status        Status      `json:"status,omitempty"`
	ActiveMinutes int         `json:"active_minutes,omitempty"`
	Reason        string      `json:"reason,omitempty"`
}
