package models

// Dashboard сводка для главного экрана: живые статусы клиентов
// и события доступа за сегодняшний день.
type Dashboard struct {
	ActiveClients    int `json:"active_clients"`    // Клиенты с активным абонементом
	ExpiringClients  int `json:"expiring_clients"`  // Клиенты с истекающим абонементом
	TodaysAccess     int `json:"todays_access"`     // Все события за сегодня
	ActiveEntries    int `json:"active_entries"`    // Входы со снимком статуса active
	ExpiringEntries  int `json:"expiring_entries"`  // Входы со снимком статуса expiring
	ActiveExits      int `json:"active_exits"`      // Выходы со снимком статуса active
	ExpiringExits    int `json:"expiring_exits"`    // Выходы со снимком статуса expiring
	DeniedAccess     int `json:"denied_access"`     // Отказы за сегодня
	CurrentOccupancy int `json:"current_occupancy"` // Входы минус выходы за сегодня
}

// TopClient клиент с наибольшим числом входов за отчетный месяц.
type TopClient struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Visits int    `json:"visits"`
}

// MonthlySummary сводный отчет за календарный месяц.
type MonthlySummary struct {
	Month         string      `json:"month"`           // Месяц в формате MM-YYYY
	Income        int         `json:"income"`          // Сумма оплат клиентов с датой оплаты в месяце
	NewClients    int         `json:"new_clients"`     // Клиенты с датой оплаты в месяце
	Renewals      int         `json:"renewals"`        // Не истекшие клиенты с оплатой вне месяца
	MonthlyPlans  int         `json:"monthly_plans"`   // Клиенты с месячным абонементом
	PerVisitPlans int         `json:"per_visit_plans"` // Клиенты с абонементом по посещениям
	TotalVisits   int         `json:"total_visits"`    // Входы за месяц
	VisitsByHour  [24]int     `json:"visits_by_hour"`  // Распределение входов по часам
	TopClients    []TopClient `json:"top_clients"`     // До пяти самых частых посетителей
}
