package rabbitmq

// NotificationsExchange exchange, через который идут напоминания клиентам.
const NotificationsExchange = "notifications"

// ExpiringRoutingKey ключ маршрутизации напоминаний об окончании абонемента.
const ExpiringRoutingKey = "expiring"

// QueueConfig описывает очередь и её ключ маршрутизации.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues возвращает очереди, используемые рассыльщиком напоминаний.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "notification.expiring", RoutingKey: ExpiringRoutingKey},
		// при необходимости дополнительные очереди для других воркеров
	}
}
