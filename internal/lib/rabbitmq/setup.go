package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"
)

// Exchange — общая точка обмена для сообщений синхронизации.
const Exchange = "sync"

// Routing keys для очередей синхронизации.
const (
	RoutingActions = "actions.pending"
	RoutingDeleted = "prompts.deleted"
)

// QueueConfig описывает очередь и её ключ маршрутизации.
type QueueConfig struct {
	Name       string
	RoutingKey string
}

// SetupChannel открывает канал, объявляет exchange "sync" и привязывает
// очереди несинхронизированных действий и отчётов об удалении подсказок.
func SetupChannel(conn *amqp.Connection) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.Qos(10, 0, false); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	err = ch.ExchangeDeclare(
		Exchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	queues := []QueueConfig{
		{Name: "card-actions", RoutingKey: RoutingActions},
		{Name: "prompt-deletions", RoutingKey: RoutingDeleted},
	}
	for _, q := range queues {
		if _, err := ch.QueueDeclare(q.Name, true, false, false, false, nil); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err := ch.QueueBind(q.Name, q.RoutingKey, Exchange, false, nil); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	return ch, nil
}
