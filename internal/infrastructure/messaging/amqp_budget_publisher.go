package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"marcenaria_mdf/internal/domain/entities"
	"marcenaria_mdf/internal/usecase/interfaces"

	"github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// Channel is the subset of *amqp091.Channel used to publish.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// BudgetEventMessage is the body published for every budget mutation.
type BudgetEventMessage struct {
	Type             entities.BudgetEventType `json:"type"`
	BudgetID         string                   `json:"budget_id"`
	SequentialNumber string                   `json:"sequential_number"`
	Status           entities.BudgetStatus    `json:"status"`
	PreviousStatus   entities.BudgetStatus    `json:"previous_status,omitempty"`
	CustomerID       string                   `json:"customer_id,omitempty"`
	FinalAmount      string                   `json:"final_amount"`
	OccurredAt       time.Time                `json:"occurred_at"`
}

// AMQPBudgetPublisher is a budget observer that publishes events to a topic exchange.
type AMQPBudgetPublisher struct {
	conn       *amqp091.Connection
	channel    Channel
	exchange   string
	routingKey string
	mu         sync.Mutex
}

var _ interfaces.IBudgetObserver = (*AMQPBudgetPublisher)(nil)

// DialAMQPBudgetPublisher connects and declares the exchange.
func DialAMQPBudgetPublisher(url, exchange, routingKey string) (*AMQPBudgetPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	p, err := NewAMQPBudgetPublisher(ch, exchange, routingKey)
	if err != nil {
		conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

func NewAMQPBudgetPublisher(ch Channel, exchange, routingKey string) (*AMQPBudgetPublisher, error) {
	if err := ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	); err != nil {
		ch.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &AMQPBudgetPublisher{channel: ch, exchange: exchange, routingKey: routingKey}, nil
}

func (p *AMQPBudgetPublisher) Name() string { return "amqp" }

// OnBudgetEvent publishes under "<routingKey>.<event type>", e.g. budgets.budget.created.
func (p *AMQPBudgetPublisher) OnBudgetEvent(ctx context.Context, ev entities.BudgetEvent) error {
	body, err := json.Marshal(BudgetEventMessage{
		Type:             ev.Type,
		BudgetID:         ev.Budget.ID,
		SequentialNumber: ev.Budget.SequentialNumber,
		Status:           ev.Budget.Status,
		PreviousStatus:   ev.PreviousStatus,
		CustomerID:       ev.Budget.CustomerID,
		FinalAmount:      ev.Budget.FinalAmount.StringFixed(2),
		OccurredAt:       ev.OccurredAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	key := p.routingKey + "." + string(ev.Type)
	p.mu.Lock()
	err = p.channel.PublishWithContext(
		ctx,
		p.exchange, // exchange
		key,        // routing key
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			MessageId:    ev.Budget.ID + ":" + string(ev.Type),
			Body:         body,
		},
	)
	p.mu.Unlock()
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	log.Printf("[budget][amqp] published key=%s budget_id=%s", key, ev.Budget.ID)
	return nil
}

func (p *AMQPBudgetPublisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
