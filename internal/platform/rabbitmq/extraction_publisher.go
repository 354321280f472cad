package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ExtractionTask is the queue payload handed from the intake boundary to the
// extraction worker. It carries the material text so the worker does not have
// to re-read it from the store.
type ExtractionTask struct {
	MaterialID string `json:"material_id"`
	Content    string `json:"content"`
}

type ExtractionPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewExtractionPublisher(conn *amqp.Connection, queueName string) *ExtractionPublisher {
	return &ExtractionPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *ExtractionPublisher) Publish(ctx context.Context, task ExtractionTask) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		p.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare extraction queue failed: %w", err)
	}

	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal extraction task failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish extraction task failed: %w", err)
	}
	return nil
}

// Dispatch satisfies the ingest service's dispatcher seam.
func (p *ExtractionPublisher) Dispatch(ctx context.Context, materialID, content string) error {
	return p.Publish(ctx, ExtractionTask{MaterialID: materialID, Content: content})
}
