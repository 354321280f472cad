package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"examforge/internal/platform/rabbitmq"
)

type materialProcessor interface {
	ProcessMaterial(ctx context.Context, materialID, rawText string) error
}

// ExtractionWorker consumes extraction tasks from the queue and runs each one
// through the bounded pool. A task that fails is not requeued: the material
// stays unprocessed and an operator re-run picks it up.
type ExtractionWorker struct {
	conn       *amqp.Connection
	processor  materialProcessor
	pool       *Pool
	queueName  string
	runTimeout time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewExtractionWorker(
	conn *amqp.Connection,
	processor materialProcessor,
	pool *Pool,
	queueName string,
	runTimeout time.Duration,
) *ExtractionWorker {
	if runTimeout <= 0 {
		runTimeout = 5 * time.Minute
	}
	return &ExtractionWorker{
		conn:       conn,
		processor:  processor,
		pool:       pool,
		queueName:  queueName,
		runTimeout: runTimeout,
	}
}

func (w *ExtractionWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare extraction queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume extraction queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				w.handleDelivery(workerCtx, d)
			}
		}
	}()

	return nil
}

// handleDelivery decodes one task and runs it through the pool. Submit blocks
// when the pool queue is full; that throttles how fast deliveries are pulled
// off the broker. A delivery the pool rejects (shutdown in progress) is
// requeued so another consumer picks it up.
func (w *ExtractionWorker) handleDelivery(ctx context.Context, d amqp.Delivery) {
	var task rabbitmq.ExtractionTask
	if err := json.Unmarshal(d.Body, &task); err != nil {
		log.Printf("worker decode extraction task failed: %v", err)
		_ = d.Nack(false, false)
		return
	}

	accepted := w.pool.Submit(func() {
		runCtx, cancelRun := context.WithTimeout(ctx, w.runTimeout)
		defer cancelRun()

		if err := w.processor.ProcessMaterial(runCtx, task.MaterialID, task.Content); err != nil {
			log.Printf("worker process material %s failed: %v", task.MaterialID, err)
			_ = d.Nack(false, false)
			return
		}
		_ = d.Ack(false)
	})
	if !accepted {
		log.Printf("worker pool closed, requeueing material %s", task.MaterialID)
		_ = d.Nack(false, true)
	}
}

func (w *ExtractionWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
