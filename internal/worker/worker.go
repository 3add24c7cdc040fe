package worker

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"catalogfeed/internal/config"
	"catalogfeed/internal/logger"
	"catalogfeed/internal/worker/events"
	"catalogfeed/internal/worker/processors"

	"github.com/segmentio/kafka-go"
)

const readTimeout = 10 * time.Second

// MessageReader is the part of *kafka.Reader the worker uses.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type Worker struct {
	logger    *logger.Logger
	reader    MessageReader
	processor *processors.EventProcessor
}

func New(cfg *config.Config, logger *logger.Logger, processor *processors.EventProcessor) *Worker {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        strings.Split(cfg.KafkaBrokers, ","),
		GroupID:        cfg.KafkaGroupID,
		Topic:          cfg.KafkaTopic,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
	})

	return newWorker(reader, processor, logger)
}

func newWorker(reader MessageReader, processor *processors.EventProcessor, logger *logger.Logger) *Worker {
	return &Worker{
		logger:    logger,
		reader:    reader,
		processor: processor,
	}
}

// Start consumes events until ctx is done. Bad messages and failed events
// are logged and skipped.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Worker started, listening for events...")

	for {
		readCtx, cancel := context.WithTimeout(ctx, readTimeout)
		message, err := w.reader.ReadMessage(readCtx)
		cancel()

		if ctx.Err() != nil {
			return
		}
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			w.logger.Error("Failed to read message: %v", err)
			continue
		}

		w.logger.Debug("Received message: %s", string(message.Value))
		w.handle(ctx, message)
	}
}

func (w *Worker) handle(ctx context.Context, message kafka.Message) {
	// Parse event
	var event events.Event
	if err := json.Unmarshal(message.Value, &event); err != nil {
		w.logger.Error("Failed to parse event at offset %d: %v", message.Offset, err)
		return
	}

	// Process event
	if err := w.processor.Process(ctx, event); err != nil {
		w.logger.Error("Failed to process %s event: %v", event.Type, err)
		return
	}

	w.logger.Debug("Event processed successfully")
}

func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	if err := w.reader.Close(); err != nil {
		w.logger.Error("Failed to close reader: %v", err)
	}
}
