package processors

import (
	"context"
	"fmt"

	"catalogfeed/internal/logger"
	"catalogfeed/internal/services/graph"
	"catalogfeed/internal/stores"
	"catalogfeed/internal/worker/events"
	"catalogfeed/internal/worker/processors/export"
	"catalogfeed/internal/worker/processors/validation"
)

type DeleteNotifier interface {
	ProductDeleted(ctx context.Context, scope stores.Scope, productID string) (*graph.BatchResult, error)
}

type EventProcessor struct {
	logger    *logger.Logger
	validator *validation.Validator
	publisher export.Publisher
	notifier  DeleteNotifier
}

func NewEventProcessor(validator *validation.Validator, publisher export.Publisher, notifier DeleteNotifier, logger *logger.Logger) *EventProcessor {
	return &EventProcessor{
		logger:    logger,
		validator: validator,
		publisher: publisher,
		notifier:  notifier,
	}
}

// Process acts on one catalogue event.
func (ep *EventProcessor) Process(ctx context.Context, event events.Event) error {
	if err := ep.validator.ValidateEvent(event); err != nil {
		return err
	}

	ep.logger.Debug("Processing event: %+v", event)
	scope := stores.Scope(event.Store)

	switch event.Type {
	case events.TypeProductDeleted:
		if _, err := ep.notifier.ProductDeleted(ctx, scope, event.ProductID); err != nil {
			return fmt.Errorf("product %s: %w", event.ProductID, err)
		}
	case events.TypeFeedPublish:
		if _, err := ep.publisher.Publish(ctx, scope); err != nil {
			return err
		}
	}

	ep.logger.Info("Event %s processed for store %q", event.Type, event.Store)
	return nil
}
