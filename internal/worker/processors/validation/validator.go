package validation

import (
	"errors"
	"fmt"

	"catalogfeed/internal/logger"
	"catalogfeed/internal/stores"
	"catalogfeed/internal/worker/events"
)

var ErrUnsupportedEvent = errors.New("unsupported event type")

type Validator struct {
	registry *stores.Registry
	logger   *logger.Logger
}

func New(registry *stores.Registry, logger *logger.Logger) *Validator {
	return &Validator{
		registry: registry,
		logger:   logger,
	}
}

// ValidateEvent checks that e can be acted on: a known type, the fields that
// type needs and a store the registry knows.
func (v *Validator) ValidateEvent(e events.Event) error {
	switch e.Type {
	case events.TypeProductDeleted:
		if e.ProductID == "" {
			return fmt.Errorf("%s event without product_id", e.Type)
		}
	case events.TypeFeedPublish:
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedEvent, e.Type)
	}

	if _, err := v.registry.Resolve(stores.Scope(e.Store)); err != nil {
		return err
	}

	v.logger.Debug("Validated %s event for store %q", e.Type, e.Store)
	return nil
}
