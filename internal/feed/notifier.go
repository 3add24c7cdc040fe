package feed

import (
	"context"
	"fmt"

	"catalogfeed/internal/logger"
	"catalogfeed/internal/services/graph"
	"catalogfeed/internal/stores"
)

// Notifier forwards catalogue changes that do not wait for the next feed
// upload.
type Notifier struct {
	settings SettingsResolver
	session  Session
	logger   *logger.Logger
}

func NewNotifier(settings SettingsResolver, session Session, logger *logger.Logger) *Notifier {
	return &Notifier{
		settings: settings,
		session:  session,
		logger:   logger,
	}
}

// ProductDeleted removes the product from the store's catalogue. The product
// id is the retailer id used in feed rows. Deleting an item the catalogue
// no longer holds is accepted by the batch API, so repeats are harmless.
func (n *Notifier) ProductDeleted(ctx context.Context, scope stores.Scope, productID string) (*graph.BatchResult, error) {
	if productID == "" {
		return nil, fmt.Errorf("product id is required")
	}
	n.settings.CleanCache()
	cfg, err := n.settings.Resolve(ctx, scope)
	if err != nil {
		return nil, err
	}
	if cfg.CatalogID == "" {
		return nil, fmt.Errorf("no catalog configured for store %q", scope)
	}

	api := n.session(cfg.AccessToken, cfg.Debug)
	res, err := api.DeleteProduct(ctx, cfg.CatalogID, productID)
	if err != nil {
		n.logger.Error("failed to delete product %s from catalog %s: %v", productID, cfg.CatalogID, err)
		return nil, err
	}
	n.logger.Debug("deleted product %s from catalog %s", productID, cfg.CatalogID)
	return res, nil
}
