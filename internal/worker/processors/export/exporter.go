package export

import (
	"context"
	"sync"
	"time"

	"catalogfeed/internal/feed"
	"catalogfeed/internal/logger"
	"catalogfeed/internal/stores"
)

type Publisher interface {
	Publish(ctx context.Context, scope stores.Scope) (*feed.Run, error)
}

// Exporter pushes the feed of every store, one publish per store running
// concurrently. Each store writes its own artifact file.
type Exporter struct {
	publisher Publisher
	registry  *stores.Registry
	logger    *logger.Logger
}

func New(publisher Publisher, registry *stores.Registry, logger *logger.Logger) *Exporter {
	return &Exporter{
		publisher: publisher,
		registry:  registry,
		logger:    logger,
	}
}

// Result is the outcome of one store's publish.
type Result struct {
	Store stores.Store
	Run   *feed.Run
	Err   error
}

// ExportAll publishes every store and waits for all of them. Results come
// back in registry order.
func (e *Exporter) ExportAll(ctx context.Context) []Result {
	all := e.registry.All()
	results := make([]Result, len(all))

	var wg sync.WaitGroup
	for i, store := range all {
		wg.Add(1)
		go func(i int, store stores.Store) {
			defer wg.Done()
			run, err := e.publisher.Publish(ctx, stores.Scope(store.ID))
			results[i] = Result{Store: store, Run: run, Err: err}
		}(i, store)
	}
	wg.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	e.logger.Info("Exported feeds for %d stores, %d failed", len(results), failed)
	return results
}

// Run exports all stores every interval until ctx is done.
func (e *Exporter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	e.logger.Info("Scheduled feed export every %s", interval)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.ExportAll(ctx)
		}
	}
}
