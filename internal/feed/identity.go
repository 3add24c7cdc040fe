package feed

import (
	"context"
	"fmt"
	"time"

	"catalogfeed/internal/logger"
	"catalogfeed/internal/settings"
)

// FeedName is the display name used to find and create the exporter's feed.
const FeedName = "Magento Autogenerated Feed"

const (
	defaultPollAttempts = 5
	defaultPollInterval = 2 * time.Second
)

// Identity is the remote feed a run uploads to.
type Identity struct {
	ID   string
	Name string
	// Created is set when the feed was created during this resolution.
	Created bool
	// Ready is false when a created feed never answered the readiness poll.
	Ready        bool
	PollAttempts int
}

type Resolver struct {
	config   ConfigWriter
	logger   *logger.Logger
	attempts int
	interval time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
}

func NewResolver(config ConfigWriter, logger *logger.Logger) *Resolver {
	return &Resolver{
		config:   config,
		logger:   logger,
		attempts: defaultPollAttempts,
		interval: defaultPollInterval,
		sleep:    sleepContext,
	}
}

// Resolve returns the feed to upload against for the store in s. A persisted
// id is returned without any remote call; otherwise an existing feed named
// FeedName is adopted, or a new one is created. A newly obtained id is saved
// for the store.
func (r *Resolver) Resolve(ctx context.Context, api FeedAPI, s settings.StoreSettings) (Identity, error) {
	if s.FeedID != "" {
		return Identity{ID: s.FeedID, Name: FeedName, Ready: true}, nil
	}
	if s.CatalogID == "" {
		return Identity{}, fmt.Errorf("%w: no catalog configured for store %q", ErrNoFeedIdentity, s.Scope)
	}

	ident := Identity{Name: FeedName, Ready: true}

	feeds, err := api.ListFeeds(ctx, s.CatalogID)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to list catalog feeds: %w", err)
	}
	for _, f := range feeds {
		if f.Name == FeedName {
			ident.ID = f.ID
			break
		}
	}

	if ident.ID == "" {
		id, err := api.CreateFeed(ctx, s.CatalogID, FeedName)
		if err != nil {
			return Identity{}, fmt.Errorf("failed to create feed: %w", err)
		}
		ident.ID = id
		ident.Created = true
		if id != "" {
			ident.Ready, ident.PollAttempts, err = r.waitReady(ctx, api, id)
			if err != nil {
				return Identity{}, err
			}
		}
	}

	if ident.ID == "" {
		return Identity{}, ErrNoFeedIdentity
	}

	r.persist(ctx, s, ident.ID)
	return ident, nil
}

// waitReady polls the new feed until it can be read, at most r.attempts
// times. Running out of attempts is not an error: the feed id is valid even
// while the remote side is still catching up.
func (r *Resolver) waitReady(ctx context.Context, api FeedAPI, feedID string) (bool, int, error) {
	var lastErr error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		_, err := api.GetFeed(ctx, feedID)
		if err == nil {
			return true, attempt, nil
		}
		lastErr = err
		if attempt == r.attempts {
			break
		}
		if err := r.sleep(ctx, r.interval); err != nil {
			return false, attempt, err
		}
	}

	r.logger.Warn("feed %s not ready after %d attempts: %v", feedID, r.attempts, lastErr)
	return false, r.attempts, nil
}

func (r *Resolver) persist(ctx context.Context, s settings.StoreSettings, feedID string) {
	if err := r.config.SaveConfig(ctx, settings.PathFeedID, feedID, s.Scope); err != nil {
		// The feed is found again by name on the next run.
		r.logger.Error("failed to save feed id %s for store %q: %v", feedID, s.Scope, err)
		return
	}
	r.config.CleanCache()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
