package feed

import (
	"context"

	"catalogfeed/internal/services/graph"
	"catalogfeed/internal/settings"
	"catalogfeed/internal/stores"
)

// FeedAPI is the part of the Graph API the exporter talks to.
// *graph.Client satisfies it.
type FeedAPI interface {
	ListFeeds(ctx context.Context, catalogID string) ([]graph.Feed, error)
	CreateFeed(ctx context.Context, catalogID, name string) (string, error)
	GetFeed(ctx context.Context, feedID string) (*graph.Feed, error)
	PushFeed(ctx context.Context, feedID, path string) (*graph.UploadResult, error)
	DeleteProduct(ctx context.Context, catalogID, retailerID string) (*graph.BatchResult, error)
}

// Session returns an API handle authenticated for one run.
type Session func(accessToken string, debug bool) FeedAPI

// GraphSession adapts a shared graph client.
func GraphSession(c *graph.Client) Session {
	return func(accessToken string, debug bool) FeedAPI {
		return c.WithCredentials(accessToken, debug)
	}
}

// SettingsResolver yields the store settings a run works with. CleanCache is
// called when a run starts so values saved by other processes are seen.
type SettingsResolver interface {
	Resolve(ctx context.Context, scope stores.Scope) (settings.StoreSettings, error)
	CleanCache()
}

// ConfigWriter persists a newly obtained feed id.
type ConfigWriter interface {
	SaveConfig(ctx context.Context, path, value string, scope stores.Scope) error
	CleanCache()
}
