// Package events defines the catalogue events the worker consumes.
package events

import "time"

const (
	TypeProductDeleted = "product.deleted"
	TypeFeedPublish    = "feed.publish"
)

// Event is one message on the catalogue topic. Store is a store id; empty
// means the default store.
type Event struct {
	Type      string    `json:"type"`
	ProductID string    `json:"product_id,omitempty"`
	Store     string    `json:"store,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
