package feed

import (
	"context"
	"errors"
	"testing"

	"catalogfeed/internal/logger"
	"catalogfeed/internal/settings"
)

func TestProductDeleted(t *testing.T) {
	cfg := newFakeConfig()
	cfg.values["uk"] = settings.StoreSettings{CatalogID: "cat-uk", AccessToken: "token"}
	api := &fakeAPI{}
	n := NewNotifier(cfg, api.session(), logger.New("error"))

	res, err := n.ProductDeleted(context.Background(), "uk", "p-7")
	if err != nil {
		t.Fatalf("ProductDeleted failed: %v", err)
	}
	if len(api.deleted) != 1 || api.deleted[0] != "cat-uk/p-7" {
		t.Errorf("deleted = %v", api.deleted)
	}
	if len(res.Handles) != 1 {
		t.Errorf("unexpected result %+v", res)
	}
	if cfg.cleaned != 1 {
		t.Errorf("settings cache cleaned %d times, want once", cfg.cleaned)
	}
}

func TestProductDeleted_Errors(t *testing.T) {
	deleteErr := errors.New("graph unavailable")

	tests := []struct {
		name      string
		catalog   string
		productID string
		apiErr    error
	}{
		{"empty product id", "cat-1", "", nil},
		{"no catalog", "", "p-1", nil},
		{"api error", "cat-1", "p-1", deleteErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newFakeConfig()
			cfg.values["uk"] = settings.StoreSettings{CatalogID: tt.catalog}
			api := &fakeAPI{deleteErr: tt.apiErr}
			n := NewNotifier(cfg, api.session(), logger.New("error"))

			_, err := n.ProductDeleted(context.Background(), "uk", tt.productID)
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.apiErr != nil && !errors.Is(err, tt.apiErr) {
				t.Errorf("expected %v, got %v", tt.apiErr, err)
			}
			if len(api.deleted) != 0 {
				t.Errorf("nothing should be deleted, got %v", api.deleted)
			}
		})
	}
}
