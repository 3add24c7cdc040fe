package feed

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"catalogfeed/internal/database"
	"catalogfeed/internal/models"
	"catalogfeed/internal/stores"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func strPtr(s string) *string { return &s }

// seedCatalogue stores:
//
//	s-1 simple, all stores      s-2 simple, uk only
//	s-3 simple, fr only         s-4 simple, disabled
//	p-1 configurable with variants v-1, v-2 (v-2 uk only)
//	p-2 configurable, disabled, with variant v-3
func seedCatalogue(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "catalogue.db")), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []models.Product{
		{ID: "s-1", SKU: "S1", Title: "Simple one"},
		{ID: "s-2", SKU: "S2", Title: "Simple two", StoreID: strPtr("uk")},
		{ID: "s-3", SKU: "S3", Title: "Simple three", StoreID: strPtr("fr")},
		{ID: "s-4", SKU: "S4", Title: "Simple four"},
		{ID: "p-1", SKU: "P1", Title: "Jumper", Type: models.ProductTypeConfigurable, Brand: "Acme"},
		{ID: "v-1", SKU: "P1-S", Title: "Jumper S", ParentID: strPtr("p-1"), Size: "S"},
		{ID: "v-2", SKU: "P1-M", Title: "Jumper M", ParentID: strPtr("p-1"), Size: "M", StoreID: strPtr("uk")},
		{ID: "p-2", SKU: "P2", Title: "Retired", Type: models.ProductTypeConfigurable},
		{ID: "v-3", SKU: "P2-S", Title: "Retired S", ParentID: strPtr("p-2")},
	}
	for i := range rows {
		rows[i].CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := db.Create(&rows[i]).Error; err != nil {
			t.Fatalf("create %s: %v", rows[i].ID, err)
		}
	}
	// Enabled defaults to true on insert, so disabling is a separate update.
	if err := db.Model(&models.Product{}).Where("id IN ?", []string{"s-4", "p-2"}).Update("enabled", false).Error; err != nil {
		t.Fatalf("disable: %v", err)
	}
	return db
}

func collect(t *testing.T, r ProductRetriever, scope stores.Scope) []*models.Product {
	t.Helper()
	var out []*models.Product
	for offset := 0; ; offset += r.PageSize() {
		page, err := r.Retrieve(context.Background(), scope, offset)
		if err != nil {
			t.Fatalf("%s retrieve at %d: %v", r.Name(), offset, err)
		}
		if len(page) == 0 {
			return out
		}
		out = append(out, page...)
	}
}

func ids(products []*models.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSimpleRetriever(t *testing.T) {
	db := seedCatalogue(t)
	r := NewSimpleRetriever(db, 1)

	tests := []struct {
		scope stores.Scope
		want  []string
	}{
		{stores.DefaultScope, []string{"s-1"}},
		{"uk", []string{"s-1", "s-2"}},
		{"fr", []string{"s-1", "s-3"}},
	}
	for _, tt := range tests {
		if got := ids(collect(t, r, tt.scope)); !equalIDs(got, tt.want) {
			t.Errorf("scope %q: got %v, want %v", tt.scope, got, tt.want)
		}
	}
}

func TestConfigurableRetriever(t *testing.T) {
	db := seedCatalogue(t)
	r := NewConfigurableRetriever(db, 50)

	got := collect(t, r, "uk")
	if !equalIDs(ids(got), []string{"v-1", "v-2"}) {
		t.Fatalf("got %v, want [v-1 v-2]", ids(got))
	}
	for _, p := range got {
		if p.Parent == nil || p.Parent.ID != "p-1" {
			t.Errorf("%s: parent not loaded", p.ID)
			continue
		}
		if p.Parent.Brand != "Acme" {
			t.Errorf("%s: parent brand = %q", p.ID, p.Parent.Brand)
		}
	}

	if got := ids(collect(t, r, stores.DefaultScope)); !equalIDs(got, []string{"v-1"}) {
		t.Errorf("default scope: got %v, want [v-1]", got)
	}
}

func TestRetrievers_FeedWriterEndToEnd(t *testing.T) {
	db := seedCatalogue(t)
	sink := &memorySink{}
	retrievers := []ProductRetriever{NewSimpleRetriever(db, 1), NewConfigurableRetriever(db, 1)}

	n, err := WriteArtifact(context.Background(), sink, "uk", retrievers, NewBuilder(testStore, UploadMethodFeedAPI))
	if err != nil {
		t.Fatalf("WriteArtifact: %v", err)
	}
	if n != 4 {
		t.Errorf("wrote %d rows, want 4", n)
	}
	if group := sink.rows[3][13]; group != "p-1" {
		t.Errorf("item_group_id = %q, want p-1", group)
	}
}
