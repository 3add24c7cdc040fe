package feed

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"catalogfeed/internal/models"

	"github.com/gofrs/flock"
)

func TestWriteArtifact_CountsEveryPage(t *testing.T) {
	tests := []struct {
		name         string
		simple       int
		simplePage   int
		configurable int
		configPage   int
	}{
		{"empty catalogue", 0, 10, 0, 10},
		{"exact pages", 4, 2, 6, 3},
		{"partial last page", 5, 2, 7, 50},
		{"page size one", 3, 1, 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &memorySink{}
			simple := &pagedRetriever{name: "simple", pageSize: tt.simplePage, products: products("s", tt.simple), failAt: -1}
			conf := &pagedRetriever{name: "configurable", pageSize: tt.configPage, products: products("c", tt.configurable), failAt: -1}

			n, err := WriteArtifact(context.Background(), sink, "uk", []ProductRetriever{simple, conf}, NewBuilder(testStore, UploadMethodFeedAPI))
			if err != nil {
				t.Fatalf("WriteArtifact failed: %v", err)
			}
			if n != tt.simple+tt.configurable {
				t.Errorf("row count %d, want %d", n, tt.simple+tt.configurable)
			}
			if len(sink.rows) != n+1 {
				t.Errorf("sink has %d rows, want header + %d", len(sink.rows), n)
			}
			if sink.locked || sink.lockCalls != 1 || sink.unlocks != 1 {
				t.Errorf("lock not balanced: locked=%v lock=%d unlock=%d", sink.locked, sink.lockCalls, sink.unlocks)
			}
		})
	}
}

func TestWriteArtifact_OffsetsAdvanceByPageSize(t *testing.T) {
	simple := &pagedRetriever{name: "simple", pageSize: 2, products: products("s", 5), failAt: -1}
	if _, err := WriteArtifact(context.Background(), &memorySink{}, "", []ProductRetriever{simple}, NewBuilder(testStore, UploadMethodFeedAPI)); err != nil {
		t.Fatalf("WriteArtifact failed: %v", err)
	}
	want := []int{0, 2, 4, 6}
	if len(simple.offsets) != len(want) {
		t.Fatalf("offsets %v, want %v", simple.offsets, want)
	}
	for i := range want {
		if simple.offsets[i] != want[i] {
			t.Errorf("offsets %v, want %v", simple.offsets, want)
			break
		}
	}
}

func TestWriteArtifact_HeaderThenSimpleThenConfigurable(t *testing.T) {
	sink := &memorySink{}
	simple := &pagedRetriever{name: "simple", pageSize: 2, products: products("s", 2), failAt: -1}
	conf := &pagedRetriever{name: "configurable", pageSize: 50, products: products("c", 1), failAt: -1}
	b := NewBuilder(testStore, UploadMethodFeedAPI)

	if _, err := WriteArtifact(context.Background(), sink, "uk", []ProductRetriever{simple, conf}, b); err != nil {
		t.Fatalf("WriteArtifact failed: %v", err)
	}

	if sink.rows[0][0] != "id" {
		t.Errorf("first row must be the header, got %v", sink.rows[0])
	}
	var ids []string
	for _, r := range sink.rows[1:] {
		ids = append(ids, r[0])
	}
	want := []string{"s-1", "s-2", "c-1"}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("row order %v, want %v", ids, want)
			break
		}
	}
}

func TestWriteArtifact_UnlocksOnError(t *testing.T) {
	retrieveErr := &pagedRetriever{name: "simple", pageSize: 2, products: products("s", 5), failAt: 2}
	writeErr := &memorySink{failAfter: 2}

	t.Run("retriever fails", func(t *testing.T) {
		sink := &memorySink{}
		_, err := WriteArtifact(context.Background(), sink, "", []ProductRetriever{retrieveErr}, NewBuilder(testStore, UploadMethodFeedAPI))
		if err == nil {
			t.Fatal("expected an error")
		}
		if sink.locked || sink.unlocks != 1 {
			t.Error("lock must be released when retrieval fails")
		}
	})

	t.Run("sink fails", func(t *testing.T) {
		simple := &pagedRetriever{name: "simple", pageSize: 2, products: products("s", 5), failAt: -1}
		n, err := WriteArtifact(context.Background(), writeErr, "", []ProductRetriever{simple}, NewBuilder(testStore, UploadMethodFeedAPI))
		var artErr *ArtifactError
		if !errors.As(err, &artErr) {
			t.Fatalf("expected *ArtifactError, got %v", err)
		}
		if n != 1 {
			t.Errorf("expected 1 row written before the failure, got %d", n)
		}
		if writeErr.locked {
			t.Error("lock must be released when writing fails")
		}
	})
}

type shortRowBuilder struct{ *Builder }

func (b shortRowBuilder) BuildRow(p *models.Product) []string {
	return b.Builder.BuildRow(p)[:3]
}

func TestWriteArtifact_RejectsMisalignedRow(t *testing.T) {
	sink := &memorySink{}
	simple := &pagedRetriever{name: "simple", pageSize: 2, products: products("s", 1), failAt: -1}
	_, err := WriteArtifact(context.Background(), sink, "", []ProductRetriever{simple}, shortRowBuilder{NewBuilder(testStore, UploadMethodFeedAPI)})
	if err == nil {
		t.Fatal("expected an arity error")
	}
	if len(sink.rows) != 1 {
		t.Errorf("only the header may be written, got %d rows", len(sink.rows))
	}
}

func TestWriteArtifact_InvalidPageSize(t *testing.T) {
	sink := &memorySink{}
	bad := &pagedRetriever{name: "simple", pageSize: 0, failAt: -1}
	if _, err := WriteArtifact(context.Background(), sink, "", []ProductRetriever{bad}, NewBuilder(testStore, UploadMethodFeedAPI)); err == nil {
		t.Fatal("expected an error for a zero page size")
	}
	if sink.locked {
		t.Error("lock must be released")
	}
}

func TestWriteArtifact_FileLockReleasedAfterFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export", "facebook_products.csv")
	sink, err := OpenFileSink(path)
	if err != nil {
		t.Fatalf("OpenFileSink: %v", err)
	}
	defer sink.Close()

	failing := &pagedRetriever{name: "simple", pageSize: 1, products: products("s", 3), failAt: 1}
	if _, err := WriteArtifact(context.Background(), sink, "", []ProductRetriever{failing}, NewBuilder(testStore, UploadMethodFeedAPI)); err == nil {
		t.Fatal("expected the retriever failure to propagate")
	}

	other := flock.New(path)
	locked, err := other.TryLock()
	if err != nil {
		t.Fatalf("TryLock: %v", err)
	}
	if !locked {
		t.Fatal("artifact is still locked after a failed write")
	}
	other.Unlock()
}
