package feed

import (
	"context"
	"fmt"

	"catalogfeed/internal/stores"
)

// WriteArtifact writes the header and then one row per product of every
// retriever, in order, paging until a retriever returns an empty page. Rows
// go to the sink as soon as they are built. The sink is locked for the whole
// write and unlocked on every return path. It returns the number of product
// rows written.
func WriteArtifact(ctx context.Context, sink Sink, scope stores.Scope, retrievers []ProductRetriever, builder RowBuilder) (total int, err error) {
	if err := sink.Lock(); err != nil {
		return 0, err
	}
	defer func() {
		if unlockErr := sink.Unlock(); unlockErr != nil && err == nil {
			err = unlockErr
		}
	}()

	header := builder.HeaderFields()
	if err := sink.WriteRow(header); err != nil {
		return 0, err
	}

	for _, retriever := range retrievers {
		limit := retriever.PageSize()
		if limit <= 0 {
			return total, fmt.Errorf("%s retriever: page size must be positive, got %d", retriever.Name(), limit)
		}

		for offset := 0; ; offset += limit {
			products, err := retriever.Retrieve(ctx, scope, offset)
			if err != nil {
				return total, err
			}
			if len(products) == 0 {
				break
			}

			for _, p := range products {
				row := builder.BuildRow(p)
				if len(row) != len(header) {
					return total, fmt.Errorf("product %s: row has %d fields, header has %d", p.ID, len(row), len(header))
				}
				if err := sink.WriteRow(row); err != nil {
					return total, err
				}
				total++
			}
		}
	}

	return total, nil
}
