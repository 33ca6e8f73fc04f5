// Package search holds the contract of the external document index.
package search

import (
	"context"

	"github.com/kailas-cloud/vitrine/internal/domain/search/query"
	"github.com/kailas-cloud/vitrine/internal/domain/search/result"
)

// Index resolves a scoped query to documents in the index's ranking order.
type Index interface {
	Search(ctx context.Context, req query.Request) (result.Page, error)
}

// Checker reports whether the index is reachable. Adapters implement it for
// the health report.
type Checker interface {
	Check(ctx context.Context) error
}
