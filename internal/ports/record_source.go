package ports

import (
	"context"

	"github.com/bft-labs/evalsample/pkg/stratify"
)

// RecordSource provides the raw records a sample is drawn from.
// Implementations trim fields and skip rows without an id or a group.
type RecordSource interface {
	// Load returns every valid record in source order.
	// Returns an error if the source cannot be read or yields no valid rows.
	Load(ctx context.Context) ([]stratify.Record, error)

	// Describe returns a short human-readable name for logs.
	Describe() string
}
