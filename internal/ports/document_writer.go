package ports

import (
	"context"

	"github.com/bft-labs/evalsample/internal/domain"
)

// DocumentWriter persists a sample document.
type DocumentWriter interface {
	// Write stores doc and returns the location it was written to.
	// Implementations must not leave a partially written document behind.
	Write(ctx context.Context, doc *domain.Document) (string, error)
}
