// Package uploads persists media references that were uploaded but are not
// yet owned by a saved lesson, so they can be released after a crash.
package uploads

import (
	"context"

	"github.com/dmitrijs2005/coursekeeper/internal/client/models"
)

// Repository is the upload ledger.
type Repository interface {
	// Track records ref as pending. Tracking the same public id twice is a no-op.
	Track(ctx context.Context, ref models.MediaReference) error

	// Forget removes a reference from the ledger. Unknown ids are ignored.
	Forget(ctx context.Context, publicID string) error

	// Pending lists every tracked reference, oldest first.
	Pending(ctx context.Context) ([]models.MediaReference, error)
}
