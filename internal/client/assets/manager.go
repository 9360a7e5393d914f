// Package assets manages the lifecycle of externally hosted lesson media:
// upload, release, and tracking of uploads not yet owned by a saved lesson.
package assets

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/coursekeeper/internal/client/models"
	"github.com/dmitrijs2005/coursekeeper/internal/client/repositories/uploads"
	"github.com/dmitrijs2005/coursekeeper/internal/common"
	"github.com/dmitrijs2005/coursekeeper/internal/logging"
)

// Storage is the media host.
type Storage interface {
	UploadFile(ctx context.Context, file models.MediaFile) (models.MediaReference, error)
	RemoveFile(ctx context.Context, publicID string) error
}

// Manager uploads and releases media and keeps the upload ledger current.
// Ledger failures are logged and never fail the caller.
type Manager struct {
	storage Storage
	ledger  uploads.Repository
	log     logging.Logger
}

func NewManager(storage Storage, ledger uploads.Repository, log logging.Logger) *Manager {
	if ledger == nil {
		ledger = NewMemoryLedger()
	}
	return &Manager{storage: storage, ledger: ledger, log: log}
}

// Upload sends file to the media host and records the returned reference as
// pending. Failures match common.ErrUpload.
func (m *Manager) Upload(ctx context.Context, file models.MediaFile) (models.MediaReference, error) {
	ref, err := m.storage.UploadFile(ctx, file)
	if err != nil {
		return models.MediaReference{}, fmt.Errorf("upload %s: %w: %w", file.Name, common.ErrUpload, err)
	}
	if ref.PublicID == "" || ref.URL == "" {
		return models.MediaReference{}, fmt.Errorf("upload %s: empty reference: %w", file.Name, common.ErrUpload)
	}

	if err := m.ledger.Track(ctx, ref); err != nil {
		m.log.Warn(ctx, "failed to track upload", "public_id", ref.PublicID, "error", err)
	}
	m.log.Info(ctx, "media uploaded", "public_id", ref.PublicID, "size", file.Size)
	return ref, nil
}

// Release deletes ref from the media host. A failure is logged at WARN and
// returned as an error matching common.ErrRelease; callers treat it as a
// warning. A released reference leaves the ledger.
func (m *Manager) Release(ctx context.Context, ref models.MediaReference) error {
	if ref.PublicID == "" {
		return nil
	}

	if err := m.storage.RemoveFile(ctx, ref.PublicID); err != nil {
		m.log.Warn(ctx, "media release failed", "public_id", ref.PublicID, "error", err)
		return fmt.Errorf("release %s: %w: %w", ref.PublicID, common.ErrRelease, err)
	}

	if err := m.ledger.Forget(ctx, ref.PublicID); err != nil {
		m.log.Warn(ctx, "failed to forget released upload", "public_id", ref.PublicID, "error", err)
	}
	m.log.Info(ctx, "media released", "public_id", ref.PublicID)
	return nil
}

// Attach marks ref as owned by a saved backend record.
func (m *Manager) Attach(ctx context.Context, ref models.MediaReference) {
	if err := m.ledger.Forget(ctx, ref.PublicID); err != nil {
		m.log.Warn(ctx, "failed to forget attached upload", "public_id", ref.PublicID, "error", err)
	}
}

// Sweep releases every reference still in the ledger and returns the
// release failures joined together. Those references stay tracked.
func (m *Manager) Sweep(ctx context.Context) (int, error) {
	pending, err := m.ledger.Pending(ctx)
	if err != nil {
		return 0, fmt.Errorf("list pending uploads: %w", err)
	}

	var errs []error
	released := 0
	for _, ref := range pending {
		if err := m.Release(ctx, ref); err != nil {
			errs = append(errs, err)
			continue
		}
		released++
	}
	if released > 0 {
		m.log.Info(ctx, "swept orphaned uploads", "released", released, "failed", len(errs))
	}
	return released, errors.Join(errs...)
}
