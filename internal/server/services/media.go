package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/dmitrijs2005/coursekeeper/internal/common"
	"github.com/dmitrijs2005/coursekeeper/internal/logging"
	"github.com/dmitrijs2005/coursekeeper/internal/server/models"
	"github.com/dmitrijs2005/coursekeeper/internal/server/storage"
	"github.com/google/uuid"
)

const mediaKeyPrefix = "media/"

// MediaFile is one uploaded part.
type MediaFile struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.ReadSeeker
}

// MediaService stores lesson media in object storage.
type MediaService interface {
	// Upload stores every file and returns their references in order.
	// Nothing is kept when any file fails.
	Upload(ctx context.Context, files []MediaFile) ([]models.StoredMedia, error)
	// Remove deletes the object behind publicID.
	Remove(ctx context.Context, publicID string) error
	// MaxUploadBytes is the per-file size limit.
	MaxUploadBytes() int64
}

type mediaService struct {
	store    storage.ObjectStore
	baseURL  string
	maxBytes int64
	log      logging.Logger
	now      func() time.Time
}

func NewMediaService(store storage.ObjectStore, baseURL string, maxBytes int64, log logging.Logger) MediaService {
	return &mediaService{
		store:    store,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxBytes: maxBytes,
		log:      log,
		now:      time.Now,
	}
}

func (s *mediaService) MaxUploadBytes() int64 {
	return s.maxBytes
}

// storageKey returns media/<yyyy>/<mm>/<dd>/<uuid><ext>.
func storageKey(now time.Time, name string) string {
	ext := strings.ToLower(path.Ext(name))
	return mediaKeyPrefix + now.UTC().Format("2006/01/02") + "/" + uuid.NewString() + ext
}

func (s *mediaService) Upload(ctx context.Context, files []MediaFile) ([]models.StoredMedia, error) {
	if len(files) == 0 {
		return nil, common.NewValidationError("files", "must not be empty")
	}
	for _, f := range files {
		if f.Size > s.maxBytes {
			return nil, common.NewValidationError("files", fmt.Sprintf("%s exceeds %d bytes", f.Name, s.maxBytes))
		}
	}

	out := make([]models.StoredMedia, 0, len(files))
	for _, f := range files {
		key := storageKey(s.now(), f.Name)
		if err := s.store.Put(ctx, key, f.ContentType, f.Size, f.Body); err != nil {
			s.rollback(ctx, out)
			return nil, fmt.Errorf("upload %s: %w", f.Name, err)
		}
		out = append(out, models.StoredMedia{URL: s.baseURL + "/" + key, PublicID: key})
		s.log.Info(ctx, "media stored", "key", key, "size", f.Size)
	}
	return out, nil
}

func (s *mediaService) rollback(ctx context.Context, stored []models.StoredMedia) {
	for _, m := range stored {
		if err := s.store.Delete(ctx, m.PublicID); err != nil {
			s.log.Warn(ctx, "media rollback failed", "key", m.PublicID, "error", err)
		}
	}
}

// Remove only accepts keys this service issued.
func (s *mediaService) Remove(ctx context.Context, publicID string) error {
	if !strings.HasPrefix(publicID, mediaKeyPrefix) || strings.Contains(publicID, "..") {
		return common.NewValidationError("publicId", "unknown media id")
	}
	if err := s.store.Delete(ctx, publicID); err != nil {
		return fmt.Errorf("remove %s: %w", publicID, err)
	}
	s.log.Info(ctx, "media removed", "key", publicID)
	return nil
}
