package image

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/galleria/service/internal/storage"
)

// Catalog is the persistence interface the service depends on.
type Catalog interface {
	Insert(ctx context.Context, userID int64, filename, storageKey string) (*Image, error)
	ListByUser(ctx context.Context, userID int64) ([]Image, error)
	FindOwned(ctx context.Context, id, userID int64) (*Image, error)
	DeleteByID(ctx context.Context, id int64) error
}

// ListEntry is a catalog record augmented with a presigned read URL.
type ListEntry struct {
	Image
	URL string `json:"url"`
}

// Service orchestrates the catalog and the object store. Blob and catalog
// writes are not transactional; Upload compensates by deleting the blob when
// the catalog insert fails, Delete removes the blob before the row.
type Service struct {
	catalog Catalog
	store   storage.Storage
	urlTTL  time.Duration
}

// NewService creates a new image Service. urlTTL bounds presigned URL validity.
func NewService(catalog Catalog, store storage.Storage, urlTTL time.Duration) *Service {
	return &Service{catalog: catalog, store: store, urlTTL: urlTTL}
}

// Upload writes the blob under a per-user namespaced key, then records it in
// the catalog. No catalog row is written unless the blob write succeeded.
func (s *Service) Upload(ctx context.Context, userID int64, filename, contentType string, r io.Reader, size int64) (*Image, error) {
	key := buildKey(userID, filename)

	if err := s.store.Upload(ctx, key, r, size, contentType); err != nil {
		return nil, fmt.Errorf("upload blob: %w", err)
	}

	img, err := s.catalog.Insert(ctx, userID, filename, key)
	if err != nil {
		// Blob is already written; remove it so the two stores stay consistent.
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			log.Printf("image: orphaned blob %q after failed catalog insert: %v", key, delErr)
		}
		return nil, fmt.Errorf("record upload: %w", err)
	}
	return img, nil
}

// List returns the user's images, most recent first, each with a presigned
// read URL.
func (s *Service) List(ctx context.Context, userID int64) ([]ListEntry, error) {
	images, err := s.catalog.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries := make([]ListEntry, 0, len(images))
	for _, img := range images {
		url, err := s.store.PresignedURL(ctx, img.StorageKey, s.urlTTL)
		if err != nil {
			return nil, fmt.Errorf("sign url for image %d: %w", img.ID, err)
		}
		entries = append(entries, ListEntry{Image: img, URL: url})
	}
	return entries, nil
}

// Delete removes the user's image. Returns ErrNotFound without side effects
// when the id does not exist or belongs to another user. The blob is deleted
// first; the catalog row is removed only after that succeeds.
func (s *Service) Delete(ctx context.Context, userID, imageID int64) error {
	img, err := s.catalog.FindOwned(ctx, imageID, userID)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, img.StorageKey); err != nil {
		return fmt.Errorf("delete blob: %w", err)
	}
	if err := s.catalog.DeleteByID(ctx, img.ID); err != nil {
		// Blob is gone; the dangling row's signed URLs will 404 until retried.
		return fmt.Errorf("delete catalog row: %w", err)
	}
	return nil
}

// buildKey namespaces the blob under the owning user and adds a millisecond
// timestamp so concurrent uploads of the same filename cannot collide.
func buildKey(userID int64, filename string) string {
	return fmt.Sprintf("images/%d/%d-%s", userID, time.Now().UnixMilli(), sanitizeFilename(filename))
}

// sanitizeFilename strips any path components and characters that are unsafe
// in object keys.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
