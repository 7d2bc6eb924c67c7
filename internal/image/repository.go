// Package image manages the per-user image catalog and upload orchestration.
package image

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Image is a catalog record linking a user to one stored blob.
type Image struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"-"`
	Filename   string    `json:"filename"`
	StorageKey string    `json:"-"`
	UploadDate time.Time `json:"uploadDate"`
}

// ErrNotFound is returned when an image does not exist or is not owned by
// the requesting user.
var ErrNotFound = errors.New("image not found")

// Repository handles all image catalog database operations.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new image Repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Insert appends a catalog record and returns it.
func (r *Repository) Insert(ctx context.Context, userID int64, filename, storageKey string) (*Image, error) {
	img := &Image{}
	err := r.db.QueryRow(ctx,
		`INSERT INTO images (user_id, filename, storage_key)
		 VALUES ($1, $2, $3)
		 RETURNING id, user_id, filename, storage_key, upload_date`,
		userID, filename, storageKey,
	).Scan(&img.ID, &img.UserID, &img.Filename, &img.StorageKey, &img.UploadDate)
	if err != nil {
		return nil, fmt.Errorf("insert image: %w", err)
	}
	return img, nil
}

// ListByUser returns the user's images, most recent upload first. The id
// tiebreak keeps the order stable for uploads in the same instant.
func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]Image, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, filename, storage_key, upload_date
		 FROM images
		 WHERE user_id = $1
		 ORDER BY upload_date DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	defer rows.Close()

	var images []Image
	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.ID, &img.UserID, &img.Filename, &img.StorageKey, &img.UploadDate); err != nil {
			return nil, fmt.Errorf("scan image row: %w", err)
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate image rows: %w", err)
	}
	return images, nil
}

// FindOwned returns the record only if it belongs to the given user.
// This is the ownership gate for every mutating operation.
func (r *Repository) FindOwned(ctx context.Context, id, userID int64) (*Image, error) {
	img := &Image{}
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, filename, storage_key, upload_date
		 FROM images
		 WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(&img.ID, &img.UserID, &img.Filename, &img.StorageKey, &img.UploadDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find owned image: %w", err)
	}
	return img, nil
}

// DeleteByID removes the catalog record.
func (r *Repository) DeleteByID(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM images WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	return nil
}
