// Package storage archives raw uploads on disk so a statement that parsed
// badly can be replayed after a pattern fix.
package storage

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// FileInfo describes one archived upload.
type FileInfo struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Kind        string    `json:"kind"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	Path        string    `json:"path"`
	CreatedAt   time.Time `json:"created_at"`
}

// Archive stores raw upload bytes alongside their metadata.
type Archive interface {
	// Save stores an upload and returns its metadata. Kind is the
	// extraction kind the upload was processed as.
	Save(ctx context.Context, name, kind, contentType string, r io.Reader) (*FileInfo, error)

	// Open returns the stored bytes and metadata for one upload.
	Open(ctx context.Context, id uuid.UUID) (io.ReadCloser, *FileInfo, error)

	// List returns metadata for every archived upload.
	List(ctx context.Context) ([]*FileInfo, error)

	// Remove deletes one archived upload and its metadata.
	Remove(ctx context.Context, id uuid.UUID) error
}
