// Package storage persists validated uploads. Files land in a per-month
// bucket (tranas-forms-uploads/YYYY/MM) under a collision-safe name, either
// on local disk or in S3-compatible object storage.
package storage

import (
	"context"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/tranaskommun/tranas-forms/internal/utils"
)

// BucketPrefix is the root all uploads are stored under.
const BucketPrefix = "tranas-forms-uploads"

// SavedFile points at one persisted upload. Local is set when Path is a
// file on this machine's disk, which is what decides whether the file can
// ride along as a mail attachment.
type SavedFile struct {
	Path  string
	URL   string
	Local bool
}

// Storage saves one upload stream and reports where it ended up.
type Storage interface {
	Save(ctx context.Context, src io.Reader, filename string, size int64) (*SavedFile, error)
}

// monthBucket returns the relative bucket for now, e.g.
// "tranas-forms-uploads/2026/08".
func monthBucket(now time.Time) string {
	return path.Join(BucketPrefix, now.Format("2006"), now.Format("01"))
}

// uniqueName prefixes the sanitized client name with a UUID so concurrent
// uploads of the same file never collide.
func uniqueName(filename string) string {
	return uuid.New().String() + "_" + utils.SanitizeFileName(filename)
}
