package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// DiskStorage writes uploads below a local base directory. The router
// serves them back under /uploads/ through a handler that refuses
// directory paths, so the bucket can never be listed.
type DiskStorage struct {
	BaseDir       string
	PublicBaseURL string

	now func() time.Time // test override
}

func NewDiskStorage(baseDir, publicBaseURL string) *DiskStorage {
	return &DiskStorage{
		BaseDir:       baseDir,
		PublicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		now:           time.Now,
	}
}

func (d *DiskStorage) Save(_ context.Context, src io.Reader, filename string, _ int64) (*SavedFile, error) {
	bucket := monthBucket(d.now())
	dir := filepath.Join(d.BaseDir, filepath.FromSlash(bucket))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}

	name := uniqueName(filename)
	dstPath := filepath.Join(dir, name)

	// O_EXCL guards the uuid prefix against the unthinkable collision.
	dst, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dstPath)
		return nil, fmt.Errorf("write upload file: %w", err)
	}

	return &SavedFile{
		Path:  dstPath,
		URL:   d.PublicBaseURL + "/uploads/" + path.Join(bucket, name),
		Local: true,
	}, nil
}
