// Package storage archives export snapshots on the local filesystem or an S3 bucket and
// signs download tokens for them.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/noah-isme/ledgerdesk-api/pkg/config"
)

// ErrObjectNotFound is returned when a snapshot key does not exist.
var ErrObjectNotFound = errors.New("storage: object not found")

// Object describes one archived snapshot.
type Object struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
}

// Archive stores immutable snapshot documents by key.
type Archive interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]Object, error)
	Delete(ctx context.Context, key string) error
}

// NewArchive opens the archive selected by BACKUP_DRIVER.
func NewArchive(ctx context.Context, cfg config.BackupConfig) (Archive, error) {
	switch cfg.Driver {
	case "", config.BackupDriverFilesystem:
		archive, err := NewLocalArchive(cfg.StorageDir)
		if err != nil {
			return nil, err
		}
		return archive, nil
	case config.BackupDriverS3:
		archive, err := NewS3Archive(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		return archive, nil
	default:
		return nil, fmt.Errorf("unsupported backup driver %q", cfg.Driver)
	}
}
