// Package archive stores generated report artifacts. Reports are write-once
// documents keyed by run date, so the interface is a flat blob store: the
// local backend is for development and single-host runs, the S3 backend for
// anything that should survive the host.
package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/metiseon/metiseon/internal/config"
)

// Storage is a flat key/value blob store for report artifacts.
type Storage interface {
	Write(ctx context.Context, key string, data []byte) error
	Read(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// New builds the backend named by the config.
func New(cfg config.ArchiveConfig) (Storage, error) {
	switch cfg.Type {
	case "", "localfs":
		return NewLocalFS(cfg.Path)
	case "s3":
		return NewS3(cfg.S3)
	default:
		return nil, fmt.Errorf("unknown archive type: %s", cfg.Type)
	}
}

// ReportKey names a report artifact for a run date, e.g.
// "2025/metiseon-2025-06-27.html".
func ReportKey(runDate time.Time) string {
	return fmt.Sprintf("%d/metiseon-%s.html", runDate.Year(), runDate.Format("2006-01-02"))
}
