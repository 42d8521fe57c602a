// internal/storage/archive/interface.go
package archive

import (
	"context"
	"fmt"

	"github.com/newthinker/tradejournal/internal/core"
)

// Storage stores report snapshots. Read of a missing path returns an error
// matching fs.ErrNotExist.
type Storage interface {
	Write(ctx context.Context, path string, data []byte) error
	Read(ctx context.Context, path string) ([]byte, error)
	// List returns paths under prefix, relative to the storage root.
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) (bool, error)
}

// Backends.
const (
	BackendLocal = "localfs"
	BackendS3    = "s3"
)

// Config selects and configures a backend.
type Config struct {
	Backend string
	Path    string // local root directory
	S3      S3Config
}

// New opens the configured backend.
func New(cfg Config) (Storage, error) {
	switch cfg.Backend {
	case "", BackendLocal:
		if cfg.Path == "" {
			return nil, core.WrapError(core.ErrConfigMissing, fmt.Errorf("archive path is required"))
		}
		return NewLocalFS(cfg.Path)
	case BackendS3:
		if cfg.S3.Bucket == "" {
			return nil, core.WrapError(core.ErrConfigMissing, fmt.Errorf("archive s3 bucket is required"))
		}
		return NewS3(cfg.S3)
	}
	return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown archive backend %q", cfg.Backend))
}
