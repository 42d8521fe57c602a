package report

import (
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/newthinker/tradejournal/internal/core"
	"github.com/newthinker/tradejournal/internal/storage/archive"
	"go.uber.org/zap"
)

// archiveRoot is the top-level prefix for stored reports.
const archiveRoot = "reports"

// Archiver stores report snapshots as JSON.
type Archiver struct {
	storage archive.Storage
	logger  *zap.Logger
}

// NewArchiver creates an archiver over storage.
func NewArchiver(storage archive.Storage, logger *zap.Logger) *Archiver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Archiver{storage: storage, logger: logger}
}

// Path returns the archive path of r: reports/YYYY/MM/<id>.json.
func Path(r Report) string {
	t := r.GeneratedAt.UTC()
	return path.Join(archiveRoot, fmt.Sprintf("%04d", t.Year()), fmt.Sprintf("%02d", int(t.Month())), r.ID+".json")
}

// Save writes r and returns its archive path.
func (a *Archiver) Save(ctx context.Context, r Report) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", core.WrapError(core.ErrArchiveFailed, err)
	}

	p := Path(r)
	if err := a.storage.Write(ctx, p, data); err != nil {
		a.logger.Error("failed to archive report", zap.String("id", r.ID), zap.Error(err))
		return "", err
	}

	a.logger.Info("report archived",
		zap.String("id", r.ID),
		zap.String("path", p),
		zap.Float64("score", r.Score.Score),
	)
	return p, nil
}

// Load reads an archived report.
func (a *Archiver) Load(ctx context.Context, p string) (Report, error) {
	data, err := a.storage.Read(ctx, p)
	if err != nil {
		return Report{}, err
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return Report{}, core.WrapError(core.ErrArchiveFailed, fmt.Errorf("decode %s: %w", p, err))
	}
	return r, nil
}

// List returns archived report paths, optionally narrowed to one year
// ("2024") or month ("2024/03").
func (a *Archiver) List(ctx context.Context, period string) ([]string, error) {
	return a.storage.List(ctx, path.Join(archiveRoot, period))
}
