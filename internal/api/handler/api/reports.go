package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"path"
	"time"

	"github.com/newthinker/tradejournal/internal/api/response"
	"github.com/newthinker/tradejournal/internal/core"
	"github.com/newthinker/tradejournal/internal/metrics"
	"github.com/newthinker/tradejournal/internal/report"
	"github.com/newthinker/tradejournal/internal/risk"
	"github.com/newthinker/tradejournal/internal/storage/trade"
)

// ReportRequest is the optional request body for building a report.
type ReportRequest struct {
	Archive bool `json:"archive"`
}

// ReportsHandler builds, archives and retrieves analytics reports.
type ReportsHandler struct {
	journal
	settings  risk.Settings
	minSample int
	archiver  *report.Archiver
	now       func() time.Time
}

// NewReportsHandler creates a new reports handler. archiver and reg may be
// nil; without an archiver reports are built but never stored.
func NewReportsHandler(store trade.Store, account Account, settings risk.Settings, kellyMinSample int, archiver *report.Archiver, reg *metrics.Registry) *ReportsHandler {
	return &ReportsHandler{
		journal:   journal{store: store, account: account, metrics: reg},
		settings:  settings,
		minSample: kellyMinSample,
		archiver:  archiver,
		now:       time.Now,
	}
}

// Create builds a report over the account's trades. With format=text or
// format=yaml the rendered report is returned instead of the JSON envelope.
func (h *ReportsHandler) Create(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var req ReportRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Fail(w, core.WrapError(core.ErrInvalidRequest, err))
		return
	}

	format := q.Get("format")
	switch format {
	case "", report.FormatJSON, report.FormatText, report.FormatYAML:
	default:
		response.Fail(w, core.WrapError(core.ErrInvalidRequest, fmt.Errorf("unknown report format %q", format)))
		return
	}

	balance, err := h.balance(q)
	if err != nil {
		response.Fail(w, err)
		return
	}
	trades, err := h.trades(r.Context(), q)
	if err != nil {
		response.Fail(w, err)
		return
	}

	start := time.Now()
	rep := report.Build(trades, report.Options{
		Account:         h.account.ID,
		StartingBalance: balance,
		Settings:        h.settings,
		KellyMinSample:  h.minSample,
		Now:             h.now().UTC(),
	})
	h.observe(metrics.KindReport, start)

	var archived string
	if req.Archive {
		if h.archiver == nil {
			response.Error(w, http.StatusServiceUnavailable,
				&core.Error{Code: "ARCHIVE_DISABLED", Message: "report archive is not configured"})
			return
		}
		if archived, err = h.archiver.Save(r.Context(), rep); err != nil {
			response.Fail(w, err)
			return
		}
	}

	switch format {
	case report.FormatText, report.FormatYAML:
		contentType := "text/plain; charset=utf-8"
		if format == report.FormatYAML {
			contentType = "application/yaml"
		}
		w.Header().Set("Content-Type", contentType)
		if archived != "" {
			w.Header().Set("Location", "/api/v1/reports/"+archived)
		}
		w.WriteHeader(http.StatusCreated)
		report.Render(w, rep, format)
		return
	}

	data := map[string]any{"report": rep}
	if archived != "" {
		data["archive_path"] = archived
	}
	response.JSON(w, http.StatusCreated, data)
}

// List returns archived report paths, optionally narrowed by period
// ("2024" or "2024/03").
func (h *ReportsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.archiver == nil {
		response.JSON(w, http.StatusOK, map[string]any{"reports": []string{}, "count": 0})
		return
	}

	period := path.Clean("/" + r.URL.Query().Get("period"))[1:]
	paths, err := h.archiver.List(r.Context(), period)
	if err != nil {
		response.Fail(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"reports": paths,
		"count":   len(paths),
	})
}

// Get returns one archived report by its archive path.
func (h *ReportsHandler) Get(w http.ResponseWriter, r *http.Request, p string) {
	if h.archiver == nil {
		response.Error(w, http.StatusNotFound, core.WrapError(core.ErrArchiveFailed, fs.ErrNotExist))
		return
	}

	rep, err := h.archiver.Load(r.Context(), p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			response.Error(w, http.StatusNotFound, err)
			return
		}
		response.Fail(w, err)
		return
	}

	response.JSON(w, http.StatusOK, rep)
}
