package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/newthinker/tradejournal/internal/api/response"
	"github.com/newthinker/tradejournal/internal/core"
	"github.com/newthinker/tradejournal/internal/metrics"
	"github.com/newthinker/tradejournal/internal/playbook"
)

// GradeRequest is a setup to grade, with an optional rubric override.
type GradeRequest struct {
	playbook.Input
	Rubric *playbook.Rubric `json:"rubric,omitempty"`
}

// SetupsHandler grades candidate setups against a playbook rubric.
type SetupsHandler struct {
	rubric  playbook.Rubric
	metrics *metrics.Registry
}

// NewSetupsHandler creates a new setups handler. reg may be nil.
func NewSetupsHandler(rubric playbook.Rubric, reg *metrics.Registry) *SetupsHandler {
	return &SetupsHandler{rubric: rubric, metrics: reg}
}

// Grade scores the setup in the request body.
func (h *SetupsHandler) Grade(w http.ResponseWriter, r *http.Request) {
	var req GradeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		response.Fail(w, core.WrapError(core.ErrInvalidRequest, err))
		return
	}

	rubric := h.rubric
	if req.Rubric != nil {
		if err := req.Rubric.Validate(); err != nil {
			response.Fail(w, err)
			return
		}
		rubric = *req.Rubric
	}

	start := time.Now()
	res := playbook.Grade(rubric, req.Input)

	if h.metrics != nil {
		h.metrics.RecordCalculation(metrics.KindGrade, time.Since(start).Seconds())
		h.metrics.RecordGrade(res.Grade)
	}

	response.JSON(w, http.StatusOK, res)
}
