package restserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/chrissnell/automorph/internal/morpho"
	"github.com/chrissnell/automorph/internal/profile"
	"github.com/chrissnell/automorph/internal/storage"
	"github.com/chrissnell/automorph/internal/storage/sqlite"
	"github.com/chrissnell/automorph/pkg/responseformat"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// maxBodyBytes caps the size of an analyze request
const maxBodyBytes = 32 << 20

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
	}
}

// Healthz reports that the server is up along with the outcome of each
// sink's last write. A failing sink answers 503.
func (h *Handlers) Healthz(w http.ResponseWriter, req *http.Request) {
	resp := HealthReading{Status: "ok", Sinks: []storage.SinkHealth{}}
	status := http.StatusOK

	if hm := h.controller.Health; hm != nil {
		resp.Sinks = hm.GetAllHealth()
		if !hm.IsHealthy() {
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
	}

	h.formatter.WriteStatus(w, req, status, resp, nil)
}

// Analyze runs the morphometric pipeline on the profile in the request body
func (h *Handlers) Analyze(w http.ResponseWriter, req *http.Request) {
	var body AnalyzeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	params := body.Params.apply(h.controller.Params)
	opts := body.Options.apply(h.controller.Options)
	if opts.GridStep <= 0 {
		h.formatter.WriteError(w, req, http.StatusBadRequest, "options.grid_step must be positive")
		return
	}

	p, err := profile.Normalize(body.rawProfile(), opts)
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusUnprocessableEntity, err.Error())
		return
	}

	rec, err := morpho.Analyze(p, params)
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := h.formatter.WriteResponse(w, req, transformRecord(p, rec, params, opts), nil); err != nil {
		h.controller.logger.Errorf("error encoding analysis response: %v", err)
	}
}

// ListRuns returns the stored runs, newest first
func (h *Handlers) ListRuns(w http.ResponseWriter, req *http.Request) {
	if h.controller.Store == nil {
		h.formatter.WriteError(w, req, http.StatusNotFound, "run storage not enabled")
		return
	}

	runs, err := h.controller.Store.ListRuns(req.Context())
	if err != nil {
		h.controller.logger.Errorf("error listing runs: %v", err)
		h.formatter.WriteError(w, req, http.StatusInternalServerError, "could not list runs")
		return
	}
	if runs == nil {
		runs = []sqlite.RunSummary{}
	}

	h.formatter.WriteResponse(w, req, runs, nil)
}

// GetRun returns one stored run and its rows
func (h *Handlers) GetRun(w http.ResponseWriter, req *http.Request) {
	if h.controller.Store == nil {
		h.formatter.WriteError(w, req, http.StatusNotFound, "run storage not enabled")
		return
	}

	id, err := uuid.Parse(mux.Vars(req)["id"])
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusNotFound, "run not found")
		return
	}

	run, rows, err := h.controller.Store.GetRun(req.Context(), id)
	if errors.Is(err, sqlite.ErrRunNotFound) {
		h.formatter.WriteError(w, req, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		h.controller.logger.Errorf("error reading run %s: %v", id, err)
		h.formatter.WriteError(w, req, http.StatusInternalServerError, "could not read run")
		return
	}

	reading := RunReading{Run: run, Rows: make([]map[string]any, len(rows))}
	for i, r := range rows {
		reading.Rows[i] = transformRow(r)
	}

	h.formatter.WriteResponse(w, req, reading, nil)
}
