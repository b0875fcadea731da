package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"actionspec-hq/sentinel/pkg/engine"
	"actionspec-hq/sentinel/pkg/history"
	"actionspec-hq/sentinel/pkg/spec/document"
)

// ValidateHandler answers POST /v1/validate. The verdict travels in the
// body: an invalid spec is still a 200, only a broken request or an
// internal schema fault changes the status code.
type ValidateHandler struct {
	engine   *engine.Engine
	recorder *history.Recorder
	logger   *slog.Logger
}

// NewValidateHandler creates the validation endpoint handler. recorder
// may be nil when history is disabled.
func NewValidateHandler(eng *engine.Engine, recorder *history.Recorder, logger *slog.Logger) *ValidateHandler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ValidateHandler{engine: eng, recorder: recorder, logger: logger}
}

// ServeHTTP implements http.Handler.
func (h *ValidateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed, use POST"})
		return
	}

	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if req.Spec == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "spec is required"})
		return
	}

	result, err := h.engine.ParseAndValidate([]byte(req.Spec), "")
	if err != nil {
		h.logger.ErrorContext(r.Context(), "schema definition fault", "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal schema definition error"})
		return
	}

	h.recordRun(result)
	writeJSON(w, http.StatusOK, result)
}

func (h *ValidateHandler) recordRun(result engine.Result) {
	if h.recorder == nil {
		return
	}

	name, kind := specIdentity(result.Document)
	summary := "document is valid"
	if !result.Valid {
		summary = fmt.Sprintf("%d validation error(s)", len(result.Errors))
	}

	h.recorder.RecordRun(&history.Record{
		Kind:       history.KindValidate,
		SpecName:   name,
		SpecKind:   kind,
		Valid:      result.Valid,
		ErrorCount: len(result.Errors),
		Summary:    summary,
	})
}

// DiffHandler answers POST /v1/diff. Both sides are validated before
// analysis; an invalid side is a 422 with the validation messages.
type DiffHandler struct {
	engine   *engine.Engine
	recorder *history.Recorder
	logger   *slog.Logger
}

// NewDiffHandler creates the change-analysis endpoint handler. recorder
// may be nil when history is disabled.
func NewDiffHandler(eng *engine.Engine, recorder *history.Recorder, logger *slog.Logger) *DiffHandler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &DiffHandler{engine: eng, recorder: recorder, logger: logger}
}

// ServeHTTP implements http.Handler.
func (h *DiffHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed, use POST"})
		return
	}

	var req DiffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if req.NewSpec == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "new_spec is required"})
		return
	}

	newResult, err := h.engine.ParseAndValidate([]byte(req.NewSpec), "")
	if err != nil {
		h.logger.ErrorContext(r.Context(), "schema definition fault", "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal schema definition error"})
		return
	}
	if !newResult.Valid {
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:  "new spec failed validation",
			Errors: newResult.Errors,
		})
		return
	}

	var oldDoc document.Document
	if req.OldSpec != "" {
		oldResult, err := h.engine.ParseAndValidate([]byte(req.OldSpec), "")
		if err != nil {
			h.logger.ErrorContext(r.Context(), "schema definition fault", "error", err)
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal schema definition error"})
			return
		}
		if !oldResult.Valid {
			writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
				Error:  "old spec failed validation",
				Errors: oldResult.Errors,
			})
			return
		}
		oldDoc = oldResult.Document
	}

	report := h.engine.Diff(oldDoc, newResult.Document)

	if h.recorder != nil {
		name, kind := specIdentity(newResult.Document)
		h.recorder.RecordRun(&history.Record{
			Kind:         history.KindDiff,
			SpecName:     name,
			SpecKind:     kind,
			Valid:        !report.HasBlockingErrors,
			ErrorCount:   len(report.Errors),
			WarningCount: len(report.Warnings),
			InfoCount:    len(report.Info),
			Summary:      report.Summary,
		})
	}

	writeJSON(w, http.StatusOK, report)
}

// HealthHandler answers GET /healthz for liveness probes.
type HealthHandler struct{}

// NewHealthHandler creates the liveness handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// ServeHTTP implements http.Handler.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed, use GET"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDecodeError(w http.ResponseWriter, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{
			Error: fmt.Sprintf("request body exceeds %d bytes", maxBytesErr.Limit),
		})
		return
	}
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "malformed request body"})
}

func specIdentity(doc document.Document) (name, kind string) {
	name, kind = "unnamed", "unknown"
	if doc == nil {
		return name, kind
	}
	if n := doc.Name(); n != "" {
		name = n
	}
	if k := doc.Kind(); k != "" {
		kind = k
	}
	return name, kind
}
