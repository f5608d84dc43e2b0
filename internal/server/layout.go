package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	errs "github.com/matzehuels/sankey/pkg/errors"
	pkgio "github.com/matzehuels/sankey/pkg/io"
	"github.com/matzehuels/sankey/pkg/pipeline"
)

// layoutRequest holds the parts of the request body that are not the graph
// itself; nodes and links are decoded by pkg/io.
type layoutRequest struct {
	Options json.RawMessage `json:"options"`
}

type layoutResponse struct {
	Layout    json.RawMessage `json:"layout"`
	CacheHit  bool            `json:"cache_hit"`
	InputHash string          `json:"input_hash"`
	RequestID string          `json:"request_id"`
}

// POST /v1/layout
func (s *Server) layout(w http.ResponseWriter, r *http.Request) {
	defaults, maxBody := s.settings()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{
				Error: "request body too large",
				Code:  "BODY_TOO_LARGE",
			})
			return
		}
		writeError(w, errs.Wrap(errs.ErrCodeInvalidInput, err, "read request body"))
		return
	}

	in, err := pipeline.DecodeInput(bytes.NewReader(body), pkgio.FormatJSON)
	if err != nil {
		writeError(w, err)
		return
	}

	var req layoutRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, errs.Wrap(errs.ErrCodeInvalidFormat, err, "cannot decode request"))
		return
	}
	opts := defaults
	if len(req.Options) > 0 {
		if err := json.Unmarshal(req.Options, &opts); err != nil {
			writeError(w, errs.Wrap(errs.ErrCodeInvalidOption, err, "cannot decode options"))
			return
		}
	}
	opts.Logger = s.logger.With("request_id", RequestID(r.Context()))

	result, err := s.runner.Execute(r.Context(), in, opts)
	if err != nil {
		writeError(w, err)
		return
	}

	encoded, err := pkgio.MarshalLayout(result.Layout, pkgio.FormatJSON, pkgio.WithPaths(opts.Curvature))
	if err != nil {
		writeError(w, pipeline.Classify(err))
		return
	}
	writeJSON(w, http.StatusOK, layoutResponse{
		Layout:    encoded,
		CacheHit:  result.CacheHit,
		InputHash: result.InputHash,
		RequestID: RequestID(r.Context()),
	})
}
