package server

import (
	"encoding/json"
	"net/http"

	errs "github.com/matzehuels/sankey/pkg/errors"
)

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorResponse is the standard error envelope.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// writeError writes err with the status its code maps to.
func writeError(w http.ResponseWriter, err error) {
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	writeJSON(w, statusFor(code), errorResponse{
		Error: errs.UserMessage(err),
		Code:  string(code),
	})
}

func statusFor(code errs.Code) int {
	switch code {
	case errs.ErrCodeInvalidInput,
		errs.ErrCodeInvalidReference,
		errs.ErrCodeInvalidValue,
		errs.ErrCodeInvalidSize,
		errs.ErrCodeInvalidOption,
		errs.ErrCodeInvalidFormat,
		errs.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errs.ErrCodeFileNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
