package api

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/family"
	"github.com/matzehuels/lineage/pkg/store"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	switch {
	case code != "":
	case stderrors.Is(err, store.ErrNotLoaded):
		code = errors.ErrCodeStorage
	case stderrors.Is(err, family.ErrRootNotFound):
		code = errors.ErrCodePersonNotFound
	default:
		code = errors.ErrCodeInternal
	}

	status := statusFor(code)
	msg := errors.UserMessage(err)
	if status >= 500 {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		if code == errors.ErrCodeInternal {
			msg = "internal error"
		}
	}
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: msg}})
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidPerson, errors.ErrCodeInvalidGedcom,
		errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodePersonNotFound, errors.ErrCodeFileNotFound,
		errors.ErrCodeSessionNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnauthorized, errors.ErrCodeSessionExpired:
		return http.StatusUnauthorized
	case errors.ErrCodeNotExtracted:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeAIUnavailable, errors.ErrCodeStorage:
		return http.StatusServiceUnavailable
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody reads a JSON request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}
