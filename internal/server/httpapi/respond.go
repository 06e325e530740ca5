package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/admissions/internal/common"
)

const maxJSONBody = 1 << 20

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

// statusFor maps service errors onto HTTP. Forbidden is reported as 401,
// which is what browser clients of this API expect for any denied call.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrorForbidden):
		return http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, common.ErrorInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, common.ErrorDuplicateEmail):
		return http.StatusBadRequest, "User already exists"
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest, "Invalid request"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// writeError renders err. notFound replaces the generic not-found message
// when the handler knows what was missing.
func writeError(w http.ResponseWriter, err error, notFound string) {
	status, msg := statusFor(err)
	if status == http.StatusNotFound && notFound != "" {
		msg = notFound
	}
	writeMessage(w, status, msg)
}

// decodeJSON reads a single JSON value from the request body. Numbers are
// kept as json.Number so that application fields keep their spelling.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", common.ErrorValidation)
		}
		return fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	return nil
}
