package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/orgsight/orgsight/pkg/serrors"
)

// ErrorEnvelope standardizes JSON error responses for API namespaces.
type ErrorEnvelope struct {
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Meta    map[string]string `json:"meta,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	if w == nil {
		return nil
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, code, message string, meta map[string]string) error {
	return WriteJSON(w, status, &ErrorEnvelope{
		Code:    code,
		Message: message,
		Meta:    meta,
	})
}

// statusByCode maps service error codes to HTTP statuses. Codes not listed
// surface as 500.
var statusByCode = map[string]int{
	"AUTHZ_FORBIDDEN":              http.StatusForbidden,
	"ACCESS_OVERRIDE_FORBIDDEN":    http.StatusForbidden,
	"ACCESS_UNKNOWN_PRINCIPAL":     http.StatusForbidden,
	"ACCESS_REGION_NOT_CONFIGURED": http.StatusConflict,
	"ACCESS_INVALID_ROLE_LEVEL":    http.StatusBadRequest,
	"ACCESS_INVALID_SCOPE_VALUE":   http.StatusBadRequest,
	"ACCESS_UNKNOWN_TARGET":        http.StatusBadRequest,
	"ACCESS_REQUEST_INVALIDATED":   http.StatusConflict,
	"SESSION_NOT_FOUND":            http.StatusUnauthorized,
	"SESSION_EXPIRED":              http.StatusUnauthorized,
	"DIRECTORY_NO_SNAPSHOT":        http.StatusServiceUnavailable,
}

// WriteServiceError renders a coded service error, falling back to a generic
// 500 envelope for anything unrecognized.
func WriteServiceError(w http.ResponseWriter, err error) error {
	var base *serrors.BaseError
	if serrors.AsBase(err, &base) {
		status, ok := statusByCode[base.Code]
		if !ok {
			status = http.StatusInternalServerError
		}
		return WriteError(w, status, base.Code, base.Message, nil)
	}
	return WriteError(w, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "internal server error", nil)
}
