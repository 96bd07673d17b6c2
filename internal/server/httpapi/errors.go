package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gatehouse-auth/gatehouse/internal/common"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeTokenError maps grant failures onto the token endpoint's error
// codes. Every credential failure collapses into invalid_grant so the
// response never discloses which check failed.
func writeTokenError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrInvalidGrant):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_grant"})
	case errors.Is(err, common.ErrUnsupportedGrant):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unsupported_grant_type"})
	case errors.Is(err, common.ErrGrantNotAllowed):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unauthorized_client"})
	case errors.Is(err, common.ErrScopeDenied):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_scope"})
	case errors.Is(err, common.ErrLoopbackRestricted):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "access_denied"})
	case errors.Is(err, common.ErrStoreUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "temporarily_unavailable"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "server_error"})
	}
}

// writeError maps management operation failures onto plain HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, common.ErrUsernameConflict),
		errors.Is(err, common.ErrConflict):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "conflict"})
	case errors.Is(err, common.ErrPermissionDenied):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "permission denied"})
	case errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrTokenInvalid),
		errors.Is(err, common.ErrTokenMalformed):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
	case errors.Is(err, common.ErrInvalidCredentials):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
	case errors.Is(err, common.ErrStoreUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "temporarily unavailable"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
