package httpapi

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gatehouse-auth/gatehouse/internal/common"
	"github.com/gatehouse-auth/gatehouse/internal/server/models"
	"github.com/gatehouse-auth/gatehouse/internal/server/services"
)

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type userResponse struct {
	UserID   string   `json:"user_id"`
	Username string   `json:"username"`
	FullName string   `json:"full_name"`
	Scopes   []string `json:"scopes,omitempty"`
}

func userResponseOf(view *services.UserView) userResponse {
	return userResponse{
		UserID:   view.UserID,
		Username: view.Username,
		FullName: view.FullName,
		Scopes:   view.Scopes.Slice(),
	}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return
	}

	user, err := h.users.Register(r.Context(), req.Username, req.Password, req.FullName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, userResponse{
		UserID:   user.UserID,
		Username: req.Username,
		FullName: user.FullName,
	})
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	view, err := h.users.GetUser(r.Context(), actorFrom(r), chi.URLParam(r, "user_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponseOf(view))
}

func (h *Handler) GetUserByUsername(w http.ResponseWriter, r *http.Request) {
	view, err := h.users.GetUserByUsername(r.Context(), actorFrom(r), chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponseOf(view))
}

type changeUsernameRequest struct {
	NewUsername string `json:"new_username"`
}

func (h *Handler) ChangeUsername(w http.ResponseWriter, r *http.Request) {
	var req changeUsernameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.NewUsername == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return
	}

	err := h.users.ChangeUsername(r.Context(), actorFrom(r), chi.URLParam(r, "username"), req.NewUsername)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type changePasswordRequest struct {
	NewPassword string `json:"new_password"`
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return
	}

	err := h.users.ChangePassword(r.Context(), actorFrom(r), chi.URLParam(r, "username"), req.NewPassword)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type updateScopesRequest struct {
	Scopes []string `json:"scopes"`
}

func (h *Handler) UpdateScopes(w http.ResponseWriter, r *http.Request) {
	var req updateScopesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return
	}

	err := h.users.UpdateScopes(r.Context(), actorFrom(r), chi.URLParam(r, "username"),
		models.NewScopeSet(req.Scopes...))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type sessionResponse struct {
	ClientID   string    `json:"client_id"`
	DeviceName string    `json:"device_name"`
	Expiry     time.Time `json:"expiry"`
	TokenKey   string    `json:"token_key"`
}

func (h *Handler) Sessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.users.Sessions(r.Context(), actorFrom(r), chi.URLParam(r, "user_id"))
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]sessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, sessionResponse{
			ClientID:   s.ClientID,
			DeviceName: s.DeviceName,
			Expiry:     s.Expiry,
			TokenKey:   base64.RawURLEncoding.EncodeToString(s.TokenKey),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) RevokeSession(w http.ResponseWriter, r *http.Request) {
	tokenKey, err := base64.RawURLEncoding.DecodeString(chi.URLParam(r, "token_key"))
	if err != nil {
		writeError(w, common.ErrNotFound)
		return
	}

	err = h.users.RevokeSession(r.Context(), actorFrom(r),
		chi.URLParam(r, "user_id"), chi.URLParam(r, "client_id"), tokenKey)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
