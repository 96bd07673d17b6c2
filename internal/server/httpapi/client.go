package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gatehouse-auth/gatehouse/internal/server/models"
	"github.com/gatehouse-auth/gatehouse/internal/server/services"
)

type createClientRequest struct {
	ClientName   string   `json:"client_name"`
	Confidential bool     `json:"confidential"`
	Scopes       []string `json:"scopes"`
	Grants       []string `json:"grants"`
}

type updateClientRequest struct {
	ClientName string   `json:"client_name"`
	Scopes     []string `json:"scopes"`
	Grants     []string `json:"grants"`
}

type clientResponse struct {
	ClientID     string   `json:"client_id"`
	ClientName   string   `json:"client_name"`
	Confidential bool     `json:"confidential"`
	Scopes       []string `json:"scopes"`
	Grants       []string `json:"grants"`
	Loopback     bool     `json:"loopback"`

	// Secret is populated only in the create response. It is not stored
	// in recoverable form and cannot be retrieved again.
	Secret string `json:"secret,omitempty"`
}

func clientResponseOf(view *services.ClientView) clientResponse {
	return clientResponse{
		ClientID:     view.ClientID,
		ClientName:   view.ClientName,
		Confidential: view.Confidential,
		Scopes:       view.Scopes,
		Grants:       view.Grants,
		Loopback:     view.Loopback,
	}
}

func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req createClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return
	}
	grants, err := models.ParseGrantSet(req.Grants)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return
	}

	view, secret, err := h.clients.Create(r.Context(), actorFrom(r),
		req.ClientName, req.Confidential,
		models.NewScopeSet(req.Scopes...), grants)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := clientResponseOf(view)
	resp.Secret = secret
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	view, err := h.clients.Get(r.Context(), actorFrom(r), chi.URLParam(r, "client_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, clientResponseOf(view))
}

func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	var req updateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return
	}
	grants, err := models.ParseGrantSet(req.Grants)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return
	}

	view, err := h.clients.Update(r.Context(), actorFrom(r),
		chi.URLParam(r, "client_id"), req.ClientName,
		models.NewScopeSet(req.Scopes...), grants)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, clientResponseOf(view))
}
