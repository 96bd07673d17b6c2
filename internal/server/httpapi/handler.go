// Package httpapi exposes the grant flows and management operations over
// HTTP. The token endpoint speaks form encoding; everything else is JSON.
package httpapi

import (
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gatehouse-auth/gatehouse/internal/logging"
	"github.com/gatehouse-auth/gatehouse/internal/server/auth"
	"github.com/gatehouse-auth/gatehouse/internal/server/services"
)

const requestTimeout = 30 * time.Second

type Handler struct {
	grants  *services.GrantService
	users   *services.UserService
	clients *services.ClientService
	signer  *auth.Signer
	logger  logging.Logger
}

func NewHandler(grants *services.GrantService, users *services.UserService, clients *services.ClientService, signer *auth.Signer, logger logging.Logger) *Handler {
	return &Handler{
		grants:  grants,
		users:   users,
		clients: clients,
		signer:  signer,
		logger:  logger,
	}
}

// Router assembles the full route tree.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(h.logRequests)

	r.Get("/.well-known/jwks.json", h.JWKS)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/token", h.Token)
		r.Post("/register", h.Register)

		r.Group(func(r chi.Router) {
			r.Use(h.requireBearer)

			r.Get("/user/{user_id}", h.GetUser)
			r.Get("/user/{user_id}/sessions", h.Sessions)
			r.Delete("/user/{user_id}/sessions/{client_id}/{token_key}", h.RevokeSession)

			r.Get("/username/{username}", h.GetUserByUsername)
			r.Patch("/username/{username}", h.ChangeUsername)
			r.Patch("/username/{username}/password", h.ChangePassword)
			r.Patch("/username/{username}/scopes", h.UpdateScopes)

			r.Post("/client", h.CreateClient)
			r.Get("/client/{client_id}", h.GetClient)
			r.Patch("/client/{client_id}", h.UpdateClient)
		})
	})

	return r
}

func (h *Handler) JWKS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(h.signer.JWKS())
}

// origin extracts the caller's IP from the transport address. Proxy headers
// are deliberately ignored; the loopback restriction would be meaningless
// if a remote caller could assert its own origin.
func origin(r *http.Request) net.IP {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return net.ParseIP(host)
}
