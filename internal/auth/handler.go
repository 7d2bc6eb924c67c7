package auth

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/galleria/service/internal/middleware"
	"github.com/galleria/service/internal/response"
	"github.com/galleria/service/internal/user"
)

// maxUsernameLen matches the column width of users.username.
const maxUsernameLen = 50

// Handler holds HTTP handlers for auth endpoints.
type Handler struct {
	svc          *Service
	sessionTTL   time.Duration
	secureCookie bool
}

// NewHandler creates a new auth Handler. secureCookie marks the session
// cookie Secure, for production deployments behind TLS.
func NewHandler(svc *Service, sessionTTL time.Duration, secureCookie bool) *Handler {
	return &Handler{svc: svc, sessionTTL: sessionTTL, secureCookie: secureCookie}
}

type credentialsRequest struct {
	Username string `json:"username" example:"alice"`
	Password string `json:"password" example:"hunter22"`
}

// Register godoc
//
//	@Summary		Register account
//	@Description	Create a new account with a username and password. The password is stored as a bcrypt hash.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		credentialsRequest	true	"Credentials"
//	@Success		201		{object}	response.Envelope{data=user.User}
//	@Failure		400		{object}	response.Envelope
//	@Failure		409		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if req.Username == "" || len(req.Username) > maxUsernameLen {
		response.BadRequest(w, "username must be 1-50 characters")
		return
	}

	u, err := h.svc.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateUsername) {
			response.Conflict(w, "username already exists")
			return
		}
		response.InternalError(w)
		return
	}

	response.Created(w, u)
}

// Login godoc
//
//	@Summary		Log in
//	@Description	Verify credentials and start a session. The opaque session token is set as an HttpOnly cookie and also returned for non-browser clients.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		credentialsRequest	true	"Credentials"
//	@Success		200		{object}	response.Envelope
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	token, u, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			response.Unauthorized(w, "invalid credentials")
			return
		}
		response.InternalError(w)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	response.OK(w, map[string]interface{}{
		"token": token,
		"user":  u,
	})
}

// Logout godoc
//
//	@Summary		Log out
//	@Description	Destroy the current session and clear the cookie. Always succeeds, even without an active session.
//	@Tags			auth
//	@Produce		json
//	@Success		200	{object}	response.Envelope
//	@Router			/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	// Logout always succeeds from the client's point of view: the cookie is
	// cleared even when the server-side destroy fails.
	if err := h.svc.Logout(r.Context(), middleware.TokenFromRequest(r)); err != nil {
		log.Printf("auth: destroy session: %v", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	response.OK(w, map[string]bool{"loggedOut": true})
}
