// Copyright (c) 2026 TaskFlow. All rights reserved.

package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taskflowhq/taskflow/internal/platform/apperr"
	"github.com/taskflowhq/taskflow/internal/platform/constants"
	requestutil "github.com/taskflowhq/taskflow/internal/platform/request"
	"github.com/taskflowhq/taskflow/internal/platform/respond"
)

// CookiePolicy describes how the session cookie is attributed.
//
// Cross-site deployments (SPA on one origin, API on another) need
// SameSite=None with Secure; local development runs over plain HTTP and
// falls back to Lax.
type CookiePolicy struct {
	Secure   bool
	SameSite http.SameSite
}

// NewCookiePolicy derives the cookie attributes from the environment mode.
func NewCookiePolicy(production bool) CookiePolicy {
	if production {
		return CookiePolicy{Secure: true, SameSite: http.SameSiteNoneMode}
	}
	return CookiePolicy{Secure: false, SameSite: http.SameSiteLaxMode}
}

// Handler implements authentication-related HTTP endpoints.
//
// # Scope
//
// This handler manages the user lifecycle entry points (Registration, Login,
// Google login, Logout) and the session-backed profile fetch. It owns the
// setting and clearing of the session cookie.
type Handler struct {
	authService *Service
	cookies     CookiePolicy
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service, cookies CookiePolicy) *Handler {
	return &Handler{authService: service, cookies: cookies}
}

// Routes returns a [chi.Router] configured with authentication routes.
//
// # Endpoints
//   - POST /register : Creates a new account (public, no session issued).
//   - POST /login    : Password authentication, sets the session cookie.
//   - POST /google   : Federated authentication, sets the session cookie.
//   - POST /logout   : Clears the session cookie (public, idempotent).
//   - GET  /profile  : Returns the authenticated user (protected).
//
// protect is the session-verifier middleware; only /profile runs behind it.
func (handler *Handler) Routes(protect func(http.Handler) http.Handler) chi.Router {
	router := chi.NewRouter()

	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/google", handler.google)
	router.Post("/logout", handler.logout)
	router.With(protect).Get("/profile", handler.profile)

	return router
}

// registerRequest represents the JSON payload expected for account creation.
type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// registerResponse is the 201 body: the public projection plus a confirmation.
type registerResponse struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Message  string `json:"message"`
}

// register handles POST /api/auth/register requests.
//
// # Returns
//   - HTTP 201 Created with the public profile. No cookie is set.
//   - HTTP 400 Bad Request on missing fields or an already-used email.
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	// ── 1. Payload Extraction ─────────────────────────────────────────────

	var input registerRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 2. Boundary Validation ────────────────────────────────────────────

	// Presence is the only boundary rule: the email is accepted as an opaque
	// string, so addresses existing clients already registered keep working.
	if input.Username == "" || input.Email == "" || input.Password == "" {
		respond.Error(writer, request,
			apperr.ValidationError("Please provide all fields: username, email, password"))
		return
	}

	// ── 3. Application Execution ──────────────────────────────────────────

	user, err := handler.authService.Register(request.Context(), RegisterInput{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 4. Presentation Output ────────────────────────────────────────────

	respond.Created(writer, registerResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Message:  "Account created successfully",
	})
}

// loginRequest represents the JSON payload expected for password authentication.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// login handles POST /api/auth/login requests.
//
// # Returns
//   - HTTP 200 OK with the public profile; the session cookie is set.
//   - HTTP 401 Unauthorized for bad credentials or unverified accounts.
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), LoginInput{
		Email:    input.Email,
		Password: input.Password,
	})

	if err != nil {
		// 401 without distinguishing wrong password from unknown email.
		respond.Error(writer, request, err)
		return
	}

	handler.setSessionCookie(writer, session.Token)
	respond.OK(writer, session.User)
}

// googleRequest carries the identity asserted by the client-side Google exchange.
type googleRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	GoogleID string `json:"googleId"`
}

// google handles POST /api/auth/google requests.
//
// # Returns
//   - HTTP 200 OK with the public profile; the session cookie is set.
//   - HTTP 401 Unauthorized if the resolved account is unverified.
func (handler *Handler) google(writer http.ResponseWriter, request *http.Request) {
	var input googleRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.GoogleLogin(request.Context(), GoogleInput{
		Email:    input.Email,
		Username: input.Username,
		GoogleID: input.GoogleID,
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setSessionCookie(writer, session.Token)
	respond.OK(writer, session.User)
}

// logout handles POST /api/auth/logout requests.
//
// The session is stateless, so logout is purely a cookie operation: the
// replacement cookie is empty and already expired. Repeating the call any
// number of times succeeds.
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	handler.clearSessionCookie(writer)
	respond.Message(writer, "Logged out successfully")
}

// profile handles GET /api/auth/profile requests (protected).
//
// The verifier middleware guarantees an identity is attached; the 404 branch
// guards against misconfigured routing.
func (handler *Handler) profile(writer http.ResponseWriter, request *http.Request) {
	identity := requestutil.Identity(request)
	if identity == nil {
		respond.Error(writer, request, apperr.NotFound("User"))
		return
	}

	respond.OK(writer, identity)
}

// # Session Cookie

// setSessionCookie attaches the signed session token as an HTTP-only cookie
// with a max-age matching the token's 30-day expiry.
func (handler *Handler) setSessionCookie(writer http.ResponseWriter, token string) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(constants.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   handler.cookies.Secure,
		SameSite: handler.cookies.SameSite,
	})
}

// clearSessionCookie replaces the session cookie with an empty value that
// expired in the past, which instructs the browser to drop it.
func (handler *Handler) clearSessionCookie(writer http.ResponseWriter) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   handler.cookies.Secure,
		SameSite: handler.cookies.SameSite,
	})
}
