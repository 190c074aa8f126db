package http

import (
	"net/http"

	"masarify/internal/auth"
)

type credentialsPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
}

type otpPayload struct {
	Email string `json:"email"`
	Code  string `json:"code,omitempty"`
}

type sessionResponse struct {
	User      auth.User `json:"user"`
	ExpiresAt string    `json:"expires_at,omitempty"`
	// Confirmation pending: the account exists but needs OTP verification.
	NeedsVerification bool `json:"needs_verification,omitempty"`
}

func (s *Server) authAvailable(w http.ResponseWriter) bool {
	if s.authc == nil {
		respondError(w, http.StatusServiceUnavailable, "Authentication is not configured")
		return false
	}
	return true
}

func sessionBody(session *auth.Session) sessionResponse {
	resp := sessionResponse{User: session.User}
	if !session.ExpiresAt.IsZero() {
		resp.ExpiresAt = session.ExpiresAt.UTC().Format("2006-01-02T15:04:05Z")
	}
	return resp
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	session := s.session.Current()
	if session == nil {
		respondError(w, http.StatusUnauthorized, "Not signed in")
		return
	}
	respondJSON(w, http.StatusOK, sessionBody(session))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.authAvailable(w) {
		return
	}

	var payload credentialsPayload
	if !decodeBody(w, r, &payload) {
		return
	}
	if payload.Email == "" || payload.Password == "" {
		respondError(w, http.StatusUnprocessableEntity, "email and password are required")
		return
	}

	session, err := s.authc.SignIn(r.Context(), payload.Email, payload.Password)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, sessionBody(session))
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if !s.authAvailable(w) {
		return
	}

	var payload credentialsPayload
	if !decodeBody(w, r, &payload) {
		return
	}
	if payload.Email == "" || payload.Password == "" {
		respondError(w, http.StatusUnprocessableEntity, "email and password are required")
		return
	}

	session, err := s.authc.SignUp(r.Context(), payload.Email, payload.Password, payload.FullName)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	// No session back from the provider means the address still needs
	// to be confirmed with the emailed code.
	if session == nil {
		respondJSON(w, http.StatusAccepted, sessionResponse{NeedsVerification: true})
		return
	}

	respondJSON(w, http.StatusCreated, sessionBody(session))
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	if !s.authAvailable(w) {
		return
	}

	var payload otpPayload
	if !decodeBody(w, r, &payload) {
		return
	}
	if payload.Email == "" || payload.Code == "" {
		respondError(w, http.StatusUnprocessableEntity, "email and code are required")
		return
	}

	session, err := s.authc.VerifyOTP(r.Context(), payload.Email, payload.Code)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, sessionBody(session))
}

func (s *Server) handleResend(w http.ResponseWriter, r *http.Request) {
	if !s.authAvailable(w) {
		return
	}

	var payload otpPayload
	if !decodeBody(w, r, &payload) {
		return
	}
	if payload.Email == "" {
		respondError(w, http.StatusUnprocessableEntity, "email is required")
		return
	}

	if err := s.authc.ResendOTP(r.Context(), payload.Email); err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if !s.authAvailable(w) {
		return
	}

	// The local session is cleared even when the provider call fails.
	if err := s.authc.SignOut(r.Context()); err != nil {
		s.logger.WarnContext(r.Context(), "Provider sign-out failed", "error", err)
	}

	w.WriteHeader(http.StatusNoContent)
}
