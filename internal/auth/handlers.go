package auth

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"
)

// Handlers exposes the credential and session operations over HTTP.
type Handlers struct {
	Service  *Service
	Sessions *SessionManager
}

// isSecureRequest checks if the request came over HTTPS (directly or via reverse proxy)
func isSecureRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	proto := r.Header.Get("X-Forwarded-Proto")
	return strings.EqualFold(proto, "https")
}

// Signup handles POST /api/auth/signup. Creating the account is a
// factory reset, so every existing session is dropped too.
func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	cred, err := h.Service.Signup(req.Name, req.Email, req.Password)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.Sessions.DeleteAll()

	session, err := h.Sessions.Create(cred)
	if err != nil {
		jsonError(w, "Failed to create session", http.StatusInternalServerError)
		return
	}
	h.setSessionCookie(w, r, session.Token, session.ExpiresAt)

	jsonResponse(w, map[string]interface{}{
		"success": true,
		"token":   session.Token,
		"user":    cred,
	})
}

// Login handles POST /api/auth/login.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	cred, err := h.Service.Login(req.Email, req.Password)
	switch {
	case errors.Is(err, ErrNoAccount):
		jsonError(w, "No account exists. Please sign up first.", http.StatusNotFound)
		return
	case errors.Is(err, ErrInvalidCredentials):
		jsonError(w, "Invalid email or password", http.StatusUnauthorized)
		return
	case err != nil:
		jsonError(w, "Login failed", http.StatusInternalServerError)
		return
	}

	session, err := h.Sessions.Create(cred)
	if err != nil {
		jsonError(w, "Failed to create session", http.StatusInternalServerError)
		return
	}
	h.setSessionCookie(w, r, session.Token, session.ExpiresAt)

	log.Printf("🔓 Login: %s", cred.Email)
	jsonResponse(w, map[string]interface{}{
		"success": true,
		"token":   session.Token,
		"user":    cred,
	})
}

// Logout handles POST /api/auth/logout.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if session := SessionFromRequest(h.Sessions, r); session != nil {
		h.Sessions.Delete(session.Token)
		log.Printf("🔒 Logout: %s", session.Email)
	}

	h.setSessionCookie(w, r, "", time.Unix(0, 0))
	jsonResponse(w, map[string]string{"status": "logged_out"})
}

// Me handles GET /api/auth/me; the projection never includes the hash.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	session := SessionFromContext(r)
	cred, ok := h.Service.CurrentUser()
	if !ok || session == nil {
		jsonError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	jsonResponse(w, cred)
}

// Recover handles POST /api/auth/recover. The token stands in for an
// out-of-band delivery channel; the stored secret is never echoed.
func (h *Handlers) Recover(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	token, err := h.Service.StartRecovery(req.Email)
	switch {
	case errors.Is(err, ErrNoAccount):
		jsonError(w, "No account exists. Please sign up first.", http.StatusNotFound)
		return
	case errors.Is(err, ErrInvalidCredentials):
		jsonError(w, "Invalid email or password", http.StatusUnauthorized)
		return
	case err != nil:
		jsonError(w, "Recovery failed", http.StatusInternalServerError)
		return
	}

	jsonResponse(w, map[string]string{"reset_token": token})
}

// Reset handles POST /api/auth/reset.
func (h *Handlers) Reset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if err := h.Service.ResetPassword(req.Token, req.NewPassword); err != nil {
		if errors.Is(err, ErrInvalidToken) {
			jsonError(w, err.Error(), http.StatusUnauthorized)
			return
		}
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	// A changed password invalidates every open session.
	h.Sessions.DeleteAll()
	jsonResponse(w, map[string]string{"status": "password_reset"})
}

func (h *Handlers) setSessionCookie(w http.ResponseWriter, r *http.Request, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     "session",
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	})
}

func jsonResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("⚠️  Failed to encode JSON response: %v", err)
	}
}

func jsonError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
