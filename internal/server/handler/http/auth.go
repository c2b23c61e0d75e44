package http

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/atinyakov/medstock/internal/middleware"
)

// LoginForm shows the sign-in page.
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "login", "Sign in", nil)
}

// Login handles the sign-in form. On success the token pair is stored and
// the browser is sent to the dashboard.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.PostFormValue("email"))
	claims, err := h.Auth.Login(r.Context(), email, r.PostFormValue("password"))
	if err != nil {
		h.Log.Info("sign-in rejected", zap.String("email", email), zap.Error(err))
		setFlash(w, flashError, h.message(err))
		http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
		return
	}
	h.done(w, r, "Welcome, "+claims.DisplayName(), "/")
}

// Logout clears the stored session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Auth.Logout(); err != nil {
		h.Log.Error("failed to clear session", zap.Error(err))
	}
	h.done(w, r, "Signed out", middleware.LoginPath)
}
