package handlers

import (
	"html/template"
	"log"
	"net/http"

	"kiddierewards/internal/security"
	"kiddierewards/internal/service"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService          *service.AuthService
	templates            *template.Template
	oauthProviders       map[string]OAuthProvider
	oauthRedirectBaseURL string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, templates *template.Template, oauthProviders map[string]OAuthProvider, oauthRedirectBaseURL string) *AuthHandler {
	return &AuthHandler{
		authService:          authService,
		templates:            templates,
		oauthProviders:       oauthProviders,
		oauthRedirectBaseURL: oauthRedirectBaseURL,
	}
}

// Home redirects to the dashboard or the login page
func (h *AuthHandler) Home(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if _, err := h.authService.ValidateSession(cookie.Value); err == nil {
			http.Redirect(w, r, "/parent/dashboard", http.StatusSeeOther)
			return
		}
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// ShowLogin renders the login page
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if _, err := h.authService.ValidateSession(cookie.Value); err == nil {
			http.Redirect(w, r, "/parent/dashboard", http.StatusSeeOther)
			return
		}
	}

	h.render(w, "login.tmpl", LoginViewData{
		Title:          "Login - KiddieRewards",
		OAuthProviders: h.oauthProviderViews(),
	})
}

// Login handles login form submission
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	email := r.FormValue("email")
	password := r.FormValue("password")

	session, _, err := h.authService.Login(email, password)
	if err != nil {
		h.render(w, "login.tmpl", LoginViewData{
			Title:          "Login - KiddieRewards",
			OAuthProviders: h.oauthProviderViews(),
			Error:          "Invalid email or password",
			Email:          email,
		})
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, SessionCookieName, session.ID, session.ExpiresAt))
	http.Redirect(w, r, "/parent/dashboard", http.StatusSeeOther)
}

// ShowRegister renders the registration page
func (h *AuthHandler) ShowRegister(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if _, err := h.authService.ValidateSession(cookie.Value); err == nil {
			http.Redirect(w, r, "/parent/dashboard", http.StatusSeeOther)
			return
		}
	}

	h.render(w, "register.tmpl", RegisterViewData{
		Title:          "Register - KiddieRewards",
		OAuthProviders: h.oauthProviderViews(),
	})
}

// Register handles registration form submission. The new account lands on
// onboarding to create or join a family.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	email := r.FormValue("email")
	password := r.FormValue("password")
	name := r.FormValue("name")

	if _, err := h.authService.Register(email, password, name); err != nil {
		h.render(w, "register.tmpl", RegisterViewData{
			Title:          "Register - KiddieRewards",
			OAuthProviders: h.oauthProviderViews(),
			Error:          err.Error(),
			Email:          email,
			Name:           name,
		})
		return
	}

	session, _, err := h.authService.Login(email, password)
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, SessionCookieName, session.ID, session.ExpiresAt))
	http.Redirect(w, r, "/family/onboarding", http.StatusSeeOther)
}

// Logout handles logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		_ = h.authService.Logout(cookie.Value)
	}

	http.SetCookie(w, security.CreateDeleteCookie(r, SessionCookieName))
	http.SetCookie(w, security.CreateDeleteCookie(r, PinGateCookieName))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ShowForgotPassword renders the forgot password page
func (h *AuthHandler) ShowForgotPassword(w http.ResponseWriter, r *http.Request) {
	h.render(w, "forgot_password.tmpl", ForgotPasswordViewData{
		Title: "Forgot Password - KiddieRewards",
	})
}

// ForgotPassword handles forgot password form submission. The response is
// identical whether or not the account exists.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	email := r.FormValue("email")
	if err := h.authService.RequestPasswordReset(r.Context(), email); err != nil {
		log.Printf("Password reset request failed for %s: %v", email, err)
	}

	h.render(w, "forgot_password.tmpl", ForgotPasswordViewData{
		Title:   "Forgot Password - KiddieRewards",
		Success: "If an account exists for that address, a reset link is on its way.",
	})
}

// ShowResetPassword renders the reset password page for a token
func (h *AuthHandler) ShowResetPassword(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	valid, err := h.authService.ValidatePasswordResetToken(token)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to validate reset token", err)
		return
	}
	if !valid {
		h.render(w, "reset_password.tmpl", ResetPasswordViewData{
			Title: "Reset Password - KiddieRewards",
			Error: "This reset link is invalid or has expired.",
		})
		return
	}

	h.render(w, "reset_password.tmpl", ResetPasswordViewData{
		Title: "Reset Password - KiddieRewards",
		Token: token,
	})
}

// ResetPassword handles the reset password form submission
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	token := r.FormValue("token")
	password := r.FormValue("password")

	if err := h.authService.ResetPassword(token, password); err != nil {
		h.render(w, "reset_password.tmpl", ResetPasswordViewData{
			Title: "Reset Password - KiddieRewards",
			Token: token,
			Error: err.Error(),
		})
		return
	}

	h.render(w, "login.tmpl", LoginViewData{
		Title:          "Login - KiddieRewards",
		OAuthProviders: h.oauthProviderViews(),
		Success:        "Your password has been reset. You can sign in now.",
	})
}

func (h *AuthHandler) render(w http.ResponseWriter, name string, data interface{}) {
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("Error rendering %s: %v", name, err)
		http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
	}
}
