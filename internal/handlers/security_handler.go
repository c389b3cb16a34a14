package handlers

import (
	"html/template"
	"log"
	"net/http"
	"strings"
	"time"

	"kiddierewards/internal/security"
	"kiddierewards/internal/service"
)

// SecurityHandler serves the PIN re-verification gate for signed-in parents
type SecurityHandler struct {
	pinAuthService  *service.PinAuthService
	tokens          *security.TokenIssuer
	templates       *template.Template
	csrf            *security.CSRFGenerator
	pinGateDuration time.Duration
}

// NewSecurityHandler creates a new security handler
func NewSecurityHandler(pinAuthService *service.PinAuthService, tokens *security.TokenIssuer, templates *template.Template, csrf *security.CSRFGenerator, pinGateDuration time.Duration) *SecurityHandler {
	return &SecurityHandler{
		pinAuthService:  pinAuthService,
		tokens:          tokens,
		templates:       templates,
		csrf:            csrf,
		pinGateDuration: pinGateDuration,
	}
}

// ShowEnterPin renders the PIN entry page
func (h *SecurityHandler) ShowEnterPin(w http.ResponseWriter, r *http.Request) {
	h.render(w, EnterPinViewData{
		Title:     "Enter PIN - KiddieRewards",
		ReturnURL: sanitizeReturnURL(r.URL.Query().Get("return_url")),
		CSRFToken: csrfTokenFor(h.csrf, r),
	})
}

// EnterPin verifies the PIN and opens the gate for a short while
func (h *SecurityHandler) EnterPin(w http.ResponseWriter, r *http.Request) {
	mc := GetMemberFromContext(r.Context())
	if mc == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	pin := r.FormValue("pin")
	returnURL := sanitizeReturnURL(r.FormValue("return_url"))

	verified, err := h.pinAuthService.Authenticate(mc.MemberID, pin)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "pin verification failed", err)
		return
	}
	if verified == nil {
		h.render(w, EnterPinViewData{
			Title:     "Enter PIN - KiddieRewards",
			ReturnURL: returnURL,
			Error:     "Incorrect PIN",
			CSRFToken: csrfTokenFor(h.csrf, r),
		})
		return
	}

	token, err := h.tokens.Issue(security.TokenPurposePinGate, mc.MemberID, mc.FamilyID, string(mc.Role), h.pinGateDuration)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to issue pin gate token", err)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, PinGateCookieName, token, time.Now().Add(h.pinGateDuration)))
	http.Redirect(w, r, returnURL, http.StatusSeeOther)
}

// sanitizeReturnURL keeps redirects on-site
func sanitizeReturnURL(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") {
		return "/parent/dashboard"
	}
	return raw
}

func (h *SecurityHandler) render(w http.ResponseWriter, data EnterPinViewData) {
	if err := h.templates.ExecuteTemplate(w, "enter_pin.tmpl", data); err != nil {
		log.Printf("Error rendering enter_pin: %v", err)
		http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
	}
}
