package handlers

import (
	"html/template"
	"log"
	"net/http"

	"kiddierewards/internal/security"
	"kiddierewards/internal/service"
)

// FamilyHandler handles onboarding: creating a family or joining one with an
// invitation code
type FamilyHandler struct {
	familyService *service.FamilyService
	templates     *template.Template
	csrf          *security.CSRFGenerator
}

// NewFamilyHandler creates a new family handler
func NewFamilyHandler(familyService *service.FamilyService, templates *template.Template, csrf *security.CSRFGenerator) *FamilyHandler {
	return &FamilyHandler{
		familyService: familyService,
		templates:     templates,
		csrf:          csrf,
	}
}

// ShowOnboarding renders the create-or-join choice for accounts without a
// family
func (h *FamilyHandler) ShowOnboarding(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	member, err := h.familyService.GetMemberForUser(user.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to load member", err)
		return
	}
	if member != nil {
		http.Redirect(w, r, "/parent/dashboard", http.StatusSeeOther)
		return
	}

	h.render(w, "onboarding.tmpl", OnboardingViewData{
		Title: "Welcome - KiddieRewards",
		Name:  user.Name,
	})
}

// ShowCreateFamily renders the create family form
func (h *FamilyHandler) ShowCreateFamily(w http.ResponseWriter, r *http.Request) {
	h.render(w, "create_family.tmpl", FamilyFormViewData{
		Title:     "Create Family - KiddieRewards",
		CSRFToken: csrfTokenFor(h.csrf, r),
	})
}

// CreateFamily handles the create family form submission
func (h *FamilyHandler) CreateFamily(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	familyName := r.FormValue("family_name")
	displayName := r.FormValue("display_name")
	pin := r.FormValue("pin")

	if _, _, err := h.familyService.CreateFamily(user.ID, familyName, displayName, pin); err != nil {
		h.render(w, "create_family.tmpl", FamilyFormViewData{
			Title:       "Create Family - KiddieRewards",
			Error:       err.Error(),
			FamilyName:  familyName,
			DisplayName: displayName,
			CSRFToken:   csrfTokenFor(h.csrf, r),
		})
		return
	}

	http.Redirect(w, r, "/parent/dashboard", http.StatusSeeOther)
}

// ShowJoinFamily renders the join family form, prefilled from an invitation
// link when present
func (h *FamilyHandler) ShowJoinFamily(w http.ResponseWriter, r *http.Request) {
	h.render(w, "join_family.tmpl", FamilyFormViewData{
		Title:     "Join Family - KiddieRewards",
		Code:      r.URL.Query().Get("code"),
		CSRFToken: csrfTokenFor(h.csrf, r),
	})
}

// JoinFamily handles the join family form submission
func (h *FamilyHandler) JoinFamily(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	code := r.FormValue("code")
	displayName := r.FormValue("display_name")
	pin := r.FormValue("pin")

	if _, err := h.familyService.JoinFamily(user.ID, code, displayName, pin); err != nil {
		h.render(w, "join_family.tmpl", FamilyFormViewData{
			Title:       "Join Family - KiddieRewards",
			Error:       err.Error(),
			Code:        code,
			DisplayName: displayName,
			CSRFToken:   csrfTokenFor(h.csrf, r),
		})
		return
	}

	http.Redirect(w, r, "/parent/dashboard", http.StatusSeeOther)
}

func (h *FamilyHandler) render(w http.ResponseWriter, name string, data interface{}) {
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("Error rendering %s: %v", name, err)
		http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
	}
}
