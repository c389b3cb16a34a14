package handlers

import (
	"html/template"
	"log"
	"net/http"
	"strconv"

	"kiddierewards/internal/credentials"
	"kiddierewards/internal/security"
	"kiddierewards/internal/service"
	"kiddierewards/internal/validation"
)

// MembersHandler manages child profiles: listing, creating, editing,
// activating and PIN regeneration
type MembersHandler struct {
	familyService *service.FamilyService
	templates     *template.Template
	csrf          *security.CSRFGenerator
}

// NewMembersHandler creates a new members handler
func NewMembersHandler(familyService *service.FamilyService, templates *template.Template, csrf *security.CSRFGenerator) *MembersHandler {
	return &MembersHandler{
		familyService: familyService,
		templates:     templates,
		csrf:          csrf,
	}
}

// ListChildren renders the children management page
func (h *MembersHandler) ListChildren(w http.ResponseWriter, r *http.Request) {
	h.renderChildren(w, r, "", "", "")
}

// CreateChild handles the add-child form submission. When no PIN is given a
// random one is generated and shown to the parent once.
func (h *MembersHandler) CreateChild(w http.ResponseWriter, r *http.Request) {
	mc := GetMemberFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	displayName := r.FormValue("display_name")
	avatarKey := r.FormValue("avatar")
	pin := r.FormValue("pin")

	member, generatedPin, err := h.familyService.CreateChild(mc, displayName, avatarKey, pin)
	if err != nil {
		if validation.IsValidationError(err) {
			h.renderChildren(w, r, err.Error(), "", "")
			return
		}
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to create child", err)
		return
	}

	h.renderChildren(w, r, "", generatedPin, member.DisplayName)
}

// UpdateChild handles the edit-child form submission
func (h *MembersHandler) UpdateChild(w http.ResponseWriter, r *http.Request) {
	mc := GetMemberFromContext(r.Context())

	childID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	_, err = h.familyService.UpdateChild(mc, childID, r.FormValue("display_name"), r.FormValue("avatar"))
	if err != nil {
		if err == service.ErrChildNotFound {
			respondWithError(w, http.StatusNotFound, "Child not found", "", nil)
			return
		}
		if validation.IsValidationError(err) {
			h.renderChildren(w, r, err.Error(), "", "")
			return
		}
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to update child", err)
		return
	}

	http.Redirect(w, r, "/parent/children", http.StatusSeeOther)
}

// ToggleChild flips a child's active flag
func (h *MembersHandler) ToggleChild(w http.ResponseWriter, r *http.Request) {
	mc := GetMemberFromContext(r.Context())

	childID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}
	active := r.FormValue("active") != ""

	if err := h.familyService.SetChildActive(mc, childID, active); err != nil {
		if err == service.ErrChildNotFound {
			respondWithError(w, http.StatusNotFound, "Child not found", "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to toggle child", err)
		return
	}

	http.Redirect(w, r, "/parent/children", http.StatusSeeOther)
}

// RegeneratePin replaces a child's PIN and shows the new one to the parent
// once
func (h *MembersHandler) RegeneratePin(w http.ResponseWriter, r *http.Request) {
	mc := GetMemberFromContext(r.Context())

	childID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	pin, err := h.familyService.RegeneratePin(mc, childID)
	if err != nil {
		if err == service.ErrChildNotFound {
			respondWithError(w, http.StatusNotFound, "Child not found", "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to regenerate pin", err)
		return
	}

	childName := ""
	if children, listErr := h.familyService.ListChildren(mc); listErr == nil {
		for _, c := range children {
			if c.ID == childID {
				childName = c.DisplayName
				break
			}
		}
	}

	h.renderChildren(w, r, "", pin, childName)
}

func (h *MembersHandler) renderChildren(w http.ResponseWriter, r *http.Request, errMsg, newPin, newPinChildName string) {
	mc := GetMemberFromContext(r.Context())

	children, err := h.familyService.ListChildren(mc)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to list children", err)
		return
	}

	data := ChildrenViewData{
		Title:           "Children - KiddieRewards",
		Member:          mc,
		Children:        children,
		Avatars:         credentials.AvatarKeys,
		CSRFToken:       csrfTokenFor(h.csrf, r),
		Error:           errMsg,
		NewPin:          newPin,
		NewPinChildName: newPinChildName,
	}

	if err := h.templates.ExecuteTemplate(w, "children.tmpl", data); err != nil {
		log.Printf("Error rendering children: %v", err)
		http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
	}
}
