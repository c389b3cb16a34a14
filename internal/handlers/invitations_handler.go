package handlers

import (
	"html/template"
	"log"
	"net/http"
	"strconv"

	"kiddierewards/internal/security"
	"kiddierewards/internal/service"
	"kiddierewards/internal/validation"
)

// InvitationsHandler manages family join codes for inviting co-parents
type InvitationsHandler struct {
	invitationService *service.InvitationService
	templates         *template.Template
	csrf              *security.CSRFGenerator
}

// NewInvitationsHandler creates a new invitations handler
func NewInvitationsHandler(invitationService *service.InvitationService, templates *template.Template, csrf *security.CSRFGenerator) *InvitationsHandler {
	return &InvitationsHandler{
		invitationService: invitationService,
		templates:         templates,
		csrf:              csrf,
	}
}

// ListInvitations renders the invitations page
func (h *InvitationsHandler) ListInvitations(w http.ResponseWriter, r *http.Request) {
	h.renderInvitations(w, r, "")
}

// CreateInvitation issues a new join code, optionally mailing it to the
// invitee
func (h *InvitationsHandler) CreateInvitation(w http.ResponseWriter, r *http.Request) {
	mc := GetMemberFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	if _, err := h.invitationService.Create(r.Context(), mc, r.FormValue("email")); err != nil {
		if validation.IsValidationError(err) {
			h.renderInvitations(w, r, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to create invitation", err)
		return
	}

	http.Redirect(w, r, "/parent/invitations", http.StatusSeeOther)
}

// RevokeInvitation cancels a join code
func (h *InvitationsHandler) RevokeInvitation(w http.ResponseWriter, r *http.Request) {
	mc := GetMemberFromContext(r.Context())

	invitationID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	revoked, err := h.invitationService.Revoke(mc, invitationID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to revoke invitation", err)
		return
	}
	if !revoked {
		respondWithError(w, http.StatusNotFound, "Invitation not found", "", nil)
		return
	}

	http.Redirect(w, r, "/parent/invitations", http.StatusSeeOther)
}

func (h *InvitationsHandler) renderInvitations(w http.ResponseWriter, r *http.Request, errMsg string) {
	mc := GetMemberFromContext(r.Context())

	invitations, err := h.invitationService.List(mc)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to list invitations", err)
		return
	}

	views := make([]InvitationView, 0, len(invitations))
	for _, inv := range invitations {
		views = append(views, InvitationView{
			FamilyInvitation: inv,
			Status:           invitationStatus(&inv),
		})
	}

	data := InvitationsViewData{
		Title:       "Invitations - KiddieRewards",
		Member:      mc,
		Invitations: views,
		CSRFToken:   csrfTokenFor(h.csrf, r),
		Error:       errMsg,
	}

	if err := h.templates.ExecuteTemplate(w, "invitations.tmpl", data); err != nil {
		log.Printf("Error rendering invitations: %v", err)
		http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
	}
}
