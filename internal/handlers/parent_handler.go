package handlers

import (
	"html/template"
	"log"
	"net/http"
	"strconv"

	"kiddierewards/internal/security"
	"kiddierewards/internal/service"
)

// ParentHandler serves the parent dashboard, family settings and the reset
// action
type ParentHandler struct {
	dashboardService *service.DashboardService
	pointsService    *service.PointsService
	familyService    *service.FamilyService
	templates        *template.Template
	csrf             *security.CSRFGenerator
}

// NewParentHandler creates a new parent handler
func NewParentHandler(dashboardService *service.DashboardService, pointsService *service.PointsService, familyService *service.FamilyService, templates *template.Template, csrf *security.CSRFGenerator) *ParentHandler {
	return &ParentHandler{
		dashboardService: dashboardService,
		pointsService:    pointsService,
		familyService:    familyService,
		templates:        templates,
		csrf:             csrf,
	}
}

// Dashboard renders per-child balances, family stats and the paginated
// ledger. Accepts ?page= and ?child= filters; bad values are clamped.
func (h *ParentHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	mc := GetMemberFromContext(r.Context())

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	childID, _ := strconv.ParseInt(r.URL.Query().Get("child"), 10, 64)

	dashboard, err := h.dashboardService.GetDashboard(mc, page, childID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to build dashboard", err)
		return
	}

	h.render(w, "dashboard.tmpl", DashboardViewData{
		Title:     "Dashboard - KiddieRewards",
		Member:    mc,
		Dashboard: dashboard,
		CSRFToken: csrfTokenFor(h.csrf, r),
	})
}

// TriggerReset zeroes a child's balance with a compensating entry
func (h *ParentHandler) TriggerReset(w http.ResponseWriter, r *http.Request) {
	mc := GetMemberFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	childID, err := strconv.ParseInt(r.FormValue("child_id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	entry, err := h.pointsService.ApplyReset(mc, childID, r.FormValue("reason"))
	if err != nil {
		if err == service.ErrChildNotFound {
			respondWithError(w, http.StatusNotFound, "Child not found", "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to apply reset", err)
		return
	}
	if entry == nil {
		log.Printf("Reset skipped for child %d: no active entries", childID)
	}

	http.Redirect(w, r, "/parent/dashboard", http.StatusSeeOther)
}

// ShowSettings renders the family settings page
func (h *ParentHandler) ShowSettings(w http.ResponseWriter, r *http.Request) {
	h.renderSettings(w, r, "", "")
}

// UpdateSettings renames the family
func (h *ParentHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	mc := GetMemberFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	if err := h.familyService.RenameFamily(mc, r.FormValue("family_name")); err != nil {
		h.renderSettings(w, r, err.Error(), "")
		return
	}

	h.renderSettings(w, r, "", "Family settings saved")
}

func (h *ParentHandler) renderSettings(w http.ResponseWriter, r *http.Request, errMsg, success string) {
	mc := GetMemberFromContext(r.Context())

	family, err := h.familyService.GetFamily(mc)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to load family", err)
		return
	}

	members, err := h.familyService.ListMembers(mc)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to list members", err)
		return
	}

	h.render(w, "settings.tmpl", SettingsViewData{
		Title:     "Family Settings - KiddieRewards",
		Member:    mc,
		Family:    family,
		Members:   members,
		CSRFToken: csrfTokenFor(h.csrf, r),
		Error:     errMsg,
		Success:   success,
	})
}

func (h *ParentHandler) render(w http.ResponseWriter, name string, data interface{}) {
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("Error rendering %s: %v", name, err)
		http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
	}
}
