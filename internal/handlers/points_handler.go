package handlers

import (
	"encoding/json"
	"html/template"
	"log"
	"net/http"
	"strconv"

	"kiddierewards/internal/models"
	"kiddierewards/internal/security"
	"kiddierewards/internal/service"
	"kiddierewards/internal/validation"
)

// defaultSuggestionLimit caps the suggestion dropdown when the client does
// not ask for a specific count
const defaultSuggestionLimit = 8

// PointsHandler serves the award/deduct form, entry editing and reason
// suggestions
type PointsHandler struct {
	pointsService      *service.PointsService
	suggestionsService *service.SuggestionsService
	familyService      *service.FamilyService
	templates          *template.Template
	csrf               *security.CSRFGenerator
}

// NewPointsHandler creates a new points handler
func NewPointsHandler(pointsService *service.PointsService, suggestionsService *service.SuggestionsService, familyService *service.FamilyService, templates *template.Template, csrf *security.CSRFGenerator) *PointsHandler {
	return &PointsHandler{
		pointsService:      pointsService,
		suggestionsService: suggestionsService,
		familyService:      familyService,
		templates:          templates,
		csrf:               csrf,
	}
}

// ShowAddPoints renders the award/deduct form
func (h *PointsHandler) ShowAddPoints(w http.ResponseWriter, r *http.Request) {
	h.renderAddPoints(w, r, "")
}

// AddPoints handles the award/deduct form submission. One entry is created
// per selected child, atomically.
func (h *PointsHandler) AddPoints(w http.ResponseWriter, r *http.Request) {
	mc := GetMemberFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	var childIDs []int64
	for _, raw := range r.Form["child_ids"] {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
			return
		}
		childIDs = append(childIDs, id)
	}

	points, err := strconv.Atoi(r.FormValue("points"))
	if err != nil {
		h.renderAddPoints(w, r, "Points must be a number")
		return
	}

	entryType := models.PointEntryType(r.FormValue("type"))
	reason := r.FormValue("reason")

	if _, err := h.pointsService.AddEntries(mc, childIDs, entryType, points, reason); err != nil {
		if validation.IsValidationError(err) {
			h.renderAddPoints(w, r, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to add entries", err)
		return
	}

	http.Redirect(w, r, "/parent/dashboard", http.StatusSeeOther)
}

// ShowEditPoint renders the edit form for one ledger row
func (h *PointsHandler) ShowEditPoint(w http.ResponseWriter, r *http.Request) {
	mc := GetMemberFromContext(r.Context())

	entryID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	entry, err := h.pointsService.GetEntry(mc, entryID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to load entry", err)
		return
	}
	if entry == nil {
		respondWithError(w, http.StatusNotFound, "Entry not found", "", nil)
		return
	}

	h.renderEditPoint(w, r, entry, "")
}

// EditPoint handles the edit form submission
func (h *PointsHandler) EditPoint(w http.ResponseWriter, r *http.Request) {
	mc := GetMemberFromContext(r.Context())

	entryID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	points, _ := strconv.Atoi(r.FormValue("points"))
	entryType := models.PointEntryType(r.FormValue("type"))
	reason := r.FormValue("reason")
	isActive := r.FormValue("is_active") != ""

	entry, err := h.pointsService.UpdateEntry(mc, entryID, entryType, points, reason, isActive)
	if err != nil {
		if validation.IsValidationError(err) {
			current, getErr := h.pointsService.GetEntry(mc, entryID)
			if getErr != nil || current == nil {
				respondWithError(w, http.StatusNotFound, "Entry not found", "", getErr)
				return
			}
			h.renderEditPoint(w, r, current, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to update entry", err)
		return
	}
	if entry == nil {
		respondWithError(w, http.StatusNotFound, "Entry not found", "", nil)
		return
	}

	http.Redirect(w, r, "/parent/dashboard", http.StatusSeeOther)
}

// Suggestions returns ranked reason suggestions as JSON for the add-points
// form. Query params: q (substring filter), limit.
func (h *PointsHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	mc := GetMemberFromContext(r.Context())

	limit := defaultSuggestionLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondWithError(w, http.StatusBadRequest, "limit must be a positive number", "", nil)
			return
		}
		limit = parsed
	}

	suggestions, err := h.suggestionsService.Suggest(mc, r.URL.Query().Get("q"), limit)
	if err != nil {
		if validation.IsValidationError(err) {
			respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to build suggestions", err)
		return
	}
	if suggestions == nil {
		suggestions = []service.Suggestion{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(suggestions); err != nil {
		log.Printf("Error encoding suggestions: %v", err)
	}
}

func (h *PointsHandler) renderAddPoints(w http.ResponseWriter, r *http.Request, errMsg string) {
	mc := GetMemberFromContext(r.Context())

	children, err := h.familyService.ListChildren(mc)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to list children", err)
		return
	}

	active := children[:0]
	for _, child := range children {
		if child.IsActive {
			active = append(active, child)
		}
	}

	h.render(w, "add_points.tmpl", AddPointsViewData{
		Title:     "Add Points - KiddieRewards",
		Member:    mc,
		Children:  active,
		CSRFToken: csrfTokenFor(h.csrf, r),
		Error:     errMsg,
	})
}

func (h *PointsHandler) renderEditPoint(w http.ResponseWriter, r *http.Request, entry *models.PointEntry, errMsg string) {
	mc := GetMemberFromContext(r.Context())

	childName := ""
	if child, err := h.familyService.ListChildren(mc); err == nil {
		for _, c := range child {
			if c.ID == entry.ChildMemberID {
				childName = c.DisplayName
				break
			}
		}
	}

	h.render(w, "edit_point.tmpl", EditPointViewData{
		Title:     "Edit Entry - KiddieRewards",
		Member:    mc,
		Entry:     entry,
		ChildName: childName,
		CSRFToken: csrfTokenFor(h.csrf, r),
		Error:     errMsg,
	})
}

func (h *PointsHandler) render(w http.ResponseWriter, name string, data interface{}) {
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("Error rendering %s: %v", name, err)
		http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
	}
}
