package handlers

import (
	"html/template"
	"log"
	"net/http"
	"strconv"
	"time"

	"kiddierewards/internal/models"
	"kiddierewards/internal/security"
	"kiddierewards/internal/service"
)

// ChildHandler serves the child sign-in flow and the child's own points page
type ChildHandler struct {
	pinAuthService       *service.PinAuthService
	authService          *service.AuthService
	familyService        *service.FamilyService
	pointsService        *service.PointsService
	tokens               *security.TokenIssuer
	templates            *template.Template
	childSessionDuration time.Duration
}

// NewChildHandler creates a new child handler
func NewChildHandler(pinAuthService *service.PinAuthService, authService *service.AuthService, familyService *service.FamilyService, pointsService *service.PointsService, tokens *security.TokenIssuer, templates *template.Template, childSessionDuration time.Duration) *ChildHandler {
	return &ChildHandler{
		pinAuthService:       pinAuthService,
		authService:          authService,
		familyService:        familyService,
		pointsService:        pointsService,
		tokens:               tokens,
		templates:            templates,
		childSessionDuration: childSessionDuration,
	}
}

// ShowSelectChild renders the child picker. The family comes from an existing
// child token when one is present, otherwise from the parent session; visitors
// with neither are sent to the parent login.
func (h *ChildHandler) ShowSelectChild(w http.ResponseWriter, r *http.Request) {
	familyID := h.resolveFamilyID(w, r)
	if familyID == 0 {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	h.renderSelect(w, familyID, "")
}

// ChildLogin handles the child PIN sign-in. Wrong PINs and unknown members
// get the same error so the form does not leak which members exist.
func (h *ChildHandler) ChildLogin(w http.ResponseWriter, r *http.Request) {
	familyID := h.resolveFamilyID(w, r)
	if familyID == 0 {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	memberID, err := strconv.ParseInt(r.FormValue("member_id"), 10, 64)
	if err != nil {
		h.renderSelect(w, familyID, "Incorrect PIN")
		return
	}

	mc, err := h.pinAuthService.Authenticate(memberID, r.FormValue("pin"))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to authenticate", err)
		return
	}
	// The picker is scoped to one family; a matching PIN for another
	// family's member is still rejected
	if mc == nil || mc.Role != models.RoleChild || mc.FamilyID != familyID {
		h.renderSelect(w, familyID, "Incorrect PIN")
		return
	}

	token, err := h.tokens.Issue(security.TokenPurposeChildSession, mc.MemberID, mc.FamilyID, string(mc.Role), h.childSessionDuration)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to issue child token", err)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, ChildSessionCookieName, token, time.Now().Add(h.childSessionDuration)))
	http.Redirect(w, r, "/child/me", http.StatusSeeOther)
}

// Me renders the signed-in child's balance and history
func (h *ChildHandler) Me(w http.ResponseWriter, r *http.Request) {
	mc := GetMemberFromContext(r.Context())

	totals, err := h.pointsService.GetTotals(mc, mc.MemberID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to load totals", err)
		return
	}

	history, err := h.pointsService.GetHistory(mc, mc.MemberID, false)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to load history", err)
		return
	}

	name := mc.DisplayName
	if name == "" {
		if children, listErr := h.familyService.ListChildren(mc); listErr == nil {
			for _, c := range children {
				if c.ID == mc.MemberID {
					name = c.DisplayName
					break
				}
			}
		}
	}

	h.render(w, "child_me.tmpl", ChildMeViewData{
		Title:   "My Points - KiddieRewards",
		Name:    name,
		Totals:  totals,
		History: history,
	})
}

// ChildLogout clears the child session token
func (h *ChildHandler) ChildLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, security.CreateDeleteCookie(r, ChildSessionCookieName))
	http.Redirect(w, r, "/child/select", http.StatusSeeOther)
}

// resolveFamilyID scopes the picker to a family. A valid child token wins so
// a shared device keeps working after the parent signs out; otherwise the
// parent session decides. Returns 0 when neither is present, clearing a dead
// child cookie along the way.
func (h *ChildHandler) resolveFamilyID(w http.ResponseWriter, r *http.Request) int64 {
	if cookie, err := r.Cookie(ChildSessionCookieName); err == nil {
		claims, err := h.tokens.Verify(cookie.Value, security.TokenPurposeChildSession)
		if err == nil {
			return claims.FamilyID
		}
		http.SetCookie(w, security.CreateDeleteCookie(r, ChildSessionCookieName))
	}

	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		user, err := h.authService.ValidateSession(cookie.Value)
		if err == nil && user != nil {
			member, err := h.familyService.GetMemberForUser(user.ID)
			if err == nil && member != nil && member.IsActive {
				return member.FamilyID
			}
		}
	}

	return 0
}

func (h *ChildHandler) renderSelect(w http.ResponseWriter, familyID int64, errMsg string) {
	children, err := h.familyService.ListChildren(&models.MemberContext{FamilyID: familyID})
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

	h.render(w, "select_child.tmpl", ChildSelectViewData{
		Title:    "Who are you? - KiddieRewards",
		Children: active,
		Error:    errMsg,
	})
}

func (h *ChildHandler) render(w http.ResponseWriter, name string, data interface{}) {
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("Error rendering %s: %v", name, err)
		http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
	}
}
