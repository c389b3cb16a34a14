package handlers

import (
	"net/http"

	"kiddierewards/internal/models"
	"kiddierewards/internal/security"
	"kiddierewards/internal/service"
)

// csrfTokenFor derives the CSRF token for the request's session, or empty
// when there is no session
func csrfTokenFor(g *security.CSRFGenerator, r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	token, err := g.GenerateToken(cookie.Value)
	if err != nil {
		return ""
	}
	return token
}

type LoginViewData struct {
	Title          string
	OAuthProviders []OAuthProviderView
	Error          string
	Email          string
	Success        string
}

type RegisterViewData struct {
	Title          string
	OAuthProviders []OAuthProviderView
	Error          string
	Email          string
	Name           string
}

type ForgotPasswordViewData struct {
	Title   string
	Success string
	Error   string
}

type ResetPasswordViewData struct {
	Title string
	Token string
	Error string
}

type OnboardingViewData struct {
	Title string
	Name  string
}

type FamilyFormViewData struct {
	Title       string
	Error       string
	FamilyName  string
	DisplayName string
	Code        string
	CSRFToken   string
}

type EnterPinViewData struct {
	Title     string
	ReturnURL string
	Error     string
	CSRFToken string
}

type DashboardViewData struct {
	Title     string
	Member    *models.MemberContext
	Dashboard *service.Dashboard
	CSRFToken string
}

type AddPointsViewData struct {
	Title     string
	Member    *models.MemberContext
	Children  []models.Member
	CSRFToken string
	Error     string
}

type EditPointViewData struct {
	Title     string
	Member    *models.MemberContext
	Entry     *models.PointEntry
	ChildName string
	CSRFToken string
	Error     string
}

type ChildrenViewData struct {
	Title     string
	Member    *models.MemberContext
	Children  []models.Member
	Avatars   []string
	CSRFToken string
	Error     string
	// Set once after creating or regenerating a PIN so the parent can pass
	// it on; never shown again
	NewPin          string
	NewPinChildName string
}

// InvitationView pairs an invitation with its display status
type InvitationView struct {
	models.FamilyInvitation
	Status string
}

type InvitationsViewData struct {
	Title       string
	Member      *models.MemberContext
	Invitations []InvitationView
	CSRFToken   string
	Error       string
}

type SettingsViewData struct {
	Title     string
	Member    *models.MemberContext
	Family    *models.Family
	Members   []models.Member
	CSRFToken string
	Error     string
	Success   string
}

type ChildSelectViewData struct {
	Title    string
	Children []models.Member
	Error    string
}

type ChildMeViewData struct {
	Title   string
	Name    string
	Totals  *models.PointsTotals
	History []models.HistoryEntry
}

// invitationStatus derives the display status of an invitation
func invitationStatus(inv *models.FamilyInvitation) string {
	switch {
	case inv.IsRevoked:
		return "Revoked"
	case inv.IsUsed():
		return "Redeemed"
	case inv.IsExpired():
		return "Expired"
	default:
		return "Active"
	}
}
