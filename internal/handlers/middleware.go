package handlers

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"time"

	"kiddierewards/internal/models"
	"kiddierewards/internal/security"
	"kiddierewards/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	UserContextKey   ContextKey = "user"
	MemberContextKey ContextKey = "member"
)

// Middleware holds dependencies for middleware functions
type Middleware struct {
	authService   *service.AuthService
	familyService *service.FamilyService
	tokens        *security.TokenIssuer
	csrf          *security.CSRFGenerator
	limiter       *security.RateLimiter
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(authService *service.AuthService, familyService *service.FamilyService, tokens *security.TokenIssuer, csrf *security.CSRFGenerator, limiter *security.RateLimiter) *Middleware {
	return &Middleware{
		authService:   authService,
		familyService: familyService,
		tokens:        tokens,
		csrf:          csrf,
		limiter:       limiter,
	}
}

// RequireUser requires a valid parent session and puts the user on the
// request context. Used by onboarding pages where the account may not have a
// family yet.
func (m *Middleware) RequireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := m.sessionUser(w, r)
		if user == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next(w, r.WithContext(ctx))
	}
}

// RequireParent requires a valid parent session whose account belongs to a
// family. The member context is derived once here and carried on the
// request; accounts without a family are sent to onboarding.
func (m *Middleware) RequireParent(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := m.sessionUser(w, r)
		if user == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		member, err := m.familyService.GetMemberForUser(user.ID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to load member", err)
			return
		}
		if member == nil {
			http.Redirect(w, r, "/family/onboarding", http.StatusSeeOther)
			return
		}
		if !member.IsActive || member.Role != models.RoleParent {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		mc := &models.MemberContext{
			MemberID:    member.ID,
			FamilyID:    member.FamilyID,
			Role:        member.Role,
			DisplayName: member.DisplayName,
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		ctx = context.WithValue(ctx, MemberContextKey, mc)
		next(w, r.WithContext(ctx))
	}
}

// RequireChild requires a valid child session token and puts the member
// context on the request
func (m *Middleware) RequireChild(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(ChildSessionCookieName)
		if err != nil {
			http.Redirect(w, r, "/child/select", http.StatusSeeOther)
			return
		}

		claims, err := m.tokens.Verify(cookie.Value, security.TokenPurposeChildSession)
		if err != nil {
			http.SetCookie(w, security.CreateDeleteCookie(r, ChildSessionCookieName))
			http.Redirect(w, r, "/child/select", http.StatusSeeOther)
			return
		}

		mc := &models.MemberContext{
			MemberID: claims.MemberID,
			FamilyID: claims.FamilyID,
			Role:     models.MemberRole(claims.Role),
		}

		ctx := context.WithValue(r.Context(), MemberContextKey, mc)
		next(w, r.WithContext(ctx))
	}
}

// RequirePinVerified gates sensitive parent pages behind a recent PIN check.
// The gate is a short-lived signed token bound to the signed-in member, not
// a session flag, so it expires on its own and cannot be replayed for
// another member.
func (m *Middleware) RequirePinVerified(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mc := GetMemberFromContext(r.Context())
		if mc == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		if cookie, err := r.Cookie(PinGateCookieName); err == nil {
			claims, err := m.tokens.Verify(cookie.Value, security.TokenPurposePinGate)
			if err == nil && claims.MemberID == mc.MemberID {
				next(w, r)
				return
			}
		}

		returnURL := r.URL.Path
		if r.URL.RawQuery != "" {
			returnURL += "?" + r.URL.RawQuery
		}
		http.Redirect(w, r, "/security/enter-pin?return_url="+url.QueryEscape(returnURL), http.StatusSeeOther)
	}
}

// CSRFProtect validates the CSRF token on state-changing requests
func (m *Middleware) CSRFProtect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			next(w, r)
			return
		}

		cookie, err := r.Cookie(SessionCookieName)
		if err != nil {
			respondWithError(w, http.StatusForbidden, "Invalid CSRF token", "", nil)
			return
		}

		token := r.FormValue("csrf_token")
		if token == "" {
			token = r.Header.Get("X-CSRF-Token")
		}

		if !m.csrf.ValidateToken(cookie.Value, token) {
			respondWithError(w, http.StatusForbidden, "Invalid CSRF token", "", nil)
			return
		}

		next(w, r)
	}
}

// RateLimit rejects clients that exceed the request budget. Used on
// credential endpoints to slow down PIN and password guessing.
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := security.GetClientIP(r)
		if !m.limiter.Allow(ip) {
			respondWithError(w, http.StatusTooManyRequests, "Too many requests, please try again later", "", nil)
			return
		}
		next(w, r)
	}
}

// sessionUser resolves the session cookie to a user, clearing the cookie
// when the session is gone
func (m *Middleware) sessionUser(w http.ResponseWriter, r *http.Request) *models.User {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil
	}

	user, err := m.authService.ValidateSession(cookie.Value)
	if err != nil {
		http.SetCookie(w, security.CreateDeleteCookie(r, SessionCookieName))
		return nil
	}

	return user
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// GetUserFromContext retrieves the user from the request context
func GetUserFromContext(ctx context.Context) *models.User {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// GetMemberFromContext retrieves the member context from the request context
func GetMemberFromContext(ctx context.Context) *models.MemberContext {
	mc, ok := ctx.Value(MemberContextKey).(*models.MemberContext)
	if !ok {
		return nil
	}
	return mc
}
