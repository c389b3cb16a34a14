package handlers

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"kiddierewards/internal/security"
)

// OAuthProvider defines provider configuration and metadata
type OAuthProvider struct {
	Name        string
	Label       string
	Config      *oauth2.Config
	UserInfoURL string
	AuthParams  map[string]string
}

type OAuthProviderView struct {
	Name     string
	Label    string
	URL      string
	CSSClass string
}

type oauthUserInfo struct {
	Subject string
	Email   string
	Name    string
}

func (h *AuthHandler) oauthProviderViews() []OAuthProviderView {
	var views []OAuthProviderView

	for key, provider := range h.oauthProviders {
		if provider.Config == nil || provider.Config.ClientID == "" || provider.Config.ClientSecret == "" {
			continue
		}
		views = append(views, OAuthProviderView{
			Name:     key,
			Label:    provider.Label,
			URL:      fmt.Sprintf("/auth/%s/start", key),
			CSSClass: "btn-" + key,
		})
	}

	return views
}

// StartOAuth initiates the OAuth flow for a provider
func (h *AuthHandler) StartOAuth(w http.ResponseWriter, r *http.Request) {
	providerKey := r.PathValue("provider")
	provider, ok := h.oauthProviders[providerKey]
	if !ok || provider.Config == nil || provider.Config.ClientID == "" || provider.Config.ClientSecret == "" {
		h.oauthError(w, "OAuth provider not configured")
		return
	}

	state := security.GenerateSessionID()
	h.setTempCookie(w, r, "oauth_state", state, 10*time.Minute)
	h.setTempCookie(w, r, "oauth_provider", providerKey, 10*time.Minute)

	config := *provider.Config
	config.RedirectURL = h.oauthRedirectURL(r, providerKey)

	options := []oauth2.AuthCodeOption{oauth2.AccessTypeOnline}
	for key, value := range provider.AuthParams {
		options = append(options, oauth2.SetAuthURLParam(key, value))
	}
	if providerKey == "apple" {
		// Apple returns the nonce inside the id_token; the cookie lets the
		// callback check it
		nonce := security.GenerateSessionID()
		h.setTempCookie(w, r, "oauth_nonce", nonce, 10*time.Minute)
		options = append(options, oauth2.SetAuthURLParam("nonce", nonce))
	}

	http.Redirect(w, r, config.AuthCodeURL(state, options...), http.StatusFound)
}

// OAuthCallback handles the OAuth provider callback
func (h *AuthHandler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	providerKey := r.PathValue("provider")
	provider, ok := h.oauthProviders[providerKey]
	if !ok || provider.Config == nil || provider.Config.ClientID == "" || provider.Config.ClientSecret == "" {
		h.oauthError(w, "OAuth provider not configured")
		return
	}

	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if code == "" {
		h.oauthError(w, "Missing authorization code")
		return
	}

	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || stateCookie.Value != state {
		h.oauthError(w, "Invalid OAuth state")
		return
	}
	if providerCookie, err := r.Cookie("oauth_provider"); err == nil {
		if providerCookie.Value != providerKey {
			h.oauthError(w, "OAuth provider mismatch")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	config := *provider.Config
	config.RedirectURL = h.oauthRedirectURL(r, providerKey)

	token, err := config.Exchange(ctx, code)
	if err != nil {
		h.oauthError(w, "Failed to exchange OAuth code")
		return
	}

	userInfo, err := fetchOAuthUserInfo(ctx, providerKey, provider, token, r)
	if err != nil {
		h.oauthError(w, err.Error())
		return
	}

	h.clearTempCookie(w, r, "oauth_state")
	h.clearTempCookie(w, r, "oauth_provider")
	h.clearTempCookie(w, r, "oauth_nonce")

	session, _, err := h.authService.OAuthLogin(providerKey, userInfo.Subject, userInfo.Email, userInfo.Name)
	if err != nil {
		h.oauthError(w, err.Error())
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, SessionCookieName, session.ID, session.ExpiresAt))
	// RequireParent sends accounts without a family on to onboarding
	http.Redirect(w, r, "/parent/dashboard", http.StatusSeeOther)
}

func fetchOAuthUserInfo(ctx context.Context, providerKey string, provider OAuthProvider, token *oauth2.Token, r *http.Request) (oauthUserInfo, error) {
	switch providerKey {
	case "google", "facebook":
		return fetchUserInfoJSON(ctx, provider, token)
	case "apple":
		return fetchAppleUser(ctx, provider, token, r)
	default:
		return oauthUserInfo{}, errors.New("unsupported OAuth provider")
	}
}

// fetchUserInfoJSON covers providers whose userinfo endpoint returns
// {id, email, name}; Google and Facebook both do.
func fetchUserInfoJSON(ctx context.Context, provider OAuthProvider, token *oauth2.Token) (oauthUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
	resp, err := client.Get(provider.UserInfoURL)
	if err != nil {
		return oauthUserInfo{}, fmt.Errorf("failed to fetch %s user info", provider.Label)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return oauthUserInfo{}, fmt.Errorf("failed to fetch %s user info", provider.Label)
	}

	var payload struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return oauthUserInfo{}, fmt.Errorf("failed to parse %s user info", provider.Label)
	}

	return oauthUserInfo{Subject: payload.ID, Email: payload.Email, Name: payload.Name}, nil
}

// fetchAppleUser reads the user from the id_token; Apple has no userinfo
// endpoint. The token signature is checked against Apple's published keys.
func fetchAppleUser(ctx context.Context, provider OAuthProvider, token *oauth2.Token, r *http.Request) (oauthUserInfo, error) {
	idToken, _ := token.Extra("id_token").(string)
	if idToken == "" {
		return oauthUserInfo{}, errors.New("missing Apple id_token")
	}

	nonce := ""
	if cookie, err := r.Cookie("oauth_nonce"); err == nil {
		nonce = cookie.Value
	}

	return verifyAppleIDToken(ctx, idToken, provider.Config.ClientID, nonce)
}

type appleIDTokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Nonce string `json:"nonce"`
}

func verifyAppleIDToken(ctx context.Context, idToken, clientID, nonce string) (oauthUserInfo, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"RS256"}))
	claims := &appleIDTokenClaims{}

	parsed, err := parser.ParseWithClaims(idToken, claims, func(token *jwt.Token) (interface{}, error) {
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("missing key id")
		}
		return fetchAppleSigningKey(ctx, kid)
	})
	if err != nil || !parsed.Valid {
		return oauthUserInfo{}, errors.New("invalid Apple token")
	}

	if claims.Issuer != "https://appleid.apple.com" {
		return oauthUserInfo{}, errors.New("invalid Apple issuer")
	}
	audienceOK := false
	for _, aud := range claims.Audience {
		if aud == clientID {
			audienceOK = true
			break
		}
	}
	if !audienceOK {
		return oauthUserInfo{}, errors.New("invalid Apple audience")
	}
	if nonce != "" && claims.Nonce != "" && claims.Nonce != nonce {
		return oauthUserInfo{}, errors.New("invalid Apple nonce")
	}
	if claims.Email == "" {
		return oauthUserInfo{}, errors.New("Apple email not available")
	}

	// Apple only sends the name on first authorization, as form data we do
	// not rely on; a blank name falls back to the email in OAuthLogin
	return oauthUserInfo{Subject: claims.Subject, Email: claims.Email}, nil
}

// fetchAppleSigningKey resolves a key id against Apple's JWKS endpoint
func fetchAppleSigningKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://appleid.apple.com/auth/keys", nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("failed to fetch Apple public keys")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var jwks struct {
		Keys []struct {
			Kid string `json:"kid"`
			Kty string `json:"kty"`
			N   string `json:"n"`
			E   string `json:"e"`
		} `json:"keys"`
	}
	if err := json.Unmarshal(body, &jwks); err != nil {
		return nil, err
	}

	for _, key := range jwks.Keys {
		if key.Kid != kid {
			continue
		}
		if key.Kty != "RSA" {
			return nil, errors.New("unexpected key type")
		}
		modulus, err := base64.RawURLEncoding.DecodeString(key.N)
		if err != nil {
			return nil, err
		}
		exponentBytes, err := base64.RawURLEncoding.DecodeString(key.E)
		if err != nil {
			return nil, err
		}
		exponent := 0
		for _, b := range exponentBytes {
			exponent = exponent*256 + int(b)
		}
		return &rsa.PublicKey{N: new(big.Int).SetBytes(modulus), E: exponent}, nil
	}

	return nil, errors.New("Apple public key not found")
}

func (h *AuthHandler) oauthRedirectURL(r *http.Request, providerKey string) string {
	baseURL := strings.TrimSpace(h.oauthRedirectBaseURL)
	if baseURL == "" {
		scheme := "http"
		if security.IsSecureRequest(r) {
			scheme = "https"
		}
		baseURL = fmt.Sprintf("%s://%s", scheme, r.Host)
	}
	return fmt.Sprintf("%s/auth/%s/callback", strings.TrimRight(baseURL, "/"), providerKey)
}

func (h *AuthHandler) setTempCookie(w http.ResponseWriter, r *http.Request, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   security.IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(ttl),
		MaxAge:   int(ttl.Seconds()),
	})
}

func (h *AuthHandler) clearTempCookie(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   security.IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func (h *AuthHandler) oauthError(w http.ResponseWriter, message string) {
	h.render(w, "login.tmpl", LoginViewData{
		Title:          "Login - KiddieRewards",
		OAuthProviders: h.oauthProviderViews(),
		Error:          message,
	})
}

// NewOAuthProviders builds the provider registry from configured credentials
func NewOAuthProviders(googleClientID, googleClientSecret, facebookClientID, facebookClientSecret, appleClientID, appleClientSecret string) map[string]OAuthProvider {
	return map[string]OAuthProvider{
		"google": {
			Name:  "google",
			Label: "Google",
			Config: &oauth2.Config{
				ClientID:     googleClientID,
				ClientSecret: googleClientSecret,
				Scopes:       []string{"openid", "email", "profile"},
				Endpoint: oauth2.Endpoint{
					AuthURL:  "https://accounts.google.com/o/oauth2/v2/auth",
					TokenURL: "https://oauth2.googleapis.com/token",
				},
			},
			UserInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		},
		"facebook": {
			Name:  "facebook",
			Label: "Facebook",
			Config: &oauth2.Config{
				ClientID:     facebookClientID,
				ClientSecret: facebookClientSecret,
				Scopes:       []string{"email", "public_profile"},
				Endpoint: oauth2.Endpoint{
					AuthURL:  "https://www.facebook.com/v18.0/dialog/oauth",
					TokenURL: "https://graph.facebook.com/v18.0/oauth/access_token",
				},
			},
			UserInfoURL: "https://graph.facebook.com/me?fields=id,name,email",
		},
		"apple": {
			Name:  "apple",
			Label: "Apple",
			Config: &oauth2.Config{
				ClientID:     appleClientID,
				ClientSecret: appleClientSecret,
				Scopes:       []string{"name", "email"},
				Endpoint: oauth2.Endpoint{
					AuthURL:  "https://appleid.apple.com/auth/authorize",
					TokenURL: "https://appleid.apple.com/auth/token",
				},
			},
			AuthParams: map[string]string{
				"response_mode": "query",
			},
		},
	}
}
