package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token purposes. Child sessions and the parent PIN gate both use signed
// HS256 tokens carried in their own cookies; the purpose claim keeps one
// from being replayed as the other.
const (
	TokenPurposeChildSession = "child_session"
	TokenPurposePinGate      = "pin_gate"
)

var ErrInvalidToken = errors.New("invalid token")

// MemberClaims are the claims carried by member tokens
type MemberClaims struct {
	MemberID int64  `json:"mid"`
	FamilyID int64  `json:"fid"`
	Role     string `json:"role"`
	Purpose  string `json:"purpose"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies member tokens with a shared secret.
// Tokens are stateless, so they survive restarts and multi-replica
// deployments without a shared session store.
type TokenIssuer struct {
	secret []byte
}

// NewTokenIssuer creates a token issuer from the session secret
func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret)}
}

// Issue creates a signed token for a member with the given purpose and lifetime
func (t *TokenIssuer) Issue(purpose string, memberID, familyID int64, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := MemberClaims{
		MemberID: memberID,
		FamilyID: familyID,
		Role:     role,
		Purpose:  purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", memberID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Verify parses a token, checks its signature and expiry, and requires the
// given purpose. Returns ErrInvalidToken for anything that does not hold.
func (t *TokenIssuer) Verify(tokenString, purpose string) (*MemberClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}))

	claims := &MemberClaims{}
	parsed, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Purpose != purpose {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
