package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// PIN hashes are salted PBKDF2-SHA256 with the iteration count embedded in
// the encoded form, so old hashes stay verifiable after the default is
// raised. Format: pbkdf2_sha256$<iterations>$<salt>$<key> (base64, raw url).
const (
	PinIterations = 100000
	pinSaltSize   = 16
	pinKeySize    = 32
	pinHashPrefix = "pbkdf2_sha256"
)

// Iteration count of hashes produced before the scheme was strengthened.
// Verification still accepts them but signals that a rehash is due.
const legacyPinIterations = 10000

var (
	ErrEmptyPin     = errors.New("pin must not be empty")
	ErrEmptyPinHash = errors.New("pin hash must not be empty")
)

// PinVerification is the outcome of checking a PIN against a stored hash
type PinVerification int

const (
	// PinMismatch means the PIN does not match the stored hash
	PinMismatch PinVerification = iota
	// PinMatch means the PIN matches a hash with current parameters
	PinMatch
	// PinMatchRehashNeeded means the PIN matches a hash produced with
	// weaker parameters; the caller should rehash and store the result
	PinMatchRehashNeeded
)

// HashPin derives a salted, non-reversible hash of pin. Each call uses a
// fresh salt, so hashing the same PIN twice yields different outputs.
func HashPin(pin string) (string, error) {
	if strings.TrimSpace(pin) == "" {
		return "", ErrEmptyPin
	}

	salt := make([]byte, pinSaltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := pbkdf2.Key([]byte(pin), salt, PinIterations, pinKeySize, sha256.New)

	return fmt.Sprintf("%s$%d$%s$%s",
		pinHashPrefix,
		PinIterations,
		base64.RawURLEncoding.EncodeToString(salt),
		base64.RawURLEncoding.EncodeToString(key),
	), nil
}

// VerifyPin checks pin against a stored hash, re-deriving the key with the
// parameters embedded in the hash. A mismatch is reported silently via the
// return value; only malformed empty input produces an error.
func VerifyPin(hash, pin string) (PinVerification, error) {
	if strings.TrimSpace(hash) == "" {
		return PinMismatch, ErrEmptyPinHash
	}
	if strings.TrimSpace(pin) == "" {
		return PinMismatch, ErrEmptyPin
	}

	iterations, salt, key, ok := decodePinHash(hash)
	if !ok {
		return PinMismatch, nil
	}

	derived := pbkdf2.Key([]byte(pin), salt, iterations, len(key), sha256.New)
	if subtle.ConstantTimeCompare(derived, key) != 1 {
		return PinMismatch, nil
	}

	if iterations < PinIterations {
		return PinMatchRehashNeeded, nil
	}
	return PinMatch, nil
}

// decodePinHash splits an encoded hash into its parameters. Returns ok=false
// for anything that does not parse; callers treat that as a mismatch.
func decodePinHash(hash string) (iterations int, salt, key []byte, ok bool) {
	parts := strings.Split(hash, "$")
	if len(parts) != 4 || parts[0] != pinHashPrefix {
		return 0, nil, nil, false
	}

	iterations, err := strconv.Atoi(parts[1])
	if err != nil || iterations <= 0 {
		return 0, nil, nil, false
	}

	salt, err = base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil || len(salt) == 0 {
		return 0, nil, nil, false
	}

	key, err = base64.RawURLEncoding.DecodeString(parts[3])
	if err != nil || len(key) == 0 {
		return 0, nil, nil, false
	}

	return iterations, salt, key, true
}

// hashPinWithIterations exists for tests that need to produce legacy hashes
func hashPinWithIterations(pin string, iterations int) (string, error) {
	if strings.TrimSpace(pin) == "" {
		return "", ErrEmptyPin
	}

	salt := make([]byte, pinSaltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := pbkdf2.Key([]byte(pin), salt, iterations, pinKeySize, sha256.New)

	return fmt.Sprintf("%s$%d$%s$%s",
		pinHashPrefix,
		iterations,
		base64.RawURLEncoding.EncodeToString(salt),
		base64.RawURLEncoding.EncodeToString(key),
	), nil
}
