package credentials

import (
	"crypto/rand"
	"math/big"
)

// Avatar keys a parent can pick for a child profile
var AvatarKeys = []string{
	"lion", "tiger", "panda", "fox", "owl", "dolphin", "dragon", "unicorn",
	"rocket", "robot", "star", "rainbow", "pirate", "wizard", "astronaut", "dino",
}

// GeneratePin generates a random numeric PIN of the given length
func GeneratePin(length int) (string, error) {
	pin := make([]byte, length)

	for i := 0; i < length; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		pin[i] = byte('0' + num.Int64())
	}

	return string(pin), nil
}

// InvitationCodeAlphabet excludes ambiguous characters (I, O, 0, 1)
const InvitationCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// InvitationCodeLength is the fixed length of family join codes
const InvitationCodeLength = 10

// GenerateInvitationCode generates a random join code from the unambiguous alphabet
func GenerateInvitationCode() (string, error) {
	code := make([]byte, InvitationCodeLength)

	for i := 0; i < InvitationCodeLength; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(InvitationCodeAlphabet))))
		if err != nil {
			return "", err
		}
		code[i] = InvitationCodeAlphabet[num.Int64()]
	}

	return string(code), nil
}

// IsKnownAvatar reports whether key is one of the selectable avatar keys
func IsKnownAvatar(key string) bool {
	for _, k := range AvatarKeys {
		if k == key {
			return true
		}
	}
	return false
}
