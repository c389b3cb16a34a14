package service

import (
	"fmt"
	"log"

	"kiddierewards/internal/models"
	"kiddierewards/internal/repository"
	"kiddierewards/internal/security"
)

// PinAuthService verifies member PINs. It backs both the child sign-in
// screen and the parent PIN re-verification gate.
type PinAuthService struct {
	memberRepo *repository.MemberRepository
}

// NewPinAuthService creates a new PIN auth service
func NewPinAuthService(memberRepo *repository.MemberRepository) *PinAuthService {
	return &PinAuthService{memberRepo: memberRepo}
}

// Authenticate checks a PIN for a member. Returns nil for an unknown or
// inactive member and for a wrong PIN; the caller cannot tell which. Hashes
// produced with legacy parameters are upgraded in place on a successful
// match.
func (s *PinAuthService) Authenticate(memberID int64, pin string) (*models.MemberContext, error) {
	member, err := s.memberRepo.GetMemberByID(memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to load member: %w", err)
	}
	if member == nil || !member.IsActive {
		return nil, nil
	}

	result, err := security.VerifyPin(member.PinHash, pin)
	if err != nil {
		return nil, fmt.Errorf("failed to verify pin: %w", err)
	}
	if result == security.PinMismatch {
		return nil, nil
	}

	if result == security.PinMatchRehashNeeded {
		s.rehash(member, pin)
	}

	return &models.MemberContext{
		MemberID:    member.ID,
		FamilyID:    member.FamilyID,
		Role:        member.Role,
		DisplayName: member.DisplayName,
	}, nil
}

// rehash upgrades a legacy hash. A failure here never blocks sign-in; the
// old hash still verifies next time.
func (s *PinAuthService) rehash(member *models.Member, pin string) {
	newHash, err := security.HashPin(pin)
	if err != nil {
		log.Printf("Failed to rehash pin for member %d: %v", member.ID, err)
		return
	}
	if err := s.memberRepo.UpdatePinHash(member.ID, newHash); err != nil {
		log.Printf("Failed to store rehashed pin for member %d: %v", member.ID, err)
	}
}
