package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"kiddierewards/internal/credentials"
	"kiddierewards/internal/models"
	"kiddierewards/internal/repository"
	"kiddierewards/internal/security"
	"kiddierewards/internal/validation"
)

// GeneratedPinLength is the length of auto-generated child PINs
const GeneratedPinLength = 4

// pinRetries bounds retry loops on per-family PIN hash collisions
const pinRetries = 5

// FamilyService handles family and member management: creating and joining
// families, child profiles and PINs.
type FamilyService struct {
	familyRepo     *repository.FamilyRepository
	memberRepo     *repository.MemberRepository
	invitationRepo *repository.InvitationRepository
}

// NewFamilyService creates a new family service
func NewFamilyService(familyRepo *repository.FamilyRepository, memberRepo *repository.MemberRepository, invitationRepo *repository.InvitationRepository) *FamilyService {
	return &FamilyService{
		familyRepo:     familyRepo,
		memberRepo:     memberRepo,
		invitationRepo: invitationRepo,
	}
}

// GetMemberForUser returns the member record linked to a parent account, or
// nil when the account has not joined a family yet
func (s *FamilyService) GetMemberForUser(userID int64) (*models.Member, error) {
	return s.memberRepo.GetMemberByUserID(userID)
}

// CreateFamily creates a new family with the acting account as its first
// parent member
func (s *FamilyService) CreateFamily(userID int64, familyName, displayName, pin string) (*models.Family, *models.Member, error) {
	if err := validation.ValidateName(familyName); err != nil {
		return nil, nil, err
	}
	if err := validation.ValidateName(displayName); err != nil {
		return nil, nil, err
	}
	if err := validation.ValidatePin(pin); err != nil {
		return nil, nil, err
	}

	existing, err := s.memberRepo.GetMemberByUserID(userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if existing != nil {
		return nil, nil, ErrAlreadyInFamily
	}

	pinHash, err := security.HashPin(pin)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash pin: %w", err)
	}

	family, member, err := s.familyRepo.CreateFamilyWithParent(strings.TrimSpace(familyName), userID, strings.TrimSpace(displayName), pinHash)
	if err != nil {
		if errors.Is(err, repository.ErrPinTaken) {
			return nil, nil, validation.Error{Field: "pin", Message: "this PIN is already in use in the family"}
		}
		return nil, nil, err
	}

	return family, member, nil
}

// JoinFamily redeems an invitation code and adds the acting account as a
// parent member of the invited family
func (s *FamilyService) JoinFamily(userID int64, code, displayName, pin string) (*models.Member, error) {
	if err := validation.ValidateName(displayName); err != nil {
		return nil, err
	}
	if err := validation.ValidatePin(pin); err != nil {
		return nil, err
	}

	existing, err := s.memberRepo.GetMemberByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if existing != nil {
		return nil, ErrAlreadyInFamily
	}

	invitation, err := s.invitationRepo.GetInvitationByCode(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, fmt.Errorf("failed to look up invitation: %w", err)
	}
	if invitation == nil || !invitation.IsActive() {
		return nil, ErrInvitationInvalid
	}

	pinHash, err := security.HashPin(pin)
	if err != nil {
		return nil, fmt.Errorf("failed to hash pin: %w", err)
	}

	member := &models.Member{
		FamilyID:    invitation.FamilyID,
		UserID:      &userID,
		DisplayName: strings.TrimSpace(displayName),
		PinHash:     pinHash,
		Role:        models.RoleParent,
	}
	if err := s.memberRepo.CreateMember(member); err != nil {
		if errors.Is(err, repository.ErrPinTaken) {
			return nil, validation.Error{Field: "pin", Message: "this PIN is already in use in the family"}
		}
		return nil, err
	}

	claimed, err := s.invitationRepo.MarkRedeemed(invitation.ID, member.ID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if !claimed {
		// Lost a concurrent redemption race; back the membership out
		_ = s.memberRepo.SetMemberActive(invitation.FamilyID, member.ID, false)
		return nil, ErrInvitationInvalid
	}

	return member, nil
}

// CreateChild adds a child profile to the actor's family. When pin is empty
// a random numeric PIN is generated; its plaintext is returned exactly once
// so the parent can hand it to the child.
func (s *FamilyService) CreateChild(actor *models.MemberContext, displayName, avatarKey, pin string) (*models.Member, string, error) {
	if err := validation.ValidateName(displayName); err != nil {
		return nil, "", err
	}
	if avatarKey != "" && !credentials.IsKnownAvatar(avatarKey) {
		return nil, "", validation.Error{Field: "avatar", Message: "unknown avatar"}
	}

	generated := pin == ""
	if !generated {
		if err := validation.ValidatePin(pin); err != nil {
			return nil, "", err
		}
	}

	var member *models.Member
	for attempt := 0; attempt < pinRetries; attempt++ {
		if generated {
			var err error
			pin, err = credentials.GeneratePin(GeneratedPinLength)
			if err != nil {
				return nil, "", fmt.Errorf("failed to generate pin: %w", err)
			}
		}

		pinHash, err := security.HashPin(pin)
		if err != nil {
			return nil, "", fmt.Errorf("failed to hash pin: %w", err)
		}

		member = &models.Member{
			FamilyID:    actor.FamilyID,
			DisplayName: strings.TrimSpace(displayName),
			AvatarKey:   avatarKey,
			PinHash:     pinHash,
			Role:        models.RoleChild,
		}
		err = s.memberRepo.CreateMember(member)
		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrPinTaken) {
			if generated {
				continue
			}
			return nil, "", validation.Error{Field: "pin", Message: "this PIN is already in use in the family"}
		}
		return nil, "", err
	}
	if member == nil || member.ID == 0 {
		return nil, "", errors.New("could not find an unused PIN")
	}

	if !generated {
		pin = ""
	}
	return member, pin, nil
}

// UpdateChild updates a child's display name and avatar
func (s *FamilyService) UpdateChild(actor *models.MemberContext, childID int64, displayName, avatarKey string) (*models.Member, error) {
	if err := validation.ValidateName(displayName); err != nil {
		return nil, err
	}
	if avatarKey != "" && !credentials.IsKnownAvatar(avatarKey) {
		return nil, validation.Error{Field: "avatar", Message: "unknown avatar"}
	}

	child, err := s.requireChild(actor, childID)
	if err != nil {
		return nil, err
	}

	if err := s.memberRepo.UpdateMember(actor.FamilyID, childID, strings.TrimSpace(displayName), avatarKey); err != nil {
		return nil, err
	}

	child.DisplayName = strings.TrimSpace(displayName)
	child.AvatarKey = avatarKey
	return child, nil
}

// SetChildActive activates or deactivates a child profile. History stays in
// place; a deactivated child just stops appearing in award flows.
func (s *FamilyService) SetChildActive(actor *models.MemberContext, childID int64, active bool) error {
	if _, err := s.requireChild(actor, childID); err != nil {
		return err
	}
	return s.memberRepo.SetMemberActive(actor.FamilyID, childID, active)
}

// RegeneratePin replaces a child's PIN with a fresh random one and returns
// its plaintext exactly once
func (s *FamilyService) RegeneratePin(actor *models.MemberContext, childID int64) (string, error) {
	if _, err := s.requireChild(actor, childID); err != nil {
		return "", err
	}

	for attempt := 0; attempt < pinRetries; attempt++ {
		pin, err := credentials.GeneratePin(GeneratedPinLength)
		if err != nil {
			return "", fmt.Errorf("failed to generate pin: %w", err)
		}

		pinHash, err := security.HashPin(pin)
		if err != nil {
			return "", fmt.Errorf("failed to hash pin: %w", err)
		}

		err = s.memberRepo.UpdatePinHash(childID, pinHash)
		if err == nil {
			return pin, nil
		}
		if !errors.Is(err, repository.ErrPinTaken) {
			return "", err
		}
	}

	return "", errors.New("could not find an unused PIN")
}

// ListChildren returns all child profiles of the actor's family
func (s *FamilyService) ListChildren(actor *models.MemberContext) ([]models.Member, error) {
	return s.memberRepo.ListChildren(actor.FamilyID)
}

// ListMembers returns all members of the actor's family, parents first
func (s *FamilyService) ListMembers(actor *models.MemberContext) ([]models.Member, error) {
	return s.memberRepo.ListMembers(actor.FamilyID)
}

// GetFamily returns the actor's family
func (s *FamilyService) GetFamily(actor *models.MemberContext) (*models.Family, error) {
	return s.familyRepo.GetFamilyByID(actor.FamilyID)
}

// RenameFamily updates the family's display name
func (s *FamilyService) RenameFamily(actor *models.MemberContext, name string) error {
	if err := validation.ValidateName(name); err != nil {
		return err
	}
	return s.familyRepo.UpdateFamilyName(actor.FamilyID, strings.TrimSpace(name))
}

func (s *FamilyService) requireChild(actor *models.MemberContext, childID int64) (*models.Member, error) {
	member, err := s.memberRepo.GetMemberForFamily(actor.FamilyID, childID)
	if err != nil {
		return nil, err
	}
	if member == nil || member.Role != models.RoleChild {
		return nil, ErrChildNotFound
	}
	return member, nil
}
