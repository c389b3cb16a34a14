package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"kiddierewards/internal/credentials"
	"kiddierewards/internal/models"
	"kiddierewards/internal/repository"
	"kiddierewards/internal/validation"
)

// InvitationLifetime is how long a join code stays redeemable
const InvitationLifetime = 7 * 24 * time.Hour

// codeRetries bounds the retry loop on global code collisions
const codeRetries = 5

// InvitationService manages family join codes for inviting co-parents
type InvitationService struct {
	invitationRepo *repository.InvitationRepository
	familyRepo     *repository.FamilyRepository
	emailService   *EmailService
}

// NewInvitationService creates a new invitation service
func NewInvitationService(invitationRepo *repository.InvitationRepository, familyRepo *repository.FamilyRepository, emailService *EmailService) *InvitationService {
	return &InvitationService{
		invitationRepo: invitationRepo,
		familyRepo:     familyRepo,
		emailService:   emailService,
	}
}

// Create issues a new invitation for the actor's family. When email is
// non-empty the code is also mailed to the invitee; a mail failure does not
// void the invitation.
func (s *InvitationService) Create(ctx context.Context, actor *models.MemberContext, email string) (*models.FamilyInvitation, error) {
	if email != "" {
		if err := validation.ValidateEmail(email); err != nil {
			return nil, err
		}
	}

	var invitation *models.FamilyInvitation
	for attempt := 0; attempt < codeRetries; attempt++ {
		code, err := credentials.GenerateInvitationCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate code: %w", err)
		}

		invitation = &models.FamilyInvitation{
			FamilyID:          actor.FamilyID,
			Code:              code,
			ExpiresAt:         time.Now().UTC().Add(InvitationLifetime),
			CreatedByMemberID: actor.MemberID,
		}
		err = s.invitationRepo.CreateInvitation(invitation)
		if err == nil {
			break
		}
		if !errors.Is(err, repository.ErrCodeTaken) {
			return nil, err
		}
		invitation = nil
	}
	if invitation == nil {
		return nil, errors.New("could not generate a unique invitation code")
	}

	if email != "" && s.emailService != nil {
		family, err := s.familyRepo.GetFamilyByID(actor.FamilyID)
		if err != nil {
			return nil, err
		}
		familyName := ""
		if family != nil {
			familyName = family.Name
		}
		if err := s.emailService.SendInvitationEmail(ctx, email, familyName, invitation.Code); err != nil {
			log.Printf("Failed to send invitation email to %s: %v", email, err)
		}
	}

	return invitation, nil
}

// List returns all invitations of the actor's family, newest first
func (s *InvitationService) List(actor *models.MemberContext) ([]models.FamilyInvitation, error) {
	return s.invitationRepo.ListInvitations(actor.FamilyID)
}

// Revoke cancels an invitation. Reports false when the invitation does not
// exist in the actor's family.
func (s *InvitationService) Revoke(actor *models.MemberContext, invitationID int64) (bool, error) {
	return s.invitationRepo.RevokeInvitation(actor.FamilyID, invitationID)
}
