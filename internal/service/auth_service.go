package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"kiddierewards/internal/models"
	"kiddierewards/internal/repository"
	"kiddierewards/internal/security"
	"kiddierewards/internal/validation"
)

// AuthService handles parent account authentication: registration, password
// and OAuth sign-in, cookie sessions and password recovery. Family
// membership is handled separately during onboarding.
type AuthService struct {
	userRepo        *repository.UserRepository
	emailService    *EmailService
	sessionDuration time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo *repository.UserRepository, emailService *EmailService, sessionDuration time.Duration) *AuthService {
	return &AuthService{
		userRepo:        userRepo,
		emailService:    emailService,
		sessionDuration: sessionDuration,
	}
}

// Register creates a new parent account
func (s *AuthService) Register(email, password, name string) (*models.User, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}

	existingUser, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return nil, ErrEmailTaken
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.CreateUser(email, passwordHash, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login authenticates a user and creates a session
func (s *AuthService) Login(email, password string) (*models.Session, *models.User, error) {
	user, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, nil, ErrInvalidCredentials
	}

	if !security.CheckPassword(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	return s.createSession(user)
}

// OAuthLogin authenticates or creates a user from an OAuth identity. An
// existing account with the same email is linked on first OAuth sign-in.
func (s *AuthService) OAuthLogin(provider, subject, email, name string) (*models.Session, *models.User, error) {
	if provider == "" || subject == "" {
		return nil, nil, errors.New("missing oauth provider information")
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, nil, err
	}

	user, err := s.userRepo.GetUserByOAuth(provider, subject)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lookup oauth user: %w", err)
	}

	if user == nil {
		existingUser, err := s.userRepo.GetUserByEmail(email)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to check existing user: %w", err)
		}
		if existingUser != nil {
			if existingUser.OAuthProvider != "" && existingUser.OAuthProvider != provider {
				return nil, nil, ErrEmailTaken
			}
			if err := s.userRepo.LinkOAuthProvider(existingUser.ID, provider, subject); err != nil {
				return nil, nil, fmt.Errorf("failed to link oauth provider: %w", err)
			}
			user = existingUser
		} else {
			if name == "" {
				name = strings.Split(email, "@")[0]
			}
			// OAuth accounts get an unguessable placeholder password
			randomPasswordHash, err := security.HashPassword(security.GenerateSessionID())
			if err != nil {
				return nil, nil, fmt.Errorf("failed to generate oauth password hash: %w", err)
			}
			newUser, err := s.userRepo.CreateUser(email, randomPasswordHash, name)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to create oauth user: %w", err)
			}
			if err := s.userRepo.LinkOAuthProvider(newUser.ID, provider, subject); err != nil {
				return nil, nil, fmt.Errorf("failed to link oauth provider: %w", err)
			}
			user = newUser
		}
	}

	return s.createSession(user)
}

func (s *AuthService) createSession(user *models.User) (*models.Session, *models.User, error) {
	sessionID := security.GenerateSessionID()
	expiresAt := time.Now().Add(s.sessionDuration)

	session, err := s.userRepo.CreateSession(sessionID, user.ID, expiresAt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, user, nil
}

// ValidateSession checks if a session is valid and returns the associated user
func (s *AuthService) ValidateSession(sessionID string) (*models.User, error) {
	session, err := s.userRepo.GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if session.IsExpired() {
		_ = s.userRepo.DeleteSession(sessionID)
		return nil, ErrSessionExpired
	}

	user, err := s.userRepo.GetUserByID(session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrSessionNotFound
	}

	return user, nil
}

// Logout invalidates a session
func (s *AuthService) Logout(sessionID string) error {
	if err := s.userRepo.DeleteSession(sessionID); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}

// CleanupExpiredSessions removes expired sessions from the database
func (s *AuthService) CleanupExpiredSessions() error {
	if err := s.userRepo.DeleteExpiredSessions(); err != nil {
		return fmt.Errorf("failed to cleanup sessions: %w", err)
	}
	return nil
}

// RequestPasswordReset creates a reset token and mails it to the account.
// A missing account is not revealed to the caller.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil
	}

	token, err := generateSecureToken(32)
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	// One outstanding token per account
	_ = s.userRepo.DeleteUserResetTokens(user.ID)

	expiresAt := time.Now().Add(1 * time.Hour)
	if err := s.userRepo.CreatePasswordResetToken(token, user.ID, expiresAt); err != nil {
		return fmt.Errorf("failed to create reset token: %w", err)
	}

	if s.emailService != nil {
		if err := s.emailService.SendPasswordResetEmail(ctx, user.Email, user.Name, token); err != nil {
			return fmt.Errorf("failed to send reset email: %w", err)
		}
	}

	return nil
}

// ValidatePasswordResetToken checks if a reset token is usable
func (s *AuthService) ValidatePasswordResetToken(token string) (bool, error) {
	resetToken, err := s.userRepo.GetPasswordResetToken(token)
	if err != nil {
		return false, fmt.Errorf("failed to get reset token: %w", err)
	}

	if resetToken == nil || resetToken.Used || resetToken.IsExpired() {
		return false, nil
	}

	return true, nil
}

// ResetPassword resets a user's password using a valid token
func (s *AuthService) ResetPassword(token, newPassword string) error {
	resetToken, err := s.userRepo.GetPasswordResetToken(token)
	if err != nil {
		return fmt.Errorf("failed to get reset token: %w", err)
	}

	if resetToken == nil {
		return errors.New("invalid or expired reset token")
	}
	if resetToken.Used {
		return errors.New("this reset link has already been used")
	}
	if resetToken.IsExpired() {
		return errors.New("this reset link has expired")
	}

	if err := validation.ValidatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(resetToken.UserID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.userRepo.MarkResetTokenUsed(token); err != nil {
		return fmt.Errorf("failed to mark token as used: %w", err)
	}

	return nil
}

// CleanupExpiredResetTokens removes expired or consumed reset tokens
func (s *AuthService) CleanupExpiredResetTokens() error {
	if err := s.userRepo.DeleteExpiredResetTokens(); err != nil {
		return fmt.Errorf("failed to cleanup reset tokens: %w", err)
	}
	return nil
}

// generateSecureToken generates a cryptographically secure random token
func generateSecureToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
