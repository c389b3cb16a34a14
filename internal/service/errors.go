package service

import "errors"

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
	ErrChildNotFound      = errors.New("child not found in family")
	ErrInvitationInvalid  = errors.New("invitation code is invalid or expired")
	ErrAlreadyInFamily    = errors.New("account already belongs to a family")
)
