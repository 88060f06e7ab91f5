package storage

import (
	"errors"

	"eventRegistry/internal/models"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserExists        = errors.New("user already exists")
	ErrEventNotFound     = errors.New("event not found")
	ErrResetTokenInvalid = errors.New("reset token is invalid or expired")
	ErrAttendeesRemoved  = errors.New("attendees can only be appended")
)

// EventMutator changes an event loaded under an exclusive lock. Returning an
// error aborts the update and leaves the stored event untouched.
type EventMutator func(event *models.Event) error
