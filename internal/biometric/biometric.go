// Package biometric defines the face-recognition capability the system
// integrates with. No matching implementation ships here; the provider is an
// external collaborator behind this interface.
package biometric

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotImplemented = errors.New("biometric provider not implemented")

// Provider enrolls face samples and verifies them against enrolled users
type Provider interface {
	Enroll(ctx context.Context, userID uuid.UUID, sample []byte) error
	Verify(ctx context.Context, userID uuid.UUID, sample []byte) (bool, error)
}

// Unimplemented is the placeholder provider wired until a real matcher exists
type Unimplemented struct{}

func (Unimplemented) Enroll(ctx context.Context, userID uuid.UUID, sample []byte) error {
	return ErrNotImplemented
}

func (Unimplemented) Verify(ctx context.Context, userID uuid.UUID, sample []byte) (bool, error) {
	return false, nil
}
