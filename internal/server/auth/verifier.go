package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/holocron/internal/common"
	"github.com/dmitrijs2005/holocron/internal/server/models"
)

// CredentialStore is the read side of the account repository the verifier
// depends on.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	FindByID(ctx context.Context, id string) (*models.Account, error)
}

// IdentityVerifier turns credentials or verified claims into an Identity.
type IdentityVerifier interface {
	ValidateCredentials(ctx context.Context, email, password string) (*models.Identity, error)
	ValidateToken(ctx context.Context, claims *Claims) (*models.Identity, error)
}

// Verifier implements IdentityVerifier over a CredentialStore and a
// PasswordHasher.
type Verifier struct {
	store  CredentialStore
	hasher PasswordHasher
}

func NewVerifier(store CredentialStore, hasher PasswordHasher) *Verifier {
	return &Verifier{store: store, hasher: hasher}
}

// ValidateCredentials returns common.ErrInvalidCredentials for an unknown
// email and for a wrong password alike. Store faults are returned wrapped.
func (v *Verifier) ValidateCredentials(ctx context.Context, email, password string) (*models.Identity, error) {
	account, err := v.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find account by email: %w", err)
	}

	if !v.hasher.Verify(password, account.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}

	return account.Identity(), nil
}

// ValidateToken resolves the token subject to a live account. A deleted
// account yields (nil, nil).
func (v *Verifier) ValidateToken(ctx context.Context, claims *Claims) (*models.Identity, error) {
	account, err := v.store.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find account by id: %w", err)
	}
	return account.Identity(), nil
}
