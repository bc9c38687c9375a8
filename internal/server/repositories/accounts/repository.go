// Package accounts provides the credential store: persistence of accounts
// keyed by email and by id.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/holocron/internal/server/models"
)

// Repository looks up and creates accounts. Lookups return
// common.ErrorNotFound when no account matches; Create returns
// common.ErrorAlreadyExists when the email is taken.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	FindByID(ctx context.Context, id string) (*models.Account, error)
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
}
