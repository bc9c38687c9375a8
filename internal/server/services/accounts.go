// Package services contains server-side business logic: account
// registration, film records, the external film sync and film artwork.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/dmitrijs2005/holocron/internal/common"
	"github.com/dmitrijs2005/holocron/internal/logging"
	"github.com/dmitrijs2005/holocron/internal/server/auth"
	"github.com/dmitrijs2005/holocron/internal/server/models"
	"github.com/dmitrijs2005/holocron/internal/server/repositories/repomanager"
)

// RegisterInput is the registration request.
type RegisterInput struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

// Validate checks email format, a 6..72 byte password and a known role.
func (in RegisterInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.Required, is.Email),
		validation.Field(&in.Password, validation.Required, validation.Length(6, 72)),
		validation.Field(&in.Role, validation.Required, validation.In(models.RoleUser, models.RoleAdmin)),
	)
}

// AccountService registers accounts.
type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      auth.PasswordHasher
	tokens      auth.TokenService
	logger      logging.Logger
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, hasher auth.PasswordHasher,
	tokens auth.TokenService, logger logging.Logger) *AccountService {
	return &AccountService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		tokens:      tokens,
		logger:      logger.With("module", "accounts"),
	}
}

// Register creates an account and logs it in. A taken email yields
// common.ErrorAlreadyExists; bad input yields common.ErrorValidation.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*auth.LoginResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorValidation, err)
	}

	repo := s.repomanager.Accounts(s.db)

	_, err := repo.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, common.ErrorAlreadyExists
	case !errors.Is(err, common.ErrorNotFound):
		return nil, fmt.Errorf("error checking email: %w", err)
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	account, err := repo.Create(ctx, &models.Account{Email: in.Email, PasswordHash: digest, Role: in.Role})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating account: %w", err)
	}

	identity := account.Identity()
	token, err := s.tokens.Issue(identity)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info(ctx, "account registered", "account_id", account.ID, "role", account.Role)
	return auth.NewLoginResult(token, identity), nil
}
