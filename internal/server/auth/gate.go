// Package auth implements authentication and authorization: password
// hashing, bearer token issuance and verification, identity resolution and
// role checks.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/holocron/internal/common"
	"github.com/dmitrijs2005/holocron/internal/logging"
	"github.com/dmitrijs2005/holocron/internal/server/models"
)

// AttemptKind tags which strategy an Attempt uses.
type AttemptKind int

const (
	ByCredentials AttemptKind = iota + 1
	ByToken
)

func (k AttemptKind) String() string {
	switch k {
	case ByCredentials:
		return "credentials"
	case ByToken:
		return "token"
	default:
		return "unknown"
	}
}

// Attempt is one authentication attempt. Email and Password are read for
// ByCredentials, Header (the raw Authorization value) for ByToken.
type Attempt struct {
	Kind     AttemptKind
	Email    string
	Password string
	Header   string
}

// Credentials builds a ByCredentials attempt.
func Credentials(email, password string) Attempt {
	return Attempt{Kind: ByCredentials, Email: email, Password: password}
}

// Bearer builds a ByToken attempt from an Authorization header value.
func Bearer(header string) Attempt {
	return Attempt{Kind: ByToken, Header: header}
}

// UserSummary is the public part of an identity returned on login.
type UserSummary struct {
	ID    string      `json:"id"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

// LoginResult is the body returned by a successful login.
type LoginResult struct {
	Token string      `json:"access_token"`
	User  UserSummary `json:"user"`
}

// NewLoginResult pairs a freshly issued token with identity.
func NewLoginResult(token string, identity *models.Identity) *LoginResult {
	return &LoginResult{
		Token: token,
		User:  UserSummary{ID: identity.ID, Email: identity.Email, Role: identity.Role},
	}
}

// Gate resolves attempts to identities. Failed checks come back wrapping
// common.ErrUnauthenticated; store faults are returned as they are.
type Gate struct {
	verifier IdentityVerifier
	tokens   TokenService
	logger   logging.Logger
}

func NewGate(verifier IdentityVerifier, tokens TokenService, logger logging.Logger) *Gate {
	return &Gate{verifier: verifier, tokens: tokens, logger: logger.With("module", "auth")}
}

// Resolve runs a single attempt to a terminal state.
func (g *Gate) Resolve(ctx context.Context, a Attempt) (*models.Identity, error) {
	switch a.Kind {
	case ByCredentials:
		return g.resolveCredentials(ctx, a.Email, a.Password)
	case ByToken:
		return g.resolveToken(ctx, a.Header)
	default:
		return nil, fmt.Errorf("unknown attempt kind %d", a.Kind)
	}
}

func (g *Gate) resolveCredentials(ctx context.Context, email, password string) (*models.Identity, error) {
	identity, err := g.verifier.ValidateCredentials(ctx, email, password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			g.logger.Debug(ctx, "credential check failed")
			return nil, fmt.Errorf("%w: %w", common.ErrUnauthenticated, err)
		}
		g.logger.Error(ctx, "credential check aborted", "error", err)
		return nil, err
	}
	return identity, nil
}

func (g *Gate) resolveToken(ctx context.Context, header string) (*models.Identity, error) {
	raw, ok := BearerToken(header)
	if !ok {
		return nil, common.ErrUnauthenticated
	}

	claims, err := g.tokens.Verify(raw)
	if err != nil {
		g.logger.Debug(ctx, "token rejected")
		return nil, fmt.Errorf("%w: %w", common.ErrUnauthenticated, common.ErrInvalidToken)
	}

	identity, err := g.verifier.ValidateToken(ctx, claims)
	if err != nil {
		g.logger.Error(ctx, "token subject lookup failed", "error", err)
		return nil, err
	}
	if identity == nil {
		g.logger.Debug(ctx, "token subject no longer exists", "account_id", claims.Subject)
		return nil, common.ErrUnauthenticated
	}
	return identity, nil
}

// Login checks credentials and issues a bearer token.
func (g *Gate) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	identity, err := g.Resolve(ctx, Credentials(email, password))
	if err != nil {
		return nil, err
	}

	token, err := g.tokens.Issue(identity)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	g.logger.Info(ctx, "login succeeded", "account_id", identity.ID, "role", identity.Role)
	return NewLoginResult(token, identity), nil
}

// RequireAuthenticated resolves the Authorization header of a protected
// request.
func (g *Gate) RequireAuthenticated(ctx context.Context, header string) (*models.Identity, error) {
	return g.Resolve(ctx, Bearer(header))
}

// RequireRole applies Authorize.
func (g *Gate) RequireRole(identity *models.Identity, required RoleSet) error {
	return Authorize(identity, required)
}

// BearerToken extracts the token from "Bearer <token>". The scheme is
// matched case-insensitively.
func BearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
