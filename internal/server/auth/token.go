package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/holocron/internal/common"
	"github.com/dmitrijs2005/holocron/internal/server/config"
	"github.com/dmitrijs2005/holocron/internal/server/models"
)

// Claims is the bearer token payload: standard registered claims (sub, iat,
// exp) plus the account's email and role.
type Claims struct {
	jwt.RegisteredClaims
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

// TokenService issues and verifies bearer tokens.
type TokenService interface {
	Issue(identity *models.Identity) (string, error)
	Verify(token string) (*Claims, error)
}

// TokenIssuer signs HS256 JWTs with a key and lifetime fixed at construction.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer reads the signing key and token lifetime from cfg.
func NewTokenIssuer(cfg *config.Config) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(cfg.SecretKey),
		ttl:    cfg.TokenTTL,
		now:    time.Now,
	}
}

// Issue encodes identity into a signed, time-limited token.
func (t *TokenIssuer) Issue(identity *models.Identity) (string, error) {
	now := t.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
		Email: identity.Email,
		Role:  identity.Role,
	})

	return token.SignedString(t.secret)
}

// Verify checks signature, algorithm and expiry. Every failure is reported
// as common.ErrInvalidToken.
func (t *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !token.Valid || claims.Subject == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
