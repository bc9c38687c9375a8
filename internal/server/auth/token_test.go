package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/holocron/internal/common"
	"github.com/dmitrijs2005/holocron/internal/server/config"
	"github.com/dmitrijs2005/holocron/internal/server/models"
)

var alice = &models.Identity{ID: "3f1c2a8e-0000-4000-8000-000000000001", Email: "alice@example.com", Role: models.RoleUser}

func TestIssueAndVerify_RoundTrip(t *testing.T) {
	t.Parallel()
	issuer := NewTokenIssuer(testConfig())

	tok, err := issuer.Issue(alice)
	require.NoError(t, err)

	claims, err := issuer.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, claims.Subject)
	assert.Equal(t, alice.Email, claims.Email)
	assert.Equal(t, alice.Role, claims.Role)
	require.NotNil(t, claims.IssuedAt)
	require.NotNil(t, claims.ExpiresAt)
	assert.Equal(t, time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestVerify_ExpiredToken(t *testing.T) {
	t.Parallel()
	issuer := NewTokenIssuer(testConfig())
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	tok, err := issuer.Issue(alice)
	require.NoError(t, err)

	fresh := NewTokenIssuer(testConfig())
	_, err = fresh.Verify(tok)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestVerify_Failures(t *testing.T) {
	t.Parallel()
	issuer := NewTokenIssuer(testConfig())
	good, err := issuer.Issue(alice)
	require.NoError(t, err)

	other := NewTokenIssuer(&config.Config{SecretKey: "other", TokenTTL: time.Hour})
	misSigned, err := other.Issue(alice)
	require.NoError(t, err)

	noneTok, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: alice.ID, ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: alice.ID, ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: alice.ID},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	parts := strings.Split(good, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	tests := map[string]string{
		"empty":      "",
		"malformed":  "not.a.jwt",
		"mis-signed": misSigned,
		"alg none":   noneTok,
		"wrong alg":  hs512,
		"no exp":     noExp,
		"no subject": noSub,
		"tampered":   tampered,
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := issuer.Verify(tok)
			assert.ErrorIs(t, err, common.ErrInvalidToken)
			assert.Equal(t, common.ErrInvalidToken.Error(), err.Error())
		})
	}
}
