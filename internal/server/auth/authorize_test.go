package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrijs2005/holocron/internal/common"
	"github.com/dmitrijs2005/holocron/internal/server/models"
)

func TestAuthorize(t *testing.T) {
	t.Parallel()

	user := &models.Identity{ID: "u", Role: models.RoleUser}
	admin := &models.Identity{ID: "a", Role: models.RoleAdmin}

	tests := []struct {
		name     string
		identity *models.Identity
		roles    RoleSet
		want     error
	}{
		{name: "public, anonymous", identity: nil, roles: nil},
		{name: "public, empty set", identity: user, roles: Roles()},
		{name: "public, admin", identity: admin, roles: RoleSet{}},
		{name: "user needs admin", identity: user, roles: Roles(models.RoleAdmin), want: common.ErrForbidden},
		{name: "admin needs admin", identity: admin, roles: Roles(models.RoleAdmin)},
		{name: "anonymous needs user", identity: nil, roles: Roles(models.RoleUser), want: common.ErrForbidden},
		{name: "user reads single", identity: user, roles: Roles(models.RoleUser, models.RoleAdmin)},
		{name: "admin reads single", identity: admin, roles: Roles(models.RoleUser, models.RoleAdmin)},
		{name: "unknown role", identity: &models.Identity{Role: "ROOT"}, roles: Roles(models.RoleUser), want: common.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Authorize(tt.identity, tt.roles)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Authorize(tt.identity, tt.roles), "same inputs, same decision")
		})
	}
}

func TestIdentityContext(t *testing.T) {
	t.Parallel()

	assert.Nil(t, IdentityFrom(context.Background()))

	id := &models.Identity{ID: "u", Role: models.RoleUser}
	assert.Same(t, id, IdentityFrom(WithIdentity(context.Background(), id)))
}
