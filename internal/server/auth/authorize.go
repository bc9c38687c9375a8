package auth

import (
	"github.com/dmitrijs2005/holocron/internal/common"
	"github.com/dmitrijs2005/holocron/internal/server/models"
)

// RoleSet lists the roles allowed to run an operation. An empty set means
// the operation is public.
type RoleSet map[models.Role]struct{}

// Roles builds a RoleSet.
func Roles(roles ...models.Role) RoleSet {
	s := make(RoleSet, len(roles))
	for _, r := range roles {
		s[r] = struct{}{}
	}
	return s
}

// Contains reports whether r is in s.
func (s RoleSet) Contains(r models.Role) bool {
	_, ok := s[r]
	return ok
}

// IsPublic reports whether s places no restriction.
func (s RoleSet) IsPublic() bool {
	return len(s) == 0
}

// Authorize allows when required is empty or identity's role is in it, and
// returns common.ErrForbidden otherwise (including a nil identity).
func Authorize(identity *models.Identity, required RoleSet) error {
	if required.IsPublic() {
		return nil
	}
	if identity == nil || !required.Contains(identity.Role) {
		return common.ErrForbidden
	}
	return nil
}
