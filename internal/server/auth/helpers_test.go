package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/holocron/internal/common"
	"github.com/dmitrijs2005/holocron/internal/server/config"
	"github.com/dmitrijs2005/holocron/internal/server/models"
)

// memStore is an in-memory CredentialStore.
type memStore struct {
	mu       sync.Mutex
	byID     map[string]*models.Account
	err      error
	idLookup int
}

func newMemStore() *memStore {
	return &memStore{byID: map[string]*models.Account{}}
}

func (s *memStore) add(t *testing.T, h PasswordHasher, email, password string, role models.Role) *models.Account {
	t.Helper()
	digest, err := h.Hash(password)
	require.NoError(t, err)
	now := time.Now().UTC()
	a := &models.Account{ID: uuid.NewString(), Email: email, PasswordHash: digest, Role: role, CreatedAt: now, UpdatedAt: now}
	s.mu.Lock()
	s.byID[a.ID] = a
	s.mu.Unlock()
	return a
}

func (s *memStore) remove(id string) {
	s.mu.Lock()
	delete(s.byID, id)
	s.mu.Unlock()
}

func (s *memStore) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	for _, a := range s.byID {
		if a.Email == email {
			c := *a
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (s *memStore) FindByID(_ context.Context, id string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idLookup++
	if s.err != nil {
		return nil, s.err
	}
	a, ok := s.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *a
	return &c, nil
}

func testConfig() *config.Config {
	return &config.Config{SecretKey: "test-secret", TokenTTL: time.Hour, BcryptCost: bcrypt.MinCost}
}
