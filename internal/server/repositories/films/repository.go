// Package films provides PostgreSQL-backed persistence for film records.
package films

import (
	"context"

	"github.com/dmitrijs2005/holocron/internal/server/models"
)

// Repository stores films. Single-record operations return
// common.ErrorNotFound when the id does not exist.
type Repository interface {
	List(ctx context.Context, q models.ListQuery) ([]*models.Film, error)
	Count(ctx context.Context) (int, error)
	GetByID(ctx context.Context, id string) (*models.Film, error)
	Create(ctx context.Context, film *models.Film) (*models.Film, error)
	CreateMany(ctx context.Context, films []*models.Film) error
	Update(ctx context.Context, film *models.Film) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) (int64, error)
	SetArtworkKey(ctx context.Context, id, key string) error
}
