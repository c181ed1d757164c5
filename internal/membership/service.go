// internal/membership/service.go
package membership

import (
	"context"

	"github.com/google/uuid"

	"cinerent/internal/model"
)

// Service defines the interface for the membership service. Favorites are
// recommendation input only; rental operations never touch them.
type Service interface {
	Register(ctx context.Context, email, name, password string) (*model.User, error)
	Authenticate(ctx context.Context, email, password string) (*model.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	AddFavorite(ctx context.Context, userID, movieID uuid.UUID) error
	RemoveFavorite(ctx context.Context, userID, movieID uuid.UUID) error
	ListFavorites(ctx context.Context, userID uuid.UUID) ([]model.Movie, error)
	ListRented(ctx context.Context, userID uuid.UUID) ([]model.Movie, error)
}
