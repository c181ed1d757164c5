// internal/catalog/service.go
package catalog

import (
	"context"

	"github.com/google/uuid"

	"cinerent/internal/model"
)

// Service defines the interface for the catalog service.
type Service interface {
	AddMovie(ctx context.Context, title, genre string, rating float64, totalCopies int) (*model.Movie, error)
	GetMovie(ctx context.Context, id uuid.UUID) (*model.Movie, error)
	ListMovies(ctx context.Context) ([]model.Movie, error)
	ListByGenre(ctx context.Context, genre string) ([]model.Movie, error)
	SearchByTitle(ctx context.Context, query string) ([]model.Movie, error)
	UpdateCopies(ctx context.Context, id uuid.UUID, newTotal, newAvailable int) (*model.Movie, error)
	RemoveMovie(ctx context.Context, id uuid.UUID) error
}
