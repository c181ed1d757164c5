// internal/rental/service.go
package rental

import (
	"context"

	"github.com/google/uuid"

	"cinerent/internal/model"
)

// Service defines the interface for the rental service. Both operations
// return the updated movie on success and one of the model error kinds on
// failure (NotFoundError, NoCopiesError, NotRentedError, AlreadyRentedError,
// ErrConflict).
type Service interface {
	Rent(ctx context.Context, userID, movieID uuid.UUID) (*model.Movie, error)
	Return(ctx context.Context, userID, movieID uuid.UUID) (*model.Movie, error)
}
