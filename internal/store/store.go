// internal/store/store.go
package store

import (
	"context"

	"github.com/google/uuid"

	"cinerent/internal/model"
)

// RentedOp says what CommitAtomic does to the user's rented set.
type RentedOp int

const (
	// OpAddRented adds the movie to the user's rented set (a rent).
	OpAddRented RentedOp = iota
	// OpRemoveRented removes the movie from the user's rented set (a return).
	OpRemoveRented
)

// RentalMutation is the atomic unit of a rent or return: a copies delta on
// one movie and a membership change on one user's rented set. Both commit
// together or neither does. ExpectedVersion is the movie version the caller
// read; a mismatch at commit time means the caller lost a race and gets
// model.ErrConflict.
type RentalMutation struct {
	MovieID         uuid.UUID
	ExpectedVersion int
	CopiesDelta     int
	UserID          uuid.UUID
	Op              RentedOp
}

// Store is the catalog store contract the rental service and the
// recommendation engine depend on. Implementations must make CommitAtomic
// race-free: concurrent commits against the same movie serialize, and a
// stale ExpectedVersion is rejected rather than applied.
type Store interface {
	// FindMovie returns the movie or a model.NotFoundError.
	FindMovie(ctx context.Context, id uuid.UUID) (*model.Movie, error)

	// FindUser returns the user with favorites (in insertion order) and the
	// rented set populated, or a model.NotFoundError.
	FindUser(ctx context.Context, id uuid.UUID) (*model.User, error)

	// FindMoviesByIDs returns the movies for the given ids, preserving the
	// input order. Unknown ids are skipped, not errors.
	FindMoviesByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Movie, error)

	// FindMoviesByGenre returns every movie whose genre is in genres.
	FindMoviesByGenre(ctx context.Context, genres []string) ([]model.Movie, error)

	// FindOtherUsers returns all users except the excluded one, id-ascending,
	// with favorites populated.
	FindOtherUsers(ctx context.Context, excluding uuid.UUID) ([]model.User, error)

	// CommitAtomic applies the rental mutation as one atomic unit. It returns
	// model.ErrConflict when the expected version is stale or the commit lost
	// a race. Once a commit has started it runs to completion or rolls back
	// entirely; no partial state is ever visible.
	CommitAtomic(ctx context.Context, mut RentalMutation) error
}
