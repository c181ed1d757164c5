// internal/store/memory.go
package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"cinerent/internal/model"
)

// Memory implements Store entirely in memory. It keeps the same
// compare-and-swap contract as the Postgres store and is what the unit and
// property tests run against.
type Memory struct {
	mu     sync.Mutex
	movies map[uuid.UUID]*model.Movie
	users  map[uuid.UUID]*model.User
	ledger []LedgerEntry
}

// LedgerEntry mirrors a rental_events row.
type LedgerEntry struct {
	UserID    uuid.UUID
	MovieID   uuid.UUID
	Action    string
	CreatedAt time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		movies: make(map[uuid.UUID]*model.Movie),
		users:  make(map[uuid.UUID]*model.User),
	}
}

// PutMovie inserts or replaces a movie record.
func (s *Memory) PutMovie(m model.Movie) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copy := m
	s.movies[m.ID] = &copy
}

// PutUser inserts or replaces a user record.
func (s *Memory) PutUser(u model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copy := u
	copy.Favorites = append([]uuid.UUID(nil), u.Favorites...)
	copy.Rented = append([]uuid.UUID(nil), u.Rented...)
	s.users[u.ID] = &copy
}

// Ledger returns a snapshot of the rental event ledger.
func (s *Memory) Ledger() []LedgerEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]LedgerEntry(nil), s.ledger...)
}

// FindMovie returns a copy of the movie or a model.NotFoundError.
func (s *Memory) FindMovie(ctx context.Context, id uuid.UUID) (*model.Movie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.movies[id]
	if !ok {
		return nil, &model.NotFoundError{Kind: model.RecordMovie, ID: id}
	}
	copy := *m
	return &copy, nil
}

// FindUser returns a copy of the user or a model.NotFoundError.
func (s *Memory) FindUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, &model.NotFoundError{Kind: model.RecordUser, ID: id}
	}
	return cloneUser(u), nil
}

// FindMoviesByIDs returns movies in input order, skipping unknown ids.
func (s *Memory) FindMoviesByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Movie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	movies := make([]model.Movie, 0, len(ids))
	for _, id := range ids {
		if m, ok := s.movies[id]; ok {
			movies = append(movies, *m)
		}
	}
	return movies, nil
}

// FindMoviesByGenre returns all movies whose genre is among genres.
func (s *Memory) FindMoviesByGenre(ctx context.Context, genres []string) ([]model.Movie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	wanted := make(map[string]struct{}, len(genres))
	for _, g := range genres {
		wanted[g] = struct{}{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	movies := []model.Movie{}
	for _, m := range s.movies {
		if _, ok := wanted[m.Genre]; ok {
			movies = append(movies, *m)
		}
	}
	return movies, nil
}

// FindOtherUsers returns all users except the excluded one, id-ascending.
func (s *Memory) FindOtherUsers(ctx context.Context, excluding uuid.UUID) ([]model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	users := []model.User{}
	for id, u := range s.users {
		if id == excluding {
			continue
		}
		users = append(users, *cloneUser(u))
	}
	// Deterministic order, matching the Postgres ORDER BY id.
	for i := 1; i < len(users); i++ {
		for j := i; j > 0 && lessUUID(users[j].ID, users[j-1].ID); j-- {
			users[j], users[j-1] = users[j-1], users[j]
		}
	}
	return users, nil
}

// CommitAtomic applies the mutation under the store lock with the same
// version compare-and-swap as the Postgres implementation.
func (s *Memory) CommitAtomic(ctx context.Context, mut RentalMutation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	movie, ok := s.movies[mut.MovieID]
	if !ok {
		return &model.NotFoundError{Kind: model.RecordMovie, ID: mut.MovieID}
	}
	user, ok := s.users[mut.UserID]
	if !ok {
		return &model.NotFoundError{Kind: model.RecordUser, ID: mut.UserID}
	}

	if movie.Version != mut.ExpectedVersion {
		return model.ErrConflict
	}
	next := movie.Available + mut.CopiesDelta
	if next < 0 || next > movie.TotalCopies {
		return model.ErrConflict
	}

	var action string
	switch mut.Op {
	case OpAddRented:
		if user.HasRented(mut.MovieID) {
			return model.ErrConflict
		}
		user.Rented = append(user.Rented, mut.MovieID)
		action = "rented"
	case OpRemoveRented:
		idx := -1
		for i, id := range user.Rented {
			if id == mut.MovieID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return model.ErrConflict
		}
		user.Rented = append(user.Rented[:idx], user.Rented[idx+1:]...)
		action = "returned"
	}

	movie.Available = next
	movie.Version++
	movie.UpdatedAt = time.Now().UTC()
	s.ledger = append(s.ledger, LedgerEntry{
		UserID:    mut.UserID,
		MovieID:   mut.MovieID,
		Action:    action,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

func cloneUser(u *model.User) *model.User {
	copy := *u
	copy.Favorites = append([]uuid.UUID(nil), u.Favorites...)
	copy.Rented = append([]uuid.UUID(nil), u.Rented...)
	return &copy
}

func lessUUID(a, b uuid.UUID) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
