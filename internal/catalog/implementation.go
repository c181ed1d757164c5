// internal/catalog/implementation.go
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"cinerent/internal/model"
)

// ErrCopiesOut is returned when a movie cannot be retired or shrunk because
// copies are still checked out.
var ErrCopiesOut = errors.New("movie has copies checked out")

// ValidationError indicates a rejected catalog input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// service implements the Service interface with direct SQL on the shared
// database. Updates carry a version check so concurrent catalog edits
// cannot overwrite each other or a rental commit.
type service struct {
	db *sql.DB
}

// NewService creates a new catalog service instance.
func NewService(db *sql.DB) Service {
	return &service{db: db}
}

// AddMovie creates a new movie with all copies available.
func (s *service) AddMovie(ctx context.Context, title, genre string, rating float64, totalCopies int) (*model.Movie, error) {
	if title == "" {
		return nil, &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if genre == "" {
		return nil, &ValidationError{Field: "genre", Reason: "must not be empty"}
	}
	if rating < 0 || rating > 10 {
		return nil, &ValidationError{Field: "rating", Reason: "must be between 0 and 10"}
	}
	if totalCopies < 0 {
		return nil, &ValidationError{Field: "total_copies", Reason: "must not be negative"}
	}

	movie := &model.Movie{
		ID:          uuid.New(),
		Title:       title,
		Genre:       genre,
		Rating:      rating,
		TotalCopies: totalCopies,
		Available:   totalCopies,
		Status:      "active",
		Version:     1,
	}

	const query = `
		INSERT INTO movies (id, title, genre, rating, total_copies, available, status, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	err := s.db.QueryRowContext(ctx, query,
		movie.ID, movie.Title, movie.Genre, movie.Rating,
		movie.TotalCopies, movie.Available, movie.Status, movie.Version,
	).Scan(&movie.CreatedAt, &movie.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert movie: %w", err)
	}

	return movie, nil
}

// GetMovie retrieves a movie by its ID.
func (s *service) GetMovie(ctx context.Context, id uuid.UUID) (*model.Movie, error) {
	const query = `
		SELECT id, title, genre, rating, total_copies, available, status, version, created_at, updated_at
		FROM movies
		WHERE id = $1
	`
	return s.scanMovie(s.db.QueryRowContext(ctx, query, id), id)
}

func (s *service) scanMovie(row *sql.Row, id uuid.UUID) (*model.Movie, error) {
	movie := &model.Movie{}
	err := row.Scan(
		&movie.ID, &movie.Title, &movie.Genre, &movie.Rating,
		&movie.TotalCopies, &movie.Available, &movie.Status, &movie.Version,
		&movie.CreatedAt, &movie.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, &model.NotFoundError{Kind: model.RecordMovie, ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("query movie: %w", err)
	}
	return movie, nil
}

// ListMovies returns the whole active catalog, id-ascending.
func (s *service) ListMovies(ctx context.Context) ([]model.Movie, error) {
	const query = `
		SELECT id, title, genre, rating, total_copies, available, status, version, created_at, updated_at
		FROM movies
		WHERE status = 'active'
		ORDER BY id ASC
	`
	return s.queryMovies(ctx, query)
}

// ListByGenre returns the active movies in one genre, id-ascending.
func (s *service) ListByGenre(ctx context.Context, genre string) ([]model.Movie, error) {
	if genre == "" {
		return nil, &ValidationError{Field: "genre", Reason: "must not be empty"}
	}
	const query = `
		SELECT id, title, genre, rating, total_copies, available, status, version, created_at, updated_at
		FROM movies
		WHERE status = 'active' AND genre = $1
		ORDER BY id ASC
	`
	return s.queryMovies(ctx, query, genre)
}

// SearchByTitle finds active movies whose title contains the query,
// case-insensitively.
func (s *service) SearchByTitle(ctx context.Context, query string) ([]model.Movie, error) {
	if query == "" {
		return nil, &ValidationError{Field: "q", Reason: "must not be empty"}
	}
	const sqlQuery = `
		SELECT id, title, genre, rating, total_copies, available, status, version, created_at, updated_at
		FROM movies
		WHERE status = 'active' AND title ILIKE '%' || $1 || '%'
		ORDER BY id ASC
		LIMIT 50
	`
	return s.queryMovies(ctx, sqlQuery, query)
}

func (s *service) queryMovies(ctx context.Context, query string, args ...interface{}) ([]model.Movie, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query movies: %w", err)
	}
	defer rows.Close()

	movies := []model.Movie{}
	for rows.Next() {
		var m model.Movie
		err := rows.Scan(
			&m.ID, &m.Title, &m.Genre, &m.Rating, &m.TotalCopies, &m.Available,
			&m.Status, &m.Version, &m.CreatedAt, &m.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		movies = append(movies, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movies: %w", err)
	}
	return movies, nil
}

// UpdateCopies changes a movie's copy counts. The checked-out count
// (total - available) must be preserved, so shrinking below it is rejected.
func (s *service) UpdateCopies(ctx context.Context, id uuid.UUID, newTotal, newAvailable int) (*model.Movie, error) {
	if newTotal < 0 || newAvailable < 0 {
		return nil, &ValidationError{Field: "copies", Reason: "must not be negative"}
	}
	if newAvailable > newTotal {
		return nil, &ValidationError{Field: "available", Reason: "must not exceed total_copies"}
	}

	movie, err := s.GetMovie(ctx, id)
	if err != nil {
		return nil, err
	}
	if newTotal-newAvailable != movie.TotalCopies-movie.Available {
		return nil, ErrCopiesOut
	}

	const query = `
		UPDATE movies
		SET total_copies = $1, available = $2, version = version + 1, updated_at = NOW()
		WHERE id = $3 AND version = $4
	`
	result, err := s.db.ExecContext(ctx, query, newTotal, newAvailable, id, movie.Version)
	if err != nil {
		return nil, fmt.Errorf("update movie copies: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update movie copies: %w", err)
	}
	if affected == 0 {
		return nil, model.ErrConflict
	}

	movie.TotalCopies = newTotal
	movie.Available = newAvailable
	movie.Version++
	return movie, nil
}

// RemoveMovie retires a movie from the catalog. Movies with copies still
// checked out cannot be retired.
func (s *service) RemoveMovie(ctx context.Context, id uuid.UUID) error {
	movie, err := s.GetMovie(ctx, id)
	if err != nil {
		return err
	}
	if movie.Available < movie.TotalCopies {
		return ErrCopiesOut
	}

	const query = `
		UPDATE movies
		SET status = 'retired', version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2
	`
	result, err := s.db.ExecContext(ctx, query, id, movie.Version)
	if err != nil {
		return fmt.Errorf("retire movie: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("retire movie: %w", err)
	}
	if affected == 0 {
		return model.ErrConflict
	}
	return nil
}
