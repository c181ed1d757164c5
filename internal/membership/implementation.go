// internal/membership/implementation.go
package membership

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/time/rate"

	"cinerent/internal/model"
	"cinerent/internal/store"
)

var (
	// ErrRateLimited is returned when register/authenticate exceeds the
	// configured request budget.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrInvalidCredentials is returned for any failed authentication; it
	// deliberately does not say whether the email or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailTaken is returned when registering with an email that already
	// has an account.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidInput wraps rejected registration input.
	ErrInvalidInput = errors.New("invalid input")
)

// service implements the Service interface. User lookups and the rented
// listing go through the shared store; registration, credentials and
// favorites are direct SQL, since they are this service's own records.
type service struct {
	db          *sql.DB
	store       store.Store
	rateLimiter *rate.Limiter
}

// NewService creates a new membership service instance.
func NewService(db *sql.DB, st store.Store, limiter *rate.Limiter) Service {
	return &service{
		db:          db,
		store:       st,
		rateLimiter: limiter,
	}
}

// Register creates a new user with credentials in one transaction.
func (s *service) Register(ctx context.Context, email, name, password string) (*model.User, error) {
	if !s.rateLimiter.Allow() {
		return nil, ErrRateLimited
	}
	if email == "" || name == "" {
		return nil, fmt.Errorf("%w: email and name are required", ErrInvalidInput)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}

	passwordHash, salt, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:        uuid.New(),
		Email:     email,
		Name:      name,
		Favorites: []uuid.UUID{},
		Rented:    []uuid.UUID{},
		Status:    "active",
		Version:   1,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (id, email, name, status, version)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`, user.ID, user.Email, user.Name, user.Status, user.Version).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO credentials (user_id, password_hash, salt)
		VALUES ($1, $2, $3)
	`, user.ID, passwordHash, salt)
	if err != nil {
		return nil, fmt.Errorf("insert credentials: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return user, nil
}

// Authenticate verifies a user's credentials and returns the user.
func (s *service) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	if !s.rateLimiter.Allow() {
		return nil, ErrRateLimited
	}

	var userID uuid.UUID
	var passwordHash, salt string
	err := s.db.QueryRowContext(ctx, `
		SELECT u.id, c.password_hash, c.salt
		FROM users u
		JOIN credentials c ON c.user_id = u.id
		WHERE u.email = $1
	`, email).Scan(&userID, &passwordHash, &salt)
	if err == sql.ErrNoRows {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("query credentials: %w", err)
	}

	ok, err := verifyPassword(password, salt, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	return s.store.FindUser(ctx, userID)
}

// GetUser retrieves a user with favorites and rented set populated.
func (s *service) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.store.FindUser(ctx, id)
}

// AddFavorite marks a movie as a favorite. Adding an existing favorite is
// a no-op, preserving the original insertion position.
func (s *service) AddFavorite(ctx context.Context, userID, movieID uuid.UUID) error {
	if _, err := s.store.FindUser(ctx, userID); err != nil {
		return err
	}
	if _, err := s.store.FindMovie(ctx, movieID); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_favorites (user_id, movie_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, movie_id) DO NOTHING
	`, userID, movieID)
	if err != nil {
		return fmt.Errorf("insert favorite: %w", err)
	}
	return nil
}

// RemoveFavorite unmarks a favorite. Removing an absent favorite is a no-op.
func (s *service) RemoveFavorite(ctx context.Context, userID, movieID uuid.UUID) error {
	if _, err := s.store.FindUser(ctx, userID); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		DELETE FROM user_favorites
		WHERE user_id = $1 AND movie_id = $2
	`, userID, movieID)
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	return nil
}

// ListFavorites returns the user's favorite movies in insertion order.
func (s *service) ListFavorites(ctx context.Context, userID uuid.UUID) ([]model.Movie, error) {
	user, err := s.store.FindUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.store.FindMoviesByIDs(ctx, user.Favorites)
}

// ListRented returns the movies the user currently holds.
func (s *service) ListRented(ctx context.Context, userID uuid.UUID) ([]model.Movie, error) {
	user, err := s.store.FindUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.store.FindMoviesByIDs(ctx, user.Rented)
}
