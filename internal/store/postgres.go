// internal/store/postgres.go
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"cinerent/internal/model"
)

// Postgres implements Store on top of a shared PostgreSQL database.
// CommitAtomic runs under serializable isolation with a version
// compare-and-swap on the movie row, so concurrent rentals of the same
// movie serialize and stale writers get model.ErrConflict.
type Postgres struct {
	db     *sql.DB
	tracer trace.Tracer
}

// NewPostgres creates a Postgres store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{
		db:     db,
		tracer: otel.Tracer("cinerent/store"),
	}
}

// FindMovie retrieves a movie by id.
func (s *Postgres) FindMovie(ctx context.Context, id uuid.UUID) (*model.Movie, error) {
	ctx, span := s.tracer.Start(ctx, "store.find_movie",
		trace.WithAttributes(attribute.String("movie.id", id.String())),
	)
	defer span.End()

	const query = `
		SELECT id, title, genre, rating, total_copies, available, status, version, created_at, updated_at
		FROM movies
		WHERE id = $1
	`
	movie := &model.Movie{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&movie.ID,
		&movie.Title,
		&movie.Genre,
		&movie.Rating,
		&movie.TotalCopies,
		&movie.Available,
		&movie.Status,
		&movie.Version,
		&movie.CreatedAt,
		&movie.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, &model.NotFoundError{Kind: model.RecordMovie, ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("query movie: %w", err)
	}
	return movie, nil
}

// FindUser retrieves a user with favorites (insertion order) and the
// rented set populated.
func (s *Postgres) FindUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	ctx, span := s.tracer.Start(ctx, "store.find_user",
		trace.WithAttributes(attribute.String("user.id", id.String())),
	)
	defer span.End()

	const query = `
		SELECT id, email, name, status, version, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	user := &model.User{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.Status,
		&user.Version,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, &model.NotFoundError{Kind: model.RecordUser, ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}

	user.Favorites, err = s.listUserMovies(ctx, `
		SELECT movie_id FROM user_favorites WHERE user_id = $1 ORDER BY position ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query favorites: %w", err)
	}

	user.Rented, err = s.listUserMovies(ctx, `
		SELECT movie_id FROM user_rentals WHERE user_id = $1 ORDER BY rented_at ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query rented set: %w", err)
	}

	return user, nil
}

func (s *Postgres) listUserMovies(ctx context.Context, query string, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// FindMoviesByIDs returns movies in the order of the given ids, skipping
// ids that no longer resolve.
func (s *Postgres) FindMoviesByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Movie, error) {
	if len(ids) == 0 {
		return []model.Movie{}, nil
	}

	ctx, span := s.tracer.Start(ctx, "store.find_movies_by_ids",
		trace.WithAttributes(attribute.Int("id.count", len(ids))),
	)
	defer span.End()

	idStrings := make([]string, len(ids))
	for i, id := range ids {
		idStrings[i] = id.String()
	}

	const query = `
		SELECT id, title, genre, rating, total_copies, available, status, version, created_at, updated_at
		FROM movies
		WHERE id = ANY($1::uuid[])
	`
	movies, err := s.queryMovies(ctx, query, pq.Array(idStrings))
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]model.Movie, len(movies))
	for _, m := range movies {
		byID[m.ID] = m
	}
	ordered := make([]model.Movie, 0, len(ids))
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			ordered = append(ordered, m)
		}
	}
	return ordered, nil
}

// FindMoviesByGenre returns all movies whose genre is among genres.
func (s *Postgres) FindMoviesByGenre(ctx context.Context, genres []string) ([]model.Movie, error) {
	if len(genres) == 0 {
		return []model.Movie{}, nil
	}

	ctx, span := s.tracer.Start(ctx, "store.find_movies_by_genre",
		trace.WithAttributes(attribute.StringSlice("genres", genres)),
	)
	defer span.End()

	const query = `
		SELECT id, title, genre, rating, total_copies, available, status, version, created_at, updated_at
		FROM movies
		WHERE genre = ANY($1)
	`
	return s.queryMovies(ctx, query, pq.Array(genres))
}

func (s *Postgres) queryMovies(ctx context.Context, query string, args ...interface{}) ([]model.Movie, error) {
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

// FindOtherUsers returns every user except the excluded one, id-ascending,
// with favorites populated. The rented set is not loaded; the collaborative
// strategy only reads favorites.
func (s *Postgres) FindOtherUsers(ctx context.Context, excluding uuid.UUID) ([]model.User, error) {
	ctx, span := s.tracer.Start(ctx, "store.find_other_users",
		trace.WithAttributes(attribute.String("excluding.id", excluding.String())),
	)
	defer span.End()

	const query = `
		SELECT u.id, u.email, u.name, u.status, u.version, u.created_at, u.updated_at
		FROM users u
		WHERE u.id <> $1
		ORDER BY u.id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, excluding)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Status, &u.Version, &u.CreatedAt, &u.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	for i := range users {
		users[i].Favorites, err = s.listUserMovies(ctx, `
			SELECT movie_id FROM user_favorites WHERE user_id = $1 ORDER BY position ASC
		`, users[i].ID)
		if err != nil {
			return nil, fmt.Errorf("query favorites: %w", err)
		}
	}
	return users, nil
}

// CommitAtomic applies a rental mutation in one serializable transaction:
// the copies delta with a version compare-and-swap, the rented-set change,
// and a ledger append. A stale version, a serialization failure or a
// unique-key race all surface as model.ErrConflict.
func (s *Postgres) CommitAtomic(ctx context.Context, mut RentalMutation) error {
	ctx, span := s.tracer.Start(ctx, "store.commit_atomic",
		trace.WithAttributes(
			attribute.String("movie.id", mut.MovieID.String()),
			attribute.String("user.id", mut.UserID.String()),
			attribute.Int("expected.version", mut.ExpectedVersion),
			attribute.Int("copies.delta", mut.CopiesDelta),
		),
	)
	defer span.End()

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelSerializable,
	})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Compare-and-swap on the movie row. The available bounds are re-checked
	// in SQL so a stale caller can never drive the counter out of range.
	result, err := tx.ExecContext(ctx, `
		UPDATE movies
		SET available = available + $1, version = version + 1, updated_at = NOW()
		WHERE id = $2
		  AND version = $3
		  AND available + $1 >= 0
		  AND available + $1 <= total_copies
	`, mut.CopiesDelta, mut.MovieID, mut.ExpectedVersion)
	if err != nil {
		return fmt.Errorf("update movie copies: %w", mapCommitError(err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update movie copies: %w", err)
	}
	if affected == 0 {
		span.SetAttributes(attribute.Bool("conflict.detected", true))
		return model.ErrConflict
	}

	var action string
	switch mut.Op {
	case OpAddRented:
		action = "rented"
		_, err = tx.ExecContext(ctx, `
			INSERT INTO user_rentals (user_id, movie_id, rented_at)
			VALUES ($1, $2, NOW())
		`, mut.UserID, mut.MovieID)
		if err != nil {
			return fmt.Errorf("add rented membership: %w", mapCommitError(err))
		}
	case OpRemoveRented:
		action = "returned"
		result, err = tx.ExecContext(ctx, `
			DELETE FROM user_rentals
			WHERE user_id = $1 AND movie_id = $2
		`, mut.UserID, mut.MovieID)
		if err != nil {
			return fmt.Errorf("remove rented membership: %w", err)
		}
		affected, err = result.RowsAffected()
		if err != nil {
			return fmt.Errorf("remove rented membership: %w", err)
		}
		if affected == 0 {
			// The membership vanished between the caller's read and this
			// commit; the caller re-reads and re-evaluates its guard.
			return model.ErrConflict
		}
	default:
		return fmt.Errorf("unknown rented op %d", mut.Op)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO rental_events (user_id, movie_id, action, created_at)
		VALUES ($1, $2, $3, $4)
	`, mut.UserID, mut.MovieID, action, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("append rental event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", mapCommitError(err))
	}

	span.SetAttributes(attribute.Bool("commit.success", true))
	return nil
}

// mapCommitError folds the Postgres race signals into model.ErrConflict:
// 40001 serialization_failure and 23505 unique_violation both mean the
// commit lost a race and is safe to retry.
func mapCommitError(err error) error {
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "40001", "23505":
			return model.ErrConflict
		}
	}
	return err
}
