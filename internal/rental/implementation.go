// internal/rental/implementation.go
package rental

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"cinerent/internal/metrics"
	"cinerent/internal/model"
	"cinerent/internal/store"
)

// service implements the Service interface. Rent and Return serialize per
// movie through the store's version compare-and-swap: each attempt reads
// the current records, re-evaluates every guard, and commits with the read
// version. A lost race comes back as model.ErrConflict and is retried up
// to attempts times before surfacing.
type service struct {
	store    store.Store
	metrics  metrics.Recorder
	attempts int
	tracer   trace.Tracer
}

// NewService creates a rental service. attempts bounds the optimistic
// commit retries; values below 1 are treated as 1.
func NewService(st store.Store, rec metrics.Recorder, attempts int) Service {
	if attempts < 1 {
		attempts = 1
	}
	return &service{
		store:    st,
		metrics:  rec,
		attempts: attempts,
		tracer:   otel.Tracer("cinerent/rental"),
	}
}

// Rent checks out one copy of the movie to the user.
func (s *service) Rent(ctx context.Context, userID, movieID uuid.UUID) (*model.Movie, error) {
	ctx, span := s.tracer.Start(ctx, "rental.rent",
		trace.WithAttributes(
			attribute.String("user.id", userID.String()),
			attribute.String("movie.id", movieID.String()),
		),
	)
	defer span.End()

	for attempt := 0; attempt < s.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		user, err := s.store.FindUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		movie, err := s.store.FindMovie(ctx, movieID)
		if err != nil {
			return nil, err
		}

		if user.HasRented(movieID) {
			s.metrics.RecordRejection("already_rented")
			return nil, &model.AlreadyRentedError{UserID: userID, MovieID: movieID}
		}
		if movie.Available <= 0 {
			s.metrics.RecordRejection("no_copies")
			return nil, &model.NoCopiesError{MovieID: movieID}
		}

		err = s.store.CommitAtomic(ctx, store.RentalMutation{
			MovieID:         movieID,
			ExpectedVersion: movie.Version,
			CopiesDelta:     -1,
			UserID:          userID,
			Op:              store.OpAddRented,
		})
		if errors.Is(err, model.ErrConflict) {
			s.metrics.RecordConflict()
			span.AddEvent("commit.conflict", trace.WithAttributes(attribute.Int("attempt", attempt+1)))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("commit rent: %w", err)
		}

		s.metrics.RecordRent()
		movie.Available--
		movie.Version++
		return movie, nil
	}

	return nil, model.ErrConflict
}

// Return hands one copy of the movie back from the user.
func (s *service) Return(ctx context.Context, userID, movieID uuid.UUID) (*model.Movie, error) {
	ctx, span := s.tracer.Start(ctx, "rental.return",
		trace.WithAttributes(
			attribute.String("user.id", userID.String()),
			attribute.String("movie.id", movieID.String()),
		),
	)
	defer span.End()

	for attempt := 0; attempt < s.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		user, err := s.store.FindUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		movie, err := s.store.FindMovie(ctx, movieID)
		if err != nil {
			return nil, err
		}

		if !user.HasRented(movieID) {
			s.metrics.RecordRejection("not_rented")
			return nil, &model.NotRentedError{UserID: userID, MovieID: movieID}
		}

		err = s.store.CommitAtomic(ctx, store.RentalMutation{
			MovieID:         movieID,
			ExpectedVersion: movie.Version,
			CopiesDelta:     1,
			UserID:          userID,
			Op:              store.OpRemoveRented,
		})
		if errors.Is(err, model.ErrConflict) {
			s.metrics.RecordConflict()
			span.AddEvent("commit.conflict", trace.WithAttributes(attribute.Int("attempt", attempt+1)))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("commit return: %w", err)
		}

		s.metrics.RecordReturn()
		movie.Available++
		movie.Version++
		return movie, nil
	}

	return nil, model.ErrConflict
}
