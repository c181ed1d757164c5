// internal/model/errors.go
package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// RecordKind names the record type an error refers to.
type RecordKind string

const (
	RecordUser  RecordKind = "user"
	RecordMovie RecordKind = "movie"
)

// ErrConflict is returned when an atomic commit lost a race and the caller's
// view of the record is stale. The rental service retries a bounded number
// of times before letting it surface.
var ErrConflict = errors.New("commit conflict: version mismatch")

// NotFoundError indicates that a referenced user or movie does not exist.
type NotFoundError struct {
	Kind RecordKind
	ID   uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// NoCopiesError indicates a rent attempt on a movie with no copies left.
type NoCopiesError struct {
	MovieID uuid.UUID
}

func (e *NoCopiesError) Error() string {
	return fmt.Sprintf("no copies of movie %s available", e.MovieID)
}

// NotRentedError indicates a return of a movie the user does not hold.
type NotRentedError struct {
	UserID  uuid.UUID
	MovieID uuid.UUID
}

func (e *NotRentedError) Error() string {
	return fmt.Sprintf("user %s has not rented movie %s", e.UserID, e.MovieID)
}

// AlreadyRentedError indicates a rent of a movie the user already holds.
type AlreadyRentedError struct {
	UserID  uuid.UUID
	MovieID uuid.UUID
}

func (e *AlreadyRentedError) Error() string {
	return fmt.Sprintf("user %s already rented movie %s", e.UserID, e.MovieID)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
