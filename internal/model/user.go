// internal/model/user.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// User represents a rental customer. Favorites is ordered by insertion;
// the recommendation engine relies on that order for its genre tie-break.
// Rented is the set of movies the user currently holds and is mutated only
// by the rental service, in lockstep with the movie's Available counter.
type User struct {
	ID        uuid.UUID   `json:"id"`
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	Favorites []uuid.UUID `json:"favorites"`
	Rented    []uuid.UUID `json:"rented"`
	Status    string      `json:"status"`
	Version   int         `json:"version"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// HasRented reports whether the user currently holds the movie.
func (u *User) HasRented(movieID uuid.UUID) bool {
	for _, id := range u.Rented {
		if id == movieID {
			return true
		}
	}
	return false
}

// HasFavorite reports whether the movie is in the user's favorites.
func (u *User) HasFavorite(movieID uuid.UUID) bool {
	for _, id := range u.Favorites {
		if id == movieID {
			return true
		}
	}
	return false
}

// Credential holds a user's login secret, stored apart from the User record.
type Credential struct {
	UserID       uuid.UUID `json:"user_id"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
}
