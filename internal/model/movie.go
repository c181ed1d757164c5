// internal/model/movie.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// Movie represents a title in the rental catalog. Available counts the
// copies not currently checked out and must stay within [0, TotalCopies].
// Version is the optimistic concurrency token: every committed mutation
// increments it.
type Movie struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Genre       string    `json:"genre"`
	Rating      float64   `json:"rating"`
	TotalCopies int       `json:"total_copies"`
	Available   int       `json:"available"`
	Status      string    `json:"status"`
	Version     int       `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Less orders movies by their UUID bytes. It is the deterministic id
// tie-break used wherever movies are ranked.
func (m Movie) Less(other Movie) bool {
	for i := range m.ID {
		if m.ID[i] != other.ID[i] {
			return m.ID[i] < other.ID[i]
		}
	}
	return false
}
