// internal/rental/invariants_test.go
package rental

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"pgregory.net/rapid"

	"cinerent/internal/metrics"
	"cinerent/internal/model"
	"cinerent/internal/store"
)

// TestRandomRentReturnSequencesKeepCountsConsistent drives the service with
// arbitrary interleavings of Rent and Return and checks after every step
// that each movie's available counter stays within bounds and equals
// total copies minus the number of users currently holding the movie.
func TestRandomRentReturnSequencesKeepCountsConsistent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		st := store.NewMemory()
		svc := NewService(st, metrics.Nop{}, 3)
		ctx := context.Background()

		userCount := rapid.IntRange(1, 4).Draw(rt, "userCount")
		movieCount := rapid.IntRange(1, 4).Draw(rt, "movieCount")

		users := make([]uuid.UUID, userCount)
		for i := range users {
			users[i] = uuid.New()
			st.PutUser(model.User{
				ID:     users[i],
				Email:  fmt.Sprintf("user%d@example.com", i),
				Name:   fmt.Sprintf("User %d", i),
				Status: "active",
			})
		}

		movies := make([]uuid.UUID, movieCount)
		totals := make(map[uuid.UUID]int, movieCount)
		for i := range movies {
			movies[i] = uuid.New()
			total := rapid.IntRange(1, 3).Draw(rt, fmt.Sprintf("total%d", i))
			totals[movies[i]] = total
			st.PutMovie(model.Movie{
				ID:          movies[i],
				Title:       fmt.Sprintf("Movie %d", i),
				Genre:       "Action",
				Rating:      5,
				TotalCopies: total,
				Available:   total,
				Status:      "active",
			})
		}

		steps := rapid.IntRange(1, 50).Draw(rt, "steps")
		for step := 0; step < steps; step++ {
			userID := users[rapid.IntRange(0, userCount-1).Draw(rt, "user")]
			movieID := movies[rapid.IntRange(0, movieCount-1).Draw(rt, "movie")]

			// Guard rejections are expected along the way; the invariants
			// below must hold regardless of which calls succeeded.
			if rapid.Bool().Draw(rt, "rent") {
				_, _ = svc.Rent(ctx, userID, movieID)
			} else {
				_, _ = svc.Return(ctx, userID, movieID)
			}

			for _, id := range movies {
				movie, err := st.FindMovie(ctx, id)
				if err != nil {
					rt.Fatalf("find movie: %v", err)
				}
				if movie.Available < 0 || movie.Available > movie.TotalCopies {
					rt.Fatalf("available %d out of bounds [0, %d]", movie.Available, movie.TotalCopies)
				}

				holders := 0
				for _, uid := range users {
					u, err := st.FindUser(ctx, uid)
					if err != nil {
						rt.Fatalf("find user: %v", err)
					}
					if u.HasRented(id) {
						holders++
					}
				}
				if movie.Available != totals[id]-holders {
					rt.Fatalf("available %d != total %d - holders %d", movie.Available, totals[id], holders)
				}
			}
		}
	})
}
