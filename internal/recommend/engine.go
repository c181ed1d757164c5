// internal/recommend/engine.go

// Package recommend ranks catalog movies for a user from bounded signals:
// the user's own favorite genres, or the favorites of users with
// overlapping taste. Both strategies are pure reads and fully
// deterministic: identical favorites and catalog state always produce the
// same ordered result.
package recommend

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"cinerent/internal/metrics"
	"cinerent/internal/model"
	"cinerent/internal/store"
)

// Strategy selects the scoring approach.
type Strategy string

const (
	// StrategyGenre ranks the catalog by the user's most frequent favorite
	// genres.
	StrategyGenre Strategy = "genre"
	// StrategyCollaborative ranks the favorites of users whose favorite
	// sets overlap the target user's.
	StrategyCollaborative Strategy = "collaborative"
)

const (
	maxGenres  = 3
	maxResults = 10
)

// UnknownStrategyError indicates a strategy outside the closed set.
type UnknownStrategyError struct {
	Strategy Strategy
}

func (e *UnknownStrategyError) Error() string {
	return fmt.Sprintf("unknown recommendation strategy %q", e.Strategy)
}

// Engine computes recommendations. It never mutates anything and is safe
// for concurrent use.
type Engine struct {
	store   store.Store
	metrics metrics.Recorder
	tracer  trace.Tracer
}

// NewEngine creates a recommendation engine over the given store.
func NewEngine(st store.Store, rec metrics.Recorder) *Engine {
	return &Engine{
		store:   st,
		metrics: rec,
		tracer:  otel.Tracer("cinerent/recommend"),
	}
}

// Recommend returns at most 10 movies for the user, ranked by rating
// descending with id-ascending tie-breaks. A user with no usable signal
// gets an empty slice and a nil error; that is a success, not a failure.
func (e *Engine) Recommend(ctx context.Context, userID uuid.UUID, strategy Strategy) ([]model.Movie, error) {
	ctx, span := e.tracer.Start(ctx, "recommend.recommend",
		trace.WithAttributes(
			attribute.String("user.id", userID.String()),
			attribute.String("strategy", string(strategy)),
		),
	)
	defer span.End()

	user, err := e.store.FindUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var movies []model.Movie
	switch strategy {
	case StrategyGenre:
		movies, err = e.byGenre(ctx, user)
	case StrategyCollaborative:
		movies, err = e.collaborative(ctx, user)
	default:
		return nil, &UnknownStrategyError{Strategy: strategy}
	}
	if err != nil {
		return nil, err
	}

	e.metrics.RecordRecommendation(string(strategy))
	span.SetAttributes(attribute.Int("result.count", len(movies)))
	return movies, nil
}

// byGenre counts each favorite's genre, takes the top three genres (ties
// broken by first encounter in the favorites sequence) and ranks every
// catalog movie in those genres.
func (e *Engine) byGenre(ctx context.Context, user *model.User) ([]model.Movie, error) {
	if len(user.Favorites) == 0 {
		return []model.Movie{}, nil
	}

	favorites, err := e.store.FindMoviesByIDs(ctx, user.Favorites)
	if err != nil {
		return nil, fmt.Errorf("resolve favorites: %w", err)
	}
	genres := topGenres(favorites, maxGenres)
	if len(genres) == 0 {
		return []model.Movie{}, nil
	}

	candidates, err := e.store.FindMoviesByGenre(ctx, genres)
	if err != nil {
		return nil, fmt.Errorf("find candidates: %w", err)
	}
	return rank(candidates, maxResults), nil
}

// collaborative finds users whose favorites intersect the target's, orders
// them by overlap size (user id ascending on ties), and ranks their
// favorites the target has not already marked.
func (e *Engine) collaborative(ctx context.Context, user *model.User) ([]model.Movie, error) {
	if len(user.Favorites) == 0 {
		return []model.Movie{}, nil
	}

	favSet := make(map[uuid.UUID]struct{}, len(user.Favorites))
	for _, id := range user.Favorites {
		favSet[id] = struct{}{}
	}

	others, err := e.store.FindOtherUsers(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("find other users: %w", err)
	}

	type neighbor struct {
		user    model.User
		overlap int
	}
	neighbors := []neighbor{}
	for _, other := range others {
		overlap := 0
		for _, id := range other.Favorites {
			if _, ok := favSet[id]; ok {
				overlap++
			}
		}
		if overlap > 0 {
			neighbors = append(neighbors, neighbor{user: other, overlap: overlap})
		}
	}
	if len(neighbors) == 0 {
		return []model.Movie{}, nil
	}

	// others is already id-ascending, so a stable sort by overlap keeps the
	// id order as the tie-break.
	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].overlap > neighbors[j].overlap
	})

	seen := make(map[uuid.UUID]struct{})
	novel := []uuid.UUID{}
	for _, n := range neighbors {
		for _, id := range n.user.Favorites {
			if _, ok := favSet[id]; ok {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			novel = append(novel, id)
		}
	}
	if len(novel) == 0 {
		return []model.Movie{}, nil
	}

	candidates, err := e.store.FindMoviesByIDs(ctx, novel)
	if err != nil {
		return nil, fmt.Errorf("resolve candidates: %w", err)
	}
	return rank(candidates, maxResults), nil
}

// topGenres returns up to limit genres ordered by frequency descending,
// breaking count ties by the genre's first appearance in the sequence.
func topGenres(movies []model.Movie, limit int) []string {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	order := []string{}
	for i, m := range movies {
		if m.Genre == "" {
			continue
		}
		if _, ok := counts[m.Genre]; !ok {
			firstSeen[m.Genre] = i
			order = append(order, m.Genre)
		}
		counts[m.Genre]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		if counts[order[i]] != counts[order[j]] {
			return counts[order[i]] > counts[order[j]]
		}
		return firstSeen[order[i]] < firstSeen[order[j]]
	})

	if len(order) > limit {
		order = order[:limit]
	}
	return order
}

// rank orders movies by rating descending, id ascending on ties, and caps
// the result at limit. The returned slice is never nil.
func rank(movies []model.Movie, limit int) []model.Movie {
	ranked := append([]model.Movie{}, movies...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Rating != ranked[j].Rating {
			return ranked[i].Rating > ranked[j].Rating
		}
		return ranked[i].Less(ranked[j])
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
