// internal/recommend/engine_test.go
package recommend

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinerent/internal/metrics"
	"cinerent/internal/model"
	"cinerent/internal/store"
)

func addMovie(st *store.Memory, title, genre string, rating float64) model.Movie {
	m := model.Movie{
		ID:          uuid.New(),
		Title:       title,
		Genre:       genre,
		Rating:      rating,
		TotalCopies: 3,
		Available:   3,
		Status:      "active",
	}
	st.PutMovie(m)
	return m
}

func addUser(st *store.Memory, favorites ...uuid.UUID) model.User {
	u := model.User{
		ID:        uuid.New(),
		Email:     "viewer@example.com",
		Name:      "Viewer",
		Favorites: favorites,
		Status:    "active",
	}
	st.PutUser(u)
	return u
}

func TestGenreStrategyRanksTopGenresByRating(t *testing.T) {
	st := store.NewMemory()

	// Catalog: 12 Action titles rated 1..12, 5 Drama titles rated 1..5,
	// plus Comedy noise that must never surface.
	action := make([]model.Movie, 12)
	for i := range action {
		action[i] = addMovie(st, fmt.Sprintf("Action %d", i+1), "Action", float64(i+1))
	}
	drama := make([]model.Movie, 5)
	for i := range drama {
		drama[i] = addMovie(st, fmt.Sprintf("Drama %d", i+1), "Drama", float64(i+1))
	}
	addMovie(st, "Comedy 1", "Comedy", 9.9)

	// Two Action favorites and one Drama favorite select both genres.
	user := addUser(st, action[0].ID, action[1].ID, drama[0].ID)
	engine := NewEngine(st, metrics.Nop{})

	got, err := engine.Recommend(context.Background(), user.ID, StrategyGenre)
	require.NoError(t, err)
	require.Len(t, got, 10)

	// Highest rated first: Action 12 down to Action 3.
	for i, m := range got {
		assert.Equal(t, fmt.Sprintf("Action %d", 12-i), m.Title)
		assert.Equal(t, "Action", m.Genre)
	}
}

func TestGenreStrategyKeepsOnlyTopThreeGenres(t *testing.T) {
	st := store.NewMemory()

	scifi := []model.Movie{
		addMovie(st, "SciFi 1", "SciFi", 5),
		addMovie(st, "SciFi 2", "SciFi", 5),
		addMovie(st, "SciFi 3", "SciFi", 5),
	}
	horror := []model.Movie{
		addMovie(st, "Horror 1", "Horror", 5),
		addMovie(st, "Horror 2", "Horror", 5),
	}
	drama := []model.Movie{
		addMovie(st, "Drama 1", "Drama", 5),
		addMovie(st, "Drama 2", "Drama", 5),
	}
	comedy := addMovie(st, "Comedy 1", "Comedy", 10)

	favorites := []uuid.UUID{
		scifi[0].ID, scifi[1].ID, scifi[2].ID,
		horror[0].ID, horror[1].ID,
		drama[0].ID, drama[1].ID,
		comedy.ID,
	}
	user := addUser(st, favorites...)
	engine := NewEngine(st, metrics.Nop{})

	got, err := engine.Recommend(context.Background(), user.ID, StrategyGenre)
	require.NoError(t, err)

	// Comedy is the fourth most frequent favorite genre and is cut, even
	// though its one title outrates everything else.
	for _, m := range got {
		assert.NotEqual(t, "Comedy", m.Genre)
	}
	assert.Len(t, got, 7)
}

func TestGenreStrategyEmptyFavorites(t *testing.T) {
	st := store.NewMemory()
	addMovie(st, "Action 1", "Action", 9)
	user := addUser(st)
	engine := NewEngine(st, metrics.Nop{})

	got, err := engine.Recommend(context.Background(), user.ID, StrategyGenre)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCollaborativeRecommendsSharedTasteNovelties(t *testing.T) {
	st := store.NewMemory()
	a := addMovie(st, "A", "Action", 7)
	b := addMovie(st, "B", "Action", 7)
	c := addMovie(st, "C", "Drama", 6)
	d := addMovie(st, "D", "Comedy", 9)

	target := addUser(st, a.ID, b.ID)
	addUser(st, a.ID, b.ID, c.ID) // overlapping taste, contributes C
	addUser(st, d.ID)             // no overlap, D must not surface

	engine := NewEngine(st, metrics.Nop{})
	got, err := engine.Recommend(context.Background(), target.ID, StrategyCollaborative)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, c.ID, got[0].ID)
}

func TestCollaborativeExcludesAlreadyFavorited(t *testing.T) {
	st := store.NewMemory()
	a := addMovie(st, "A", "Action", 7)
	b := addMovie(st, "B", "Action", 8)

	target := addUser(st, a.ID, b.ID)
	addUser(st, a.ID, b.ID) // full overlap but nothing novel

	engine := NewEngine(st, metrics.Nop{})
	got, err := engine.Recommend(context.Background(), target.ID, StrategyCollaborative)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCollaborativeNoNeighbours(t *testing.T) {
	st := store.NewMemory()
	a := addMovie(st, "A", "Action", 7)
	d := addMovie(st, "D", "Comedy", 9)

	target := addUser(st, a.ID)
	addUser(st, d.ID)

	engine := NewEngine(st, metrics.Nop{})
	got, err := engine.Recommend(context.Background(), target.ID, StrategyCollaborative)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRecommendIsDeterministic(t *testing.T) {
	st := store.NewMemory()
	var favorites []uuid.UUID
	for i := 0; i < 6; i++ {
		m := addMovie(st, fmt.Sprintf("Movie %d", i), "Action", 5) // equal ratings force tie-breaks
		if i < 3 {
			favorites = append(favorites, m.ID)
		}
	}
	user := addUser(st, favorites...)
	engine := NewEngine(st, metrics.Nop{})

	first, err := engine.Recommend(context.Background(), user.ID, StrategyGenre)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := engine.Recommend(context.Background(), user.ID, StrategyGenre)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestRecommendUnknownStrategy(t *testing.T) {
	st := store.NewMemory()
	user := addUser(st)
	engine := NewEngine(st, metrics.Nop{})

	_, err := engine.Recommend(context.Background(), user.ID, Strategy("trending"))
	var unknown *UnknownStrategyError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, Strategy("trending"), unknown.Strategy)
}

func TestRecommendUnknownUser(t *testing.T) {
	st := store.NewMemory()
	engine := NewEngine(st, metrics.Nop{})

	_, err := engine.Recommend(context.Background(), uuid.New(), StrategyGenre)
	var notFound *model.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, model.RecordUser, notFound.Kind)
}

func TestTopGenresOrdersByFrequencyThenFirstSeen(t *testing.T) {
	movies := []model.Movie{
		{Genre: "Drama"},
		{Genre: "Action"},
		{Genre: "Action"},
		{Genre: "Drama"},
		{Genre: "Horror"},
		{Genre: ""},
		{Genre: "Action"},
	}

	got := topGenres(movies, 3)
	assert.Equal(t, []string{"Action", "Drama", "Horror"}, got)

	// Drama and Horror tie at one apiece once Action dominates; the genre
	// seen first in the favorites sequence wins the tie.
	tied := []model.Movie{
		{Genre: "Horror"},
		{Genre: "Drama"},
	}
	assert.Equal(t, []string{"Horror", "Drama"}, topGenres(tied, 3))

	assert.Equal(t, []string{"Horror"}, topGenres(tied, 1))
	assert.Empty(t, topGenres(nil, 3))
}

func TestRankBreaksRatingTiesByID(t *testing.T) {
	low := model.Movie{ID: uuid.UUID{1}, Rating: 8}
	high := model.Movie{ID: uuid.UUID{2}, Rating: 8}
	top := model.Movie{ID: uuid.UUID{9}, Rating: 9}

	got := rank([]model.Movie{high, top, low}, 10)
	require.Len(t, got, 3)
	assert.Equal(t, top.ID, got[0].ID)
	assert.Equal(t, low.ID, got[1].ID)
	assert.Equal(t, high.ID, got[2].ID)

	capped := rank([]model.Movie{high, top, low}, 2)
	assert.Len(t, capped, 2)
}
