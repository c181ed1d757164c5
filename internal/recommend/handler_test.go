// internal/recommend/handler_test.go
package recommend

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinerent/internal/metrics"
	"cinerent/internal/model"
	"cinerent/internal/store"
)

func newTestServer(st *store.Memory) *httptest.Server {
	handler := NewHandler(NewEngine(st, metrics.Nop{}))
	router := chi.NewRouter()
	handler.Routes(router)
	return httptest.NewServer(router)
}

func TestHandleRecommendDefaultsToGenre(t *testing.T) {
	st := store.NewMemory()
	fav := addMovie(st, "Fav", "Action", 7)
	addMovie(st, "Other", "Action", 9)
	user := addUser(st, fav.ID)
	srv := newTestServer(st)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/users/" + user.ID.String())
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var movies []model.Movie
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&movies))
	require.Len(t, movies, 2)
	assert.Equal(t, "Other", movies[0].Title)
}

func TestHandleRecommendEmptySignalIsOK(t *testing.T) {
	st := store.NewMemory()
	user := addUser(st)
	srv := newTestServer(st)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/users/" + user.ID.String() + "?strategy=collaborative")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var movies []model.Movie
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&movies))
	assert.Empty(t, movies)
}

func TestHandleRecommendBadInputs(t *testing.T) {
	st := store.NewMemory()
	user := addUser(st)
	srv := newTestServer(st)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/users/not-a-uuid")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/users/" + user.ID.String() + "?strategy=trending")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/users/" + uuid.NewString())
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
