// internal/rental/handler_test.go
package rental

import (
	"bytes"
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
	handler := NewHandler(NewService(st, metrics.Nop{}, 3))
	router := chi.NewRouter()
	handler.Routes(router)
	return httptest.NewServer(router)
}

func postRental(t *testing.T, url string, userID, movieID uuid.UUID) *http.Response {
	t.Helper()
	body, err := json.Marshal(map[string]string{
		"user_id":  userID.String(),
		"movie_id": movieID.String(),
	})
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp
}

func TestHandleRent(t *testing.T) {
	st := store.NewMemory()
	movie := seedMovie(st, 2)
	user := seedUser(st)
	srv := newTestServer(st)
	defer srv.Close()

	resp := postRental(t, srv.URL+"/rent", user.ID, movie.ID)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var got model.Movie
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, movie.ID, got.ID)
	assert.Equal(t, 1, got.Available)
}

func TestHandleRentConflictStatuses(t *testing.T) {
	st := store.NewMemory()
	movie := seedMovie(st, 1)
	first := seedUser(st)
	second := seedUser(st)
	srv := newTestServer(st)
	defer srv.Close()

	resp := postRental(t, srv.URL+"/rent", first.ID, movie.ID)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Same user again: already holds a copy.
	resp = postRental(t, srv.URL+"/rent", first.ID, movie.ID)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Different user: no copies left.
	resp = postRental(t, srv.URL+"/rent", second.ID, movie.ID)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestHandleReturn(t *testing.T) {
	st := store.NewMemory()
	movie := seedMovie(st, 1)
	user := seedUser(st)
	srv := newTestServer(st)
	defer srv.Close()

	resp := postRental(t, srv.URL+"/rent", user.ID, movie.ID)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = postRental(t, srv.URL+"/return", user.ID, movie.ID)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got model.Movie
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, 1, got.Available)
}

func TestHandleReturnNotRented(t *testing.T) {
	st := store.NewMemory()
	movie := seedMovie(st, 1)
	user := seedUser(st)
	srv := newTestServer(st)
	defer srv.Close()

	resp := postRental(t, srv.URL+"/return", user.ID, movie.ID)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestHandleRentUnknownUser(t *testing.T) {
	st := store.NewMemory()
	movie := seedMovie(st, 1)
	srv := newTestServer(st)
	defer srv.Close()

	resp := postRental(t, srv.URL+"/rent", uuid.New(), movie.ID)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandleRentMalformedBody(t *testing.T) {
	st := store.NewMemory()
	srv := newTestServer(st)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/rent", "application/json", bytes.NewBufferString("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var msg map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&msg))
	assert.NotEmpty(t, msg["error"])
}
