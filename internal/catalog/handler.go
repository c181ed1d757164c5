// internal/catalog/handler.go
package catalog

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"cinerent/internal/model"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts the catalog endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/movies", h.handleListMovies)
	r.Post("/movies", h.handleAddMovie)
	r.Get("/movies/search", h.handleSearch)
	r.Get("/movies/{movieID}", h.handleGetMovie)
	r.Patch("/movies/{movieID}", h.handleUpdateCopies)
	r.Delete("/movies/{movieID}", h.handleRemoveMovie)
}

func (h *Handler) handleListMovies(w http.ResponseWriter, r *http.Request) {
	var movies []model.Movie
	var err error
	if genre := r.URL.Query().Get("genre"); genre != "" {
		movies, err = h.service.ListByGenre(r.Context(), genre)
	} else {
		movies, err = h.service.ListMovies(r.Context())
	}
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, movies)
}

func (h *Handler) handleAddMovie(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string  `json:"title"`
		Genre       string  `json:"genre"`
		Rating      float64 `json:"rating"`
		TotalCopies int     `json:"total_copies"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	movie, err := h.service.AddMovie(r.Context(), req.Title, req.Genre, req.Rating, req.TotalCopies)
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, movie)
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	movies, err := h.service.SearchByTitle(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, movies)
}

func (h *Handler) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "movieID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid movie ID")
		return
	}

	movie, err := h.service.GetMovie(r.Context(), id)
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, movie)
}

func (h *Handler) handleUpdateCopies(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "movieID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid movie ID")
		return
	}

	var req struct {
		TotalCopies int `json:"total_copies"`
		Available   int `json:"available"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	movie, err := h.service.UpdateCopies(r.Context(), id, req.TotalCopies, req.Available)
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, movie)
}

func (h *Handler) handleRemoveMovie(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "movieID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid movie ID")
		return
	}

	if err := h.service.RemoveMovie(r.Context(), id); err != nil {
		writeCatalogError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeCatalogError(w http.ResponseWriter, err error) {
	var validation *ValidationError
	var notFound *model.NotFoundError
	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrCopiesOut), errors.Is(err, model.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
