// internal/rental/handler.go
package rental

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

// Routes mounts the rental endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/rent", h.handleRent)
	r.Post("/return", h.handleReturn)
}

type rentalRequest struct {
	UserID  uuid.UUID `json:"user_id"`
	MovieID uuid.UUID `json:"movie_id"`
}

func (h *Handler) handleRent(w http.ResponseWriter, r *http.Request) {
	var req rentalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	movie, err := h.service.Rent(r.Context(), req.UserID, req.MovieID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(movie)
}

func (h *Handler) handleReturn(w http.ResponseWriter, r *http.Request) {
	var req rentalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	movie, err := h.service.Return(r.Context(), req.UserID, req.MovieID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(movie)
}

// writeDomainError maps the closed error taxonomy onto HTTP statuses:
// NotFound -> 404, the rental guards and lost races -> 409, the rest -> 500.
func writeDomainError(w http.ResponseWriter, err error) {
	var (
		notFound      *model.NotFoundError
		noCopies      *model.NoCopiesError
		notRented     *model.NotRentedError
		alreadyRented *model.AlreadyRentedError
	)
	switch {
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &noCopies), errors.As(err, &notRented), errors.As(err, &alreadyRented):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, model.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
