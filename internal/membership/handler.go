// internal/membership/handler.go
package membership

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

// Routes mounts the membership endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/register", h.handleRegister)
	r.Post("/authenticate", h.handleAuthenticate)
	r.Get("/{userID}", h.handleGetUser)
	r.Get("/{userID}/favorites", h.handleListFavorites)
	r.Put("/{userID}/favorites/{movieID}", h.handleAddFavorite)
	r.Delete("/{userID}/favorites/{movieID}", h.handleRemoveFavorite)
	r.Get("/{userID}/rented", h.handleListRented)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.service.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		writeMembershipError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *Handler) handleAuthenticate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeMembershipError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseID(w, r, "userID")
	if !ok {
		return
	}
	user, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		writeMembershipError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseID(w, r, "userID")
	if !ok {
		return
	}
	movies, err := h.service.ListFavorites(r.Context(), userID)
	if err != nil {
		writeMembershipError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, movies)
}

func (h *Handler) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseID(w, r, "userID")
	if !ok {
		return
	}
	movieID, ok := parseID(w, r, "movieID")
	if !ok {
		return
	}
	if err := h.service.AddFavorite(r.Context(), userID, movieID); err != nil {
		writeMembershipError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseID(w, r, "userID")
	if !ok {
		return
	}
	movieID, ok := parseID(w, r, "movieID")
	if !ok {
		return
	}
	if err := h.service.RemoveFavorite(r.Context(), userID, movieID); err != nil {
		writeMembershipError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListRented(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseID(w, r, "userID")
	if !ok {
		return
	}
	movies, err := h.service.ListRented(r.Context(), userID)
	if err != nil {
		writeMembershipError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, movies)
}

func parseID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+param)
		return uuid.Nil, false
	}
	return id, true
}

func writeMembershipError(w http.ResponseWriter, err error) {
	var notFound *model.NotFoundError
	switch {
	case errors.Is(err, ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrEmailTaken):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, err.Error())
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
