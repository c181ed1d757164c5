// internal/recommend/handler.go
package recommend

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"cinerent/internal/model"
)

type Handler struct {
	engine *Engine
}

func NewHandler(engine *Engine) *Handler {
	return &Handler{engine: engine}
}

// Routes mounts the recommendation endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/users/{userID}", h.handleRecommend)
}

func (h *Handler) handleRecommend(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	strategy := Strategy(r.URL.Query().Get("strategy"))
	if strategy == "" {
		strategy = StrategyGenre
	}

	movies, err := h.engine.Recommend(r.Context(), userID, strategy)
	if err != nil {
		var unknown *UnknownStrategyError
		var notFound *model.NotFoundError
		switch {
		case errors.As(err, &unknown):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.As(err, &notFound):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	// An empty list is a valid answer: no signal, no recommendation.
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(movies)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
