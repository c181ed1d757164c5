// internal/clients/rental_client.go
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"cinerent/internal/model"
)

type RentalClient struct {
	baseURL string
	client  *http.Client
}

func NewRentalClient(baseURL string) *RentalClient {
	return &RentalClient{baseURL: baseURL, client: http.DefaultClient}
}

// Rent checks out a copy. The returned status code is exposed so tests can
// distinguish a 409 guard rejection from a transport failure.
func (c *RentalClient) Rent(ctx context.Context, userID, movieID uuid.UUID) (*model.Movie, int, error) {
	return c.post(ctx, "/rent", userID, movieID, http.StatusCreated)
}

// Return hands a copy back.
func (c *RentalClient) Return(ctx context.Context, userID, movieID uuid.UUID) (*model.Movie, int, error) {
	return c.post(ctx, "/return", userID, movieID, http.StatusOK)
}

func (c *RentalClient) post(ctx context.Context, path string, userID, movieID uuid.UUID, wantStatus int) (*model.Movie, int, error) {
	body, err := json.Marshal(map[string]string{
		"user_id":  userID.String(),
		"movie_id": movieID.String(),
	})
	if err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return nil, resp.StatusCode, fmt.Errorf("%s: unexpected status code %d", path, resp.StatusCode)
	}

	var movie model.Movie
	if err := json.NewDecoder(resp.Body).Decode(&movie); err != nil {
		return nil, resp.StatusCode, err
	}
	return &movie, resp.StatusCode, nil
}
