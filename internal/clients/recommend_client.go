// internal/clients/recommend_client.go
package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"cinerent/internal/model"
)

type RecommendClient struct {
	baseURL string
	client  *http.Client
}

func NewRecommendClient(baseURL string) *RecommendClient {
	return &RecommendClient{baseURL: baseURL, client: http.DefaultClient}
}

func (c *RecommendClient) Recommend(ctx context.Context, userID uuid.UUID, strategy string) ([]model.Movie, error) {
	url := fmt.Sprintf("%s/users/%s?strategy=%s", c.baseURL, userID, strategy)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("recommend: unexpected status code %d", resp.StatusCode)
	}

	var movies []model.Movie
	if err := json.NewDecoder(resp.Body).Decode(&movies); err != nil {
		return nil, err
	}
	return movies, nil
}
