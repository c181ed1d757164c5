// internal/clients/catalog_client.go

// Package clients provides typed HTTP clients for the public API. The
// integration suite drives the deployed services through these instead of
// hand-rolled requests.
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

type CatalogClient struct {
	baseURL string
	client  *http.Client
}

func NewCatalogClient(baseURL string) *CatalogClient {
	return &CatalogClient{baseURL: baseURL, client: http.DefaultClient}
}

func (c *CatalogClient) AddMovie(ctx context.Context, title, genre string, rating float64, totalCopies int) (*model.Movie, error) {
	body, err := json.Marshal(map[string]interface{}{
		"title":        title,
		"genre":        genre,
		"rating":       rating,
		"total_copies": totalCopies,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/movies", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("add movie: unexpected status code %d", resp.StatusCode)
	}

	var movie model.Movie
	if err := json.NewDecoder(resp.Body).Decode(&movie); err != nil {
		return nil, err
	}
	return &movie, nil
}

func (c *CatalogClient) GetMovie(ctx context.Context, id uuid.UUID) (*model.Movie, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/movies/%s", c.baseURL, id), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get movie: unexpected status code %d", resp.StatusCode)
	}

	var movie model.Movie
	if err := json.NewDecoder(resp.Body).Decode(&movie); err != nil {
		return nil, err
	}
	return &movie, nil
}
