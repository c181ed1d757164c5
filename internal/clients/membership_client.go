// internal/clients/membership_client.go
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

type MembershipClient struct {
	baseURL string
	client  *http.Client
}

func NewMembershipClient(baseURL string) *MembershipClient {
	return &MembershipClient{baseURL: baseURL, client: http.DefaultClient}
}

func (c *MembershipClient) Register(ctx context.Context, email, name, password string) (*model.User, error) {
	body, err := json.Marshal(map[string]string{
		"email":    email,
		"name":     name,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/register", bytes.NewReader(body))
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
		return nil, fmt.Errorf("register: unexpected status code %d", resp.StatusCode)
	}

	var user model.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *MembershipClient) AddFavorite(ctx context.Context, userID, movieID uuid.UUID) error {
	url := fmt.Sprintf("%s/%s/favorites/%s", c.baseURL, userID, movieID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("add favorite: unexpected status code %d", resp.StatusCode)
	}
	return nil
}

func (c *MembershipClient) ListRented(ctx context.Context, userID uuid.UUID) ([]model.Movie, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s/rented", c.baseURL, userID), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list rented: unexpected status code %d", resp.StatusCode)
	}

	var movies []model.Movie
	if err := json.NewDecoder(resp.Body).Decode(&movies); err != nil {
		return nil, err
	}
	return movies, nil
}
