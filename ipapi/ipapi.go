// Package ipapi resolves the server's public address through api.ipify.org.
// Lookups are best-effort: callers are expected to proceed without an
// address when the service is slow or down.
package ipapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultURL = "https://api.ipify.org?format=json"

type Client struct {
	URL    string
	Client *http.Client
}

func NewClient() *Client {
	return &Client{
		URL:    defaultURL,
		Client: &http.Client{Timeout: 3 * time.Second},
	}
}

type ipResponse struct {
	IP string `json:"ip"`
}

func (c *Client) PublicIP(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ipify returned status %d", resp.StatusCode)
	}

	var payload ipResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	return payload.IP, nil
}
