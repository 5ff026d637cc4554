package lottery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Client fetches the most recent draw from a results API that answers GET
// with `{"date": "...", "numbers": [...6 ints...], "bonus": n}`.
type Client struct {
	url    string
	client *http.Client
}

// NewClient builds a client for the given results endpoint. A nil http client
// falls back to http.DefaultClient; deadlines come from the caller's context.
func NewClient(url string, client *http.Client) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{url: url, client: client}
}

type apiDraw struct {
	Date    string `json:"date"`
	Numbers []int  `json:"numbers"`
	Bonus   int    `json:"bonus"`
}

// Fetch requests the latest draw and validates it.
func (c *Client) Fetch(ctx context.Context) (Draw, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return Draw{}, fmt.Errorf("build results request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Draw{}, fmt.Errorf("results request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Draw{}, fmt.Errorf("results api returned %s", resp.Status)
	}

	var raw apiDraw
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return Draw{}, fmt.Errorf("decode results: %w", err)
	}
	if len(raw.Numbers) != 6 {
		return Draw{}, fmt.Errorf("results api sent %d numbers, want 6", len(raw.Numbers))
	}

	d := Draw{Date: raw.Date, Bonus: raw.Bonus}
	copy(d.Numbers[:], raw.Numbers)
	if err := d.Validate(); err != nil {
		return Draw{}, fmt.Errorf("results api sent bad draw: %w", err)
	}
	return d, nil
}
