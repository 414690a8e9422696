package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

// Client is a thin JSON client for the test server.
type Client struct {
	BaseURL string
	Token   string

	http *http.Client
}

// NewClient creates a client that authenticates with token.
func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL: baseURL,
		Token:   token,
		http:    &http.Client{},
	}
}

// Do sends a JSON request and decodes the JSON response into out when out
// is non-nil. Returns the HTTP status code.
func (c *Client) Do(method, path string, body, out any) (int, error) {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reader)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// Post sends a POST request.
func (c *Client) Post(path string, body, out any) (int, error) {
	return c.Do(http.MethodPost, path, body, out)
}

// Get sends a GET request.
func (c *Client) Get(path string, out any) (int, error) {
	return c.Do(http.MethodGet, path, nil, out)
}
