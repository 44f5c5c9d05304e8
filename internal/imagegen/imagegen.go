// Package imagegen calls the external image-generation API that turns a text
// prompt into an image URL.
package imagegen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var ErrAPIResponse = errors.New("image api request failed")

const defaultTimeout = 60 * time.Second

type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// * Generate submits prompt and returns the generated image URL. Every
// remote failure mode (transport error, non-2xx status, unparseable body)
// collapses into ErrAPIResponse so callers treat the service as one fallible
// collaborator.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	const op = "imagegen.Generate"

	form := url.Values{}
	form.Set("text", prompt)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, ErrAPIResponse)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%s: status %d: %w", op, resp.StatusCode, ErrAPIResponse)
	}

	var body struct {
		OutputURL string `json:"output_url"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%s: failed to parse response: %w", op, ErrAPIResponse)
	}

	if body.OutputURL == "" {
		return "", fmt.Errorf("%s: empty output_url: %w", op, ErrAPIResponse)
	}

	return body.OutputURL, nil
}
