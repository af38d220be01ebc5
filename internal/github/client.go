package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the public GitHub REST API.
	DefaultBaseURL = "https://api.github.com"

	apiVersion = "2022-11-28"

	// maxResponseSize bounds how much of a response body is read.
	maxResponseSize = 10 << 20
)

var (
	ErrInsecureBaseURL = errors.New("github: API client requires HTTPS")
	ErrMissingToken    = errors.New("github: token is required")
)

// Config holds configuration for creating a Client.
type Config struct {
	// BaseURL defaults to DefaultBaseURL. Must use HTTPS.
	BaseURL string
	// Token is a personal access token or installation token sent on every request.
	Token      string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client is a minimal GitHub REST client covering the git data API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient validates config and creates a Client.
func NewClient(config Config) (*Client, error) {
	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	if !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("%w (got %q)", ErrInsecureBaseURL, baseURL)
	}

	if config.Token == "" {
		return nil, ErrMissingToken
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:    baseURL,
		token:      config.Token,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// do executes an authenticated request. path is relative to the base URL. Non-2xx
// responses are returned as *APIError.
func (c *Client) do(ctx context.Context, method, path string, requestBody, result any) error {
	var body io.Reader

	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return fmt.Errorf("github: encoding request body: %w", err)
		}

		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("github: creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", apiVersion)

	if requestBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("github: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("github: reading response body: %w", err)
	}

	c.logger.Debug("github request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseAPIError(resp.StatusCode, data)
	}

	if result == nil {
		return nil
	}

	return json.Unmarshal(data, result)
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

func (c *Client) post(ctx context.Context, path string, requestBody, result any) error {
	return c.do(ctx, http.MethodPost, path, requestBody, result)
}

func (c *Client) patch(ctx context.Context, path string, requestBody, result any) error {
	return c.do(ctx, http.MethodPatch, path, requestBody, result)
}
