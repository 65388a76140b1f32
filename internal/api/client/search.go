package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/donaldgifford/pricelens/internal/aggregate"
	domain "github.com/donaldgifford/pricelens/pkg/types"
)

// SearchResult mirrors the API's search response body.
type SearchResult struct {
	Keywords    []string               `json:"keywords"`
	Offers      []domain.Offer         `json:"offers"`
	Diagnostics []aggregate.Diagnostic `json:"diagnostics"`
}

// SearchText runs a free-text search across all retail sources.
func (c *Client) SearchText(ctx context.Context, query string) (*SearchResult, error) {
	var result SearchResult
	path := "/api/v1/search/text?query=" + url.QueryEscape(query)
	if err := c.get(ctx, path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SearchImage uploads a product photo and searches with the extracted keywords.
func (c *Client) SearchImage(ctx context.Context, filename string, image io.Reader) (*SearchResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return nil, fmt.Errorf("building multipart request: %w", err)
	}
	if _, err := io.Copy(fw, image); err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("building multipart request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.baseURL+"/api/v1/search/image", &buf,
	)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if c.userID != "" {
		req.Header.Set("X-User-ID", c.userID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isConnectionRefused(err) {
			return nil, fmt.Errorf("API server not running at %s", c.baseURL)
		}
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("API error (HTTP %d): %s", resp.StatusCode, string(respBody))
	}

	var result SearchResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &result, nil
}
