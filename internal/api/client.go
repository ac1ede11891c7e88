package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client is the HTTP client for the work-log service. It satisfies the
// session layer's Service interface.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// NewClientWithHTTP creates a Client with a caller-supplied http.Client
// (used by tests with httptest servers).
func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	return &Client{baseURL: baseURL, httpClient: httpClient}
}

// SubmitInput posts free text for classification and storage and returns
// the service's structured reply.
func (c *Client) SubmitInput(ctx context.Context, req InputRequest) (InputResponse, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/input", req)
	if err != nil {
		return InputResponse{}, err
	}

	var out InputResponse
	if err := decodeJSON(resp, &out); err != nil {
		return InputResponse{}, err
	}
	return out, nil
}

// DeleteFragment deletes one fragment and returns the authoritative
// post-delete list for the given scope. A 404 carries a regular business
// reply body and is not a transport failure.
func (c *Client) DeleteFragment(ctx context.Context, id, scopeAuthor, scopeDate string) (DeleteResponse, error) {
	path := "/api/fragments/" + url.PathEscape(id)
	q := url.Values{}
	if scopeAuthor != "" {
		q.Set("author", scopeAuthor)
	}
	if scopeDate != "" {
		q.Set("date", scopeDate)
	}
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	resp, err := c.do(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return DeleteResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode != http.StatusNotFound {
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return DeleteResponse{}, fmt.Errorf("server returned %d (failed to read body: %w)", resp.StatusCode, readErr)
		}
		return DeleteResponse{}, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}

	var out DeleteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return DeleteResponse{}, fmt.Errorf("decoding response: %w", err)
	}
	return out, nil
}

// Health checks the /health endpoint.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshalling request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("server not reachable (is punchlog serve running?): %w", err)
	}
	return resp, nil
}

func decodeJSON(resp *http.Response, v any) error {
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		// Business failures still carry a JSON body with ok=false; pass
		// them through so the caller can surface the error message.
		if decodeErr := json.NewDecoder(resp.Body).Decode(v); decodeErr == nil {
			return nil
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
