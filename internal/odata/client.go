package odata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/gommon/log"

	"partsportal/internal/config"
	"partsportal/internal/models"
)

// Client talks to the OData inventory backend on behalf of a caller. The
// caller's bearer token is forwarded untouched.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *Metrics
}

// NewClient creates a backend client. metrics may be nil.
func NewClient(cfg config.BackendConfig, metrics *Metrics) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
		},
		metrics: metrics,
	}
}

// ForwardResponse is a backend response relayed to the caller
type ForwardResponse struct {
	StatusCode  int
	Location    string
	ContentType string
	Body        []byte
}

// makeRequest performs one HTTP request against the backend
func (c *Client) makeRequest(ctx context.Context, operation, method, path, rawQuery, token string, body io.Reader, header http.Header) (*http.Response, error) {
	url := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if rawQuery != "" {
		url += "?" + rawQuery
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	log.Debugf("backend request: %s %s", method, c.baseURL+"/"+strings.TrimLeft(path, "/"))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.observe(operation, 0, time.Since(start))
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	c.metrics.observe(operation, resp.StatusCode, time.Since(start))
	return resp, nil
}

// GetCollection fetches an entity set and returns the records of its
// "value" array.
func (c *Client) GetCollection(ctx context.Context, token, entitySet, rawQuery string) ([]models.Record, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	resp, err := c.makeRequest(ctx, "get_collection", http.MethodGet, entitySet, rawQuery, token, nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warnf("backend error: status %d on %s", resp.StatusCode, entitySet)
		return nil, &BackendError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var collection struct {
		Value []models.Record `json:"value"`
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&collection); err != nil {
		return nil, &DecodeError{RawBody: string(body), Err: err}
	}
	if collection.Value == nil {
		return nil, &DecodeError{RawBody: string(body), Err: fmt.Errorf("response has no value array")}
	}
	return collection.Value, nil
}

// Forward sends a create or update request to the backend verbatim. A
// non-success status is returned as *BackendError.
func (c *Client) Forward(ctx context.Context, token, method, path string, body []byte, prefer string) (*ForwardResponse, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	if prefer != "" {
		header.Set("Prefer", prefer)
	}

	resp, err := c.makeRequest(ctx, "forward_"+strings.ToLower(method), method, path, "", token, bytes.NewReader(body), header)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warnf("backend error: status %d on %s %s", resp.StatusCode, method, path)
		return nil, &BackendError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return &ForwardResponse{
		StatusCode:  resp.StatusCode,
		Location:    resp.Header.Get("Location"),
		ContentType: resp.Header.Get("Content-Type"),
		Body:        respBody,
	}, nil
}

// Ping checks that the backend answers its metadata document. Any response
// below 500 counts as reachable: metadata may require authentication.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.makeRequest(ctx, "ping", http.MethodGet, "$metadata", "", "", nil, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 500 {
		return &BackendError{StatusCode: resp.StatusCode, Body: http.StatusText(resp.StatusCode)}
	}
	return nil
}
