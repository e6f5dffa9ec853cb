package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// TokenFunc supplies the current bearer token. It is called per request so a
// refreshed session propagates without rebuilding the client. An empty return
// sends the request unauthenticated.
type TokenFunc func() string

// Client is the remote data gateway: a thin HTTP wrapper that attaches the
// bearer token, decodes the backend response envelope and classifies errors.
type Client struct {
	baseURL string
	http    *http.Client
	token   TokenFunc
	log     zerolog.Logger
}

// New creates a gateway client for the given API base URL.
func New(baseURL string, timeout time.Duration, token TokenFunc, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		token:   token,
		log:     log.With().Str("component", "gateway").Logger(),
	}
}

// envelope mirrors the backend response shape:
// {"success": true, "data": {...}} or {"success": false, "error": {...}}.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *errorBody      `json:"error"`
}

type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Get issues a GET request and decodes the envelope's data into out (if non-nil).
func (c *Client) Get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &APIError{Kind: KindValidation, Message: "encode request: " + err.Error()}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return &APIError{Kind: KindNetwork, Message: err.Error()}
	}

	reqID := uuid.New().String()
	req.Header.Set("X-Request-ID", reqID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("method", method).Str("path", path).Str("request_id", reqID).Msg("Request failed")
		return &APIError{Kind: KindNetwork, Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Kind: KindNetwork, Status: resp.StatusCode, Message: "read response: " + err.Error()}
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode >= 400 {
		apiErr := &APIError{
			Kind:    classifyStatus(resp.StatusCode),
			Status:  resp.StatusCode,
			Message: http.StatusText(resp.StatusCode),
		}
		if decodeErr == nil && env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		c.log.Debug().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Str("code", apiErr.Code).
			Msg("Request rejected")
		return apiErr
	}

	if decodeErr != nil {
		return &APIError{Kind: KindServer, Status: resp.StatusCode, Message: "decode response: " + decodeErr.Error()}
	}
	if !env.Success {
		apiErr := &APIError{Kind: KindServer, Status: resp.StatusCode, Message: "backend reported failure"}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return apiErr
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &APIError{Kind: KindServer, Status: resp.StatusCode, Message: "decode data: " + err.Error()}
		}
	}
	return nil
}
