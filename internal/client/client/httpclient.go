package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/notehub/internal/client/models"
)

const (
	pathLogin         = "/api/v1/login"
	pathLogout        = "/api/v1/logout"
	pathRegister      = "/api/v1/register"
	pathCurrentUser   = "/api/v1/user"
	pathVerifyToken   = "/api/v1/verify-token"
	pathUpdateProfile = "/api/v1/user/profile"
	pathPing          = "/api/v1/ping"

	contentTypeJSON = "application/json"
)

// HTTPClient talks to the NoteHub REST API. The bearer token comes from the
// Headers it was built with.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient validates baseURL and builds a client whose requests carry
// the headers held by h. A zero timeout means no client-side timeout.
func NewHTTPClient(baseURL string, h *Headers, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("invalid api url %q: expected http(s)://host[:port]", baseURL)
	}
	if h == nil {
		h = NewHeaders()
	}

	return &HTTPClient{
		baseURL: strings.TrimRight(u.String(), "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: &headerTransport{base: http.DefaultTransport, headers: h},
		},
	}, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	req := models.LoginRequest{Email: email, Password: password}
	var resp models.AuthResponse
	if err := c.doRequest(ctx, http.MethodPost, pathLogin, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.doRequest(ctx, http.MethodPost, pathLogout, nil, nil)
}

func (c *HTTPClient) RegisterUser(ctx context.Context, req models.RegisterRequest) (*models.RegisterResponse, error) {
	var resp models.RegisterResponse
	if err := c.doRequest(ctx, http.MethodPost, pathRegister, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CurrentUser returns (nil, nil) when the server does not accept the token.
func (c *HTTPClient) CurrentUser(ctx context.Context) (*models.User, error) {
	var raw json.RawMessage
	err := c.doRequest(ctx, http.MethodGet, pathCurrentUser, nil, &raw)
	if err != nil {
		if apiErr, ok := AsError(err); ok && apiErr.IsUnauthorized() {
			return nil, nil
		}
		return nil, err
	}
	return decodeUser(raw)
}

// VerifyToken reports whether the server still accepts the current token.
func (c *HTTPClient) VerifyToken(ctx context.Context) (bool, error) {
	var resp struct {
		Status bool `json:"status"`
	}
	err := c.doRequest(ctx, http.MethodGet, pathVerifyToken, nil, &resp)
	if err != nil {
		if apiErr, ok := AsError(err); ok && apiErr.IsUnauthorized() {
			return false, nil
		}
		return false, err
	}
	return resp.Status, nil
}

func (c *HTTPClient) UpdateUserProfile(ctx context.Context, update models.ProfileUpdate) (*models.User, error) {
	var resp struct {
		User *models.User `json:"user"`
	}
	if err := c.doRequest(ctx, http.MethodPut, pathUpdateProfile, update, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, errors.New("profile update response has no user")
	}
	return resp.User, nil
}

// Ping succeeds when the server answers at all; only 5xx and transport
// failures count as unavailable.
func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+pathPing, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return mapError(ctx, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: %s", ErrUnavailable, resp.Status)
	}
	return nil
}

func (c *HTTPClient) doRequest(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", contentTypeJSON)
	if body != nil {
		req.Header.Set("Content-Type", contentTypeJSON)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return mapError(ctx, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return mapError(ctx, fmt.Errorf("failed to read response body: %w", err))
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		apiErr := parseError(resp.StatusCode, respBody)
		return fmt.Errorf("%w: %w", ErrUnavailable, apiErr)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return parseError(resp.StatusCode, respBody)
	}

	if result != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// mapError classifies transport failures. Cancellation by the caller is
// returned as is; everything else means the server could not be reached.
func mapError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}

// decodeUser accepts a bare user object or one wrapped in "user" / "data".
func decodeUser(raw json.RawMessage) (*models.User, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var envelope struct {
		User *models.User `json:"user"`
		Data *models.User `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse user: %w", err)
	}
	if envelope.User != nil {
		return envelope.User, nil
	}
	if envelope.Data != nil {
		return envelope.Data, nil
	}

	var u models.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("failed to parse user: %w", err)
	}
	if u.ID == "" && u.Email == "" {
		return nil, nil
	}
	return &u, nil
}
