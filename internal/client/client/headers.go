package client

import (
	"net/http"
	"sync"

	"github.com/dmitrijs2005/notehub/internal/common"
	"github.com/google/uuid"
)

// Headers is the outbound header context shared by every request of an
// HTTPClient. Only the session layer writes the bearer token.
type Headers struct {
	mu     sync.RWMutex
	bearer string
}

func NewHeaders() *Headers {
	return &Headers{}
}

// SetBearer attaches token to all subsequent requests.
func (h *Headers) SetBearer(token string) {
	h.mu.Lock()
	h.bearer = token
	h.mu.Unlock()
}

// Clear removes the Authorization header from subsequent requests.
func (h *Headers) Clear() {
	h.SetBearer("")
}

// ClearIf removes the bearer only if it is still token.
func (h *Headers) ClearIf(token string) {
	h.mu.Lock()
	if h.bearer == token {
		h.bearer = ""
	}
	h.mu.Unlock()
}

func (h *Headers) Bearer() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.bearer
}

// headerTransport injects the auth, request id and user agent headers.
type headerTransport struct {
	base    http.RoundTripper
	headers *Headers
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())

	req.Header.Del(common.AuthorizationHeaderName)
	if token := t.headers.Bearer(); token != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+token)
	}
	if req.Header.Get(common.RequestIDHeaderName) == "" {
		req.Header.Set(common.RequestIDHeaderName, uuid.NewString())
	}
	req.Header.Set("User-Agent", common.UserAgent)

	return t.base.RoundTrip(req)
}
