package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DefaultTimeout bounds every HTTP call made by a Client.
const DefaultTimeout = 15 * time.Second

const refreshPath = "/api/user/refresh"

// Scheme selects how the access token is attached to a request.
type Scheme int

const (
	// SchemeBearer sends "Authorization: Bearer <token>", used by user routes.
	SchemeBearer Scheme = iota
	// SchemeBare sends "Authorization: <token>", used by admin routes.
	SchemeBare
)

func (s Scheme) header(token string) string {
	if s == SchemeBare {
		return token
	}
	return "Bearer " + token
}

// Request describes one call to a protected endpoint. Body is resent as-is on retry.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
	Scheme Scheme
}

// Client attaches credentials to requests and handles one refresh-and-retry cycle.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
	now     func() time.Time
	creds   *Credentials
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock overrides the clock used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// New builds a client for the API at baseURL keeping its pair in store.
func New(baseURL string, store SessionStore, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.creds = newCredentials(store, c.refreshPair, c.now, c.http.Timeout, c.logger)
	return c
}

// Credentials exposes the credential logic backing the client.
func (c *Client) Credentials() *Credentials {
	return c.creds
}

// Do sends req with a valid access token. A 401 answer triggers exactly one
// refresh followed by exactly one retry, whose response is returned whatever
// its status. Every other response is returned untouched. When no usable
// credentials remain the store is cleared and the error matches
// ErrMustReauthenticate; in that case req may not have been sent at all.
// Store and transport failures are returned without touching the store.
func (c *Client) Do(ctx context.Context, req Request) (*http.Response, error) {
	token, err := c.creds.ValidAccess(ctx)
	if err != nil {
		return nil, c.reauthenticate(ctx, err)
	}

	resp, err := c.send(ctx, req, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	drain(resp)

	c.logger.Debug("access token rejected, refreshing", zap.String("path", req.Path))
	token, err = c.creds.Refresh(ctx)
	if err != nil {
		return nil, c.reauthenticate(ctx, err)
	}
	return c.send(ctx, req, token)
}

// Logout forgets the stored pair.
func (c *Client) Logout(ctx context.Context) error {
	return c.creds.Clear(ctx)
}

// reauthenticate clears the store after a credential verdict. Cancellation
// and transient failures are returned as they are and leave the store alone.
func (c *Client) reauthenticate(ctx context.Context, cause error) error {
	if ctx.Err() != nil || isTransient(cause) {
		return cause
	}
	if err := c.creds.Clear(ctx); err != nil {
		c.logger.Warn("clear credentials", zap.Error(err))
	}
	return mustReauthenticate(cause)
}

func (c *Client) send(ctx context.Context, req Request, token string) (*http.Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.url(req.Path), body)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	if req.Body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Authorization", req.Scheme.header(token))

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, req.Path)
	}
	return resp, nil
}

func (c *Client) url(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

// sessionResponse is the body of every successful auth endpoint.
type sessionResponse struct {
	Message      string `json:"message"`
	User         *User  `json:"user,omitempty"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) refreshPair(ctx context.Context, refreshToken string) (Pair, error) {
	var out sessionResponse
	if err := c.postJSON(ctx, refreshPath, map[string]string{"refreshToken": refreshToken}, &out); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return Pair{}, errors.Wrap(ErrRefreshRejected, apiErr.Error())
		}
		return Pair{}, err
	}
	if out.Token == "" || out.RefreshToken == "" {
		return Pair{}, errors.Wrap(ErrRefreshRejected, "response carried no tokens")
	}
	return Pair{AccessToken: out.Token, RefreshToken: out.RefreshToken}, nil
}

// postJSON posts payload without credentials and decodes a 2xx body into out.
func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "encode payload")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), bytes.NewReader(raw))
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "POST %s", path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var body errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return &APIError{StatusCode: resp.StatusCode, Code: body.Error.Code, Message: body.Error.Message}
	}
	return errors.Wrap(json.NewDecoder(resp.Body).Decode(out), "decode response")
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
