package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fjod/go_comics/internal/domain"
	"github.com/fjod/go_comics/internal/logger"
	"github.com/sony/gobreaker/v2"
)

const (
	HeaderRequestID = "X-Request-ID"

	maxResponseBytes = 1 << 20 // 1MB
)

type response struct {
	status int
	body   []byte
}

// HTTPGateway calls the users REST API. Transport failures and 5xx responses
// count against a circuit breaker; 4xx responses do not.
type HTTPGateway struct {
	baseURL *url.URL
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[response]
	log     *slog.Logger
}

type Option func(*options)

type options struct {
	failureThreshold uint32
	openTimeout      time.Duration
	log              *slog.Logger
}

// WithFailureThreshold sets how many consecutive failures open the breaker.
func WithFailureThreshold(n uint32) Option {
	return func(o *options) { o.failureThreshold = n }
}

// WithOpenTimeout sets how long the breaker stays open before probing again.
func WithOpenTimeout(d time.Duration) Option {
	return func(o *options) { o.openTimeout = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

func NewHTTPGateway(baseURL string, httpClient *http.Client, opts ...Option) (*HTTPGateway, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid users api url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid users api url %q: scheme and host required", baseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	o := options{failureThreshold: 5, openTimeout: 30 * time.Second, log: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	g := &HTTPGateway{baseURL: u, http: httpClient, log: o.log}
	g.breaker = gobreaker.NewCircuitBreaker[response](gobreaker.Settings{
		Name:        "users-api",
		MaxRequests: 1,
		Timeout:     o.openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= o.failureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			g.log.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return g, nil
}

func (g *HTTPGateway) GetUser(ctx context.Context, id string) (domain.User, error) {
	resp, err := g.do(ctx, http.MethodGet, userPath(id), nil)
	if err != nil {
		return domain.User{}, fmt.Errorf("get user %s: %w", id, err)
	}
	return decodeUser("get user", resp)
}

func (g *HTTPGateway) CreateUser(ctx context.Context, user domain.User) (domain.User, error) {
	resp, err := g.do(ctx, http.MethodPost, "/users", payloadFrom(user))
	if err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	created, err := decodeUser("create user", resp)
	if err != nil {
		return domain.User{}, err
	}
	if created.ID == "" {
		return domain.User{}, fmt.Errorf("create user: response has no id")
	}
	return created, nil
}

func (g *HTTPGateway) UpdateUser(ctx context.Context, id string, user domain.User) (domain.User, error) {
	resp, err := g.do(ctx, http.MethodPut, userPath(id), payloadFrom(user))
	if err != nil {
		return domain.User{}, fmt.Errorf("update user %s: %w", id, err)
	}
	return decodeUser("update user", resp)
}

func (g *HTTPGateway) DeleteUser(ctx context.Context, id string) error {
	resp, err := g.do(ctx, http.MethodDelete, userPath(id), nil)
	if err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	return checkStatus("delete user", resp)
}

func (g *HTTPGateway) do(ctx context.Context, method, path string, body any) (response, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return response{}, fmt.Errorf("marshal request: %w", err)
		}
	}

	resp, err := g.breaker.Execute(func() (response, error) {
		return g.roundTrip(ctx, method, path, payload)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return response{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return resp, err
}

func (g *HTTPGateway) roundTrip(ctx context.Context, method, path string, payload []byte) (response, error) {
	u := g.baseURL.JoinPath(path)

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return response{}, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := logger.RequestID(ctx); id != "" {
		req.Header.Set(HeaderRequestID, id)
	}

	res, err := g.http.Do(req)
	if err != nil {
		return response{}, err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return response{}, fmt.Errorf("read response: %w", err)
	}

	if res.StatusCode >= http.StatusInternalServerError {
		return response{}, &StatusError{Op: method + " " + path, StatusCode: res.StatusCode, Message: errorMessage(data)}
	}
	return response{status: res.StatusCode, body: data}, nil
}

// userPayload is the writable part of a user; id and groupKey never go upstream.
type userPayload struct {
	Firstname string `json:"firstname,omitempty"`
	Lastname  string `json:"lastname,omitempty"`
	Username  string `json:"username,omitempty"`
	Email     string `json:"email,omitempty"`
	Password  string `json:"password,omitempty"`
}

func payloadFrom(u domain.User) userPayload {
	return userPayload{
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
		Username:  u.Username,
		Email:     u.Email,
		Password:  u.Password,
	}
}

func userPath(id string) string {
	return "/users/" + url.PathEscape(id)
}

func checkStatus(op string, resp response) error {
	switch {
	case resp.status == http.StatusNotFound:
		return ErrUserNotFound
	case resp.status < 200 || resp.status > 299:
		return &StatusError{Op: op, StatusCode: resp.status, Message: errorMessage(resp.body)}
	default:
		return nil
	}
}

func decodeUser(op string, resp response) (domain.User, error) {
	if err := checkStatus(op, resp); err != nil {
		return domain.User{}, err
	}
	var user domain.User
	if err := json.Unmarshal(resp.body, &user); err != nil {
		return domain.User{}, fmt.Errorf("%s: decode response: %w", op, err)
	}
	return user, nil
}

// errorMessage pulls {"error": "..."} or {"errors": [...]} out of a body.
func errorMessage(body []byte) string {
	var e struct {
		Error  string   `json:"error"`
		Errors []string `json:"errors"`
	}
	if err := json.Unmarshal(body, &e); err != nil {
		return ""
	}
	if e.Error != "" {
		return e.Error
	}
	return strings.Join(e.Errors, "; ")
}
