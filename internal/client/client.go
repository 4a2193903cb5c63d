// Package client is a typed Go client for the movie-catalog API.  It keeps
// an explicit Session, optionally persisted to a file, and can refresh the
// token in the background with RunRefresher.
package client

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
	"strconv"
	"strings"
	"sync"
	"time"
)

// User is the user resource.
type User struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Movie is the movie resource.
type Movie struct {
	ID                uint64    `json:"id"`
	Title             string    `json:"title"`
	ReleaseYear       int       `json:"release_year"`
	Genre             string    `json:"genre"`
	Synopsis          string    `json:"synopsis"`
	DurationInMinutes int       `json:"duration_in_minutes"`
	PosterURL         *string   `json:"poster_url"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// MovieInput is the body of a create request.
type MovieInput struct {
	Title             string  `json:"title"`
	ReleaseYear       int     `json:"release_year"`
	Genre             string  `json:"genre"`
	Synopsis          string  `json:"synopsis"`
	DurationInMinutes int     `json:"duration_in_minutes"`
	PosterURL         *string `json:"poster_url,omitempty"`
}

// MovieUpdate is a partial update; nil fields are not sent.
type MovieUpdate struct {
	Title             *string `json:"title,omitempty"`
	ReleaseYear       *int    `json:"release_year,omitempty"`
	Genre             *string `json:"genre,omitempty"`
	Synopsis          *string `json:"synopsis,omitempty"`
	DurationInMinutes *int    `json:"duration_in_minutes,omitempty"`
	PosterURL         *string `json:"poster_url,omitempty"`
}

// ProfileUpdate is a partial profile update; nil fields are not sent.
type ProfileUpdate struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
}

// PageMeta describes the position of a page in a listing.
type PageMeta struct {
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
	LastPage    int `json:"last_page"`
}

// MoviePage is one page of GET /movies.
type MoviePage struct {
	Movies []Movie
	Meta   PageMeta
}

// APIError is a non-2xx answer decoded from the error envelope.
type APIError struct {
	Status  int
	Message string
	Errors  map[string][]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
	Data    json.RawMessage     `json:"data"`
	Meta    *PageMeta           `json:"meta"`
}

// Client talks to one API base URL on behalf of one session.
type Client struct {
	baseURL     string
	http        *http.Client
	sessionPath string
	log         *slog.Logger
	now         func() time.Time

	mu      sync.RWMutex
	session Session
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client (10s timeout).
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }

// WithSessionFile persists the session to path on every change.
func WithSessionFile(path string) Option { return func(c *Client) { c.sessionPath = path } }

// WithLogger sets the logger used by the background refresher.
func WithLogger(l *slog.Logger) Option { return func(c *Client) { c.log = l } }

// New builds a client for baseURL, e.g. "http://localhost:8080/api".  When
// a session file is configured its content is loaded.
func New(baseURL string, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		log:     slog.Default(),
		now:     time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	if c.sessionPath != "" {
		if err := c.session.Load(c.sessionPath); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Session returns a copy of the current session.
func (c *Client) Session() Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// SetSession replaces the current session, e.g. one loaded by the caller.
func (c *Client) SetSession(s Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = s
	return c.persist()
}

// persist must be called with mu held.
func (c *Client) persist() error {
	if c.sessionPath == "" {
		return nil
	}
	if c.session.Token == "" {
		return c.session.Clear(c.sessionPath)
	}
	return c.session.Save(c.sessionPath)
}

func (c *Client) clearSession() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Clear(c.sessionPath)
}

func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session.Token
}

// do sends a request and decodes a successful body into out.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var env envelope
		if json.Unmarshal(raw, &env) == nil && env.Message != "" {
			apiErr.Message = env.Message
			apiErr.Errors = env.Errors
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// data sends a request whose answer is a {success, data} envelope and
// decodes data into out.
func (c *Client) data(ctx context.Context, method, path string, in, out any) error {
	var env envelope
	if err := c.do(ctx, method, path, in, &env); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

// adopt turns a token answer into the current session, keeping the known
// user.
func (c *Client) adopt(tok tokenResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.Token = tok.AccessToken
	c.session.ExpiresAt = c.now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	return c.persist()
}

// Register creates an account.  It does not log in.
func (c *Client) Register(ctx context.Context, name, email, password string) (*User, error) {
	var u User
	in := map[string]string{"name": name, "email": email, "password": password}
	if err := c.data(ctx, http.MethodPost, "/auth/register", in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login authenticates and stores the new session, including the profile
// of the logged in user.
func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	var tok tokenResponse
	in := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", in, &tok); err != nil {
		return Session{}, err
	}
	if err := c.adopt(tok); err != nil {
		return Session{}, err
	}
	u, err := c.Profile(ctx)
	if err != nil {
		return Session{}, err
	}
	c.mu.Lock()
	c.session.User = u
	err = c.persist()
	s := c.session
	c.mu.Unlock()
	return s, err
}

// Logout revokes the token on the server and clears the session.  The
// session is cleared even when the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
	if cerr := c.clearSession(); err == nil {
		err = cerr
	}
	return err
}

// Refresh exchanges the current token for a new one.  A 401 clears the
// session.
func (c *Client) Refresh(ctx context.Context) error {
	var tok tokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", nil, &tok); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			_ = c.clearSession()
		}
		return err
	}
	return c.adopt(tok)
}

func (c *Client) Profile(ctx context.Context) (*User, error) {
	var u User
	if err := c.data(ctx, http.MethodGet, "/user/profile", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) UpdateProfile(ctx context.Context, upd ProfileUpdate) (*User, error) {
	var u User
	if err := c.data(ctx, http.MethodPatch, "/user/profile", upd, &u); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session.Token != "" {
		c.session.User = &u
		if err := c.persist(); err != nil {
			return &u, err
		}
	}
	return &u, nil
}

// ListMovies returns one page of the caller's movies.  Zero page or
// perPage use the server defaults.
func (c *Client) ListMovies(ctx context.Context, page, perPage int) (*MoviePage, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		q.Set("per_page", strconv.Itoa(perPage))
	}
	path := "/movies"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var env envelope
	if err := c.do(ctx, http.MethodGet, path, nil, &env); err != nil {
		return nil, err
	}
	out := &MoviePage{Movies: []Movie{}}
	if err := json.Unmarshal(env.Data, &out.Movies); err != nil {
		return nil, fmt.Errorf("decode movies: %w", err)
	}
	if env.Meta != nil {
		out.Meta = *env.Meta
	}
	return out, nil
}

func (c *Client) GetMovie(ctx context.Context, id uint64) (*Movie, error) {
	var m Movie
	if err := c.data(ctx, http.MethodGet, moviePath(id), nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) CreateMovie(ctx context.Context, in MovieInput) (*Movie, error) {
	var m Movie
	if err := c.data(ctx, http.MethodPost, "/movies", in, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) UpdateMovie(ctx context.Context, id uint64, upd MovieUpdate) (*Movie, error) {
	var m Movie
	if err := c.data(ctx, http.MethodPatch, moviePath(id), upd, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) DeleteMovie(ctx context.Context, id uint64) error {
	return c.do(ctx, http.MethodDelete, moviePath(id), nil, nil)
}

func moviePath(id uint64) string {
	return "/movies/" + strconv.FormatUint(id, 10)
}
