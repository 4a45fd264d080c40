// Package lobby talks to the account and room-management REST API. Everything
// real-time happens on the websocket channel; this client only covers the
// steps before joining: authenticating, creating or joining a room, and
// peeking at room state.
package lobby

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Config for the lobby client.
type Config struct {
	Timeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{Timeout: 10 * time.Second}
}

// Client is an authenticated lobby API client. Login or Register must succeed
// before any room call.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// NewClient creates a client for the API at baseURL (scheme and host, no
// trailing slash required).
func NewClient(baseURL string, cfg Config) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

// Credentials is the result of a successful login or registration.
type Credentials struct {
	Token string `json:"access_token"`
	Name  string `json:"name"`
}

// Member is one participant listed by the room roster.
type Member struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// HandSnapshot is the REST view of the local hand, used to resync after a
// reconnect.
type HandSnapshot struct {
	Hand   []string       `json:"hand"`
	Others map[string]int `json:"others"`
}

// Token returns the bearer token from the last successful authentication.
func (c *Client) Token() string { return c.token }

// Login authenticates with email and password. The token is kept for
// subsequent room calls.
func (c *Client) Login(ctx context.Context, email, password string) (Credentials, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login",
		strings.NewReader(form.Encode()))
	if err != nil {
		return Credentials{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var creds Credentials
	if err := c.do(req, &creds); err != nil {
		return Credentials{}, fmt.Errorf("login: %w", err)
	}
	c.token = creds.Token
	return creds, nil
}

// Register creates an account and logs it in.
func (c *Client) Register(ctx context.Context, email, password, name string) (Credentials, error) {
	body, err := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
		"name":     name,
	})
	if err != nil {
		return Credentials{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/register",
		bytes.NewReader(body))
	if err != nil {
		return Credentials{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var creds Credentials
	if err := c.do(req, &creds); err != nil {
		return Credentials{}, fmt.Errorf("register: %w", err)
	}
	c.token = creds.Token
	return creds, nil
}

// CreateRoom opens a new room and returns its join code.
func (c *Client) CreateRoom(ctx context.Context) (string, error) {
	req, err := c.authedRequest(ctx, http.MethodPost, "/rooms/create")
	if err != nil {
		return "", err
	}
	var out struct {
		RoomCode string `json:"room_code"`
	}
	if err := c.do(req, &out); err != nil {
		return "", fmt.Errorf("create room: %w", err)
	}
	return out.RoomCode, nil
}

// JoinRoom registers the authenticated user as a member of the room. Joining
// a room you are already in succeeds.
func (c *Client) JoinRoom(ctx context.Context, code string) error {
	req, err := c.authedRequest(ctx, http.MethodGet, "/rooms/join/"+url.PathEscape(code))
	if err != nil {
		return err
	}
	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("join room %s: %w", code, err)
	}
	return nil
}

// Roster returns the room's current members.
func (c *Client) Roster(ctx context.Context, code string) ([]Member, error) {
	req, err := c.authedRequest(ctx, http.MethodGet, "/rooms/"+url.PathEscape(code))
	if err != nil {
		return nil, err
	}
	var out struct {
		Players []Member `json:"players"`
	}
	if err := c.do(req, &out); err != nil {
		return nil, fmt.Errorf("room %s: %w", code, err)
	}
	return out.Players, nil
}

// Hand fetches the local hand over REST. Used to resync after reconnecting
// to a running game.
func (c *Client) Hand(ctx context.Context, code string) (HandSnapshot, error) {
	req, err := c.authedRequest(ctx, http.MethodGet, "/rooms/"+url.PathEscape(code)+"/hand")
	if err != nil {
		return HandSnapshot{}, err
	}
	var out HandSnapshot
	if err := c.do(req, &out); err != nil {
		return HandSnapshot{}, fmt.Errorf("hand for %s: %w", code, err)
	}
	return out, nil
}

func (c *Client) authedRequest(ctx context.Context, method, path string) (*http.Request, error) {
	if c.token == "" {
		return nil, ErrNotAuthenticated
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	return req, nil
}

// do runs the request and decodes the JSON response into out (which may be
// nil). Non-2xx responses become sentinel errors carrying the server detail.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func apiError(resp *http.Response) error {
	var body struct {
		Detail string `json:"detail"`
	}
	json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body)
	detail := body.Detail
	if detail == "" {
		detail = resp.Status
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, detail)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrRoomNotFound, detail)
	case resp.StatusCode == http.StatusBadRequest && strings.Contains(strings.ToLower(detail), "full"):
		return fmt.Errorf("%w: %s", ErrRoomFull, detail)
	default:
		return fmt.Errorf("lobby api: %s (%d)", detail, resp.StatusCode)
	}
}

// Identity is the participant identity carried inside the bearer token.
type Identity struct {
	ID    string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// ParseIdentity extracts the identity claims from a JWT without verifying
// the signature. The server is the authority; the client only needs to know
// its own id and display name.
func ParseIdentity(token string) (Identity, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return Identity{}, fmt.Errorf("%w: expected 3 segments, got %d", ErrMalformedToken, len(parts))
	}
	payload, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[1], "="))
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	var id Identity
	if err := json.Unmarshal(payload, &id); err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if id.ID == "" {
		return Identity{}, fmt.Errorf("%w: missing subject", ErrMalformedToken)
	}
	return id, nil
}
