// Package playback drives the external music playback service. The planner
// only cares whether a token is present and what the player is doing; every
// call is forwarded to the service's Web API.
package playback

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"planner/internal/credential"
	"planner/internal/log"
)

var (
	ErrNotAuthenticated = errors.New("playback not authenticated")
	ErrInvalidVolume    = errors.New("volume must be between 0 and 100")
)

// TokenStore persists the access token between runs.
type TokenStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

type EventType string

const (
	EventReady        EventType = "ready"
	EventAuthFailure  EventType = "authentication_error"
	EventStateChanged EventType = "player_state_changed"
)

// Event is delivered to subscribers synchronously, in call order.
type Event struct {
	Type     EventType
	DeviceID string
	State    *State
	Message  string
}

type Track struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	URI      string   `json:"uri"`
	Artists  []string `json:"artists"`
	ImageURL string   `json:"imageUrl,omitempty"`
}

type State struct {
	Track    *Track `json:"track,omitempty"`
	Position int    `json:"positionMs"`
	Duration int    `json:"durationMs"`
	Playing  bool   `json:"playing"`
	DeviceID string `json:"deviceId,omitempty"`
	Volume   int    `json:"volume"`
}

type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenStore
	logger  *log.Logger

	mu        sync.Mutex
	token     string
	deviceID  string
	listeners []func(Event)
}

func NewClient(baseURL string, tokens TokenStore, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(log.Config{Component: log.ComponentPlayback})
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		tokens:  tokens,
		logger:  logger,
	}
	if tokens != nil {
		tok, err := tokens.Get(credential.PlaybackTokenKey)
		if err != nil && !errors.Is(err, credential.ErrNotFound) {
			logger.Warn("Could not read playback token", log.FieldError, err)
		}
		c.token = tok
	}
	return c
}

// Subscribe registers fn for every future event.
func (c *Client) Subscribe(fn func(Event)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *Client) emit(e Event) {
	c.mu.Lock()
	listeners := append(([]func(Event))(nil), c.listeners...)
	c.mu.Unlock()
	for _, fn := range listeners {
		fn(e)
	}
}

// Authenticated reports whether a token is held.
func (c *Client) Authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token != ""
}

// SetToken stores a new access token and connects with it.
func (c *Client) SetToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%w: empty token", ErrNotAuthenticated)
	}
	if c.tokens != nil {
		if err := c.tokens.Set(credential.PlaybackTokenKey, token); err != nil {
			return err
		}
	}
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	return c.Connect(ctx)
}

// Logout forgets the token.
func (c *Client) Logout() error {
	c.mu.Lock()
	c.token, c.deviceID = "", ""
	c.mu.Unlock()
	if c.tokens != nil {
		return c.tokens.Delete(credential.PlaybackTokenKey)
	}
	return nil
}

// Connect picks the device to control and announces it with EventReady.
func (c *Client) Connect(ctx context.Context) error {
	var resp struct {
		Devices []struct {
			ID       string `json:"id"`
			IsActive bool   `json:"is_active"`
		} `json:"devices"`
	}
	if err := c.do(ctx, http.MethodGet, "/me/player/devices", nil, nil, &resp); err != nil {
		return err
	}
	device := ""
	for _, d := range resp.Devices {
		if d.IsActive || device == "" {
			device = d.ID
		}
		if d.IsActive {
			break
		}
	}
	c.mu.Lock()
	c.deviceID = device
	c.mu.Unlock()
	c.logger.InfoContext(ctx, "Playback ready", "device_id", device)
	c.emit(Event{Type: EventReady, DeviceID: device})
	return nil
}

// Search returns up to ten tracks. An empty query returns nothing.
func (c *Client) Search(ctx context.Context, query string) ([]Track, error) {
	if strings.TrimSpace(query) == "" {
		return []Track{}, nil
	}
	q := url.Values{"q": {query}, "type": {"track"}, "limit": {"10"}}
	var resp struct {
		Tracks struct {
			Items []apiTrack `json:"items"`
		} `json:"tracks"`
	}
	if err := c.do(ctx, http.MethodGet, "/search", q, nil, &resp); err != nil {
		return nil, err
	}
	out := make([]Track, 0, len(resp.Tracks.Items))
	for _, it := range resp.Tracks.Items {
		out = append(out, it.track())
	}
	return out, nil
}

// Play starts uri on the selected device.
func (c *Client) Play(ctx context.Context, uri string) error {
	body := map[string][]string{"uris": {uri}}
	return c.control(ctx, http.MethodPut, "/me/player/play", nil, body)
}

func (c *Client) Pause(ctx context.Context) error {
	return c.control(ctx, http.MethodPut, "/me/player/pause", nil, nil)
}

func (c *Client) Resume(ctx context.Context) error {
	return c.control(ctx, http.MethodPut, "/me/player/play", nil, nil)
}

func (c *Client) Next(ctx context.Context) error {
	return c.control(ctx, http.MethodPost, "/me/player/next", nil, nil)
}

func (c *Client) Previous(ctx context.Context) error {
	return c.control(ctx, http.MethodPost, "/me/player/previous", nil, nil)
}

// SetVolume sets the volume in percent.
func (c *Client) SetVolume(ctx context.Context, percent int) error {
	if percent < 0 || percent > 100 {
		return ErrInvalidVolume
	}
	q := url.Values{"volume_percent": {strconv.Itoa(percent)}}
	return c.control(ctx, http.MethodPut, "/me/player/volume", q, nil)
}

// State returns the current player state, or nil when nothing is playing.
func (c *Client) State(ctx context.Context) (*State, error) {
	var resp apiState
	if err := c.do(ctx, http.MethodGet, "/me/player", nil, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Device.ID == "" && resp.Item == nil {
		return nil, nil
	}
	return resp.state(), nil
}

// control sends a player command on the selected device, then reports the
// resulting state to subscribers.
func (c *Client) control(ctx context.Context, method, path string, q url.Values, body any) error {
	c.mu.Lock()
	device := c.deviceID
	c.mu.Unlock()
	if q == nil {
		q = url.Values{}
	}
	if device != "" {
		q.Set("device_id", device)
	}
	if err := c.do(ctx, method, path, q, body, nil); err != nil {
		return err
	}
	state, err := c.State(ctx)
	if err != nil {
		c.logger.WarnContext(ctx, "Could not refresh player state", log.FieldError, err)
		return nil
	}
	if state != nil {
		c.emit(Event{Type: EventStateChanged, DeviceID: state.DeviceID, State: state})
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, body, out any) error {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()
	if token == "" {
		return ErrNotAuthenticated
	}

	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.authFailed(ctx, readMessage(resp.Body))
		return ErrNotAuthenticated
	case resp.StatusCode >= 300:
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, readMessage(resp.Body))
	case resp.StatusCode == http.StatusNoContent || out == nil:
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// authFailed drops the rejected token, as a stale token can never recover.
func (c *Client) authFailed(ctx context.Context, message string) {
	c.logger.WarnContext(ctx, "Playback authentication failed", "message", message)
	if err := c.Logout(); err != nil {
		c.logger.WarnContext(ctx, "Could not delete playback token", log.FieldError, err)
	}
	c.emit(Event{Type: EventAuthFailure, Message: message})
}

func readMessage(r io.Reader) string {
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(r, 4096))
	if json.Unmarshal(data, &body) == nil && body.Error.Message != "" {
		return body.Error.Message
	}
	return strings.TrimSpace(string(data))
}

type apiTrack struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	URI   string `json:"uri"`
	Album struct {
		Images []struct {
			URL string `json:"url"`
		} `json:"images"`
	} `json:"album"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	DurationMs int `json:"duration_ms"`
}

func (t apiTrack) track() Track {
	out := Track{ID: t.ID, Name: t.Name, URI: t.URI, Artists: make([]string, 0, len(t.Artists))}
	for _, a := range t.Artists {
		out.Artists = append(out.Artists, a.Name)
	}
	if len(t.Album.Images) > 0 {
		out.ImageURL = t.Album.Images[0].URL
	}
	return out
}

type apiState struct {
	IsPlaying  bool      `json:"is_playing"`
	ProgressMs int       `json:"progress_ms"`
	Item       *apiTrack `json:"item"`
	Device     struct {
		ID            string `json:"id"`
		VolumePercent int    `json:"volume_percent"`
	} `json:"device"`
}

func (s apiState) state() *State {
	st := &State{
		Position: s.ProgressMs,
		Playing:  s.IsPlaying,
		DeviceID: s.Device.ID,
		Volume:   s.Device.VolumePercent,
	}
	if s.Item != nil {
		tr := s.Item.track()
		st.Track = &tr
		st.Duration = s.Item.DurationMs
	}
	return st
}
