package playback

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/require"

	"planner/internal/credential"
	"planner/internal/log"
)

type fakeService struct {
	mu       sync.Mutex
	token    string
	requests []string
	volume   string
	played   []string
	playing  bool
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	if r.Header.Get("Authorization") != "Bearer "+f.token {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"status":401,"message":"The access token expired"}}`)
		return
	}
	switch r.Method + " " + r.URL.Path {
	case "GET /me/player/devices":
		_, _ = io.WriteString(w, `{"devices":[{"id":"idle","is_active":false},{"id":"desk","is_active":true}]}`)
	case "GET /search":
		if r.URL.Query().Get("type") != "track" || r.URL.Query().Get("limit") != "10" {
			http.Error(w, "bad query", http.StatusBadRequest)
			return
		}
		_, _ = io.WriteString(w, `{"tracks":{"items":[{"id":"t1","name":"Song","uri":"spotify:track:t1",
			"album":{"images":[{"url":"http://img/1"}]},"artists":[{"name":"A"},{"name":"B"}]}]}}`)
	case "PUT /me/player/play":
		if r.URL.Query().Get("device_id") != "desk" {
			http.Error(w, "no device", http.StatusNotFound)
			return
		}
		var body struct {
			URIs []string `json:"uris"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.played = append(f.played, body.URIs...)
		f.playing = true
		w.WriteHeader(http.StatusNoContent)
	case "PUT /me/player/pause":
		f.playing = false
		w.WriteHeader(http.StatusNoContent)
	case "PUT /me/player/volume":
		f.volume = r.URL.Query().Get("volume_percent")
		w.WriteHeader(http.StatusNoContent)
	case "POST /me/player/next", "POST /me/player/previous":
		w.WriteHeader(http.StatusNoContent)
	case "GET /me/player":
		_ = json.NewEncoder(w).Encode(map[string]any{
			"is_playing":  f.playing,
			"progress_ms": 1000,
			"item":        map[string]any{"id": "t1", "name": "Song", "uri": "spotify:track:t1", "duration_ms": 2000},
			"device":      map[string]any{"id": "desk", "volume_percent": 50},
		})
	default:
		http.Error(w, "unexpected", http.StatusNotFound)
	}
}

func newTestClient(t *testing.T, fake *fakeService) (*Client, *credential.Store) {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	tokens := credential.NewStore(keyring.NewArrayKeyring(nil))
	c := NewClient(srv.URL+"/", tokens, log.New(log.Config{Level: slog.LevelError, Output: io.Discard}))
	return c, tokens
}

func TestClientRequiresToken(t *testing.T) {
	c, _ := newTestClient(t, &fakeService{token: "good"})
	require.False(t, c.Authenticated())
	_, err := c.Search(context.Background(), "song")
	require.ErrorIs(t, err, ErrNotAuthenticated)
	require.ErrorIs(t, c.Pause(context.Background()), ErrNotAuthenticated)
	require.ErrorIs(t, c.SetToken(context.Background(), "  "), ErrNotAuthenticated)
}

func TestClientLoadsStoredToken(t *testing.T) {
	fake := &fakeService{token: "good"}
	srv := httptest.NewServer(fake)
	defer srv.Close()
	tokens := credential.NewStore(keyring.NewArrayKeyring(nil))
	require.NoError(t, tokens.Set(credential.PlaybackTokenKey, "good"))

	c := NewClient(srv.URL, tokens, nil)
	require.True(t, c.Authenticated())
}

func TestClientSessionEmitsEvents(t *testing.T) {
	ctx := context.Background()
	fake := &fakeService{token: "good"}
	c, tokens := newTestClient(t, fake)

	var events []Event
	c.Subscribe(func(e Event) { events = append(events, e) })

	require.NoError(t, c.SetToken(ctx, "good"))
	require.True(t, c.Authenticated())
	stored, err := tokens.Get(credential.PlaybackTokenKey)
	require.NoError(t, err)
	require.Equal(t, "good", stored)
	require.Len(t, events, 1)
	require.Equal(t, Event{Type: EventReady, DeviceID: "desk"}, events[0])

	tracks, err := c.Search(ctx, "song")
	require.NoError(t, err)
	require.Equal(t, []Track{{ID: "t1", Name: "Song", URI: "spotify:track:t1", Artists: []string{"A", "B"}, ImageURL: "http://img/1"}}, tracks)

	require.NoError(t, c.Play(ctx, "spotify:track:t1"))
	require.Equal(t, []string{"spotify:track:t1"}, fake.played)
	last := events[len(events)-1]
	require.Equal(t, EventStateChanged, last.Type)
	require.True(t, last.State.Playing)
	require.Equal(t, 2000, last.State.Duration)

	require.NoError(t, c.Pause(ctx))
	require.False(t, events[len(events)-1].State.Playing)
	require.NoError(t, c.Resume(ctx))
	require.NoError(t, c.Next(ctx))
	require.NoError(t, c.Previous(ctx))
	require.NoError(t, c.SetVolume(ctx, 30))
	require.Equal(t, "30", fake.volume)
	require.ErrorIs(t, c.SetVolume(ctx, 101), ErrInvalidVolume)
}

func TestClientEmptySearch(t *testing.T) {
	c, _ := newTestClient(t, &fakeService{token: "good"})
	tracks, err := c.Search(context.Background(), " ")
	require.NoError(t, err)
	require.Empty(t, tracks)
}

func TestClientAuthFailureForgetsToken(t *testing.T) {
	ctx := context.Background()
	fake := &fakeService{token: "fresh"}
	c, tokens := newTestClient(t, fake)

	var events []Event
	c.Subscribe(func(e Event) { events = append(events, e) })

	err := c.SetToken(ctx, "stale")
	require.ErrorIs(t, err, ErrNotAuthenticated)
	require.False(t, c.Authenticated())
	_, err = tokens.Get(credential.PlaybackTokenKey)
	require.True(t, errors.Is(err, credential.ErrNotFound))
	require.Equal(t, []Event{{Type: EventAuthFailure, Message: "The access token expired"}}, events)
}
