package http

import (
	"errors"
	"net/http"

	"planner/internal/playback"
)

func (s *Server) registerPlaybackRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/playback/status", s.handle(s.handlePlaybackStatus))
	mux.HandleFunc("PUT /api/playback/token", s.handle(s.handleSetPlaybackToken))
	mux.HandleFunc("DELETE /api/playback/token", s.handle(s.handlePlaybackLogout))
	mux.HandleFunc("GET /api/playback/search", s.handle(s.handlePlaybackSearch))
	mux.HandleFunc("POST /api/playback/{action}", s.handle(s.handlePlaybackAction))
}

var errPlaybackDisabled = &requestError{status: http.StatusServiceUnavailable, message: "playback is not configured"}

type playbackStatus struct {
	Authenticated bool            `json:"authenticated"`
	State         *playback.State `json:"state"`
}

func (s *Server) handlePlaybackStatus(w http.ResponseWriter, r *http.Request) error {
	if s.player == nil {
		return errPlaybackDisabled
	}
	status := playbackStatus{Authenticated: s.player.Authenticated()}
	if status.Authenticated {
		state, err := s.player.State(r.Context())
		switch {
		case errors.Is(err, playback.ErrNotAuthenticated):
			status.Authenticated = false
		case err != nil:
			return err
		default:
			status.State = state
		}
	}
	NewJSONResponse().Data(status).Write(w)
	return nil
}

type tokenRequest struct {
	Token string `json:"token"`
}

func (s *Server) handleSetPlaybackToken(w http.ResponseWriter, r *http.Request) error {
	if s.player == nil {
		return errPlaybackDisabled
	}
	var req tokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	token := sanitizeInput(req.Token)
	if token == "" {
		return badRequest("token is required")
	}
	if err := s.player.SetToken(r.Context(), token); err != nil {
		return err
	}
	NewJSONResponse().Data(playbackStatus{Authenticated: true}).Write(w)
	return nil
}

func (s *Server) handlePlaybackLogout(w http.ResponseWriter, r *http.Request) error {
	if s.player == nil {
		return errPlaybackDisabled
	}
	if err := s.player.Logout(); err != nil {
		return err
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
	return nil
}

func (s *Server) handlePlaybackSearch(w http.ResponseWriter, r *http.Request) error {
	if s.player == nil {
		return errPlaybackDisabled
	}
	q := sanitizeInput(r.URL.Query().Get("q"))
	if q == "" {
		return badRequest("query parameter q is required")
	}
	tracks, err := s.player.Search(r.Context(), q)
	if err != nil {
		return err
	}
	if tracks == nil {
		tracks = []playback.Track{}
	}
	NewJSONResponse().Data(tracks).Write(w)
	return nil
}

type playbackActionRequest struct {
	URI    string `json:"uri"`
	Volume *int   `json:"volume"`
}

func (s *Server) handlePlaybackAction(w http.ResponseWriter, r *http.Request) error {
	if s.player == nil {
		return errPlaybackDisabled
	}
	var req playbackActionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	ctx := r.Context()
	var err error
	switch action := r.PathValue("action"); action {
	case "play":
		uri := sanitizeInput(req.URI)
		if uri == "" {
			return badRequest("uri is required")
		}
		err = s.player.Play(ctx, uri)
	case "pause":
		err = s.player.Pause(ctx)
	case "resume":
		err = s.player.Resume(ctx)
	case "next":
		err = s.player.Next(ctx)
	case "previous":
		err = s.player.Previous(ctx)
	case "volume":
		if req.Volume == nil {
			return badRequest("volume is required")
		}
		err = s.player.SetVolume(ctx, *req.Volume)
	default:
		return &requestError{status: http.StatusNotFound, message: "unknown playback action " + action}
	}
	if err != nil {
		return err
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
	return nil
}
