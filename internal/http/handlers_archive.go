package http

import (
	"net/http"
	"strconv"

	"planner/internal/archive"
	"planner/internal/core"
	"planner/internal/signup"
)

func (s *Server) registerArchiveRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/archive/notes", s.handle(s.handleNotesArchive))
	mux.HandleFunc("GET /api/archive/journal", s.handle(s.handleJournalArchive))
	mux.HandleFunc("GET /api/history", s.handle(s.handleHistory))
}

type notesArchiveResponse struct {
	Year   int                      `json:"year"`
	Months []core.NotesArchiveMonth `json:"months"`
}

// handleNotesArchive lists the year's notes; ?withContent=true keeps only
// months that have some.
func (s *Server) handleNotesArchive(w http.ResponseWriter, r *http.Request) error {
	year, err := parseYear(r.URL.Query(), s.now())
	if err != nil {
		return err
	}
	months, err := s.archive.NotesArchive(r.Context(), year)
	if err != nil {
		return err
	}
	if v := r.URL.Query().Get("withContent"); v != "" {
		only, err := strconv.ParseBool(v)
		if err != nil {
			return badRequest("invalid withContent %q", v)
		}
		if only {
			months = archive.WithContent(months)
		}
	}
	NewJSONResponse().Data(notesArchiveResponse{Year: year, Months: months}).Write(w)
	return nil
}

type journalArchiveResponse struct {
	Year   int                        `json:"year"`
	Months []core.JournalArchiveMonth `json:"months"`
}

func (s *Server) handleJournalArchive(w http.ResponseWriter, r *http.Request) error {
	year, err := parseYear(r.URL.Query(), s.now())
	if err != nil {
		return err
	}
	months, err := s.archive.JournalArchive(r.Context(), year)
	if err != nil {
		return err
	}
	NewJSONResponse().Data(journalArchiveResponse{Year: year, Months: months}).Write(w)
	return nil
}

type historyResponse struct {
	SignupDate string                 `json:"signupDate"`
	Months     []core.HistoricalMonth `json:"months"`
}

// handleHistory walks from the signup month to the requested month.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) error {
	current, err := parseScope(r.URL.Query(), s.now())
	if err != nil {
		return err
	}
	anchor := s.planner.Signup()
	months, err := s.archive.History(r.Context(), anchor.Scope(), current)
	if err != nil {
		return err
	}
	NewJSONResponse().Data(historyResponse{
		SignupDate: signup.Format(anchor.Date),
		Months:     months,
	}).Write(w)
	return nil
}
