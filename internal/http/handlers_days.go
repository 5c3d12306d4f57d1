package http

import (
	"net/http"

	"planner/internal/core"
	"planner/internal/keys"
	"planner/internal/planner"
)

func (s *Server) registerDayRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/days/{day}/todos", s.handle(s.handleListTodos))
	mux.HandleFunc("POST /api/days/{day}/todos", s.handle(s.handleAddTodo))
	mux.HandleFunc("PATCH /api/days/{day}/todos/{id}", s.handle(s.handleUpdateTodo))
	mux.HandleFunc("DELETE /api/days/{day}/todos/{id}", s.handle(s.handleDeleteTodo))
	mux.HandleFunc("POST /api/days/{day}/habits/{tracker}/toggle", s.handle(s.handleToggleHabit))
	mux.HandleFunc("GET /api/days/{day}/journal", s.handle(s.handleJournal))
	mux.HandleFunc("PUT /api/days/{day}/journal", s.handle(s.handleSaveJournal))
}

func (s *Server) handleListTodos(w http.ResponseWriter, r *http.Request) error {
	day, err := pathInt(r, "day")
	if err != nil {
		return err
	}
	return s.inMonth(r, func(p *planner.Planner) error {
		todos, err := p.Todos(day)
		if err != nil {
			return err
		}
		if todos == nil {
			todos = []core.Todo{}
		}
		NewJSONResponse().Data(todos).Write(w)
		return nil
	})
}

func (s *Server) handleAddTodo(w http.ResponseWriter, r *http.Request) error {
	day, err := pathInt(r, "day")
	if err != nil {
		return err
	}
	return s.inMonth(r, func(p *planner.Planner) error {
		todo, err := p.AddTodo(r.Context(), day)
		if err != nil {
			return err
		}
		NewJSONResponse().Status(http.StatusCreated).Data(todo).Write(w)
		return nil
	})
}

func (s *Server) handleUpdateTodo(w http.ResponseWriter, r *http.Request) error {
	day, err := pathInt(r, "day")
	if err != nil {
		return err
	}
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	var patch planner.TodoPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		return err
	}
	patch.Text = sanitizePtr(patch.Text)
	return s.inMonth(r, func(p *planner.Planner) error {
		todo, err := p.UpdateTodo(r.Context(), day, id, patch)
		if err != nil {
			return err
		}
		NewJSONResponse().Data(todo).Write(w)
		return nil
	})
}

func (s *Server) handleDeleteTodo(w http.ResponseWriter, r *http.Request) error {
	day, err := pathInt(r, "day")
	if err != nil {
		return err
	}
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	return s.inMonth(r, func(p *planner.Planner) error {
		if err := p.DeleteTodo(r.Context(), day, id); err != nil {
			return err
		}
		NewJSONResponse().Status(http.StatusNoContent).Write(w)
		return nil
	})
}

type habitResponse struct {
	TrackerID int64 `json:"trackerId"`
	Day       int   `json:"day"`
	Done      bool  `json:"done"`
	Process   int   `json:"process"`
}

func (s *Server) handleToggleHabit(w http.ResponseWriter, r *http.Request) error {
	day, err := pathInt(r, "day")
	if err != nil {
		return err
	}
	trackerID, err := pathID(r, "tracker")
	if err != nil {
		return err
	}
	return s.inMonth(r, func(p *planner.Planner) error {
		process, err := p.ToggleHabit(r.Context(), day, trackerID)
		if err != nil {
			return err
		}
		v := p.View()
		done := v.DailyData[keys.Day(v.Scope.Month, day)].Habits[trackerID]
		NewJSONResponse().Data(habitResponse{
			TrackerID: trackerID,
			Day:       day,
			Done:      done,
			Process:   process,
		}).Write(w)
		return nil
	})
}

func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) error {
	day, err := pathInt(r, "day")
	if err != nil {
		return err
	}
	return s.inMonth(r, func(p *planner.Planner) error {
		e, err := p.Journal(r.Context(), day)
		if err != nil {
			return err
		}
		NewJSONResponse().Data(e).Write(w)
		return nil
	})
}

func (s *Server) handleSaveJournal(w http.ResponseWriter, r *http.Request) error {
	day, err := pathInt(r, "day")
	if err != nil {
		return err
	}
	var e core.JournalEntry
	if err := decodeJSON(w, r, &e); err != nil {
		return err
	}
	e.Content = stripControl(e.Content)
	e.Mood = sanitizeInput(e.Mood)
	e.Weather = sanitizeInput(e.Weather)
	return s.inMonth(r, func(p *planner.Planner) error {
		saved, err := p.SaveJournal(r.Context(), day, e)
		if err != nil {
			return err
		}
		NewJSONResponse().Data(saved).Write(w)
		return nil
	})
}
