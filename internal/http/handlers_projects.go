package http

import (
	"net/http"

	"planner/internal/core"
	"planner/internal/planner"
)

func (s *Server) registerProjectRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/projects", s.handle(s.handleListProjects))
	mux.HandleFunc("POST /api/projects", s.handle(s.handleAddProject))
	mux.HandleFunc("PATCH /api/projects/{id}", s.handle(s.handleUpdateProject))
	mux.HandleFunc("DELETE /api/projects/{id}", s.handle(s.handleDeleteProject))
	mux.HandleFunc("POST /api/projects/{id}/select", s.handle(s.handleSelectProject))
	mux.HandleFunc("POST /api/projects/{id}/checkpoints", s.handle(s.handleAddCheckpoint))
	mux.HandleFunc("PATCH /api/projects/{id}/checkpoints/{cp}", s.handle(s.handleUpdateCheckpoint))
	mux.HandleFunc("DELETE /api/projects/{id}/checkpoints/{cp}", s.handle(s.handleDeleteCheckpoint))
	mux.HandleFunc("POST /api/projects/{id}/checkpoints/{cp}/toggle", s.handle(s.handleToggleCheckpoint))

	mux.HandleFunc("GET /api/trackers", s.handle(s.handleListTrackers))
	mux.HandleFunc("POST /api/trackers", s.handle(s.handleAddTracker))
	mux.HandleFunc("PATCH /api/trackers/{id}", s.handle(s.handleUpdateTracker))
	mux.HandleFunc("DELETE /api/trackers/{id}", s.handle(s.handleDeleteTracker))
}

type projectsResponse struct {
	Projects      []core.Project `json:"projects"`
	ActiveProject *core.Project  `json:"activeProject"`
}

// Projects are global, so these handlers skip the month switch.

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) error {
	resp := projectsResponse{Projects: s.planner.Projects()}
	if pr, ok := s.planner.ActiveProject(); ok {
		resp.ActiveProject = &pr
	}
	if resp.Projects == nil {
		resp.Projects = []core.Project{}
	}
	NewJSONResponse().Data(resp).Write(w)
	return nil
}

func (s *Server) handleAddProject(w http.ResponseWriter, r *http.Request) error {
	pr, err := s.planner.AddProject(r.Context())
	if err != nil {
		return err
	}
	NewJSONResponse().Status(http.StatusCreated).Data(pr).Write(w)
	return nil
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	var patch planner.ProjectPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		return err
	}
	patch.Name = sanitizePtr(patch.Name)
	patch.Objective = sanitizePtr(patch.Objective)
	patch.Category = sanitizePtr(patch.Category)
	pr, err := s.planner.UpdateProject(r.Context(), id, patch)
	if err != nil {
		return err
	}
	NewJSONResponse().Data(pr).Write(w)
	return nil
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	if err := s.planner.DeleteProject(r.Context(), id); err != nil {
		return err
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
	return nil
}

func (s *Server) handleSelectProject(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	if err := s.planner.SelectProject(id); err != nil {
		return err
	}
	pr, _ := s.planner.ActiveProject()
	NewJSONResponse().Data(pr).Write(w)
	return nil
}

func (s *Server) handleAddCheckpoint(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	pr, err := s.planner.AddCheckpoint(r.Context(), id)
	if err != nil {
		return err
	}
	NewJSONResponse().Status(http.StatusCreated).Data(pr).Write(w)
	return nil
}

type checkpointRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleUpdateCheckpoint(w http.ResponseWriter, r *http.Request) error {
	id, cp, err := checkpointPath(r)
	if err != nil {
		return err
	}
	var req checkpointRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	pr, err := s.planner.UpdateCheckpointText(r.Context(), id, cp, sanitizeInput(req.Text))
	if err != nil {
		return err
	}
	NewJSONResponse().Data(pr).Write(w)
	return nil
}

func (s *Server) handleToggleCheckpoint(w http.ResponseWriter, r *http.Request) error {
	id, cp, err := checkpointPath(r)
	if err != nil {
		return err
	}
	pr, err := s.planner.ToggleCheckpoint(r.Context(), id, cp)
	if err != nil {
		return err
	}
	NewJSONResponse().Data(pr).Write(w)
	return nil
}

func (s *Server) handleDeleteCheckpoint(w http.ResponseWriter, r *http.Request) error {
	id, cp, err := checkpointPath(r)
	if err != nil {
		return err
	}
	pr, err := s.planner.DeleteCheckpoint(r.Context(), id, cp)
	if err != nil {
		return err
	}
	NewJSONResponse().Data(pr).Write(w)
	return nil
}

func checkpointPath(r *http.Request) (projectID, checkpointID int64, err error) {
	if projectID, err = pathID(r, "id"); err != nil {
		return 0, 0, err
	}
	if checkpointID, err = pathID(r, "cp"); err != nil {
		return 0, 0, err
	}
	return projectID, checkpointID, nil
}

// Tracker percentages depend on the month, so these go through inMonth.

func (s *Server) handleListTrackers(w http.ResponseWriter, r *http.Request) error {
	return s.inMonth(r, func(p *planner.Planner) error {
		trackers := p.Trackers()
		if trackers == nil {
			trackers = []core.Tracker{}
		}
		NewJSONResponse().Data(trackers).Write(w)
		return nil
	})
}

func (s *Server) handleAddTracker(w http.ResponseWriter, r *http.Request) error {
	return s.inMonth(r, func(p *planner.Planner) error {
		tr, err := p.AddTracker(r.Context())
		if err != nil {
			return err
		}
		NewJSONResponse().Status(http.StatusCreated).Data(tr).Write(w)
		return nil
	})
}

func (s *Server) handleUpdateTracker(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	var patch planner.TrackerPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		return err
	}
	patch.Name = sanitizePtr(patch.Name)
	patch.Color = sanitizePtr(patch.Color)
	return s.inMonth(r, func(p *planner.Planner) error {
		tr, err := p.UpdateTracker(r.Context(), id, patch)
		if err != nil {
			return err
		}
		NewJSONResponse().Data(tr).Write(w)
		return nil
	})
}

func (s *Server) handleDeleteTracker(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	if err := s.planner.DeleteTracker(r.Context(), id); err != nil {
		return err
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
	return nil
}
