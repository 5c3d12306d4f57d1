package http

import (
	"net/http"

	"planner/internal/core"
	"planner/internal/planner"
)

func (s *Server) registerMonthRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/month", s.handle(s.handleMonth))
	mux.HandleFunc("PUT /api/notes", s.handle(s.handleSetNotes))
	mux.HandleFunc("POST /api/checklist/{list}/{index}/toggle", s.handle(s.handleToggleChecklist))
	mux.HandleFunc("GET /api/expenses", s.handle(s.handleListExpenses))
	mux.HandleFunc("POST /api/expenses", s.handle(s.handleAddExpense))
	mux.HandleFunc("PUT /api/expenses/draft", s.handle(s.handleSetDraft))
	mux.HandleFunc("PATCH /api/expenses/{id}", s.handle(s.handleUpdateExpense))
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handle(s.handleDeleteExpense))
}

func (s *Server) handleMonth(w http.ResponseWriter, r *http.Request) error {
	return s.inMonth(r, func(p *planner.Planner) error {
		NewJSONResponse().Data(p.View()).Write(w)
		return nil
	})
}

type notesRequest struct {
	Notes string `json:"notes"`
}

func (s *Server) handleSetNotes(w http.ResponseWriter, r *http.Request) error {
	var req notesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	notes := stripControl(req.Notes)
	return s.inMonth(r, func(p *planner.Planner) error {
		if err := p.SetNotes(r.Context(), notes); err != nil {
			return err
		}
		NewJSONResponse().Data(notesRequest{Notes: notes}).Write(w)
		return nil
	})
}

// handleToggleChecklist flips one flag; index is zero-based.
func (s *Server) handleToggleChecklist(w http.ResponseWriter, r *http.Request) error {
	index, err := pathInt(r, "index")
	if err != nil {
		return err
	}
	list := r.PathValue("list")
	return s.inMonth(r, func(p *planner.Planner) error {
		checklist, err := p.ToggleChecklist(r.Context(), list, index)
		if err != nil {
			return err
		}
		NewJSONResponse().Data(checklist).Write(w)
		return nil
	})
}

type expensesResponse struct {
	Scope    core.Scope     `json:"scope"`
	Expenses []core.Expense `json:"expenses"`
	Total    float64        `json:"total"`
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) error {
	return s.inMonth(r, func(p *planner.Planner) error {
		expenses := p.Expenses()
		NewJSONResponse().Data(expensesResponse{
			Scope:    p.Scope(),
			Expenses: expenses,
			Total:    core.Total(expenses),
		}).Write(w)
		return nil
	})
}

func sanitizeExpense(n core.NewExpense) core.NewExpense {
	return core.NewExpense{
		Category:    sanitizeInput(n.Category),
		Amount:      sanitizeInput(n.Amount),
		Description: sanitizeInput(n.Description),
	}
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) error {
	var req core.NewExpense
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	req = sanitizeExpense(req)
	return s.inMonth(r, func(p *planner.Planner) error {
		e, err := p.AddExpense(r.Context(), req)
		if err != nil {
			return err
		}
		NewJSONResponse().Status(http.StatusCreated).Data(e).Write(w)
		return nil
	})
}

// handleSetDraft keeps the half-typed expense so the form survives reloads
// of the same month.
func (s *Server) handleSetDraft(w http.ResponseWriter, r *http.Request) error {
	var req core.NewExpense
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	return s.inMonth(r, func(p *planner.Planner) error {
		p.SetDraft(core.NewExpense{
			Category:    stripControl(req.Category),
			Amount:      stripControl(req.Amount),
			Description: stripControl(req.Description),
		})
		NewJSONResponse().Data(p.Draft()).Write(w)
		return nil
	})
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	var patch planner.ExpensePatch
	if err := decodeJSON(w, r, &patch); err != nil {
		return err
	}
	patch.Category = sanitizePtr(patch.Category)
	patch.Amount = sanitizePtr(patch.Amount)
	patch.Description = sanitizePtr(patch.Description)
	return s.inMonth(r, func(p *planner.Planner) error {
		e, err := p.UpdateExpense(r.Context(), id, patch)
		if err != nil {
			return err
		}
		NewJSONResponse().Data(e).Write(w)
		return nil
	})
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	return s.inMonth(r, func(p *planner.Planner) error {
		if err := p.DeleteExpense(r.Context(), id); err != nil {
			return err
		}
		NewJSONResponse().Status(http.StatusNoContent).Write(w)
		return nil
	})
}
