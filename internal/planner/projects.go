package planner

import (
	"context"
	"fmt"
	"slices"

	"planner/internal/core"
)

// ProjectPatch carries the editable project fields; nil fields are left alone.
type ProjectPatch struct {
	Name      *string `json:"name,omitempty"`
	Objective *string `json:"objective,omitempty"`
	Category  *string `json:"category,omitempty"`
}

func newProject(id int64) core.Project {
	return core.Project{
		ID:        id,
		Name:      "New Project",
		Objective: "Define your project objective here",
		Category:  core.CategoryPersonal,
		Checkpoints: []core.Checkpoint{
			{ID: 1, Text: "First checkpoint"},
			{ID: 2, Text: "Second checkpoint"},
			{ID: 3, Text: "Third checkpoint"},
		},
	}
}

func cloneProjects(in []core.Project) []core.Project {
	out := make([]core.Project, len(in))
	for i, p := range in {
		out[i] = p
		out[i].Checkpoints = slices.Clone(p.Checkpoints)
	}
	return out
}

func (p *Planner) projectIndex(id int64) (int, error) {
	i := slices.IndexFunc(p.projects, func(pr core.Project) bool { return pr.ID == id })
	if i < 0 {
		return -1, fmt.Errorf("project %d: %w", id, ErrNotFound)
	}
	return i, nil
}

// Projects returns a copy of every project.
func (p *Planner) Projects() []core.Project {
	p.mu.Lock()
	defer p.mu.Unlock()
	return cloneProjects(p.projects)
}

// ActiveProject returns the selected project, if any.
func (p *Planner) ActiveProject() (core.Project, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.activeProjectLocked()
}

func (p *Planner) activeProjectLocked() (core.Project, bool) {
	if p.activeProject == 0 {
		return core.Project{}, false
	}
	i, err := p.projectIndex(p.activeProject)
	if err != nil {
		return core.Project{}, false
	}
	return cloneProjects(p.projects[i : i+1])[0], true
}

// AddProject appends a project with placeholder fields and selects it.
func (p *Planner) AddProject(ctx context.Context) (core.Project, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pr := newProject(p.nextID())
	projects := append(cloneProjects(p.projects), pr)
	if err := p.saveProjects(ctx, projects); err != nil {
		return core.Project{}, err
	}
	p.activeProject = pr.ID
	return pr, nil
}

// UpdateProject applies patch to the project with the given id.
func (p *Planner) UpdateProject(ctx context.Context, id int64, patch ProjectPatch) (core.Project, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if patch.Category != nil && !core.ValidCategory(*patch.Category) {
		return core.Project{}, fmt.Errorf("%w: %q", core.ErrUnknownCategory, *patch.Category)
	}
	i, err := p.projectIndex(id)
	if err != nil {
		return core.Project{}, err
	}
	projects := cloneProjects(p.projects)
	pr := &projects[i]
	if patch.Name != nil {
		pr.Name = *patch.Name
	}
	if patch.Objective != nil {
		pr.Objective = *patch.Objective
	}
	if patch.Category != nil {
		pr.Category = *patch.Category
	}
	if err := p.saveProjects(ctx, projects); err != nil {
		return core.Project{}, err
	}
	return projects[i], nil
}

// DeleteProject removes a project. The active selection is cleared only when
// it pointed at the deleted project.
func (p *Planner) DeleteProject(ctx context.Context, id int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	i, err := p.projectIndex(id)
	if err != nil {
		return err
	}
	projects := slices.Delete(cloneProjects(p.projects), i, i+1)
	if err := p.saveProjects(ctx, projects); err != nil {
		return err
	}
	if p.activeProject == id {
		p.activeProject = 0
	}
	return nil
}

// SelectProject makes id the active project.
func (p *Planner) SelectProject(id int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := p.projectIndex(id); err != nil {
		return err
	}
	p.activeProject = id
	return nil
}

// editCheckpoints runs fn on a copy of the project's checkpoints and saves
// the result.
func (p *Planner) editCheckpoints(ctx context.Context, projectID int64, fn func([]core.Checkpoint) ([]core.Checkpoint, error)) (core.Project, error) {
	i, err := p.projectIndex(projectID)
	if err != nil {
		return core.Project{}, err
	}
	projects := cloneProjects(p.projects)
	cps, err := fn(projects[i].Checkpoints)
	if err != nil {
		return core.Project{}, err
	}
	projects[i].Checkpoints = cps
	if err := p.saveProjects(ctx, projects); err != nil {
		return core.Project{}, err
	}
	return projects[i], nil
}

func checkpointIndex(cps []core.Checkpoint, id int64) (int, error) {
	i := slices.IndexFunc(cps, func(c core.Checkpoint) bool { return c.ID == id })
	if i < 0 {
		return -1, fmt.Errorf("checkpoint %d: %w", id, ErrNotFound)
	}
	return i, nil
}

// AddCheckpoint appends a placeholder checkpoint to the project.
func (p *Planner) AddCheckpoint(ctx context.Context, projectID int64) (core.Project, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextID()
	return p.editCheckpoints(ctx, projectID, func(cps []core.Checkpoint) ([]core.Checkpoint, error) {
		return append(cps, core.Checkpoint{ID: id, Text: "New checkpoint"}), nil
	})
}

// UpdateCheckpointText replaces a checkpoint's text.
func (p *Planner) UpdateCheckpointText(ctx context.Context, projectID, checkpointID int64, text string) (core.Project, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.editCheckpoints(ctx, projectID, func(cps []core.Checkpoint) ([]core.Checkpoint, error) {
		i, err := checkpointIndex(cps, checkpointID)
		if err != nil {
			return nil, err
		}
		cps[i].Text = text
		return cps, nil
	})
}

// ToggleCheckpoint flips a checkpoint's completion flag.
func (p *Planner) ToggleCheckpoint(ctx context.Context, projectID, checkpointID int64) (core.Project, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.editCheckpoints(ctx, projectID, func(cps []core.Checkpoint) ([]core.Checkpoint, error) {
		i, err := checkpointIndex(cps, checkpointID)
		if err != nil {
			return nil, err
		}
		cps[i].Completed = !cps[i].Completed
		return cps, nil
	})
}

// DeleteCheckpoint removes a checkpoint from the project.
func (p *Planner) DeleteCheckpoint(ctx context.Context, projectID, checkpointID int64) (core.Project, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.editCheckpoints(ctx, projectID, func(cps []core.Checkpoint) ([]core.Checkpoint, error) {
		i, err := checkpointIndex(cps, checkpointID)
		if err != nil {
			return nil, err
		}
		return slices.Delete(cps, i, i+1), nil
	})
}
