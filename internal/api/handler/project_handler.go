package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vinodhini/portal/internal/core/domain"
	"github.com/vinodhini/portal/internal/core/ports"
)

// ProjectHandler serves /projects. Status and progress changes go through
// the workspace's ProjectService; everything else is plain CRUD.
type ProjectHandler struct{}

func NewProjectHandler() *ProjectHandler {
	return &ProjectHandler{}
}

// projectView is a project plus the edit controls its viewer may use.
type projectView struct {
	Project  domain.Project         `json:"project"`
	Controls domain.ProjectControls `json:"controls"`
	// Warning is set when the last change only partly succeeded.
	Warning string `json:"warning,omitempty"`
}

func viewOf(p domain.Project, role domain.Role) projectView {
	return projectView{Project: p, Controls: p.Controls(role)}
}

// List returns the projects visible to the caller; the backend scopes them
// by role.
//
// @Summary      List projects
// @Tags         projects
// @Produce      json
// @Param        page       query     int     false  "Page"
// @Param        page_size  query     int     false  "Page size"
// @Param        status     query     string  false  "Status filter"
// @Param        search     query     string  false  "Search"
// @Success      200  {object}  listResponse[projectView]
// @Router       /projects [get]
func (h *ProjectHandler) List(c echo.Context) error {
	ws, id, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	projects, page, err := ws.Backend.ListProjects(c.Request().Context(), listParams(c))
	if err != nil {
		return err
	}
	items := make([]projectView, 0, len(projects))
	for _, p := range projects {
		items = append(items, viewOf(p, id.Role))
	}
	return c.JSON(http.StatusOK, listResponse[projectView]{Items: items, Pagination: page})
}

// Get returns one project with its controls.
//
// @Summary      Get project
// @Tags         projects
// @Produce      json
// @Param        id   path      string  true  "Project ID"
// @Success      200  {object}  projectView
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /projects/{id} [get]
func (h *ProjectHandler) Get(c echo.Context) error {
	ws, id, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	p, err := ws.Backend.GetProject(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, viewOf(*p, id.Role))
}

type createProjectRequest struct {
	Name        string   `json:"name" validate:"required,min=3"`
	Description string   `json:"description"`
	ClientID    string   `json:"client_id" validate:"required"`
	EmployeeIDs []string `json:"employee_ids"`
}

// Create adds a project. Admin only.
//
// @Summary      Create project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        body  body      createProjectRequest  true  "Project"
// @Success      201   {object}  projectView
// @Failure      422   {object}  map[string]string
// @Router       /projects [post]
func (h *ProjectHandler) Create(c echo.Context) error {
	ws, id, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	var req createProjectRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	p, err := ws.Backend.CreateProject(c.Request().Context(), ports.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		ClientID:    req.ClientID,
		Status:      domain.ProjectPending,
		EmployeeIDs: req.EmployeeIDs,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, viewOf(*p, id.Role))
}

type updateProjectRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=3"`
	Description *string `json:"description"`
}

// Update edits a project's name and description. Admin only.
//
// @Summary      Update project details
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        id    path      string                true  "Project ID"
// @Param        body  body      updateProjectRequest  true  "Changes"
// @Success      200   {object}  projectView
// @Router       /projects/{id} [put]
func (h *ProjectHandler) Update(c echo.Context) error {
	ws, id, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	var req updateProjectRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	p, err := ws.Backend.UpdateProject(c.Request().Context(), c.Param("id"), ports.ProjectUpdate{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, viewOf(*p, id.Role))
}

// Delete removes a project. Admin only.
//
// @Summary      Delete project
// @Tags         projects
// @Param        id   path  string  true  "Project ID"
// @Success      204
// @Router       /projects/{id} [delete]
func (h *ProjectHandler) Delete(c echo.Context) error {
	ws, _, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	if err := ws.Backend.DeleteProject(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

type progressRequest struct {
	Progress *int `json:"progress" validate:"required,min=0,max=100"`
}

// SetProgress moves progress forward on a project that is not completed.
//
// @Summary      Update project progress
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        id    path      string           true  "Project ID"
// @Param        body  body      progressRequest  true  "New progress"
// @Success      200   {object}  projectView
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /projects/{id}/progress [patch]
func (h *ProjectHandler) SetProgress(c echo.Context) error {
	ws, id, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	var req progressRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	current, err := ws.Backend.GetProject(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	updated, err := ws.Projects.SetProgress(ctx, id, *current, *req.Progress)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, viewOf(updated, id.Role))
}

type statusRequest struct {
	Status domain.ProjectStatus `json:"status" validate:"required"`
}

// SetStatus changes a project's status. Choosing completed also forces
// progress to 100; if that second write fails the committed project is
// returned with a warning and a reconciliation is recorded.
//
// @Summary      Update project status
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        id    path      string         true  "Project ID"
// @Param        body  body      statusRequest  true  "New status"
// @Success      200   {object}  projectView
// @Failure      409   {object}  projectView
// @Failure      422   {object}  map[string]string
// @Router       /projects/{id}/status [patch]
func (h *ProjectHandler) SetStatus(c echo.Context) error {
	ws, id, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	var req statusRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	current, err := ws.Backend.GetProject(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	updated, err := ws.Projects.SetStatus(ctx, id, *current, req.Status)
	return h.respondTransition(c, id.Role, updated, err)
}

// Reconcile retries forcing progress to 100 on a completed project.
//
// @Summary      Reconcile a completed project
// @Tags         projects
// @Produce      json
// @Param        id   path      string  true  "Project ID"
// @Success      200  {object}  projectView
// @Failure      409  {object}  projectView
// @Router       /projects/{id}/reconcile [post]
func (h *ProjectHandler) Reconcile(c echo.Context) error {
	ws, id, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	current, err := ws.Backend.GetProject(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	updated, err := ws.Projects.Reconcile(ctx, id, *current)
	return h.respondTransition(c, id.Role, updated, err)
}

// respondTransition renders a half-finished completion as 409 with the
// committed project so the view shows what the backend actually holds.
func (h *ProjectHandler) respondTransition(c echo.Context, role domain.Role, p domain.Project, err error) error {
	var incomplete *domain.IncompleteCompletionError
	if errors.As(err, &incomplete) {
		v := viewOf(p, role)
		v.Warning = "Status saved as completed, but progress could not be set to 100%. Retry to finish."
		return c.JSON(http.StatusConflict, v)
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, viewOf(p, role))
}

type reconciliationView struct {
	ProjectID  string    `json:"project_id"`
	Progress   int       `json:"progress"`
	UserID     string    `json:"user_id"`
	Reason     string    `json:"reason"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Reconciliations lists completed projects still waiting for progress=100.
// Admin only.
//
// @Summary      Open reconciliations
// @Tags         projects
// @Produce      json
// @Success      200  {array}  reconciliationView
// @Router       /projects/reconciliations [get]
func (h *ProjectHandler) Reconciliations(c echo.Context) error {
	ws, _, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	open, err := ws.Projects.OpenReconciliations(c.Request().Context())
	if err != nil {
		return err
	}
	out := make([]reconciliationView, 0, len(open))
	for _, r := range open {
		out = append(out, reconciliationView{
			ProjectID:  r.ProjectID,
			Progress:   r.Progress,
			UserID:     r.UserID,
			Reason:     r.Reason,
			RecordedAt: r.RecordedAt,
		})
	}
	return c.JSON(http.StatusOK, out)
}

type assignRequest struct {
	EmployeeIDs []string `json:"employee_ids" validate:"required,min=1,dive,required"`
}

// Assign sets the employees working on a project. Admin only.
//
// @Summary      Assign employees
// @Tags         projects
// @Accept       json
// @Param        id    path  string         true  "Project ID"
// @Param        body  body  assignRequest  true  "Employees"
// @Success      204
// @Router       /projects/{id}/assign [post]
func (h *ProjectHandler) Assign(c echo.Context) error {
	ws, _, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	var req assignRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	if err := ws.Backend.AssignEmployees(c.Request().Context(), c.Param("id"), req.EmployeeIDs); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Messages returns a project's message thread.
//
// @Summary      Project messages
// @Tags         projects
// @Produce      json
// @Param        id   path     string  true  "Project ID"
// @Success      200  {array}  domain.Message
// @Router       /projects/{id}/messages [get]
func (h *ProjectHandler) Messages(c echo.Context) error {
	ws, _, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	msgs, err := ws.Backend.ProjectMessages(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, msgs)
}
