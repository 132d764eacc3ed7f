package rest

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/clintrovert/taskboard/internal/app"
	"github.com/clintrovert/taskboard/pkg/types"
)

// Handler handles REST API requests
type Handler struct {
	app    *app.App
	logger *zap.Logger
}

// NewHandler creates a new REST handler
func NewHandler(a *app.App, logger *zap.Logger) *Handler {
	return &Handler{
		app:    a,
		logger: logger,
	}
}

// TaskRequest is the body of task create and edit requests
type TaskRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	AssigneeID  int64      `json:"assignee_id"`
	Priority    string     `json:"priority"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

func (r TaskRequest) draft() types.TaskDraft {
	return types.TaskDraft{
		Name:        r.Name,
		Description: r.Description,
		AssigneeID:  r.AssigneeID,
		Priority:    r.Priority,
		Deadline:    r.Deadline,
	}
}

// StatusRequest asks for a status change
type StatusRequest struct {
	Status string `json:"status"`
}

// TeamRequest creates or renames a team
type TeamRequest struct {
	Name string `json:"name"`
}

// MembersRequest adds people to a team
type MembersRequest struct {
	Members []int64 `json:"members"`
}

// RoleRequest changes a person's role
type RoleRequest struct {
	Role string `json:"role"`
}

// ProgressResponse carries an average progress value
type ProgressResponse struct {
	Progress int `json:"progress"`
}

// ListTasks handles GET /tasks
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	views, err := h.app.Tasks.All(r.Context())
	h.respond(w, r, http.StatusOK, views, err)
}

// GetTask handles GET /tasks/{id}
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	view, err := h.app.Tasks.ByID(r.Context(), id)
	h.respond(w, r, http.StatusOK, view, err)
}

// CreateTask handles POST /tasks
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req TaskRequest
	if !h.decode(w, r, &req) {
		return
	}
	actor := ActorFrom(r.Context())
	task, err := h.app.Engine.CreateTask(r.Context(), actor.ID, req.draft())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	view, err := h.app.Tasks.ByID(r.Context(), task.ID)
	h.respond(w, r, http.StatusCreated, view, err)
}

// UpdateTask handles PUT /tasks/{id}
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var req TaskRequest
	if !h.decode(w, r, &req) {
		return
	}
	actor := ActorFrom(r.Context())
	if _, err := h.app.Engine.UpdateTask(r.Context(), id, actor.ID, req.draft()); err != nil {
		h.writeError(w, r, err)
		return
	}
	view, err := h.app.Tasks.ByID(r.Context(), id)
	h.respond(w, r, http.StatusOK, view, err)
}

// DeleteTask handles DELETE /tasks/{id}
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	actor := ActorFrom(r.Context())
	if err := h.app.Engine.DeleteTask(r.Context(), id, actor.ID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ChangeStatus handles PUT /tasks/{id}/status
func (h *Handler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var req StatusRequest
	if !h.decode(w, r, &req) {
		return
	}
	actor := ActorFrom(r.Context())
	if _, err := h.app.Engine.ApplyStatusChange(r.Context(), id, req.Status, actor.ID); err != nil {
		h.writeError(w, r, err)
		return
	}
	view, err := h.app.Tasks.ByID(r.Context(), id)
	h.respond(w, r, http.StatusOK, view, err)
}

// AssignedTasks handles GET /tasks/assigned
func (h *Handler) AssignedTasks(w http.ResponseWriter, r *http.Request) {
	views, err := h.app.Tasks.OfAssignee(r.Context(), ActorFrom(r.Context()).UserID)
	h.respond(w, r, http.StatusOK, views, err)
}

// AuthoredTasks handles GET /tasks/authored
func (h *Handler) AuthoredTasks(w http.ResponseWriter, r *http.Request) {
	views, err := h.app.Tasks.OfAuthor(r.Context(), ActorFrom(r.Context()).UserID)
	h.respond(w, r, http.StatusOK, views, err)
}

// TeamTasks handles GET /team/tasks
func (h *Handler) TeamTasks(w http.ResponseWriter, r *http.Request) {
	views, err := h.app.Tasks.OfTeam(r.Context(), ActorFrom(r.Context()).UserID)
	h.respond(w, r, http.StatusOK, views, err)
}

// TeamProgress handles GET /team/progress
func (h *Handler) TeamProgress(w http.ResponseWriter, r *http.Request) {
	p, err := h.app.Progress.TeamProgress(r.Context(), ActorFrom(r.Context()).UserID)
	h.respond(w, r, http.StatusOK, ProgressResponse{Progress: p}, err)
}

// ListPeople handles GET /people
func (h *Handler) ListPeople(w http.ResponseWriter, r *http.Request) {
	all, err := h.app.People.List(r.Context(), ActorFrom(r.Context()))
	h.respond(w, r, http.StatusOK, all, err)
}

// GetPerson handles GET /people/{id}
func (h *Handler) GetPerson(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	p, err := h.app.People.Get(r.Context(), ActorFrom(r.Context()), id)
	h.respond(w, r, http.StatusOK, p, err)
}

// UpdateRole handles PUT /people/{id}/role
func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var req RoleRequest
	if !h.decode(w, r, &req) {
		return
	}
	p, err := h.app.People.UpdateRole(r.Context(), ActorFrom(r.Context()), id, req.Role)
	h.respond(w, r, http.StatusOK, p, err)
}

// OverallProgress handles GET /progress
func (h *Handler) OverallProgress(w http.ResponseWriter, r *http.Request) {
	p, err := h.app.Progress.OverallProgress(r.Context())
	h.respond(w, r, http.StatusOK, ProgressResponse{Progress: p}, err)
}

// ListTeams handles GET /teams
func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.app.Teams.List(r.Context())
	h.respond(w, r, http.StatusOK, teams, err)
}

// CreateTeam handles POST /teams
func (h *Handler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var req TeamRequest
	if !h.decode(w, r, &req) {
		return
	}
	team, err := h.app.Teams.Create(r.Context(), ActorFrom(r.Context()).UserID, req.Name)
	h.respond(w, r, http.StatusCreated, team, err)
}

// RenameTeam handles PUT /teams/{id}
func (h *Handler) RenameTeam(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var req TeamRequest
	if !h.decode(w, r, &req) {
		return
	}
	team, err := h.app.Teams.Rename(r.Context(), ActorFrom(r.Context()), id, req.Name)
	h.respond(w, r, http.StatusOK, team, err)
}

// TeamMembers handles GET /teams/{id}/members
func (h *Handler) TeamMembers(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	members, err := h.app.Teams.Members(r.Context(), id)
	h.respond(w, r, http.StatusOK, members, err)
}

// AddTeamMembers handles POST /teams/{id}/members
func (h *Handler) AddTeamMembers(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var req MembersRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.app.Teams.AddMembers(r.Context(), ActorFrom(r.Context()), id, req.Members); err != nil {
		h.writeError(w, r, err)
		return
	}
	members, err := h.app.Teams.Members(r.Context(), id)
	h.respond(w, r, http.StatusOK, members, err)
}

// RemoveTeamMember handles DELETE /teams/members/{personId}
func (h *Handler) RemoveTeamMember(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "personId")
	if !ok {
		return
	}
	if err := h.app.Teams.RemoveMember(r.Context(), ActorFrom(r.Context()), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// InactiveTasks handles GET /teams/{id}/tasks/inactive
func (h *Handler) InactiveTasks(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	views, err := h.app.Tasks.Inactive(r.Context(), id)
	h.respond(w, r, http.StatusOK, views, err)
}

// CompletedTasks handles GET /teams/{id}/tasks/completed
func (h *Handler) CompletedTasks(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	views, err := h.app.Tasks.Completed(r.Context(), id)
	h.respond(w, r, http.StatusOK, views, err)
}

// UnaffiliatedPeople handles GET /people/unaffiliated
func (h *Handler) UnaffiliatedPeople(w http.ResponseWriter, r *http.Request) {
	loose, err := h.app.Teams.Unaffiliated(r.Context())
	h.respond(w, r, http.StatusOK, loose, err)
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Store.Ping(r.Context()); err != nil {
		h.logger.Warn("store unavailable", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// RegisterRoutes registers REST API routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/tasks", h.ListTasks)
	r.Post("/tasks", h.CreateTask)
	r.Get("/tasks/assigned", h.AssignedTasks)
	r.Get("/tasks/authored", h.AuthoredTasks)
	r.Get("/tasks/{id}", h.GetTask)
	r.Put("/tasks/{id}", h.UpdateTask)
	r.Delete("/tasks/{id}", h.DeleteTask)
	r.Put("/tasks/{id}/status", h.ChangeStatus)

	r.Group(func(r chi.Router) {
		r.Use(h.requireRole(types.RoleManager))
		r.Get("/team/tasks", h.TeamTasks)
		r.Get("/team/progress", h.TeamProgress)
	})
	r.Get("/progress", h.OverallProgress)

	r.Get("/teams", h.ListTeams)
	r.Post("/teams", h.CreateTeam)
	r.Put("/teams/{id}", h.RenameTeam)
	r.Get("/teams/{id}/members", h.TeamMembers)
	r.Post("/teams/{id}/members", h.AddTeamMembers)
	r.Delete("/teams/members/{personId}", h.RemoveTeamMember)
	r.Get("/teams/{id}/tasks/inactive", h.InactiveTasks)
	r.Get("/teams/{id}/tasks/completed", h.CompletedTasks)

	r.Get("/people/unaffiliated", h.UnaffiliatedPeople)
	r.Group(func(r chi.Router) {
		r.Use(h.requireRole(types.RoleAdmin))
		r.Get("/people", h.ListPeople)
		r.Get("/people/{id}", h.GetPerson)
		r.Put("/people/{id}/role", h.UpdateRole)
	})
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	raw := chi.URLParam(r, param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.writeError(w, r, types.Errorf(types.KindInvalidArgument, "invalid %s %q", param, raw))
		return 0, false
	}
	return id, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeError(w, r, types.Wrap(types.KindInvalidArgument, err, "malformed request body"))
		return false
	}
	return true
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, status int, body any, err error) {
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, status, body)
}
