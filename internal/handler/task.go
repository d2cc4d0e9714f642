package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/taskmanager/taskmanager-go/internal/model"
	"github.com/taskmanager/taskmanager-go/internal/service"
)

// TaskHandler handles HTTP requests for the session user's tasks.
type TaskHandler struct {
	service *service.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(svc *service.TaskService) *TaskHandler {
	return &TaskHandler{service: svc}
}

// HandleCreate handles POST /tasks requests.
func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request, session model.Session) {
	var req model.CreateTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	resp, err := h.service.Create(r.Context(), session.User.ID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// HandleList handles GET /tasks?completed=&sortBy=field:dir&limit=&skip= requests.
func (h *TaskHandler) HandleList(w http.ResponseWriter, r *http.Request, session model.Session) {
	tasks, err := h.service.List(r.Context(), session.User.ID, parseTaskQuery(r.URL.Query()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tasks)
}

// HandleGet handles GET /tasks/{id} requests.
func (h *TaskHandler) HandleGet(w http.ResponseWriter, r *http.Request, session model.Session) {
	resp, err := h.service.Get(r.Context(), session.User.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleUpdate handles PATCH /tasks/{id} requests.
func (h *TaskHandler) HandleUpdate(w http.ResponseWriter, r *http.Request, session model.Session) {
	var req model.UpdateTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	resp, err := h.service.Update(r.Context(), session.User.ID, chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleDelete handles DELETE /tasks/{id} requests.
func (h *TaskHandler) HandleDelete(w http.ResponseWriter, r *http.Request, session model.Session) {
	resp, err := h.service.Delete(r.Context(), session.User.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// parseTaskQuery reads the listing parameters. Values that do not parse are
// ignored rather than rejected.
func parseTaskQuery(v url.Values) model.TaskQuery {
	var q model.TaskQuery

	if s := v.Get("completed"); s != "" {
		if b, err := strconv.ParseBool(s); err == nil {
			q.Completed = &b
		}
	}

	if s := v.Get("sortBy"); s != "" {
		field, dir, _ := strings.Cut(s, ":")
		if f := model.SortField(field); f.Valid() {
			q.SortField = f
			q.SortDesc = dir == "desc"
		}
	}

	q.Limit = parseCount(v.Get("limit"))
	q.Skip = parseCount(v.Get("skip"))
	return q
}

func parseCount(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
