package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/taskmanager/taskmanager-go/internal/model"
	"github.com/taskmanager/taskmanager-go/internal/service"
)

// UserHandler handles HTTP requests for accounts and sessions.
type UserHandler struct {
	auth  *service.AuthService
	users *service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(auth *service.AuthService, users *service.UserService) *UserHandler {
	return &UserHandler{auth: auth, users: users}
}

// HandleSignup handles POST /users requests.
func (h *UserHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req model.CreateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	resp, err := h.auth.Signup(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// HandleLogin handles POST /users/login requests.
func (h *UserHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	resp, err := h.auth.Login(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleLogout handles POST /users/logout requests.
func (h *UserHandler) HandleLogout(w http.ResponseWriter, r *http.Request, session model.Session) {
	if err := h.auth.Logout(r.Context(), session); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// HandleLogoutAll handles POST /users/logoutAll requests.
func (h *UserHandler) HandleLogoutAll(w http.ResponseWriter, r *http.Request, session model.Session) {
	if err := h.auth.LogoutAll(r.Context(), session); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// HandleMe handles GET /users/me requests.
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request, session model.Session) {
	writeJSON(w, http.StatusOK, h.users.Profile(session))
}

// HandleUpdateMe handles PATCH /users/me requests.
func (h *UserHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request, session model.Session) {
	var req model.UpdateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	resp, err := h.users.UpdateProfile(r.Context(), session, req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleDeleteMe handles DELETE /users/me requests.
func (h *UserHandler) HandleDeleteMe(w http.ResponseWriter, r *http.Request, session model.Session) {
	resp, err := h.users.DeleteAccount(r.Context(), session)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleUploadAvatar handles POST /users/me/avatar requests. The image is
// read from the multipart field "avatar".
func (h *UserHandler) HandleUploadAvatar(w http.ResponseWriter, r *http.Request, session model.Session) {
	r.Body = http.MaxBytesReader(w, r.Body, 2*service.MaxAvatarSize)

	file, header, err := r.FormFile("avatar")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, r, service.ErrAvatarTooLarge)
			return
		}
		writeError(w, r, service.ErrAvatarFormat)
		return
	}
	defer file.Close()

	if err := h.users.SetAvatar(r.Context(), session, header.Filename, file); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// HandleDeleteAvatar handles DELETE /users/me/avatar requests.
func (h *UserHandler) HandleDeleteAvatar(w http.ResponseWriter, r *http.Request, session model.Session) {
	if err := h.users.DeleteAvatar(r.Context(), session); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// HandleGetAvatar handles GET /users/{id}/avatar requests.
func (h *UserHandler) HandleGetAvatar(w http.ResponseWriter, r *http.Request) {
	data, err := h.users.Avatar(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
