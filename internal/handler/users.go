package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskly/taskly-go/internal/avatar"
	"github.com/taskly/taskly-go/internal/middleware"
	"github.com/taskly/taskly-go/internal/model"
	"github.com/taskly/taskly-go/internal/service"
)

// multipartOverhead leaves room for boundaries and part headers around the
// avatar file itself.
const multipartOverhead = 64 << 10

// UserHandler handles HTTP requests for accounts, sessions and avatars.
type UserHandler struct {
	auth  *service.AuthService
	users *service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(auth *service.AuthService, users *service.UserService) *UserHandler {
	return &UserHandler{auth: auth, users: users}
}

// HandleRegister handles POST /users requests.
func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req model.CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.auth.Register(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// HandleLogin handles POST /users/login requests.
func (h *UserHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.auth.Login(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleLogout handles POST /users/logout requests.
func (h *UserHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	user, ok := sessionUser(w, r)
	if !ok {
		return
	}
	token, _ := middleware.TokenFromContext(r.Context())

	if err := h.auth.Logout(r.Context(), user, token); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// HandleLogoutAll handles POST /users/logoutAll requests.
func (h *UserHandler) HandleLogoutAll(w http.ResponseWriter, r *http.Request) {
	user, ok := sessionUser(w, r)
	if !ok {
		return
	}

	if err := h.auth.LogoutAll(r.Context(), user); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// HandleMe handles GET /users/me requests.
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := sessionUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, model.NewUserResponse(user))
}

// HandleUpdateMe handles PATCH /users/me requests.
func (h *UserHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	user, ok := sessionUser(w, r)
	if !ok {
		return
	}

	var patch map[string]json.RawMessage
	if !decodeJSON(w, r, &patch) {
		return
	}

	updated, err := h.users.UpdateProfile(r.Context(), user, patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.NewUserResponse(updated))
}

// HandleDeleteMe handles DELETE /users/me requests.
func (h *UserHandler) HandleDeleteMe(w http.ResponseWriter, r *http.Request) {
	user, ok := sessionUser(w, r)
	if !ok {
		return
	}

	deleted, err := h.users.Delete(r.Context(), user)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.NewUserResponse(deleted))
}

// HandleUploadAvatar handles POST /users/me/avatar multipart uploads with the
// image in the "avatar" field.
func (h *UserHandler) HandleUploadAvatar(w http.ResponseWriter, r *http.Request) {
	user, ok := sessionUser(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, avatar.MaxSize+multipartOverhead)
	file, header, err := r.FormFile("avatar")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusBadRequest, errorResponse(avatar.ErrTooLarge.Error()))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse(avatar.ErrUnsupportedType.Error()))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, avatar.MaxSize+1))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("could not read upload"))
		return
	}

	if err := h.users.SetAvatar(r.Context(), user, header.Filename, data); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// HandleDeleteAvatar handles DELETE /users/me/avatar requests.
func (h *UserHandler) HandleDeleteAvatar(w http.ResponseWriter, r *http.Request) {
	user, ok := sessionUser(w, r)
	if !ok {
		return
	}

	if err := h.users.ClearAvatar(r.Context(), user); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// HandleGetAvatar handles GET /users/{id}/avatar requests. No session needed.
func (h *UserHandler) HandleGetAvatar(w http.ResponseWriter, r *http.Request) {
	img, err := h.users.Avatar(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(img)
}
