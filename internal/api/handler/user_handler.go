package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"petshop/internal/api/middleware"
	"petshop/internal/app/service"
	"petshop/internal/common"
	"petshop/internal/domain/model"
)

type UserHandler struct {
	userService  *service.UserService
	cookieMaxAge time.Duration
}

func NewUserHandler(userService *service.UserService, cookieMaxAge time.Duration) *UserHandler {
	return &UserHandler{userService: userService, cookieMaxAge: cookieMaxAge}
}

func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(self chi.Router) {
		self.Use(middleware.RequireLogin)
		self.Put("/me", h.updateSelf) // PUT /api/user/me
	})
	r.Group(func(admin chi.Router) {
		admin.Use(middleware.RequirePermission(model.PermManageUsers))
		admin.Put("/{userId}", h.updateUser) // PUT /api/user/{userId}
	})
}

func (h *UserHandler) updateSelf(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "You are not logged in!")
		return
	}

	var req service.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	result, err := h.userService.UpdateSelf(r.Context(), actor, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	if result.Token != "" {
		http.SetCookie(w, buildAuthCookie(result.Token, h.cookieMaxAge))
	}
	common.RespondWithJSON(w, http.StatusOK, result)
}

func (h *UserHandler) updateUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "You are not logged in!")
		return
	}

	userID, ok := validID(chi.URLParam(r, "userId"))
	if !ok {
		common.RespondWithError(w, http.StatusNotFound, "userId was not a valid id.")
		return
	}

	var req service.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	result, err := h.userService.UpdateUser(r.Context(), actor, userID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	// When an admin edits their own record the token is reissued so the
	// cookie keeps tracking the current role.
	if result.Token != "" {
		http.SetCookie(w, buildAuthCookie(result.Token, h.cookieMaxAge))
	}
	common.RespondWithJSON(w, http.StatusOK, result)
}
