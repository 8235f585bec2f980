package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/gracewave/gracewave/modules/core/domain/aggregates/user"
	"github.com/gracewave/gracewave/modules/core/services"
	"github.com/gracewave/gracewave/pkg/application"
	"github.com/gracewave/gracewave/pkg/middleware"
)

type UsersController struct {
	app         application.Application
	userService *services.UserService
	apiPrefix   string
}

func NewUsersController(app application.Application) application.Controller {
	return &UsersController{
		app:         app,
		userService: app.Service(services.UserService{}).(*services.UserService),
		apiPrefix:   "/core/api/users",
	}
}

func (c *UsersController) Key() string {
	return c.apiPrefix
}

func (c *UsersController) Register(r *mux.Router) {
	api := r.PathPrefix(c.apiPrefix).Subrouter()
	api.Use(
		middleware.Authorize(),
	)
	api.HandleFunc("", c.List).Methods(http.MethodGet)
	api.HandleFunc("/{id}", c.Get).Methods(http.MethodGet)
}

func (c *UsersController) List(w http.ResponseWriter, r *http.Request) {
	_, requestID, ok := requireSessionUser(w, r)
	if !ok {
		return
	}

	var (
		err   error
		found []user.User
	)
	churchID := r.URL.Query().Get("church_id")
	if churchID != "" {
		found, err = c.userService.GetByChurchID(r.Context(), churchID)
	} else {
		found, err = c.userService.GetAll(r.Context())
	}
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	users := make([]userResponse, 0, len(found))
	for _, u := range found {
		users = append(users, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, users)
}

func (c *UsersController) Get(w http.ResponseWriter, r *http.Request) {
	_, requestID, ok := requireSessionUser(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, requestID, "CORE_INVALID_ID", "invalid user id")
		return
	}
	u, err := c.userService.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}
