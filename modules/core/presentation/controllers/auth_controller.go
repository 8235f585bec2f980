package controllers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/gracewave/gracewave/modules/core/domain/aggregates/user"
	"github.com/gracewave/gracewave/modules/core/presentation/controllers/dtos"
	"github.com/gracewave/gracewave/modules/core/services"
	"github.com/gracewave/gracewave/pkg/application"
	"github.com/gracewave/gracewave/pkg/configuration"
	"github.com/gracewave/gracewave/pkg/middleware"
)

type AuthController struct {
	app         application.Application
	authService *services.AuthService
	apiPrefix   string
}

func NewAuthController(app application.Application) application.Controller {
	return &AuthController{
		app:         app,
		authService: app.Service(services.AuthService{}).(*services.AuthService),
		apiPrefix:   "/core/api/auth",
	}
}

func (c *AuthController) Key() string {
	return c.apiPrefix
}

func (c *AuthController) Register(r *mux.Router) {
	public := r.PathPrefix(c.apiPrefix).Subrouter()
	public.HandleFunc("/register", c.RegisterUser).Methods(http.MethodPost)
	public.HandleFunc("/login", c.Login).Methods(http.MethodPost)

	private := r.PathPrefix(c.apiPrefix).Subrouter()
	private.Use(
		middleware.Authorize(),
	)
	private.HandleFunc("/logout", c.Logout).Methods(http.MethodPost)
	private.HandleFunc("/me", c.Me).Methods(http.MethodGet)
}

type userResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	ChurchID  string `json:"church_id,omitempty"`
}

func toUserResponse(u user.User) userResponse {
	return userResponse{
		ID:        u.ID().String(),
		Email:     u.Email(),
		FirstName: u.FirstName(),
		LastName:  u.LastName(),
		Role:      string(u.Role()),
		ChurchID:  u.ChurchID(),
	}
}

func (c *AuthController) RegisterUser(w http.ResponseWriter, r *http.Request) {
	requestID := ensureRequestID(r)

	var req dtos.RegisterRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeAPIError(w, http.StatusBadRequest, requestID, "CORE_INVALID_BODY", "invalid request body")
		return
	}
	if fields, ok := dtos.Validate(&req); !ok {
		writeJSON(w, http.StatusBadRequest, dtos.APIError{
			Code:    "CORE_VALIDATION",
			Message: "validation failed",
			Meta:    fields,
		})
		return
	}

	u, err := c.authService.Register(r.Context(), req.FirstName, req.LastName, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(u))
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	requestID := ensureRequestID(r)

	var req dtos.LoginRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeAPIError(w, http.StatusBadRequest, requestID, "CORE_INVALID_BODY", "invalid request body")
		return
	}
	if fields, ok := dtos.Validate(&req); !ok {
		writeJSON(w, http.StatusBadRequest, dtos.APIError{
			Code:    "CORE_VALIDATION",
			Message: "validation failed",
			Meta:    fields,
		})
		return
	}

	u, sess, err := c.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}

	conf := configuration.Use()
	http.SetCookie(w, &http.Cookie{
		Name:     conf.SidCookieKey,
		Value:    sess.Token,
		Expires:  sess.ExpiresAt,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	requestID := ensureRequestID(r)

	conf := configuration.Use()
	cookie, err := r.Cookie(conf.SidCookieKey)
	if err != nil {
		writeAPIError(w, http.StatusUnauthorized, requestID, "CORE_NO_SESSION", "no session")
		return
	}
	if err := c.authService.Logout(r.Context(), cookie.Value); err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     conf.SidCookieKey,
		Value:    "",
		Expires:  time.Unix(0, 0),
		Path:     "/",
		HttpOnly: true,
	})
	writeJSON[any](w, http.StatusOK, map[string]string{"status": "ok"})
}

func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	u, _, ok := requireSessionUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}
