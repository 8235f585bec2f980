package controllers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	coredtos "github.com/gracewave/gracewave/modules/core/presentation/controllers/dtos"
	"github.com/gracewave/gracewave/modules/notification/domain/entities/notification"
	"github.com/gracewave/gracewave/modules/notification/infrastructure/persistence"
	"github.com/gracewave/gracewave/modules/notification/services"
	"github.com/gracewave/gracewave/pkg/application"
	"github.com/gracewave/gracewave/pkg/authz"
	"github.com/gracewave/gracewave/pkg/composables"
	"github.com/gracewave/gracewave/pkg/configuration"
	"github.com/gracewave/gracewave/pkg/middleware"
)

type NotificationAPIController struct {
	app           application.Application
	notifications *services.NotificationService
	apiPrefix     string
}

func NewNotificationAPIController(app application.Application) application.Controller {
	return &NotificationAPIController{
		app:           app,
		notifications: app.Service(services.NotificationService{}).(*services.NotificationService),
		apiPrefix:     "/notification/api",
	}
}

func (c *NotificationAPIController) Key() string {
	return c.apiPrefix
}

func (c *NotificationAPIController) Register(r *mux.Router) {
	api := r.PathPrefix(c.apiPrefix).Subrouter()
	api.Use(
		middleware.Authorize(),
	)

	api.HandleFunc("/notifications", c.List).Methods(http.MethodGet)
	api.HandleFunc("/notifications/unread-count", c.UnreadCount).Methods(http.MethodGet)
	api.HandleFunc("/notifications/{id}:read", c.MarkRead).Methods(http.MethodPost)
	api.HandleFunc("/notifications:read-all", c.MarkAllRead).Methods(http.MethodPost)
}

func writeJSON[T any](w http.ResponseWriter, status int, payload T) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeAPIError(w http.ResponseWriter, status int, requestID, code, message string) {
	meta := map[string]string{}
	if requestID != "" {
		meta["request_id"] = requestID
	}
	writeJSON(w, status, coredtos.APIError{
		Code:    code,
		Message: message,
		Meta:    meta,
	})
}

func ensureRequestID(r *http.Request) string {
	conf := configuration.Use()
	v := strings.TrimSpace(r.Header.Get(conf.RequestIDHeader))
	if v != "" {
		return v
	}
	v = uuid.NewString()
	r.Header.Set(conf.RequestIDHeader, v)
	return v
}

func requireSession(w http.ResponseWriter, r *http.Request) (string, bool) {
	requestID := ensureRequestID(r)

	if _, err := composables.UseUser(r.Context()); err != nil {
		writeAPIError(w, http.StatusUnauthorized, requestID, "NOTIFICATION_NO_SESSION", "no session")
		return requestID, false
	}
	return requestID, true
}

func writeServiceError(w http.ResponseWriter, requestID string, err error) {
	var svcErr *services.ServiceError
	switch {
	case errors.As(err, &svcErr):
		writeAPIError(w, svcErr.Status, requestID, svcErr.Code, svcErr.Message)
	case authz.IsForbidden(err) || errors.Is(err, composables.ErrForbidden):
		writeAPIError(w, http.StatusForbidden, requestID, "NOTIFICATION_FORBIDDEN", "forbidden")
	case errors.Is(err, composables.ErrNotAuthenticated):
		writeAPIError(w, http.StatusUnauthorized, requestID, "NOTIFICATION_NO_SESSION", "no session")
	case errors.Is(err, persistence.ErrNotificationNotFound):
		writeAPIError(w, http.StatusNotFound, requestID, "NOTIFICATION_NOT_FOUND", "notification not found")
	default:
		writeAPIError(w, http.StatusInternalServerError, requestID, "NOTIFICATION_INTERNAL", err.Error())
	}
}

type notificationResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"created_at"`
}

func toNotificationResponse(entity *notification.Notification) notificationResponse {
	return notificationResponse{
		ID:        entity.ID.String(),
		Title:     entity.Title,
		Body:      entity.Body,
		Read:      entity.Read,
		CreatedAt: entity.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (c *NotificationAPIController) List(w http.ResponseWriter, r *http.Request) {
	requestID, ok := requireSession(w, r)
	if !ok {
		return
	}

	found, err := c.notifications.ListForUser(r.Context())
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	out := make([]notificationResponse, 0, len(found))
	for _, entity := range found {
		out = append(out, toNotificationResponse(entity))
	}
	writeJSON(w, http.StatusOK, out)
}

func (c *NotificationAPIController) UnreadCount(w http.ResponseWriter, r *http.Request) {
	requestID, ok := requireSession(w, r)
	if !ok {
		return
	}

	count, err := c.notifications.UnreadCount(r.Context())
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"unread": count})
}

func (c *NotificationAPIController) MarkRead(w http.ResponseWriter, r *http.Request) {
	requestID, ok := requireSession(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, requestID, "NOTIFICATION_INVALID_ID", "invalid notification id")
		return
	}
	updated, err := c.notifications.MarkRead(r.Context(), id)
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	writeJSON(w, http.StatusOK, toNotificationResponse(updated))
}

func (c *NotificationAPIController) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	requestID, ok := requireSession(w, r)
	if !ok {
		return
	}

	count, err := c.notifications.MarkAllRead(r.Context())
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"marked": count})
}
