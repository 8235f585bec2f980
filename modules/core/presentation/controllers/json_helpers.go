package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/gracewave/gracewave/modules/core/domain/aggregates/user"
	"github.com/gracewave/gracewave/modules/core/infrastructure/persistence"
	"github.com/gracewave/gracewave/modules/core/presentation/controllers/dtos"
	"github.com/gracewave/gracewave/modules/core/services"
	"github.com/gracewave/gracewave/pkg/authz"
	"github.com/gracewave/gracewave/pkg/composables"
	"github.com/gracewave/gracewave/pkg/configuration"
)

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
	writeJSON(w, status, dtos.APIError{
		Code:    code,
		Message: message,
		Meta:    meta,
	})
}

func decodeJSON(body io.ReadCloser, out any) error {
	defer func() { _ = body.Close() }()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(out)
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

func requireSessionUser(w http.ResponseWriter, r *http.Request) (user.User, string, bool) {
	requestID := ensureRequestID(r)

	if _, err := composables.UseSession(r.Context()); err != nil {
		writeAPIError(w, http.StatusUnauthorized, requestID, "CORE_NO_SESSION", "no session")
		return nil, requestID, false
	}
	u, err := composables.UseUser(r.Context())
	if err != nil || u == nil {
		writeAPIError(w, http.StatusUnauthorized, requestID, "CORE_NO_SESSION", "no user")
		return nil, requestID, false
	}
	return u, requestID, true
}

func writeServiceError(w http.ResponseWriter, requestID string, err error) {
	switch {
	case authz.IsForbidden(err) || errors.Is(err, composables.ErrForbidden):
		writeAPIError(w, http.StatusForbidden, requestID, "CORE_FORBIDDEN", "forbidden")
	case errors.Is(err, composables.ErrNotAuthenticated):
		writeAPIError(w, http.StatusUnauthorized, requestID, "CORE_NO_SESSION", "no session")
	case errors.Is(err, persistence.ErrUserNotFound):
		writeAPIError(w, http.StatusNotFound, requestID, "CORE_USER_NOT_FOUND", "user not found")
	case errors.Is(err, services.ErrInvalidCredentials):
		writeAPIError(w, http.StatusUnauthorized, requestID, "CORE_INVALID_CREDENTIALS", "invalid credentials")
	default:
		writeAPIError(w, http.StatusInternalServerError, requestID, "CORE_INTERNAL", err.Error())
	}
}
