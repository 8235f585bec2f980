package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/gracewave/gracewave/modules/church/infrastructure/persistence"
	"github.com/gracewave/gracewave/modules/church/services"
	coreuser "github.com/gracewave/gracewave/modules/core/domain/aggregates/user"
	coredtos "github.com/gracewave/gracewave/modules/core/presentation/controllers/dtos"
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
	writeJSON(w, status, coredtos.APIError{
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

func requireSessionUser(w http.ResponseWriter, r *http.Request) (coreuser.User, string, bool) {
	requestID := ensureRequestID(r)

	if _, err := composables.UseSession(r.Context()); err != nil {
		writeAPIError(w, http.StatusUnauthorized, requestID, "CHURCH_NO_SESSION", "no session")
		return nil, requestID, false
	}
	u, err := composables.UseUser(r.Context())
	if err != nil || u == nil {
		writeAPIError(w, http.StatusUnauthorized, requestID, "CHURCH_NO_SESSION", "no user")
		return nil, requestID, false
	}
	return u, requestID, true
}

func writeServiceError(w http.ResponseWriter, requestID string, err error) {
	var svcErr *services.ServiceError
	switch {
	case errors.As(err, &svcErr):
		writeAPIError(w, svcErr.Status, requestID, svcErr.Code, svcErr.Message)
	case authz.IsForbidden(err) || errors.Is(err, composables.ErrForbidden):
		writeAPIError(w, http.StatusForbidden, requestID, "CHURCH_FORBIDDEN", "forbidden")
	case errors.Is(err, composables.ErrNotAuthenticated):
		writeAPIError(w, http.StatusUnauthorized, requestID, "CHURCH_NO_SESSION", "no session")
	case errors.Is(err, persistence.ErrChurchNotFound):
		writeAPIError(w, http.StatusNotFound, requestID, "CHURCH_NOT_FOUND", "church not found")
	case errors.Is(err, persistence.ErrCampusNotFound):
		writeAPIError(w, http.StatusNotFound, requestID, "CHURCH_CAMPUS_NOT_FOUND", "campus not found")
	case errors.Is(err, persistence.ErrMemberNotFound):
		writeAPIError(w, http.StatusNotFound, requestID, "CHURCH_MEMBER_NOT_FOUND", "member not found")
	default:
		writeAPIError(w, http.StatusInternalServerError, requestID, "CHURCH_INTERNAL", err.Error())
	}
}
