package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/gracewave/gracewave/modules/pathway/domain/entities/pathway"
	"github.com/gracewave/gracewave/modules/pathway/infrastructure/persistence"
	"github.com/gracewave/gracewave/modules/pathway/services"
	coredtos "github.com/gracewave/gracewave/modules/core/presentation/controllers/dtos"
	"github.com/gracewave/gracewave/pkg/application"
	"github.com/gracewave/gracewave/pkg/authz"
	"github.com/gracewave/gracewave/pkg/composables"
	"github.com/gracewave/gracewave/pkg/configuration"
	"github.com/gracewave/gracewave/pkg/middleware"
)

type PathwayAPIController struct {
	app       application.Application
	pathways  *services.PathwayService
	analytics *services.AnalyticsService
	apiPrefix string
}

func NewPathwayAPIController(app application.Application) application.Controller {
	return &PathwayAPIController{
		app:       app,
		pathways:  app.Service(services.PathwayService{}).(*services.PathwayService),
		analytics: app.Service(services.AnalyticsService{}).(*services.AnalyticsService),
		apiPrefix: "/pathway/api",
	}
}

func (c *PathwayAPIController) Key() string {
	return c.apiPrefix
}

func (c *PathwayAPIController) Register(r *mux.Router) {
	api := r.PathPrefix(c.apiPrefix).Subrouter()
	api.Use(
		middleware.Authorize(),
	)

	api.HandleFunc("/pathways", c.Create).Methods(http.MethodPost)
	api.HandleFunc("/pathways/{id}", c.Get).Methods(http.MethodGet)
	api.HandleFunc("/pathways/{id}", c.Update).Methods(http.MethodPatch)
	api.HandleFunc("/pathways/{id}", c.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/pathways/{id}/steps", c.ListSteps).Methods(http.MethodGet)
	api.HandleFunc("/pathways/{id}/steps", c.AddStep).Methods(http.MethodPost)
	api.HandleFunc("/pathways/{id}/report", c.Report).Methods(http.MethodGet)
	api.HandleFunc("/steps/{id}", c.RemoveStep).Methods(http.MethodDelete)
	api.HandleFunc("/steps/{id}:complete", c.MarkComplete).Methods(http.MethodPost)

	api.HandleFunc("/churches/{id}/pathways", c.ListByChurch).Methods(http.MethodGet)
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

func requireSession(w http.ResponseWriter, r *http.Request) (string, bool) {
	requestID := ensureRequestID(r)

	if _, err := composables.UseSession(r.Context()); err != nil {
		writeAPIError(w, http.StatusUnauthorized, requestID, "PATHWAY_NO_SESSION", "no session")
		return requestID, false
	}
	if _, err := composables.UseUser(r.Context()); err != nil {
		writeAPIError(w, http.StatusUnauthorized, requestID, "PATHWAY_NO_SESSION", "no user")
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
		writeAPIError(w, http.StatusForbidden, requestID, "PATHWAY_FORBIDDEN", "forbidden")
	case errors.Is(err, composables.ErrNotAuthenticated):
		writeAPIError(w, http.StatusUnauthorized, requestID, "PATHWAY_NO_SESSION", "no session")
	case errors.Is(err, persistence.ErrPathwayNotFound):
		writeAPIError(w, http.StatusNotFound, requestID, "PATHWAY_NOT_FOUND", "pathway not found")
	case errors.Is(err, persistence.ErrStepNotFound):
		writeAPIError(w, http.StatusNotFound, requestID, "PATHWAY_STEP_NOT_FOUND", "step not found")
	default:
		writeAPIError(w, http.StatusInternalServerError, requestID, "PATHWAY_INTERNAL", err.Error())
	}
}

type pathwayResponse struct {
	ID          string `json:"id"`
	ChurchID    string `json:"church_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Active      bool   `json:"active"`
	CreatedAt   string `json:"created_at"`
}

func toPathwayResponse(entity *pathway.Pathway) pathwayResponse {
	return pathwayResponse{
		ID:          entity.ID.String(),
		ChurchID:    entity.ChurchID,
		Name:        entity.Name,
		Description: entity.Description,
		Active:      entity.Active,
		CreatedAt:   entity.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type stepResponse struct {
	ID        string `json:"id"`
	PathwayID string `json:"pathway_id"`
	Name      string `json:"name"`
	Order     int    `json:"order"`
}

func toStepResponse(entity *pathway.Step) stepResponse {
	return stepResponse{
		ID:        entity.ID.String(),
		PathwayID: entity.PathwayID.String(),
		Name:      entity.Name,
		Order:     entity.Order,
	}
}

type createPathwayRequest struct {
	ChurchID    string `json:"church_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (c *PathwayAPIController) Create(w http.ResponseWriter, r *http.Request) {
	requestID, ok := requireSession(w, r)
	if !ok {
		return
	}

	var req createPathwayRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeAPIError(w, http.StatusBadRequest, requestID, "PATHWAY_INVALID_BODY", "invalid request body")
		return
	}
	if req.ChurchID == "" || req.Name == "" {
		writeAPIError(w, http.StatusBadRequest, requestID, "PATHWAY_INVALID_BODY", "church_id and name are required")
		return
	}

	created, err := c.pathways.Create(r.Context(), &pathway.CreateDTO{
		ChurchID:    req.ChurchID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPathwayResponse(created))
}

func (c *PathwayAPIController) Get(w http.ResponseWriter, r *http.Request) {
	requestID, ok := requireSession(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, requestID, "PATHWAY_INVALID_ID", "invalid pathway id")
		return
	}
	entity, err := c.pathways.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	writeJSON(w, http.StatusOK, toPathwayResponse(entity))
}

type updatePathwayRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Active      *bool   `json:"active"`
}

func (c *PathwayAPIController) Update(w http.ResponseWriter, r *http.Request) {
	requestID, ok := requireSession(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, requestID, "PATHWAY_INVALID_ID", "invalid pathway id")
		return
	}

	var req updatePathwayRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeAPIError(w, http.StatusBadRequest, requestID, "PATHWAY_INVALID_BODY", "invalid request body")
		return
	}

	entity, err := c.pathways.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	if req.Name != nil {
		entity.Name = *req.Name
	}
	if req.Description != nil {
		entity.Description = *req.Description
	}
	if req.Active != nil {
		entity.Active = *req.Active
	}
	entity.UpdatedAt = time.Now()

	updated, err := c.pathways.Update(r.Context(), entity)
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	writeJSON(w, http.StatusOK, toPathwayResponse(updated))
}

func (c *PathwayAPIController) Delete(w http.ResponseWriter, r *http.Request) {
	requestID, ok := requireSession(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, requestID, "PATHWAY_INVALID_ID", "invalid pathway id")
		return
	}
	deleted, err := c.pathways.Delete(r.Context(), id)
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	writeJSON(w, http.StatusOK, toPathwayResponse(deleted))
}

func (c *PathwayAPIController) ListByChurch(w http.ResponseWriter, r *http.Request) {
	requestID, ok := requireSession(w, r)
	if !ok {
		return
	}

	found, err := c.pathways.GetByChurchID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	out := make([]pathwayResponse, 0, len(found))
	for _, entity := range found {
		out = append(out, toPathwayResponse(entity))
	}
	writeJSON(w, http.StatusOK, out)
}

func (c *PathwayAPIController) ListSteps(w http.ResponseWriter, r *http.Request) {
	requestID, ok := requireSession(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, requestID, "PATHWAY_INVALID_ID", "invalid pathway id")
		return
	}
	steps, err := c.pathways.GetSteps(r.Context(), id)
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	out := make([]stepResponse, 0, len(steps))
	for _, s := range steps {
		out = append(out, toStepResponse(s))
	}
	writeJSON(w, http.StatusOK, out)
}

type addStepRequest struct {
	Name  string `json:"name"`
	Order int    `json:"order"`
}

func (c *PathwayAPIController) AddStep(w http.ResponseWriter, r *http.Request) {
	requestID, ok := requireSession(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, requestID, "PATHWAY_INVALID_ID", "invalid pathway id")
		return
	}

	var req addStepRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeAPIError(w, http.StatusBadRequest, requestID, "PATHWAY_INVALID_BODY", "invalid request body")
		return
	}
	if req.Name == "" || req.Order < 1 {
		writeAPIError(w, http.StatusBadRequest, requestID, "PATHWAY_INVALID_BODY", "name and a positive order are required")
		return
	}

	created, err := c.pathways.AddStep(r.Context(), &pathway.CreateStepDTO{
		PathwayID: id,
		Name:      req.Name,
		Order:     req.Order,
	})
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	writeJSON(w, http.StatusCreated, toStepResponse(created))
}

func (c *PathwayAPIController) RemoveStep(w http.ResponseWriter, r *http.Request) {
	requestID, ok := requireSession(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, requestID, "PATHWAY_INVALID_ID", "invalid step id")
		return
	}
	if err := c.pathways.RemoveStep(r.Context(), id); err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	writeJSON[any](w, http.StatusOK, map[string]string{"status": "ok"})
}

type markCompleteRequest struct {
	MemberID string `json:"member_id"`
}

func (c *PathwayAPIController) MarkComplete(w http.ResponseWriter, r *http.Request) {
	requestID, ok := requireSession(w, r)
	if !ok {
		return
	}

	stepID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, requestID, "PATHWAY_INVALID_ID", "invalid step id")
		return
	}

	var req markCompleteRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeAPIError(w, http.StatusBadRequest, requestID, "PATHWAY_INVALID_BODY", "invalid request body")
		return
	}
	memberID, err := uuid.Parse(req.MemberID)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, requestID, "PATHWAY_INVALID_BODY", "invalid member_id")
		return
	}

	record, err := c.pathways.MarkComplete(r.Context(), memberID, stepID)
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	resp := map[string]any{"completed": true}
	if record != nil {
		resp["completed_at"] = record.CompletedAt.UTC().Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, resp)
}

type stepStatsResponse struct {
	StepID         string  `json:"step_id"`
	StepName       string  `json:"step_name"`
	Order          int     `json:"order"`
	Started        int64   `json:"started"`
	Completed      int64   `json:"completed"`
	CompletionRate float64 `json:"completion_rate"`
	DropOffRate    float64 `json:"drop_off_rate"`
}

type reportResponse struct {
	PathwayID    string              `json:"pathway_id"`
	PathwayName  string              `json:"pathway_name"`
	Participants int64               `json:"participants"`
	Steps        []stepStatsResponse `json:"steps"`
}

func (c *PathwayAPIController) Report(w http.ResponseWriter, r *http.Request) {
	requestID, ok := requireSession(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, requestID, "PATHWAY_INVALID_ID", "invalid pathway id")
		return
	}
	report, err := c.analytics.Report(r.Context(), id)
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}

	resp := reportResponse{
		PathwayID:    report.PathwayID.String(),
		PathwayName:  report.PathwayName,
		Participants: report.Participants,
		Steps:        make([]stepStatsResponse, 0, len(report.Steps)),
	}
	for _, s := range report.Steps {
		resp.Steps = append(resp.Steps, stepStatsResponse{
			StepID:         s.StepID.String(),
			StepName:       s.StepName,
			Order:          s.Order,
			Started:        s.Started,
			Completed:      s.Completed,
			CompletionRate: s.CompletionRate,
			DropOffRate:    s.DropOffRate,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
