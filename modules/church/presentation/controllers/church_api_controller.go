package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/gracewave/gracewave/modules/church/domain/aggregates/church"
	"github.com/gracewave/gracewave/modules/church/domain/entities/campus"
	"github.com/gracewave/gracewave/modules/church/domain/entities/member"
	"github.com/gracewave/gracewave/modules/church/services"
	"github.com/gracewave/gracewave/pkg/application"
	"github.com/gracewave/gracewave/pkg/middleware"
)

type ChurchAPIController struct {
	app       application.Application
	churches  *services.ChurchService
	campuses  *services.CampusService
	members   *services.MemberService
	apiPrefix string
}

func NewChurchAPIController(app application.Application) application.Controller {
	return &ChurchAPIController{
		app:       app,
		churches:  app.Service(services.ChurchService{}).(*services.ChurchService),
		campuses:  app.Service(services.CampusService{}).(*services.CampusService),
		members:   app.Service(services.MemberService{}).(*services.MemberService),
		apiPrefix: "/church/api",
	}
}

func (c *ChurchAPIController) Key() string {
	return c.apiPrefix
}

func (c *ChurchAPIController) Register(r *mux.Router) {
	api := r.PathPrefix(c.apiPrefix).Subrouter()
	api.Use(
		middleware.Authorize(),
	)

	api.HandleFunc("/admin/reassign-id", c.ReassignIdentifier).Methods(http.MethodPost)
	api.HandleFunc("/admin/account", c.DeleteAccount).Methods(http.MethodDelete)

	api.HandleFunc("/churches", c.ListChurches).Methods(http.MethodGet)
	api.HandleFunc("/churches", c.CreateChurch).Methods(http.MethodPost)
	api.HandleFunc("/churches/{id}", c.GetChurch).Methods(http.MethodGet)
	api.HandleFunc("/churches/{id}", c.UpdateChurch).Methods(http.MethodPatch)
	api.HandleFunc("/churches/{id}/campuses", c.ListCampuses).Methods(http.MethodGet)
	api.HandleFunc("/churches/{id}/members", c.ListMembers).Methods(http.MethodGet)

	api.HandleFunc("/campuses", c.CreateCampus).Methods(http.MethodPost)
	api.HandleFunc("/campuses/{id}", c.UpdateCampus).Methods(http.MethodPatch)
	api.HandleFunc("/campuses/{id}", c.DeleteCampus).Methods(http.MethodDelete)

	api.HandleFunc("/members", c.AddMember).Methods(http.MethodPost)
	api.HandleFunc("/members/{id}", c.RemoveMember).Methods(http.MethodDelete)
}

type churchResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Active      bool   `json:"active"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toChurchResponse(entity church.Church) churchResponse {
	return churchResponse{
		ID:          entity.ID(),
		Name:        entity.Name(),
		Description: entity.Description(),
		Active:      entity.Active(),
		CreatedAt:   entity.CreatedAt().UTC().Format(time.RFC3339),
		UpdatedAt:   entity.UpdatedAt().UTC().Format(time.RFC3339),
	}
}

type campusResponse struct {
	ID        string `json:"id"`
	ChurchID  string `json:"church_id"`
	Name      string `json:"name"`
	Address   string `json:"address,omitempty"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
}

func toCampusResponse(entity *campus.Campus) campusResponse {
	return campusResponse{
		ID:        entity.ID.String(),
		ChurchID:  entity.ChurchID,
		Name:      entity.Name,
		Address:   entity.Address,
		Active:    entity.Active,
		CreatedAt: entity.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type memberResponse struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	ChurchID string `json:"church_id"`
	CampusID string `json:"campus_id,omitempty"`
	Role     string `json:"role"`
	JoinedAt string `json:"joined_at"`
}

func toMemberResponse(entity *member.Member) memberResponse {
	out := memberResponse{
		ID:       entity.ID.String(),
		UserID:   entity.UserID.String(),
		ChurchID: entity.ChurchID,
		Role:     string(entity.Role),
		JoinedAt: entity.JoinedAt.UTC().Format(time.RFC3339),
	}
	if entity.CampusID.Valid {
		out.CampusID = entity.CampusID.UUID.String()
	}
	return out
}

type reassignIdentifierRequest struct {
	Email string `json:"email"`
}

type reassignIdentifierResponse struct {
	Changed  bool   `json:"changed"`
	OldID    string `json:"old_id,omitempty"`
	NewID    string `json:"new_id,omitempty"`
	Users    int64  `json:"users"`
	Members  int64  `json:"members"`
	Campuses int64  `json:"campuses"`
}

func (c *ChurchAPIController) ReassignIdentifier(w http.ResponseWriter, r *http.Request) {
	_, requestID, ok := requireSessionUser(w, r)
	if !ok {
		return
	}

	var req reassignIdentifierRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeAPIError(w, http.StatusBadRequest, requestID, "CHURCH_INVALID_BODY", "invalid request body")
		return
	}
	if req.Email == "" {
		writeAPIError(w, http.StatusBadRequest, requestID, "CHURCH_INVALID_BODY", "email is required")
		return
	}

	result, err := c.churches.ReassignIdentifier(r.Context(), req.Email)
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	writeJSON(w, http.StatusOK, reassignIdentifierResponse{
		Changed:  result.Changed,
		OldID:    result.OldID,
		NewID:    result.NewID,
		Users:    result.Users,
		Members:  result.Members,
		Campuses: result.Campuses,
	})
}

type deleteAccountRequest struct {
	Email string `json:"email"`
}

type deleteAccountResponse struct {
	Memberships int64 `json:"memberships"`
	Campuses    int64 `json:"campuses"`
}

func (c *ChurchAPIController) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	_, requestID, ok := requireSessionUser(w, r)
	if !ok {
		return
	}

	var req deleteAccountRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeAPIError(w, http.StatusBadRequest, requestID, "CHURCH_INVALID_BODY", "invalid request body")
		return
	}
	if req.Email == "" {
		writeAPIError(w, http.StatusBadRequest, requestID, "CHURCH_INVALID_BODY", "email is required")
		return
	}

	result, err := c.churches.DeleteAccount(r.Context(), req.Email)
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteAccountResponse{
		Memberships: result.Memberships,
		Campuses:    result.Campuses,
	})
}

func (c *ChurchAPIController) ListChurches(w http.ResponseWriter, r *http.Request) {
	_, requestID, ok := requireSessionUser(w, r)
	if !ok {
		return
	}

	found, err := c.churches.GetAll(r.Context())
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	out := make([]churchResponse, 0, len(found))
	for _, entity := range found {
		out = append(out, toChurchResponse(entity))
	}
	writeJSON(w, http.StatusOK, out)
}

type createChurchRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (c *ChurchAPIController) CreateChurch(w http.ResponseWriter, r *http.Request) {
	_, requestID, ok := requireSessionUser(w, r)
	if !ok {
		return
	}

	var req createChurchRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeAPIError(w, http.StatusBadRequest, requestID, "CHURCH_INVALID_BODY", "invalid request body")
		return
	}
	if req.Name == "" {
		writeAPIError(w, http.StatusBadRequest, requestID, "CHURCH_INVALID_BODY", "name is required")
		return
	}

	created, err := c.churches.Create(r.Context(), req.Name, req.Description)
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	writeJSON(w, http.StatusCreated, toChurchResponse(created))
}

func (c *ChurchAPIController) GetChurch(w http.ResponseWriter, r *http.Request) {
	_, requestID, ok := requireSessionUser(w, r)
	if !ok {
		return
	}

	entity, err := c.churches.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	writeJSON(w, http.StatusOK, toChurchResponse(entity))
}

type updateChurchRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Active      *bool   `json:"active"`
}

func (c *ChurchAPIController) UpdateChurch(w http.ResponseWriter, r *http.Request) {
	_, requestID, ok := requireSessionUser(w, r)
	if !ok {
		return
	}

	var req updateChurchRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeAPIError(w, http.StatusBadRequest, requestID, "CHURCH_INVALID_BODY", "invalid request body")
		return
	}

	entity, err := c.churches.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	if req.Name != nil {
		entity = entity.WithName(*req.Name)
	}
	if req.Description != nil {
		entity = entity.WithDescription(*req.Description)
	}
	if req.Active != nil {
		entity = entity.WithActive(*req.Active)
	}

	updated, err := c.churches.Update(r.Context(), entity)
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	writeJSON(w, http.StatusOK, toChurchResponse(updated))
}

func (c *ChurchAPIController) ListCampuses(w http.ResponseWriter, r *http.Request) {
	_, requestID, ok := requireSessionUser(w, r)
	if !ok {
		return
	}

	found, err := c.campuses.GetByChurchID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	out := make([]campusResponse, 0, len(found))
	for _, entity := range found {
		out = append(out, toCampusResponse(entity))
	}
	writeJSON(w, http.StatusOK, out)
}

type createCampusRequest struct {
	ChurchID string `json:"church_id"`
	Name     string `json:"name"`
	Address  string `json:"address"`
}

func (c *ChurchAPIController) CreateCampus(w http.ResponseWriter, r *http.Request) {
	_, requestID, ok := requireSessionUser(w, r)
	if !ok {
		return
	}

	var req createCampusRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeAPIError(w, http.StatusBadRequest, requestID, "CHURCH_INVALID_BODY", "invalid request body")
		return
	}
	if req.ChurchID == "" || req.Name == "" {
		writeAPIError(w, http.StatusBadRequest, requestID, "CHURCH_INVALID_BODY", "church_id and name are required")
		return
	}

	created, err := c.campuses.Create(r.Context(), &campus.CreateDTO{
		ChurchID: req.ChurchID,
		Name:     req.Name,
		Address:  req.Address,
	})
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCampusResponse(created))
}

type updateCampusRequest struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Active  *bool   `json:"active"`
}

func (c *ChurchAPIController) UpdateCampus(w http.ResponseWriter, r *http.Request) {
	_, requestID, ok := requireSessionUser(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, requestID, "CHURCH_INVALID_ID", "invalid campus id")
		return
	}

	var req updateCampusRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeAPIError(w, http.StatusBadRequest, requestID, "CHURCH_INVALID_BODY", "invalid request body")
		return
	}

	entity, err := c.campuses.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	if req.Name != nil {
		entity.Name = *req.Name
	}
	if req.Address != nil {
		entity.Address = *req.Address
	}
	if req.Active != nil {
		entity.Active = *req.Active
	}
	entity.UpdatedAt = time.Now()

	updated, err := c.campuses.Update(r.Context(), entity)
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	writeJSON(w, http.StatusOK, toCampusResponse(updated))
}

func (c *ChurchAPIController) DeleteCampus(w http.ResponseWriter, r *http.Request) {
	_, requestID, ok := requireSessionUser(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, requestID, "CHURCH_INVALID_ID", "invalid campus id")
		return
	}
	deleted, err := c.campuses.Delete(r.Context(), id)
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	writeJSON(w, http.StatusOK, toCampusResponse(deleted))
}

func (c *ChurchAPIController) ListMembers(w http.ResponseWriter, r *http.Request) {
	_, requestID, ok := requireSessionUser(w, r)
	if !ok {
		return
	}

	found, err := c.members.GetByChurchID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	out := make([]memberResponse, 0, len(found))
	for _, entity := range found {
		out = append(out, toMemberResponse(entity))
	}
	writeJSON(w, http.StatusOK, out)
}

type addMemberRequest struct {
	UserID   string `json:"user_id"`
	ChurchID string `json:"church_id"`
	CampusID string `json:"campus_id"`
	Role     string `json:"role"`
}

func (c *ChurchAPIController) AddMember(w http.ResponseWriter, r *http.Request) {
	_, requestID, ok := requireSessionUser(w, r)
	if !ok {
		return
	}

	var req addMemberRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeAPIError(w, http.StatusBadRequest, requestID, "CHURCH_INVALID_BODY", "invalid request body")
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, requestID, "CHURCH_INVALID_BODY", "invalid user_id")
		return
	}
	if req.ChurchID == "" {
		writeAPIError(w, http.StatusBadRequest, requestID, "CHURCH_INVALID_BODY", "church_id is required")
		return
	}
	dto := &member.CreateDTO{
		UserID:   userID,
		ChurchID: req.ChurchID,
	}
	if req.CampusID != "" {
		campusID, err := uuid.Parse(req.CampusID)
		if err != nil {
			writeAPIError(w, http.StatusBadRequest, requestID, "CHURCH_INVALID_BODY", "invalid campus_id")
			return
		}
		dto.CampusID = uuid.NullUUID{UUID: campusID, Valid: true}
	}
	if req.Role != "" {
		role, err := member.NewRole(req.Role)
		if err != nil {
			writeAPIError(w, http.StatusBadRequest, requestID, "CHURCH_INVALID_BODY", "invalid role")
			return
		}
		dto.Role = role
	}

	created, err := c.members.Add(r.Context(), dto)
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMemberResponse(created))
}

func (c *ChurchAPIController) RemoveMember(w http.ResponseWriter, r *http.Request) {
	_, requestID, ok := requireSessionUser(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, requestID, "CHURCH_INVALID_ID", "invalid member id")
		return
	}
	removed, err := c.members.Remove(r.Context(), id)
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	writeJSON(w, http.StatusOK, toMemberResponse(removed))
}
