package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/orgsight/orgsight/modules/access/domain/entities/filter"
	"github.com/orgsight/orgsight/modules/access/domain/entities/scope"
	"github.com/orgsight/orgsight/modules/access/presentation/controllers/dtos"
	"github.com/orgsight/orgsight/modules/access/services"
	coreservices "github.com/orgsight/orgsight/modules/core/services"
	"github.com/orgsight/orgsight/modules/directory/domain/aggregates/employee"
	"github.com/orgsight/orgsight/pkg/application"
	"github.com/orgsight/orgsight/pkg/composables"
	"github.com/orgsight/orgsight/pkg/httpapi"
	"github.com/orgsight/orgsight/pkg/middleware"
)

type AccessAPIController struct {
	app       application.Application
	scopes    *services.ScopeService
	overrides *services.OverrideService
	sessions  *coreservices.SessionService
	apiPrefix string
}

func NewAccessAPIController(app application.Application) application.Controller {
	return &AccessAPIController{
		app:       app,
		scopes:    app.Service(services.ScopeService{}).(*services.ScopeService),
		overrides: app.Service(services.OverrideService{}).(*services.OverrideService),
		sessions:  app.Service(coreservices.SessionService{}).(*coreservices.SessionService),
		apiPrefix: "/api/v1/access",
	}
}

func (c *AccessAPIController) Key() string {
	return c.apiPrefix
}

func (c *AccessAPIController) Register(r *mux.Router) {
	api := r.PathPrefix(c.apiPrefix).Subrouter()
	api.Use(middleware.Authorize(c.sessions))

	api.HandleFunc("/scope", c.instrumentAPI("scope", c.ResolveScope)).Methods(http.MethodPost)
	api.HandleFunc("/override", c.instrumentAPI("override", c.RequestOverride)).Methods(http.MethodPost)
	api.HandleFunc("/aggregates", c.instrumentAPI("aggregates", c.EvaluateAggregates)).Methods(http.MethodPost)
}

type scopeResponse struct {
	RequestID       string                            `json:"request_id"`
	EffectiveLevel  string                            `json:"effective_level"`
	MemberCount     int                               `json:"member_count"`
	Regions         []string                          `json:"regions"`
	SnapshotVersion uint64                            `json:"snapshot_version"`
	Stale           bool                              `json:"stale"`
	Artifacts       map[filter.Target]filter.Artifact `json:"artifacts"`
}

func (c *AccessAPIController) ResolveScope(w http.ResponseWriter, r *http.Request) {
	principalID, ok := composables.UsePrincipalID(r.Context())
	if !ok {
		_ = httpapi.WriteError(w, http.StatusUnauthorized, "SESSION_NOT_FOUND", "no authenticated principal", nil)
		return
	}

	dto := dtos.ResolveScopeDTO{}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "malformed JSON body", nil)
			return
		}
	}
	if fields, ok := dto.Ok(); !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "request validation failed", fields)
		return
	}

	result, err := c.scopes.Resolve(r.Context(), principalID, employee.RoleLevel(dto.RequestedLevel))
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}

	_ = httpapi.WriteJSON(w, http.StatusOK, &scopeResponse{
		RequestID:       result.Request.ID().String(),
		EffectiveLevel:  string(result.Scope.EffectiveLevel()),
		MemberCount:     result.Scope.MemberCount(),
		Regions:         result.Scope.Regions(),
		SnapshotVersion: result.SnapshotVersion,
		Stale:           result.Stale,
		Artifacts:       result.Artifacts,
	})
}

type overrideResponse struct {
	GrantedLevel string `json:"granted_level"`
	Clamped      bool   `json:"clamped"`
}

func (c *AccessAPIController) RequestOverride(w http.ResponseWriter, r *http.Request) {
	principalID, ok := composables.UsePrincipalID(r.Context())
	if !ok {
		_ = httpapi.WriteError(w, http.StatusUnauthorized, "SESSION_NOT_FOUND", "no authenticated principal", nil)
		return
	}

	var dto dtos.OverrideDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "malformed JSON body", nil)
		return
	}
	if fields, ok := dto.Ok(); !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "request validation failed", fields)
		return
	}

	anchor, err := c.scopes.ResolveAnchor(r.Context(), principalID)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}

	granted, err := c.overrides.RequestOverride(r.Context(), anchor, employee.RoleLevel(dto.RequestedLevel))
	if err != nil {
		// An over-ceiling request degrades to the caller's actual role
		// instead of failing the dashboard.
		if errors.Is(err, services.ErrOverrideForbidden) {
			_ = httpapi.WriteJSON(w, http.StatusOK, &overrideResponse{
				GrantedLevel: string(anchor.RoleLevel()),
				Clamped:      true,
			})
			return
		}
		_ = httpapi.WriteServiceError(w, err)
		return
	}

	_ = httpapi.WriteJSON(w, http.StatusOK, &overrideResponse{
		GrantedLevel: string(granted),
	})
}

type aggregatesResponse struct {
	Decisions []services.Decision `json:"decisions"`
}

func (c *AccessAPIController) EvaluateAggregates(w http.ResponseWriter, r *http.Request) {
	if err := services.AuthorizeAggregates(r.Context()); err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}

	var dto dtos.EvaluateAggregatesDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "malformed JSON body", nil)
		return
	}
	if fields, ok := dto.Ok(); !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "request validation failed", fields)
		return
	}

	aggregates := make([]scope.CohortAggregate, 0, len(dto.Aggregates))
	for _, a := range dto.Aggregates {
		aggregates = append(aggregates, scope.CohortAggregate{
			Name:        a.Name,
			MemberCount: a.MemberCount,
			Value:       a.Value,
			Unit:        a.Unit,
		})
	}

	_ = httpapi.WriteJSON(w, http.StatusOK, &aggregatesResponse{
		Decisions: services.EvaluateAggregates(aggregates),
	})
}
