package controllers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	coreservices "github.com/orgsight/orgsight/modules/core/services"
	"github.com/orgsight/orgsight/modules/directory/services"
	"github.com/orgsight/orgsight/pkg/application"
	"github.com/orgsight/orgsight/pkg/httpapi"
)

type HealthController struct {
	directory *services.DirectoryService
	sessions  *coreservices.SessionService
}

func NewHealthController(app application.Application) application.Controller {
	return &HealthController{
		directory: app.Service(services.DirectoryService{}).(*services.DirectoryService),
		sessions:  app.Service(coreservices.SessionService{}).(*coreservices.SessionService),
	}
}

func (c *HealthController) Key() string {
	return "/health"
}

func (c *HealthController) Register(r *mux.Router) {
	r.HandleFunc("/health", c.Health).Methods(http.MethodGet)
}

type healthResponse struct {
	Status          string    `json:"status"`
	SnapshotVersion uint64    `json:"snapshot_version,omitempty"`
	SnapshotLoaded  time.Time `json:"snapshot_loaded_at,omitempty"`
	Employees       int       `json:"employees,omitempty"`
	ActiveSessions  int       `json:"active_sessions"`
	Stale           bool      `json:"stale"`
}

// Health reports snapshot freshness. A missing snapshot means the service
// cannot answer scope requests yet and reports unavailable.
func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	snap, err := c.directory.Snapshot()
	if err != nil {
		_ = httpapi.WriteJSON(w, http.StatusServiceUnavailable, &healthResponse{
			Status:         "unavailable",
			ActiveSessions: c.sessions.Count(),
			Stale:          true,
		})
		return
	}
	status := "ok"
	if c.directory.Stale() {
		status = "degraded"
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, &healthResponse{
		Status:          status,
		SnapshotVersion: snap.Version(),
		SnapshotLoaded:  snap.LoadedAt(),
		Employees:       snap.Size(),
		ActiveSessions:  c.sessions.Count(),
		Stale:           c.directory.Stale(),
	})
}
