package http

import (
	"net/http"
	"time"

	"github.com/tablechat/tablechat/pkg/httpx"
)

// HealthResponse is returned by the health probes.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports per-dependency state on the readiness probe.
type HealthChecks struct {
	Database   string `json:"database"`
	Revocation string `json:"revocation"`
	Signer     string `json:"signer"`
}

// RootHandler serves the service banner at /.
//
//	@Summary	Service Banner Endpoint
//	@Tags		Health
//	@Produce	json
//	@Success	200
//	@Router		/ [get].
func RootHandler(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{
			"service": "tablechat-auth",
			"version": version,
		})
	}
}

// LivezHandler godoc
//
//	@Summary		Health Check Endpoint
//	@Description	Liveness probe returning basic service health, uptime, and version
//	@Description	Always returns 200 OK while the process is running
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	HealthResponse
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}
