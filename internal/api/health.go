package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"helping-hands/shiftdesk/internal/models/entities"
)

// Probe checks one backing service.
type Probe func(ctx context.Context) error

const probeTimeout = 3 * time.Second

// HealthCheckHandler handles GET /healthCheck. Probes run concurrently;
// any failing probe marks the whole service down with a 503.
func HealthCheckHandler(probes map[string]Probe, upSince time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		defer cancel()

		var mu sync.Mutex
		services := make(map[string]entities.ServiceStatus, len(probes))

		// Probe failures are reported, not returned, so one slow service
		// does not cancel the others.
		g, gctx := errgroup.WithContext(ctx)
		for name, probe := range probes {
			name, probe := name, probe
			g.Go(func() error {
				status := entities.ServiceStatus{Status: "ok", Details: "connected"}
				if err := probe(gctx); err != nil {
					status = entities.ServiceStatus{Status: "down", Details: err.Error()}
				}
				mu.Lock()
				services[name] = status
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()

		overallStatus := "ok"
		for _, svc := range services {
			if svc.Status != "ok" {
				overallStatus = "down"
				break
			}
		}

		resp := entities.HealthCheckResponse{
			Services: services,
			Status:   overallStatus,
			UpSince:  upSince.UTC(),
			Uptime:   time.Since(upSince).Round(time.Second).String(),
		}

		w.Header().Set("Content-Type", "application/json")
		if overallStatus != "ok" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// HealthProbes returns the store probe and, when Redis is configured, the
// Redis probe.
func (d *Dependencies) HealthProbes() map[string]Probe {
	probes := map[string]Probe{
		"database": d.Repo.Reports.Ping,
	}
	if d.Services.RedisQueue != nil {
		probes["redis"] = d.Services.RedisQueue.Ping
	}
	return probes
}
