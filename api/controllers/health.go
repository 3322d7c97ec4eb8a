package controllers

import (
	"context"
	"net/http"

	"github.com/diskleads/leadmarket-backend/api/responses"
	"github.com/diskleads/leadmarket-backend/pkg/config"
	pkgerrors "github.com/diskleads/leadmarket-backend/pkg/errors"
	"github.com/diskleads/leadmarket-backend/pkg/logger"
)

const envHeader = "X-DiskLeads-Env"

// Pinger is the connectivity probe each backing client exposes.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady probes every wired dependency. A nil pinger is reported as
// skipped so worker-only deployments can reuse the handler.
func HealthReady(cfg *config.Config, logg *logger.Logger, db, redis, gcs, payments Pinger) http.HandlerFunc {
	probes := []struct {
		name   string
		pinger Pinger
	}{
		{"db", db},
		{"redis", redis},
		{"gcs", gcs},
		{"payments", payments},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		checks := map[string]string{}
		healthy := true
		for _, probe := range probes {
			if probe.pinger == nil {
				checks[probe.name] = "skipped"
				continue
			}
			if err := probe.pinger.Ping(r.Context()); err != nil {
				checks[probe.name] = "down"
				healthy = false
				if logg != nil {
					ctx := logg.WithField(r.Context(), "dependency", probe.name)
					logg.Error(ctx, "readiness probe failed", err)
				}
				continue
			}
			checks[probe.name] = "ok"
		}

		if !healthy {
			err := pkgerrors.New(pkgerrors.CodeDependency, "one or more dependencies are down").WithDetails(checks)
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
