package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/multierr"

	"github.com/hysabee/hysabee-backend/api/responses"
	"github.com/hysabee/hysabee-backend/pkg/config"
	"github.com/hysabee/hysabee-backend/pkg/logger"
)

const envHeader = "X-Hysabee-Env"

const readinessTimeout = 2 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness by pinging each backing dependency.
func HealthReady(cfg *config.Config, logg *logger.Logger, db, redis pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := map[string]string{}
		var combined error

		for name, dep := range map[string]pinger{"database": db, "redis": redis} {
			if dep == nil {
				checks[name] = "not configured"
				combined = multierr.Append(combined, fmt.Errorf("%s not configured", name))
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				checks[name] = err.Error()
				combined = multierr.Append(combined, fmt.Errorf("%s: %w", name, err))
				continue
			}
			checks[name] = "ok"
		}

		status := http.StatusOK
		state := "ready"
		if combined != nil {
			status = http.StatusServiceUnavailable
			state = "degraded"
			if logg != nil {
				logg.Error(r.Context(), "readiness check failed", combined)
			}
		}
		responses.WriteSuccessStatus(w, status, map[string]any{
			"status": state,
			"checks": checks,
		})
	}
}
