package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/pandoralabs/stockline-backend/api/responses"
	"github.com/pandoralabs/stockline-backend/pkg/config"
	"github.com/pandoralabs/stockline-backend/pkg/db"
	"github.com/pandoralabs/stockline-backend/pkg/logger"
	pkgredis "github.com/pandoralabs/stockline-backend/pkg/redis"
)

const readinessTimeout = 2 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Stockline-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady verifies the backing stores. Redis is optional; a nil
// client skips the check instead of failing it.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP pkgredis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Stockline-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := map[string]string{}
		ready := true

		if dbP == nil {
			checks["postgres"] = "unavailable"
			ready = false
		} else if err := dbP.Ping(ctx); err != nil {
			logg.Error(ctx, "readiness postgres ping failed", err)
			checks["postgres"] = "unavailable"
			ready = false
		} else {
			checks["postgres"] = "ok"
		}

		if redisP != nil {
			if err := redisP.Ping(ctx); err != nil {
				logg.Error(ctx, "readiness redis ping failed", err)
				checks["redis"] = "unavailable"
				ready = false
			} else {
				checks["redis"] = "ok"
			}
		}

		status := "ready"
		httpStatus := http.StatusOK
		if !ready {
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
		}
		responses.WriteSuccessStatus(w, httpStatus, map[string]any{
			"status": status,
			"checks": checks,
		})
	}
}
