package controllers

import (
	"net/http"

	"github.com/veridian-genomics/revenue-tracker/api/responses"
	"github.com/veridian-genomics/revenue-tracker/pkg/config"
	"github.com/veridian-genomics/revenue-tracker/pkg/db"
	pkgerrors "github.com/veridian-genomics/revenue-tracker/pkg/errors"
	"github.com/veridian-genomics/revenue-tracker/pkg/logger"
	"github.com/veridian-genomics/revenue-tracker/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RevTrack-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the backing stores. Redis is optional; a nil client is
// reported as skipped rather than failing readiness.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RevTrack-Env", cfg.App.Env)
		checks := map[string]string{}

		if dbP == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "database not configured"))
			return
		}
		if err := dbP.Ping(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unreachable"))
			return
		}
		checks["database"] = "ok"

		if redisClient == nil {
			checks["redis"] = "skipped"
		} else if err := redisClient.Ping(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unreachable"))
			return
		} else {
			checks["redis"] = "ok"
		}

		checks["status"] = "ready"
		responses.WriteSuccess(w, checks)
	}
}
