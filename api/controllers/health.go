package controllers

import (
	"net/http"

	"github.com/mfigueroa/openshelf-backend/api/responses"
	"github.com/mfigueroa/openshelf-backend/pkg/config"
	"github.com/mfigueroa/openshelf-backend/pkg/db"
	"github.com/mfigueroa/openshelf-backend/pkg/errors"
	"github.com/mfigueroa/openshelf-backend/pkg/logger"
	"github.com/mfigueroa/openshelf-backend/pkg/redis"
	"github.com/mfigueroa/openshelf-backend/pkg/storage/gcs"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-OpenShelf-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady probes every hard dependency and reports per-component status.
// Any failing probe turns the response into a dependency error.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger, gcsP gcs.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-OpenShelf-Env", cfg.App.Env)

		components := map[string]string{}
		healthy := true

		probe := func(name string, err error) {
			if err != nil {
				healthy = false
				components[name] = "down"
				if logg != nil {
					logg.Error(r.Context(), "readiness probe failed: "+name, err)
				}
				return
			}
			components[name] = "up"
		}

		if dbP != nil {
			probe("postgres", dbP.Ping(r.Context()))
		}
		if redisP != nil {
			probe("redis", redisP.Ping(r.Context()))
		}
		if gcsP != nil {
			probe("gcs", gcsP.Ping(r.Context()))
		}

		if !healthy {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeDependency, "dependency not ready").WithDetails(components))
			return
		}

		responses.WriteSuccess(w, map[string]any{"status": "ready", "components": components})
	}
}
