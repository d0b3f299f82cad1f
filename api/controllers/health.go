package controllers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/pressreach-backend/api/responses"
	"github.com/angelmondragon/pressreach-backend/pkg/config"
	"github.com/angelmondragon/pressreach-backend/pkg/db"
	pkgerrors "github.com/angelmondragon/pressreach-backend/pkg/errors"
	"github.com/angelmondragon/pressreach-backend/pkg/logger"
)

const readinessTimeout = 2 * time.Second

// HealthCheck is one named dependency checked by the readiness endpoint.
type HealthCheck struct {
	Name   string
	Pinger db.Pinger
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-PressReach-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every check concurrently and answers 503 with the failing
// names when any of them is down.
func HealthReady(cfg *config.Config, logg *logger.Logger, checks ...HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-PressReach-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		var (
			mu     sync.Mutex
			failed = map[string]string{}
		)
		var g errgroup.Group
		for _, check := range checks {
			if check.Pinger == nil {
				continue
			}
			g.Go(func() error {
				if err := check.Pinger.Ping(ctx); err != nil {
					mu.Lock()
					failed[check.Name] = err.Error()
					mu.Unlock()
				}
				return nil
			})
		}
		_ = g.Wait()

		if len(failed) > 0 {
			names := make([]string, 0, len(failed))
			for name := range failed {
				names = append(names, name)
			}
			err := pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable").WithDetails(map[string]any{"failed": names})
			if logg != nil {
				logg.Warn(logg.WithField(r.Context(), "failed_checks", failed), "health.not_ready")
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
