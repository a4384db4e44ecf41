package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/hzpumpworks/workshop-backend/api/responses"
	"github.com/hzpumpworks/workshop-backend/pkg/db"
	pkgerrors "github.com/hzpumpworks/workshop-backend/pkg/errors"
	"github.com/hzpumpworks/workshop-backend/pkg/logger"
	redisclient "github.com/hzpumpworks/workshop-backend/pkg/redis"
)

// Live reports that the process is up.
func Live() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}

// Ready pings both stores and redis.
func Ready(catalog, docs *db.Client, cache *redisclient.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		for _, store := range []*db.Client{catalog, docs} {
			if store == nil {
				continue
			}
			if err := store.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, store.Name()+" store unavailable"))
				return
			}
		}
		if cache != nil {
			if err := cache.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unavailable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
