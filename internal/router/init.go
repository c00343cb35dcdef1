package router

import (
	userapp "github.com/oksasatya/user-directory-api/internal/application"
	"github.com/oksasatya/user-directory-api/internal/container"
	"github.com/oksasatya/user-directory-api/internal/infrastructure/gcs"
	pginfra "github.com/oksasatya/user-directory-api/internal/infrastructure/postgres"
	"github.com/oksasatya/user-directory-api/internal/infrastructure/rediscache"
	handlers "github.com/oksasatya/user-directory-api/internal/interface/http"
	"github.com/oksasatya/user-directory-api/internal/router/modules"
)

// InitModules wires repositories, adapters, services and handlers from
// the container and registers every feature module with the registry.
// Called once during startup.
func InitModules(r *Registry, c *container.Container) {
	repo := pginfra.NewUserRepository(c.PG)
	cache := rediscache.NewUserCache(c.Redis, c.Cfg.UserCacheTTL)
	blobs := gcs.NewBlobStore(c.GCS, c.Cfg.GCSBucket, c.Cfg.BlobBaseURL())

	service := userapp.NewService(repo, cache, blobs, c.Logger)

	r.Add(modules.NewUserModule(handlers.NewUserHandler(service, c.Logger)))
	r.Add(modules.NewMediaModule(handlers.NewMediaHandler(blobs, c.Logger)))
	r.Add(modules.NewMetaModule())
	if c.Cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
