package container

import (
	"cloud.google.com/go/storage"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-directory-api/config"
)

// Container bundles the infrastructure singletons constructed once at
// startup. It is passed explicitly to the router wiring; there is no
// package-level state.
type Container struct {
	Cfg    *config.Config
	Logger *logrus.Logger
	PG     *pgxpool.Pool
	Redis  *redis.Client
	GCS    *storage.Client
}

func New(cfg *config.Config, logger *logrus.Logger, pg *pgxpool.Pool, rdb *redis.Client, gcs *storage.Client) *Container {
	return &Container{Cfg: cfg, Logger: logger, PG: pg, Redis: rdb, GCS: gcs}
}
