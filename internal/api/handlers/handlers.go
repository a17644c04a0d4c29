// SPDX-License-Identifier: AGPL-3.0-only

// Package handlers holds the gin JSON handlers. They are thin: platform
// detection, storage reads and async enrichment triggers; the pipeline
// itself lives in internal/enrich.
package handlers

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/siftlabs/leadsift/internal/database"
	"github.com/siftlabs/leadsift/internal/enrich"
	"github.com/siftlabs/leadsift/internal/provider"
	"github.com/siftlabs/leadsift/internal/worker"
)

type Handler struct {
	DB       *database.Queries
	DBConn   *sqlx.DB
	Registry *provider.Registry
	Enricher *enrich.Enricher
	Worker   *worker.Worker
	Logger   *zap.SugaredLogger
}

func NewHandler(db *database.Queries, dbConn *sqlx.DB, registry *provider.Registry, enricher *enrich.Enricher, w *worker.Worker, logger *zap.SugaredLogger) *Handler {
	return &Handler{
		DB:       db,
		DBConn:   dbConn,
		Registry: registry,
		Enricher: enricher,
		Worker:   w,
		Logger:   logger,
	}
}
