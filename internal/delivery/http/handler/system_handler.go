package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tablet-fleet-manager/internal/infrastructure/database/postgres"
	"tablet-fleet-manager/internal/ingestion"
	"tablet-fleet-manager/pkg/utils"
)

// SystemHandler serves health and debug surfaces.
type SystemHandler struct {
	db     *postgres.DB
	router *ingestion.Router
	broker interface{ IsConnected() bool }
}

func NewSystemHandler(db *postgres.DB, router *ingestion.Router, broker interface{ IsConnected() bool }) *SystemHandler {
	return &SystemHandler{db: db, router: router, broker: broker}
}

func (h *SystemHandler) Health(c *gin.Context) {
	dbHealthy := h.db.Health() == nil

	status := http.StatusOK
	overall := "ok"
	if !dbHealthy {
		status = http.StatusServiceUnavailable
		overall = "degraded"
	}

	c.JSON(status, gin.H{
		"status":   overall,
		"database": dbHealthy,
		"broker":   h.broker.IsConnected(),
	})
}

func (h *SystemHandler) IngestMetrics(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Ingest metrics", h.router.Metrics())
}
