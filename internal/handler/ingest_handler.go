// Package handler contains the gin handlers for the ingestion entry
// point and the authenticated read APIs.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/inkwell-mail/inkwell/internal/service/ingest"
)

// SecretHeader gates the internal ingest endpoint.
const SecretHeader = "X-Ingest-Secret"

// Ingestor runs the ingestion pipeline for one stored raw message.
type Ingestor interface {
	Ingest(ctx context.Context, userID, rawKey string) error
}

type IngestHandler struct {
	svc    Ingestor
	secret string
	logger *zap.Logger
}

func NewIngestHandler(svc Ingestor, secret string, logger *zap.Logger) *IngestHandler {
	return &IngestHandler{svc: svc, secret: secret, logger: logger}
}

// Ingest handles POST /ingest. The endpoint is internal: only callers
// presenting the shared secret (the mail receiver) may reach the
// pipeline.
func (h *IngestHandler) Ingest(c *gin.Context) {
	if c.GetHeader(SecretHeader) != h.secret {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	var req struct {
		UserID string `json:"userId"`
		R2Key  string `json:"r2Key"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" || req.R2Key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.svc.Ingest(c.Request.Context(), req.UserID, req.R2Key); err != nil {
		if errors.Is(err, ingest.ErrRawNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "raw message not found"})
			return
		}
		h.logger.Error("ingestion failed",
			zap.String("user_id", req.UserID),
			zap.String("raw_key", req.R2Key),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ingestion failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
