package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inkwell-mail/inkwell/internal/auth"
	"github.com/inkwell-mail/inkwell/internal/model"
)

// InboxLister pages through one user's inbox.
type InboxLister interface {
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.InboxEntry, int, error)
}

type InboxHandler struct {
	inbox InboxLister
}

func NewInboxHandler(inbox InboxLister) *InboxHandler {
	return &InboxHandler{inbox: inbox}
}

// GetInbox handles GET /inbox, scoped to the verified caller.
func (h *InboxHandler) GetInbox(c *gin.Context) {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	limit, offset := pageParams(c)
	entries, total, err := h.inbox.ListByUser(c.Request.Context(), identity.ID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch inbox"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":      entries,
		"pagination": pagination{Limit: limit, Offset: offset, Total: total},
	})
}
