package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/inkwell-mail/inkwell/internal/auth"
	"github.com/inkwell-mail/inkwell/internal/model"
	"github.com/inkwell-mail/inkwell/internal/repository"
)

// UserFinder looks up catalog rows for authenticated identities.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

type UserHandler struct {
	users UserFinder
}

func NewUserHandler(users UserFinder) *UserHandler {
	return &UserHandler{users: users}
}

// GetUser handles GET /user: the caller's catalog row merged with the
// identity fields carried by the token.
func (h *UserHandler) GetUser(c *gin.Context) {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	u, err := h.users.FindByID(c.Request.Context(), identity.ID)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found in database"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         u.ID,
		"alias":      u.Alias,
		"email":      identity.Email,
		"name":       identity.Name,
		"groups":     identity.Groups,
		"created_at": u.CreatedAt.Format(time.RFC3339),
	})
}
