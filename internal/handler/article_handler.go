package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/inkwell-mail/inkwell/internal/blobstore"
	"github.com/inkwell-mail/inkwell/internal/model"
	"github.com/inkwell-mail/inkwell/internal/repository"
)

// ArticleCatalog reads article rows.
type ArticleCatalog interface {
	FindByID(ctx context.Context, id string) (*model.Article, error)
	List(ctx context.Context, limit, offset int) ([]model.Article, int, error)
}

// BodyStore fetches rendered article bodies.
type BodyStore interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
}

type ArticleHandler struct {
	articles ArticleCatalog
	store    BodyStore
	bucket   string
	logger   *zap.Logger
}

func NewArticleHandler(articles ArticleCatalog, store BodyStore, bucket string, logger *zap.Logger) *ArticleHandler {
	return &ArticleHandler{articles: articles, store: store, bucket: bucket, logger: logger}
}

// ListArticles handles GET /articles.
func (h *ArticleHandler) ListArticles(c *gin.Context) {
	limit, offset := pageParams(c)
	articles, total, err := h.articles.List(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch articles"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":      articles,
		"pagination": pagination{Limit: limit, Offset: offset, Total: total},
	})
}

// GetArticle handles GET /articles/:id, serving the rendered body.
func (h *ArticleHandler) GetArticle(c *gin.Context) {
	id := c.Param("id")

	article, err := h.articles.FindByID(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch article"})
		return
	}

	body, err := h.store.Get(c.Request.Context(), h.bucket, article.ObjectKey)
	if errors.Is(err, blobstore.ErrNotFound) {
		// Catalog row without its blob: the accepted inconsistency
		// window, surfaced the same as a missing article.
		c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
		return
	}
	if err != nil {
		h.logger.Error("article body fetch failed",
			zap.String("article_id", id),
			zap.String("object_key", article.ObjectKey),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch article body"})
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", body)
}
