// Package httpserver wires the gin router: the internal ingest entry
// point, the bearer-authenticated read APIs, operational endpoints,
// and the embedded front end.
package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/inkwell-mail/inkwell/internal/auth"
	"github.com/inkwell-mail/inkwell/internal/handler"
	"github.com/inkwell-mail/inkwell/web"
)

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	ingestHandler *handler.IngestHandler,
	userHandler *handler.UserHandler,
	inboxHandler *handler.InboxHandler,
	articleHandler *handler.ArticleHandler,
	verifier *auth.Verifier,
	db *pgxpool.Pool,
) *Router {
	r := gin.Default()

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"status": "db_not_ready"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Front end.
	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", web.Index)
	})

	// Internal, trust-gated by a shared secret rather than a token.
	r.POST("/ingest", ingestHandler.Ingest)

	// Read APIs.
	authed := r.Group("/")
	authed.Use(auth.Middleware(verifier))
	{
		authed.GET("/user", userHandler.GetUser)
		authed.GET("/inbox", inboxHandler.GetInbox)
		authed.GET("/articles", articleHandler.ListArticles)
		authed.GET("/articles/:id", articleHandler.GetArticle)
	}

	return &Router{Engine: r}
}

func (r *Router) Run(port string) error {
	return r.Engine.Run(port)
}
