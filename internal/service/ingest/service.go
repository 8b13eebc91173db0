// Package ingest turns one stored raw message into catalog state: a
// deduplicated article plus an inbox entry for the recipient.
package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inkwell-mail/inkwell/internal/blobstore"
	"github.com/inkwell-mail/inkwell/internal/fingerprint"
	"github.com/inkwell-mail/inkwell/internal/mailparse"
	"github.com/inkwell-mail/inkwell/internal/model"
	"github.com/inkwell-mail/inkwell/internal/repository"
	"github.com/inkwell-mail/inkwell/pkg/metrics"
)

// ErrRawNotFound means the referenced raw message does not exist in
// the raw bucket. Surfaced as 404 at the API boundary, never retried.
var ErrRawNotFound = errors.New("raw message not found")

// ObjectStore is the blob contract the pipeline needs from storage.
type ObjectStore interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Put(ctx context.Context, bucket, key string, body []byte, contentType string) error
}

// ArticleCatalog is the article contract the pipeline needs from the
// relational catalog.
type ArticleCatalog interface {
	FindIDByHash(ctx context.Context, hash string) (string, error)
	Insert(ctx context.Context, a *model.Article) (string, error)
}

// InboxCatalog records per-user inbox linkage.
type InboxCatalog interface {
	Insert(ctx context.Context, e *model.InboxEntry) error
}

type Service struct {
	store         ObjectStore
	articles      ArticleCatalog
	inbox         InboxCatalog
	rawBucket     string
	articleBucket string
	logger        *zap.Logger
}

func NewService(store ObjectStore, articles ArticleCatalog, inbox InboxCatalog, rawBucket, articleBucket string, logger *zap.Logger) *Service {
	return &Service{
		store:         store,
		articles:      articles,
		inbox:         inbox,
		rawBucket:     rawBucket,
		articleBucket: articleBucket,
		logger:        logger,
	}
}

// Ingest fetches the raw message under rawKey, parses it, and records
// it for userID. Identical rendered content is stored exactly once:
// the second and later ingests reuse the existing article and only add
// an inbox entry. Failures before the first write abort cleanly; a
// failure between the article blob write and the catalog insert can
// orphan a blob, which is accepted and logged rather than compensated.
func (s *Service) Ingest(ctx context.Context, userID, rawKey string) error {
	raw, err := s.store.Get(ctx, s.rawBucket, rawKey)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			metrics.IngestsTotal.WithLabelValues("raw_missing").Inc()
			return fmt.Errorf("%w: %s", ErrRawNotFound, rawKey)
		}
		metrics.IngestsTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("fetch raw message: %w", err)
	}

	msg, err := mailparse.Parse(raw)
	if err != nil {
		metrics.IngestsTotal.WithLabelValues("parse_error").Inc()
		return fmt.Errorf("parse raw message %s: %w", rawKey, err)
	}

	body := msg.Body()
	hash := fingerprint.Sum(body)

	articleID, err := s.articles.FindIDByHash(ctx, hash)
	switch {
	case err == nil:
		metrics.DedupeHitsTotal.Inc()
		s.logger.Info("reusing existing article",
			zap.String("article_id", articleID),
			zap.String("content_hash", hash),
		)
	case errors.Is(err, repository.ErrNotFound):
		articleID, err = s.createArticle(ctx, hash, body, msg)
		if err != nil {
			metrics.IngestsTotal.WithLabelValues("failed").Inc()
			return err
		}
	default:
		metrics.IngestsTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("look up article by hash: %w", err)
	}

	entry := &model.InboxEntry{
		ID:        uuid.NewString(),
		UserID:    userID,
		ArticleID: articleID,
	}
	if err := s.inbox.Insert(ctx, entry); err != nil {
		metrics.IngestsTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("insert inbox entry: %w", err)
	}

	metrics.IngestsTotal.WithLabelValues("success").Inc()
	return nil
}

func (s *Service) createArticle(ctx context.Context, hash, body string, msg *mailparse.Message) (string, error) {
	objectKey := blobstore.ArticleKey(hash)
	if err := s.store.Put(ctx, s.articleBucket, objectKey, []byte(body), "text/html"); err != nil {
		return "", fmt.Errorf("store article body: %w", err)
	}

	article := &model.Article{
		ID:          uuid.NewString(),
		ContentHash: hash,
		ObjectKey:   objectKey,
	}
	if msg.Subject != "" {
		article.Subject = &msg.Subject
	}
	if msg.Sender != "" {
		article.Sender = &msg.Sender
	}

	// If this fails the blob above is orphaned; there is no
	// compensating delete.
	id, err := s.articles.Insert(ctx, article)
	if err != nil {
		s.logger.Error("article insert failed after blob write",
			zap.String("object_key", objectKey),
			zap.Error(err),
		)
		return "", fmt.Errorf("insert article: %w", err)
	}

	s.logger.Info("created article",
		zap.String("article_id", id),
		zap.String("content_hash", hash),
	)
	return id, nil
}
