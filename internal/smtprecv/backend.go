// Package smtprecv accepts inbound newsletter mail. Unknown recipients
// are bounced at RCPT time, before anything is persisted; accepted
// messages are stored raw and handed off to the ingestion API without
// waiting for the pipeline.
package smtprecv

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"github.com/inkwell-mail/inkwell/internal/alias"
	"github.com/inkwell-mail/inkwell/internal/blobstore"
	"github.com/inkwell-mail/inkwell/internal/model"
	"github.com/inkwell-mail/inkwell/internal/repository"
	"github.com/inkwell-mail/inkwell/pkg/metrics"
)

// maxMessageBytes caps one inbound message (10 MB).
const maxMessageBytes = 10 * 1024 * 1024

var errUnknownAddress = &smtp.SMTPError{
	Code:         550,
	EnhancedCode: smtp.EnhancedCode{5, 1, 1},
	Message:      "Unknown address",
}

// UserLookup resolves a base alias to a user.
type UserLookup interface {
	FindByAlias(ctx context.Context, alias string) (*model.User, error)
}

// RawStore persists raw message bytes.
type RawStore interface {
	Put(ctx context.Context, bucket, key string, body []byte, contentType string) error
}

// Handoff submits one stored message for ingestion, fire-and-forget.
type Handoff interface {
	Dispatch(userID, rawKey string)
}

type Backend struct {
	users     UserLookup
	store     RawStore
	handoff   Handoff
	rawBucket string
	logger    *zap.Logger
}

func NewBackend(users UserLookup, store RawStore, handoff Handoff, rawBucket string, logger *zap.Logger) *Backend {
	return &Backend{
		users:     users,
		store:     store,
		handoff:   handoff,
		rawBucket: rawBucket,
		logger:    logger,
	}
}

func (b *Backend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &session{backend: b}, nil
}

// NewServer wires the backend into a configured go-smtp server.
func NewServer(b *Backend, addr, domain string) *smtp.Server {
	s := smtp.NewServer(b)
	s.Addr = addr
	s.Domain = domain
	s.ReadTimeout = time.Minute
	s.WriteTimeout = time.Minute
	s.MaxMessageBytes = maxMessageBytes
	s.MaxRecipients = 50
	return s
}

type session struct {
	backend    *Backend
	recipients []string // resolved user IDs, in RCPT order
}

func (s *session) Mail(from string, _ *smtp.MailOptions) error {
	return nil
}

// Rcpt resolves the recipient alias. Unknown aliases get a permanent
// 550 so the sender sees a bounce instead of a silent drop.
func (s *session) Rcpt(to string, _ *smtp.RcptOptions) error {
	addr := alias.Parse(to)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	user, err := s.backend.users.FindByAlias(ctx, addr.Base)
	if errors.Is(err, repository.ErrNotFound) {
		metrics.DeliveriesTotal.WithLabelValues("bounced").Inc()
		s.backend.logger.Info("bounced unknown recipient", zap.String("to", to))
		return errUnknownAddress
	}
	if err != nil {
		s.backend.logger.Error("alias lookup failed", zap.String("to", to), zap.Error(err))
		return &smtp.SMTPError{Code: 451, Message: "Temporary lookup failure"}
	}

	s.recipients = append(s.recipients, user.ID)
	return nil
}

// Data stores the raw message once and hands it off for ingestion once
// per accepted recipient. The SMTP reply does not wait on ingestion.
func (s *session) Data(r io.Reader) error {
	raw, err := io.ReadAll(io.LimitReader(r, maxMessageBytes))
	if err != nil {
		return err
	}

	key := blobstore.RawKey(time.Now())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.backend.store.Put(ctx, s.backend.rawBucket, key, raw, "message/rfc822"); err != nil {
		s.backend.logger.Error("raw message store failed", zap.String("key", key), zap.Error(err))
		return &smtp.SMTPError{Code: 451, Message: "Temporary storage failure"}
	}

	for _, userID := range s.recipients {
		s.backend.handoff.Dispatch(userID, key)
	}

	metrics.DeliveriesTotal.WithLabelValues("accepted").Inc()
	s.backend.logger.Info("accepted delivery",
		zap.String("raw_key", key),
		zap.Int("recipients", len(s.recipients)),
	)
	return nil
}

func (s *session) Reset() {
	s.recipients = nil
}

func (s *session) Logout() error {
	return nil
}
