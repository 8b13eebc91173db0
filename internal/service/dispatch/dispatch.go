// Package dispatch hands stored raw messages off to the ingestion API.
// The handoff is fire-and-forget: delivery acceptance never waits on
// it, it is never retried, and a failure only shows up in logs and
// metrics.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/inkwell-mail/inkwell/pkg/metrics"
)

// secretHeader carries the shared secret gating the ingest endpoint.
const secretHeader = "X-Ingest-Secret"

// defaultTimeout bounds one handoff attempt.
const defaultTimeout = 30 * time.Second

type request struct {
	UserID string `json:"userId"`
	R2Key  string `json:"r2Key"`
}

type Dispatcher struct {
	client  *http.Client
	apiURL  string
	secret  string
	timeout time.Duration
	logger  *zap.Logger
	wg      sync.WaitGroup
}

func New(apiURL, secret string, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		client:  &http.Client{Timeout: defaultTimeout},
		apiURL:  apiURL,
		secret:  secret,
		timeout: defaultTimeout,
		logger:  logger,
	}
}

// Dispatch submits one {userID, rawKey} pair to the ingest endpoint on
// a detached goroutine and returns immediately. The goroutine uses its
// own context so a closing SMTP session cannot cancel the handoff.
func (d *Dispatcher) Dispatch(userID, rawKey string) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.post(ctx, userID, rawKey); err != nil {
			metrics.HandoffFailuresTotal.Inc()
			d.logger.Error("ingest handoff dropped",
				zap.String("user_id", userID),
				zap.String("raw_key", rawKey),
				zap.Error(err),
			)
		}
	}()
}

func (d *Dispatcher) post(ctx context.Context, userID, rawKey string) error {
	body, err := json.Marshal(request{UserID: userID, R2Key: rawKey})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.apiURL+"/ingest", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(secretHeader, d.secret)

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ingest endpoint returned %d", resp.StatusCode)
	}
	return nil
}

// Wait blocks until all in-flight handoffs finish. Used at shutdown so
// accepted deliveries get their one chance at ingestion.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
