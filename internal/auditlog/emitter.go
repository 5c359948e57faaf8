// Package auditlog ships per-request records to an external collector.
//
// Delivery is strictly fire-and-forget: the request path hands a frozen
// Record to Emit and never waits on, or hears about, the outcome. Failures
// are diagnostic output and a metrics counter, nothing more.
package auditlog

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/aigate/internal/telemetry"
)

// loggerUserAgent identifies the gateway on collector requests.
const loggerUserAgent = "aigate-logger/1.0"

// contextSlack is added on top of the client timeout so the context never
// fires first under normal operation.
const contextSlack = 5 * time.Second

// Record is the per-request summary forwarded to the collector. Fields are
// filled in as the request resolves and frozen before emission; the status
// code always reflects the final outcome returned to the caller.
type Record struct {
	Timestamp   time.Time `json:"timestamp"`
	Method      string    `json:"method"`
	Path        string    `json:"path"`
	UserAgent   string    `json:"user_agent"`
	IsAICrawler bool      `json:"is_ai_crawler"`
	StatusCode  int       `json:"status_code"`
	RemoteAddr  string    `json:"remote_addr"`
	Referer     string    `json:"referer"`
}

// Emitter posts records to the configured collector endpoint.
type Emitter struct {
	url     string
	timeout time.Duration
	client  *http.Client
	logger  *zap.Logger
	wg      sync.WaitGroup
}

// NewEmitter creates an Emitter. An empty url disables delivery entirely;
// Emit becomes a no-op.
func NewEmitter(url string, timeout time.Duration, logger *zap.Logger) *Emitter {
	return &Emitter{
		url:     url,
		timeout: timeout,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:    10,
				IdleConnTimeout: 30 * time.Second,
			},
		},
		logger: logger,
	}
}

// Emit delivers rec to the collector in a detached goroutine. It returns
// immediately and never blocks the caller; exactly one delivery attempt is
// made per record, bounded by the emitter's own timeout.
func (e *Emitter) Emit(rec Record) {
	if e.url == "" {
		return
	}
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.send(rec)
	}()
}

// Close waits for in-flight deliveries to finish or ctx to expire. It is a
// shutdown courtesy only; deliveries already run under their own timeout.
func (e *Emitter) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Emitter) send(rec Record) {
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout+contextSlack)
	defer cancel()

	payload, err := json.Marshal(rec)
	if err != nil {
		e.fail("marshal", err, rec)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(payload))
	if err != nil {
		e.fail("build_request", err, rec)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", loggerUserAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		e.fail("transport", err, rec)
		return
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			e.logger.Warn("close collector response body", zap.Error(closeErr))
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		telemetry.ObserveAuditFailure("status")
		fields := []zap.Field{
			zap.Int("status", resp.StatusCode),
			zap.String("path", rec.Path),
		}
		if body, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096)); readErr == nil && len(body) > 0 {
			fields = append(fields, zap.ByteString("collector_body", body))
		}
		e.logger.Warn("collector rejected audit record", fields...)
	}
}

func (e *Emitter) fail(reason string, err error, rec Record) {
	telemetry.ObserveAuditFailure(reason)
	e.logger.Warn("audit record delivery failed",
		zap.String("reason", reason),
		zap.String("path", rec.Path),
		zap.Error(err),
	)
}
