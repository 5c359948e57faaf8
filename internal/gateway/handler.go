// Package gateway implements the per-request pipeline: classify the caller,
// answer crawlers with the synthetic document or relay everyone else to the
// origin, and emit exactly one audit record per request.
package gateway

import (
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/aigate/internal/auditlog"
	"github.com/JakeFAU/aigate/internal/telemetry"
)

// SyntheticDocument is the fixed payload served to classified agents.
const SyntheticDocument = "<html><head><title>AI-Ready Content</title></head><body>This is content optimized for AI crawlers.</body></html>"

const syntheticContentType = "text/html; charset=utf-8"

// OriginFailureMessage is the plain-text body returned when the origin
// cannot be reached.
const OriginFailureMessage = "Failed to fetch from origin"

const internalErrorMessage = "Internal Server Error"

// Classifier decides whether a User-Agent belongs to an automated content
// agent, naming the matched signature.
type Classifier interface {
	Match(userAgent string) (string, bool)
}

// Forwarder reissues an inbound request against the origin.
type Forwarder interface {
	Forward(r *http.Request) (*http.Response, error)
}

// Emitter accepts frozen audit records for fire-and-forget delivery.
type Emitter interface {
	Emit(rec auditlog.Record)
}

// Clock supplies record timestamps.
type Clock interface {
	Now() time.Time
}

// Handler is the request dispatcher. One Handler serves all requests; it
// keeps no per-request state, so concurrent use needs no locking.
type Handler struct {
	classifier Classifier
	forwarder  Forwarder
	audit      Emitter
	clock      Clock
	logger     *zap.Logger
}

// NewHandler wires the dispatcher from its collaborators.
func NewHandler(classifier Classifier, forwarder Forwarder, audit Emitter, clock Clock, logger *zap.Logger) *Handler {
	return &Handler{
		classifier: classifier,
		forwarder:  forwarder,
		audit:      audit,
		clock:      clock,
		logger:     logger,
	}
}

// ServeHTTP runs one request through the pipeline. Whatever happens, the
// caller gets a definite response (200, origin's status, 502, or 500) and
// exactly one audit record is emitted carrying the final status.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec := auditlog.Record{
		Timestamp:  h.clock.Now(),
		Method:     r.Method,
		Path:       r.URL.Path,
		UserAgent:  r.Header.Get("User-Agent"),
		RemoteAddr: r.RemoteAddr,
		Referer:    r.Header.Get("Referer"),
	}

	emitted := false
	headerSent := false
	// emit freezes the record at the first known final status. Later calls
	// are no-ops, so a late relay failure never produces a second record.
	emit := func(status int) {
		if emitted {
			return
		}
		emitted = true
		rec.StatusCode = status
		h.audit.Emit(rec)
	}

	defer func() {
		p := recover()
		if p == nil {
			return
		}
		h.logger.Error("panic recovered while handling request",
			zap.Any("panic", p),
			zap.String("method", rec.Method),
			zap.String("path", rec.Path),
		)
		emit(http.StatusInternalServerError)
		if !headerSent {
			http.Error(w, internalErrorMessage, http.StatusInternalServerError)
		}
	}()

	signature, isCrawler := h.classifier.Match(rec.UserAgent)
	rec.IsAICrawler = isCrawler

	if isCrawler {
		telemetry.ObserveCrawlerDetection(signature)
		h.logger.Info("AI crawler detected",
			zap.String("signature", signature),
			zap.String("user_agent", rec.UserAgent),
			zap.String("remote_addr", rec.RemoteAddr),
			zap.String("path", rec.Path),
		)
		emit(http.StatusOK)
		w.Header().Set("Content-Type", syntheticContentType)
		headerSent = true
		w.WriteHeader(http.StatusOK)
		if _, err := io.WriteString(w, SyntheticDocument); err != nil {
			h.logger.Warn("write synthetic response", zap.Error(err))
		}
		return
	}

	resp, err := h.forwarder.Forward(r)
	if err != nil {
		h.logger.Warn("origin fetch failed",
			zap.String("method", rec.Method),
			zap.String("path", rec.Path),
			zap.Error(err),
		)
		emit(http.StatusBadGateway)
		headerSent = true
		http.Error(w, OriginFailureMessage, http.StatusBadGateway)
		return
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			h.logger.Warn("close origin response body", zap.Error(closeErr))
		}
	}()

	h.logger.Info("proxied request",
		zap.String("method", rec.Method),
		zap.String("path", rec.Path),
		zap.Int("status", resp.StatusCode),
	)
	emit(resp.StatusCode)

	for key, values := range resp.Header {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	headerSent = true
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		// Usually the caller disconnecting mid-transfer; the status line is
		// already committed either way.
		h.logger.Debug("relay origin body", zap.Error(err))
	}
}
