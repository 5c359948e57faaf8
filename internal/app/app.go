// Package app wires the gateway's services together and owns their lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/aigate/internal/api"
	"github.com/JakeFAU/aigate/internal/auditlog"
	"github.com/JakeFAU/aigate/internal/clock/system"
	"github.com/JakeFAU/aigate/internal/config"
	"github.com/JakeFAU/aigate/internal/detector"
	"github.com/JakeFAU/aigate/internal/gateway"
	"github.com/JakeFAU/aigate/internal/proxy"
)

// App contains the application's dependencies.
type App struct {
	cfg     config.Config
	logger  *zap.Logger
	emitter *auditlog.Emitter
	server  *api.Server
}

// NewApp builds the dependency graph from configuration. It fails fast if
// any service cannot be constructed.
func NewApp(cfg config.Config, logger *zap.Logger) (*App, error) {
	logger.Info("creating application",
		zap.Int("port", cfg.Server.Port),
		zap.String("origin", cfg.Origin.URL),
		zap.Int("signatures", len(cfg.Detector.Signatures)),
	)

	det := detector.New(cfg.Detector.Signatures)

	fwd, err := proxy.New(cfg.Origin.URL, cfg.OriginTimeout())
	if err != nil {
		return nil, fmt.Errorf("build forwarder: %w", err)
	}

	emitter := auditlog.NewEmitter(cfg.Audit.URL, cfg.AuditTimeout(), logger)

	handler := gateway.NewHandler(det, fwd, emitter, system.New(), logger)
	server := api.NewServer(handler, logger)

	return &App{
		cfg:     cfg,
		logger:  logger,
		emitter: emitter,
		server:  server,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled or an
// interrupt arrives, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           a.server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		a.logger.Info("http server started", zap.Int("port", a.cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	a.logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("server shutdown error", zap.Error(err))
	}

	// Let in-flight audit deliveries finish before the process exits.
	if err := a.emitter.Close(shutdownCtx); err != nil {
		a.logger.Warn("audit emitter drain incomplete", zap.Error(err))
	}

	a.logger.Info("shutdown complete")
	return nil
}
