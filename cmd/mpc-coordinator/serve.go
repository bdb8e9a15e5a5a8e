package main

import (
	"context"
	"mpc-coordinator/api"
	"mpc-coordinator/internal/config"
	"mpc-coordinator/internal/coordinator"
	"mpc-coordinator/internal/logger"
	"mpc-coordinator/internal/metrics"
	"mpc-coordinator/internal/storage"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the coordination HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			defer logger.Close()
			return serve(cfg)
		},
	}
}

// restoreOnStart loads the latest snapshot. An empty backend is not an error.
func restoreOnStart(ctx context.Context, svc *coordinator.Service) error {
	err := svc.Restore(ctx)
	if errors.Cause(err) == storage.ErrNoSnapshot {
		logger.Log.Warn("No snapshot found, starting with an empty store.")
		return nil
	}
	return err
}

// overwritesWithoutRestore reports whether snapshots will be written over
// state this process never loaded.
func overwritesWithoutRestore(cfg *config.Config) bool {
	switch cfg.Snapshot.Backend {
	case config.BackendNone, "":
		return false
	}
	return !cfg.Snapshot.RestoreOnStart
}

// snapshotLoop saves a snapshot every interval until ctx ends.
func snapshotLoop(ctx context.Context, svc *coordinator.Service, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := svc.Snapshot(ctx); err != nil {
				logger.Log.WithError(err).Error("periodic snapshot failed")
			}
		}
	}
}

func serve(cfg *config.Config) error {
	backend, err := storage.Open(cfg)
	if err != nil {
		return err
	}
	var snapshots coordinator.Snapshotter
	if backend != nil {
		defer backend.Close()
		snapshots = backend
	}

	rec := metrics.New()
	svc := coordinator.New(snapshots, rec)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if backend != nil && cfg.Snapshot.RestoreOnStart {
		if err := restoreOnStart(ctx, svc); err != nil {
			return errors.Wrap(err, "restoring state")
		}
	}
	if overwritesWithoutRestore(cfg) {
		logger.Log.Warnf("Snapshot backend %q is set without restore_on_start: the next snapshot replaces stored state with this empty store.", cfg.Snapshot.Backend)
	}
	if backend != nil && cfg.Snapshot.Interval > 0 {
		go snapshotLoop(ctx, svc, cfg.Snapshot.Interval)
	}

	if logger.Log.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           api.SetupRouter(svc, rec, cfg.RateLimit),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Log.Infof("Coordinator listening on %s (snapshot backend: %s)", cfg.Server.Address, cfg.Snapshot.Backend)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "http server")
		}
		return nil
	case <-ctx.Done():
	}

	logger.Log.Info("Shutting down.")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Warn("http server did not drain in time")
	}
	if backend != nil {
		if err := svc.Snapshot(shutdownCtx); err != nil {
			return errors.Wrap(err, "final snapshot")
		}
	}
	return nil
}
