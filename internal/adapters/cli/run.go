package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/adelacruz/artifacts-go/internal/adapters/metrics"
	"github.com/adelacruz/artifacts-go/internal/application/runner"
	"github.com/adelacruz/artifacts-go/internal/infrastructure/config"
	"github.com/adelacruz/artifacts-go/internal/infrastructure/logging"
	"github.com/adelacruz/artifacts-go/internal/infrastructure/pidfile"
)

// NewRunCommand creates the run command, the daemon's main entry point
func NewRunCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the automation daemon",
		Long: `Start every configured character loop and block until interrupted.
A PID file prevents two daemons from driving the same account.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if verbose {
				cfg.Logging.Level = "debug"
			}
			return runDaemon(cfg, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false,
		"Kill any existing daemon and start a new one")

	return cmd
}

func runDaemon(cfg *config.Config, force bool) error {
	log, err := logging.NewLogger(&cfg.Logging)
	if err != nil {
		return err
	}
	defer log.Sync()

	for _, key := range cfg.UnknownKeys() {
		log.Warnw("ignoring unknown config key", "key", key)
	}

	pf := pidfile.New(cfg.Daemon.PIDFile)
	if err := pf.Acquire(); err != nil {
		if !force {
			return fmt.Errorf("%w\nuse --force to kill the existing daemon", err)
		}
		log.Warn("force mode: killing existing daemon")
		if err := pf.KillExisting(); err != nil {
			return fmt.Errorf("failed to kill existing daemon: %w", err)
		}
		if err := pf.Acquire(); err != nil {
			return err
		}
	}
	defer func() {
		if err := pf.Release(); err != nil {
			log.Warnw("failed to release PID file", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r, err := runner.New(ctx, cfg, log)
	if err != nil {
		return err
	}

	var ops *metrics.Server
	if cfg.Metrics.Enabled {
		ops = metrics.NewServer(cfg.Metrics.Host, cfg.Metrics.Port, cfg.Metrics.Path, r, log)
		go func() {
			if err := ops.Start(); err != nil {
				log.Errorw("ops server failed", "error", err)
			}
		}()
	}

	log.Infow("daemon running", "characters", cfg.CharacterNames())
	err = r.Run(ctx)

	if ops != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Daemon.ShutdownTimeout)
		defer cancel()
		if shutdownErr := ops.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Warnw("ops server shutdown failed", "error", shutdownErr)
		}
	}

	if err != nil && ctx.Err() == nil {
		return err
	}
	log.Info("daemon stopped")
	return nil
}
