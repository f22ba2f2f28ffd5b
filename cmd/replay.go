package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"firestige.xyz/vkreplay/internal/config"
	"firestige.xyz/vkreplay/internal/core"
	"firestige.xyz/vkreplay/internal/dispatch"
	"firestige.xyz/vkreplay/internal/log"
	"firestige.xyz/vkreplay/internal/metrics"
	"firestige.xyz/vkreplay/internal/report"
	"firestige.xyz/vkreplay/internal/sequencer"
	"firestige.xyz/vkreplay/internal/source/file"
)

// runReplay loads the settings, opens the trace, sets up the replayers and
// runs the replay loop. Setup failures map to ExitStartup, failures inside
// the loop to ExitReplay.
func runReplay(ctx context.Context, configFile string, flags *pflag.FlagSet, out io.Writer) error {
	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return startupError(err)
	}
	lc, err := cfg.LoggerConfig()
	if err != nil {
		return startupError(err)
	}
	if err := log.Init(lc); err != nil {
		return startupError(fmt.Errorf("failed to init logger: %w", err))
	}
	defer log.Close()
	logger := log.GetLogger().WithField("module", "cmd")

	src, err := file.Open(cfg.Replay.TraceFile)
	if err != nil {
		return startupError(err)
	}
	defer src.Close()

	h := src.Header()
	logger.WithField("trace", src.Path()).
		WithField("version", h.Version).
		WithField("tracers", h.TracerIDs()).
		Info("Trace opened")

	// Replayers read the screenshot list from the environment during Init.
	if cfg.Replay.Screenshot != "" {
		if err := os.Setenv(core.ScreenshotEnv, cfg.Replay.Screenshot); err != nil {
			return startupError(fmt.Errorf("failed to set %s: %w", core.ScreenshotEnv, err))
		}
	}

	reg, err := dispatch.Build(h.TracerIDs(), cfg.Replayers)
	if err != nil {
		return startupError(err)
	}
	defer func() {
		if err := reg.Close(); err != nil {
			logger.WithError(err).Warn("Replayer teardown failed")
		}
	}()

	var opts []sequencer.Option
	if cfg.Metrics.Enabled {
		srv := metrics.NewServer(cfg.Metrics.Listen, cfg.Metrics.Path)
		if err := srv.Start(ctx); err != nil {
			return startupError(err)
		}
		defer srv.Stop(context.Background())
		opts = append(opts, sequencer.WithObserver(metrics.NewRecorder()))
	}

	seq, err := sequencer.New(src, reg, cfg.Replay.Loop(), opts...)
	if err != nil {
		return startupError(err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary := &report.Summary{
		TraceFile:    src.Path(),
		TraceVersion: h.Version,
		StartedAt:    time.Now().UTC(),
	}
	for _, id := range h.TracerIDs() {
		summary.Tracers = append(summary.Tracers, id.String())
	}
	summary.SetLoop(cfg.Replay.Loop())

	stats, runErr := seq.Run(ctx)
	summary.BytesRead = src.BytesRead()
	summary.SetResult(stats, runErr)

	if runErr != nil {
		logger.WithError(runErr).Error("Replay failed")
	} else {
		logger.Info(summary.Line())
	}
	if !strings.EqualFold(cfg.Replay.Verbosity, "quiet") {
		fmt.Fprintln(out, summary.Line())
	}

	if cfg.Report.Path != "" {
		if err := report.Write(cfg.Report.Path, summary); err != nil {
			logger.WithError(err).Warn("Failed to write run report")
		}
	}

	if runErr != nil {
		return replayError(runErr)
	}
	return nil
}
