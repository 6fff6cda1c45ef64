package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"studyflow/internal/config"
	"studyflow/internal/datekey"
	appLog "studyflow/internal/log"
	"studyflow/internal/stats"
	"studyflow/internal/store"
	"studyflow/internal/web"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	listen     string
	debug      bool
}

func main() {
	appLog.Info("studyflow starting", "version", "0.1.0")

	flags := parseFlags()
	if flags.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI --listen overrides config file listen if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"fixed_grid", conf.FixedGrid,
		"rollup_cron", conf.RollupCron,
		"target_sessions", conf.Score.TargetSessions,
	)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	records := store.New()
	server := web.NewServer(conf, records)

	loc, locErr := time.LoadLocation(conf.Timezone)
	if locErr != nil {
		appLog.Error("failed to load timezone; falling back to local", locErr, "name", conf.Timezone)
		loc = time.Local
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Serve(gctx)
	})

	g.Go(func() error {
		return runRollup(gctx, conf, records, loc)
	})

	if err := g.Wait(); err != nil {
		appLog.Error("studyflow exited with error", err)
		os.Exit(1)
	}
	appLog.Info("studyflow exiting")
}

// runRollup schedules the daily productivity score capture. Each firing
// summarizes the current day from a fresh snapshot and appends the score
// to the history; re-firing on the same date overwrites that entry.
func runRollup(ctx context.Context, conf *config.Config, records *store.RecordStore, loc *time.Location) error {
	c := cron.New()

	_, err := c.AddFunc(conf.RollupCron, func() {
		today := datekey.FromTime(time.Now().In(loc))
		snap := records.Snapshot()
		sum := stats.SummarizeDay(snap.Tasks, snap.SleepRecords, snap.PomodoroSessions, snap.Goals, snap.Habits, today, conf.Score)

		records.AppendScore(store.ScoreEntry{
			Date:       today,
			Score:      sum.ProductivityScore,
			CapturedAt: time.Now(),
		})
		appLog.Info("daily score captured", "date", today, "score", sum.ProductivityScore)
	})
	if err != nil {
		return err
	}

	c.Start()
	appLog.Info("rollup scheduler started", "cron", conf.RollupCron)

	<-ctx.Done()
	stopCtx := c.Stop()
	<-stopCtx.Done()
	return nil
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/studyflow/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.debug, "debug", false, "Enable debug logging")

	flag.Parse()

	return cfg
}
