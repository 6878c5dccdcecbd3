// cmd/agent-server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"jobboard-agent/internal/agent"
	"jobboard-agent/internal/board"
	awsclient "jobboard-agent/internal/common/aws"
	"jobboard-agent/internal/common/camunda"
	"jobboard-agent/internal/common/config"
	"jobboard-agent/internal/common/database"
	"jobboard-agent/internal/common/logger"
	"jobboard-agent/internal/common/observability"
	"jobboard-agent/internal/notify"
	"jobboard-agent/internal/server"

	aac "jobboard-agent/internal/workers/agent/apply-agent-command"
	pac "jobboard-agent/internal/workers/agent/parse-agent-command"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.Build(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting agent server...",
		zap.String("version", cfg.App.Version),
		zap.String("storage", cfg.Storage.Driver),
		zap.Bool("readOnly", cfg.Server.ReadOnly),
	)

	ctx := context.Background()
	loc := cfg.Agent.Location()
	var closers []func() error
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
	}()

	obs := observability.New(cfg.App.Name, log)
	checks := make(map[string]server.CheckFunc)

	// --- Board storage ---
	var store board.Store
	var memStore *board.MemoryStore
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(ctx, cfg.Database.Postgres)
			return err
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		closers = append(closers, pg.Close)
		zapLog.Info("PostgreSQL connected successfully")

		pgStore := board.NewPostgresStore(pg.DB)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			zapLog.Fatal("postgres schema failed", zap.Error(err))
		}
		store = pgStore
		checks["postgres"] = pg.Ping

	case config.StorageSQLite:
		lite, err := database.NewSQLite(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			zapLog.Fatal("sqlite open failed", zap.Error(err))
		}
		closers = append(closers, lite.Close)
		zapLog.Info("SQLite opened", zap.String("path", cfg.Storage.SQLitePath))

		liteStore := board.NewSQLiteStore(lite.DB)
		if err := liteStore.EnsureSchema(ctx); err != nil {
			zapLog.Fatal("sqlite schema failed", zap.Error(err))
		}
		store = liteStore
		checks["sqlite"] = lite.Ping

	default:
		var seed []board.Job
		if cfg.Storage.SeedFile != "" {
			seed, err = board.LoadSeedFile(cfg.Storage.SeedFile, time.Now().In(loc))
			if err != nil {
				zapLog.Fatal("seed load failed", zap.Error(err))
			}
		}
		memStore = board.NewMemoryStore(seed)
		defer board.LogChanges(memStore, log)()
		store = memStore
		zapLog.Info("In-memory board ready", zap.Int("jobs", len(seed)))
	}

	// --- Undo snapshots ---
	var undo board.UndoStore = board.NewMemoryUndoStore()
	if cfg.Agent.UndoStore == config.UndoStoreRedis {
		redisClient := database.NewRedis(cfg.Database.Redis)
		err = retryWithBackoff(func() error {
			return redisClient.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		closers = append(closers, redisClient.Close)
		undo = board.NewRedisUndoStore(redisClient.Client, cfg.App.Name)
		checks["redis"] = redisClient.Ping
		zapLog.Info("Redis connected successfully")
	}

	b := board.NewBoard(store, undo, board.Options{
		UndoTTL:      config.GetDuration(cfg.Agent.UndoTTL),
		FollowUpHour: cfg.Agent.FollowUpHour,
		Location:     loc,
	}, log)
	runner := agent.NewRunner(b, agent.Options{ReadOnly: cfg.Server.ReadOnly}, log)

	srv := server.New(runner, b, obs, server.Options{
		CORSOrigin: cfg.Server.CORSOrigin,
		ReadOnly:   cfg.Server.ReadOnly,
	}, log)
	for name, check := range checks {
		srv.AddReadinessCheck(name, check)
	}

	// --- Zeebe workers ---
	var workers []*camunda.Worker
	parseCfg := pac.LoadConfig(cfg)
	applyCfg := aac.LoadConfig(cfg)
	if parseCfg.Enabled || applyCfg.Enabled {
		var zeebe *camunda.Client
		err = retryWithBackoff(func() error {
			var err error
			zeebe, err = camunda.NewClient(ctx, cfg.Camunda.BrokerAddress)
			return err
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		closers = append(closers, zeebe.Close)
		srv.AddReadinessCheck("zeebe", zeebe.HealthCheck)
		zapLog.Info("Zeebe client connected successfully")

		if parseCfg.Enabled {
			handler := pac.NewHandler(parseCfg, log)
			workers = append(workers, startWorker(zeebe, pac.TaskType, parseCfg.MaxJobsActive, parseCfg.Timeout, handler, log))
		}
		if applyCfg.Enabled {
			handler := aac.NewHandler(applyCfg, runner, log)
			workers = append(workers, startWorker(zeebe, aac.TaskType, applyCfg.MaxJobsActive, applyCfg.Timeout, handler, log))
		}
	}

	// --- Follow-up digest ---
	var scheduler *notify.Scheduler
	if cfg.Notifications.Enabled {
		scheduler, err = newDigestScheduler(ctx, cfg, b, log)
		if err != nil {
			zapLog.Fatal("notification setup failed", zap.Error(err))
		}
		scheduler.Start()
	}

	// --- HTTP ---
	httpServer := srv.HTTPServer(cfg.Server.Address,
		config.GetDuration(cfg.Server.ReadTimeout),
		config.GetDuration(cfg.Server.WriteTimeout))
	go func() {
		zapLog.Info("Agent server listening", zap.String("address", cfg.Server.Address))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	for sig := range sigCh {
		if sig != syscall.SIGHUP {
			break
		}
		// SIGHUP reloads the seed file into the in-memory board.
		if memStore == nil || cfg.Storage.SeedFile == "" {
			zapLog.Warn("SIGHUP ignored, no in-memory seed to reload")
			continue
		}
		n, err := memStore.ReloadSeed(cfg.Storage.SeedFile, time.Now().In(loc))
		if err != nil {
			zapLog.Error("seed reload failed", zap.Error(err))
			continue
		}
		zapLog.Info("Seed reloaded", zap.Int("jobs", n))
	}

	zapLog.Info("Shutdown signal received, stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping HTTP server", zap.Error(err))
	}
	if scheduler != nil {
		scheduler.Stop(shutdownCtx)
	}
	for _, w := range workers {
		w.Stop()
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error flushing metrics", zap.Error(err))
	}

	zapLog.Info("Agent server stopped gracefully")
}

func startWorker(client *camunda.Client, taskType string, maxJobsActive int, timeout time.Duration, handler camunda.JobHandler, log logger.Logger) *camunda.Worker {
	return camunda.StartWorker(client.GetClient(), camunda.WorkerOptions{
		TaskType:      taskType,
		MaxJobsActive: maxJobsActive,
		Timeout:       timeout,
	}, handler, log)
}

// newDigestScheduler wires only the channels that are configured.
func newDigestScheduler(ctx context.Context, cfg *config.Config, b *board.Board, log logger.Logger) (*notify.Scheduler, error) {
	n := cfg.Notifications
	var channels notify.Channels

	if n.ToEmail != "" || n.SMSPhone != "" {
		awsCfg, err := awsclient.LoadConfig(ctx, n.AWS.Region)
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		if n.ToEmail != "" {
			channels.SES = awsclient.NewSESClient(awsCfg)
		}
		if n.SMSPhone != "" {
			channels.SNS = awsclient.NewSNSClient(awsCfg)
		}
	}
	if n.Slack.Configured() {
		channels.Slack = slack.New(n.Slack.Token)
	}

	notifier, err := notify.NewNotifier(b, channels, n, log)
	if err != nil {
		return nil, err
	}
	return notify.NewScheduler(n.Schedule, cfg.Agent.Location(), notifier, log)
}
