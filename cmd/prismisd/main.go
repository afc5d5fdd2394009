package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"prismis/internal/analysis/evaluate"
	"prismis/internal/analysis/summarize"
	"prismis/internal/config"
	"prismis/internal/daemon"
	"prismis/internal/embed"
	"prismis/internal/fetch"
	"prismis/internal/observability/logging"
	"prismis/internal/observability/metrics"
	"prismis/internal/pipeline"
	"prismis/internal/store/sqlite"
)

// defaultEmbeddingModel matches the dimension store.New assumes when no
// embedder-specific dimension is configured.
const defaultEmbeddingModel = openai.SmallEmbedding3

func main() {
	logger := initLogger()
	slog.SetDefault(logger)

	cfg, configPath := loadConfig(logger)

	lock, statePath := acquireLock(logger)
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Error("failed to release lock", slog.Any("error", err))
		}
	}()
	logger.Info("acquired single-instance lock", slog.String("path", statePath))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, store := initStore(ctx, logger)
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close store", slog.Any("error", err))
		}
	}()
	go pollDBStats(ctx, db)

	registry := fetch.NewRegistry(newFetchHTTPClient(), fetch.Config{
		MaxItemsPerFeed: cfg.Daemon.MaxItemsPerFeed,
		MaxDaysLookback: cfg.Daemon.MaxDaysLookback,
		RequestTimeout:  30,
	}.Clamped(), store.LatestContentForSource)

	summarizer, err := buildSummarizer(cfg)
	if err != nil {
		logger.Error("failed to build summarizer", slog.Any("error", err))
		os.Exit(1)
	}
	evaluator, err := buildEvaluator(cfg)
	if err != nil {
		logger.Error("failed to build evaluator", slog.Any("error", err))
		os.Exit(1)
	}
	embedHook := buildEmbedHook(logger, cfg, store)

	runtimeMetrics := daemon.NewCycleMetrics()
	runtimeCfg := daemon.LoadRuntimeConfigFromEnv(logger, runtimeMetrics)
	logger.Info("daemon runtime configuration loaded",
		slog.String("config_path", configPath),
		slog.Int("health_port", runtimeCfg.HealthPort),
		slog.Int("source_workers", runtimeCfg.SourceWorkers),
		slog.Int("fetch_interval_minutes", cfg.Daemon.FetchIntervalMinutes))

	healthServer := daemon.NewHealthServer(fmt.Sprintf(":%d", runtimeCfg.HealthPort), logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()
	logger.Info("health check server started", slog.Int("port", runtimeCfg.HealthPort))

	loadConfig := func() (*config.Config, error) { return config.Load(configPath) }
	scheduler := pipeline.New(store, registry, summarizer, evaluator, embedHook, loadConfig, runtimeCfg.SourceWorkers)

	healthServer.SetReady(true)
	logger.Info("daemon started")

	if err := scheduler.Run(ctx); err != nil {
		logger.Error("scheduler exited with error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("daemon shut down cleanly")
}

func initLogger() *slog.Logger {
	return logging.NewLogger()
}

// loadConfig reads config.toml from its XDG location. A missing or
// invalid file is fatal: the daemon has no sensible defaults for the LLM
// provider or the user's interest profile.
func loadConfig(logger *slog.Logger) (*config.Config, string) {
	path, err := config.ConfigPath()
	if err != nil {
		logger.Error("failed to resolve config path", slog.Any("error", err))
		os.Exit(1)
	}
	cfg, err := config.Load(path)
	if err != nil {
		logger.Error("failed to load config", slog.String("path", path), slog.Any("error", err))
		os.Exit(1)
	}
	return cfg, path
}

// acquireLock takes the daemon's single-instance flock, creating its
// parent directory if this is the first run on a fresh machine.
func acquireLock(logger *slog.Logger) (*sqlite.Lock, string) {
	path, err := config.StatePath()
	if err != nil {
		logger.Error("failed to resolve state path", slog.Any("error", err))
		os.Exit(1)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		logger.Error("failed to create state directory", slog.Any("error", err))
		os.Exit(1)
	}
	lock, err := sqlite.AcquireLock(path)
	if err != nil {
		if err == sqlite.ErrLockHeld {
			fmt.Fprintln(os.Stderr, "Daemon already running")
		} else {
			logger.Error("failed to acquire lock", slog.Any("error", err))
		}
		os.Exit(1)
	}
	return lock, path
}

// initStore opens the SQLite file and applies the schema. Any failure
// here is a fatal IOError per spec.md's exit-code table.
func initStore(ctx context.Context, logger *slog.Logger) (*sql.DB, *sqlite.Store) {
	path, err := config.DataPath()
	if err != nil {
		logger.Error("failed to resolve data path", slog.Any("error", err))
		os.Exit(1)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		logger.Error("failed to create data directory", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := sqlite.Open(ctx, path)
	if err != nil {
		logger.Error("failed to open store", slog.Any("error", err))
		os.Exit(1)
	}

	store := sqlite.New(db, 0)
	if err := store.Init(ctx); err != nil {
		logger.Error("failed to initialize store", slog.Any("error", err))
		os.Exit(1)
	}
	return db, store
}

// pollDBStats feeds the connection pool's live state into Prometheus
// every 30s. It runs for the process lifetime; there is no natural
// per-request hook to drive this from since sqlite.Store never exposes
// its *sql.DB to callers below main.
func pollDBStats(ctx context.Context, db *sql.DB) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := db.Stats()
			metrics.UpdateDBConnectionStats(stats.InUse, stats.Idle)
		}
	}
}

func newFetchHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// buildSummarizer dispatches on [llm].provider. An unrecognized provider
// falls back to NoOp rather than exiting, so a daemon misconfigured for
// summarization still ingests and prioritizes items.
func buildSummarizer(cfg *config.Config) (summarize.Summarizer, error) {
	switch cfg.LLM.Provider {
	case "claude":
		scfg := summarize.DefaultClaudeConfig()
		if cfg.LLM.Model != "" {
			scfg.Model = cfg.LLM.Model
		}
		return summarize.NewClaude(cfg.LLM.APIKey, scfg)
	case "openai":
		scfg := summarize.DefaultOpenAIConfig()
		if cfg.LLM.Model != "" {
			scfg.Model = cfg.LLM.Model
		}
		return summarize.NewOpenAI(cfg.LLM.APIKey, scfg)
	default:
		slog.Warn("unrecognized llm provider, summarizer disabled", slog.String("provider", cfg.LLM.Provider))
		return summarize.NewNoOp(), nil
	}
}

// buildEvaluator mirrors buildSummarizer's provider dispatch; the two
// are configured from the same [llm] table since both calls share one
// provider account in practice.
func buildEvaluator(cfg *config.Config) (evaluate.Evaluator, error) {
	switch cfg.LLM.Provider {
	case "claude":
		ecfg := evaluate.DefaultClaudeConfig()
		if cfg.LLM.Model != "" {
			ecfg.Model = cfg.LLM.Model
		}
		return evaluate.NewClaude(cfg.LLM.APIKey, ecfg)
	case "openai":
		ecfg := evaluate.DefaultOpenAIConfig()
		if cfg.LLM.Model != "" {
			ecfg.Model = cfg.LLM.Model
		}
		return evaluate.NewOpenAI(cfg.LLM.APIKey, ecfg)
	default:
		slog.Warn("unrecognized llm provider, evaluator disabled", slog.String("provider", cfg.LLM.Provider))
		return evaluate.NewNoOp(), nil
	}
}

// buildEmbedHook wires the embedder. Anthropic has no public embeddings
// API, so any provider other than "openai" gets NoOp embeddings — search
// quality degrades but embedding failure never blocks the pipeline either
// way, since insertion and prioritization don't depend on it.
func buildEmbedHook(logger *slog.Logger, cfg *config.Config, vectors *sqlite.Store) *embed.Hook {
	if cfg.LLM.Provider != "openai" {
		logger.Info("no openai credentials configured, embeddings disabled", slog.String("provider", cfg.LLM.Provider))
		return embed.NewHook(embed.NewNoOp(1536), vectors)
	}
	embedder, err := embed.NewOpenAI(cfg.LLM.APIKey, defaultEmbeddingModel)
	if err != nil {
		logger.Warn("failed to build embedder, embeddings disabled", slog.Any("error", err))
		return embed.NewHook(embed.NewNoOp(1536), vectors)
	}
	return embed.NewHook(embedder, vectors)
}
