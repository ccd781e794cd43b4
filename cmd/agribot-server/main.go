package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"agribot/internal/agents"
	cropagent "agribot/internal/agents/crop"
	finagent "agribot/internal/agents/financial"
	polagent "agribot/internal/agents/policy"
	weatheragent "agribot/internal/agents/weather"
	"agribot/internal/common/config"
	"agribot/internal/common/database"
	"agribot/internal/common/logger"
	"agribot/internal/common/observability"
	"agribot/internal/dispatch"
	"agribot/internal/httpapi"
	"agribot/internal/intent"
	"agribot/internal/knowledge"
	"agribot/internal/language"
	"agribot/internal/models"
	"agribot/internal/orchestrator"
	"agribot/internal/persistence"
	"agribot/internal/provider"
	"agribot/internal/session"
	"agribot/internal/synthesis"
	"agribot/pkg/manifest"
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

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting agribot server...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Agent manifest ---
	m, err := manifest.Load(cfg.Manifest.Path)
	if err != nil {
		zapLog.Warn("manifest load failed, built-in manifest used", zap.Error(err))
		m = manifest.Default()
	}

	// --- Optional infrastructure: postgres (query log) ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 5, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Warn("postgres unavailable, query log disabled", zap.Error(err))
		pg = nil
	} else {
		defer pg.Close()
		zapLog.Info("PostgreSQL connected successfully")
	}

	// --- Optional infrastructure: elasticsearch (knowledge base) ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping(ctx)
	}, 5, 2*time.Second, zapLog, "Elasticsearch connection")
	if err != nil {
		zapLog.Warn("elasticsearch unavailable, knowledge retrieval disabled", zap.Error(err))
		esClient = nil
	} else {
		zapLog.Info("Elasticsearch connected successfully")
	}

	// --- Session store ---
	capacity := cfg.Session.Capacity
	ttl := time.Duration(cfg.Session.TTL) * time.Second
	var sessions session.Store
	var rc *database.RedisClient
	if cfg.Session.Store == "redis" {
		err = retryWithBackoff(func() error {
			var err error
			rc, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return rc.Ping(ctx)
		}, 5, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Warn("redis unavailable, in-memory sessions used", zap.Error(err))
			rc = nil
			sessions = session.NewMemoryStore(capacity, ttl)
		} else {
			zapLog.Info("Redis connected successfully")
			sessions = session.NewRedisStore(rc.Client, capacity, ttl, log)
		}
	} else {
		sessions = session.NewMemoryStore(capacity, ttl)
	}
	defer sessions.Close()

	// --- Providers ---
	genai := provider.NewGenAIClient(provider.GenAIConfig{
		BaseURL:    cfg.Providers.GenAI.BaseURL,
		APIKey:     cfg.Providers.GenAI.APIKey,
		Timeout:    time.Duration(cfg.Providers.GenAI.Timeout) * time.Millisecond,
		MaxRetries: cfg.Providers.GenAI.MaxRetries,
	}, log)

	embedder, err := provider.NewOllamaEmbedder(cfg.Providers.Ollama.Host, cfg.Providers.Ollama.EmbeddingModel)
	if err != nil {
		zapLog.Fatal("ollama embedder init failed", zap.Error(err))
	}

	// --- Pipeline components ---
	bridge := language.NewBridge(genai, language.Options{
		Supported:          cfg.Language.Supported,
		DefaultLanguage:    cfg.Language.DefaultLanguage,
		DetectionThreshold: cfg.Language.DetectionThreshold,
		Disabled:           cfg.Language.TranslationDisabled,
	}, log)

	classifier := intent.NewClassifier(m, embedder, log)

	registry, err := buildRegistry(cfg, log)
	if err != nil {
		zapLog.Fatal("agent registry construction failed", zap.Error(err))
	}

	dispatcher := dispatch.NewDispatcher(registry, dispatchConfig(cfg), log)
	synthesizer := synthesis.NewSynthesizer(genai, m, log)

	var retriever *knowledge.Retriever
	if esClient != nil {
		retriever = knowledge.NewRetriever(esClient.Client, cfg.Database.Elasticsearch.Index, knowledge.DefaultLimit, log)
	}

	var queryLog *persistence.QueryLog
	if pg != nil {
		queryLog = persistence.NewQueryLog(pg.DB, log)
	}

	orc, err := orchestrator.New(bridge, classifier, registry, dispatcher, synthesizer, sessions, retriever, queryLog, log)
	if err != nil {
		zapLog.Fatal("orchestrator construction failed", zap.Error(err))
	}
	orc.SetObserver(obs)

	// --- HTTP server ---
	api := httpapi.NewServer(orc, log)
	if pg != nil {
		api.AddDependency("postgres", pg.Ping)
	}
	if rc != nil {
		api.AddDependency("redis", rc.Ping)
	}
	if esClient != nil {
		api.AddDependency("elasticsearch", esClient.Ping)
	}
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      api.Router(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Millisecond,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server shutdown failed", zap.Error(err))
	}
	zapLog.Info("Shutdown complete")
}

// buildRegistry registers every enabled domain agent.
func buildRegistry(cfg *config.Config, log logger.Logger) (*agents.Registry, error) {
	var list []agents.Agent

	if agentEnabled(cfg, models.CategoryWeather) {
		wcfg := weatheragent.DefaultConfig()
		if cfg.Providers.Weather.BaseURL != "" {
			wcfg.BaseURL = cfg.Providers.Weather.BaseURL
		}
		wcfg.APIKey = cfg.Providers.Weather.APIKey
		if cfg.Providers.Weather.Timeout > 0 {
			wcfg.Timeout = time.Duration(cfg.Providers.Weather.Timeout) * time.Millisecond
		}
		if mr := agentMaxRetries(cfg, models.CategoryWeather); mr > 0 {
			wcfg.MaxRetries = mr
		}
		list = append(list, weatheragent.NewHandler(wcfg, log))
	}

	if agentEnabled(cfg, models.CategoryCrop) {
		list = append(list, cropagent.NewHandler(cropagent.DefaultConfig(), log))
	}

	if agentEnabled(cfg, models.CategoryFinancial) {
		fcfg := finagent.DefaultConfig()
		fcfg.MarketAPIBaseURL = cfg.Providers.Market.BaseURL
		if cfg.Providers.Market.Timeout > 0 {
			fcfg.Timeout = time.Duration(cfg.Providers.Market.Timeout) * time.Millisecond
		}
		if mr := agentMaxRetries(cfg, models.CategoryFinancial); mr > 0 {
			fcfg.MaxRetries = mr
		}
		list = append(list, finagent.NewHandler(fcfg, log))
	}

	if agentEnabled(cfg, models.CategoryPolicy) {
		list = append(list, polagent.NewHandler(polagent.DefaultConfig(), log))
	}

	return agents.NewRegistry(list...)
}

func agentEnabled(cfg *config.Config, category models.Category) bool {
	agentCfg, ok := cfg.Agents[string(category)]
	if !ok {
		return true
	}
	return agentCfg.Enabled
}

func agentMaxRetries(cfg *config.Config, category models.Category) int {
	return cfg.Agents[string(category)].MaxRetries
}

func dispatchConfig(cfg *config.Config) dispatch.Config {
	dcfg := dispatch.Config{
		Timeouts: make(map[models.Category]time.Duration),
	}
	for name, agentCfg := range cfg.Agents {
		if agentCfg.Timeout > 0 {
			dcfg.Timeouts[models.Category(name)] = time.Duration(agentCfg.Timeout) * time.Millisecond
		}
	}
	return dcfg
}
