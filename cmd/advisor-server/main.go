// cmd/advisor-server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"scholarship-advisor/internal/chat"
	"scholarship-advisor/internal/clients/currency"
	"scholarship-advisor/internal/clients/email"
	"scholarship-advisor/internal/clients/genai"
	"scholarship-advisor/internal/clients/websearch"
	"scholarship-advisor/internal/common/config"
	"scholarship-advisor/internal/common/database"
	"scholarship-advisor/internal/common/logger"
	"scholarship-advisor/internal/common/observability"
	"scholarship-advisor/internal/pipeline"
	"scholarship-advisor/internal/pipeline/stages/analyzeintent"
	"scholarship-advisor/internal/pipeline/stages/estimatefinances"
	"scholarship-advisor/internal/pipeline/stages/findscholarships"
	"scholarship-advisor/internal/pipeline/stages/scoreprofile"
	"scholarship-advisor/internal/pipeline/stages/synthesizeadvice"
	"scholarship-advisor/internal/session"
)

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting advisor server...")

	var cfg *config.Config
	var err error
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		cfg, err = config.LoadFromFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	// Rebuild the logger with configured level and format.
	zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	log = logger.NewZapAdapter(zapLog)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Session store: Redis when reachable, in-memory otherwise ---
	sessionTTL := time.Duration(cfg.Session.TTL) * time.Second
	var store session.Store
	redisClient, err := database.NewRedis(cfg.Database.Redis)
	if err == nil {
		err = redisClient.Ping(ctx)
	}
	if err != nil {
		zapLog.Warn("redis unavailable, sessions held in memory", zap.Error(err))
		store = session.NewMemoryStore(sessionTTL)
	} else {
		defer redisClient.Close()
		store = session.NewRedisStore(redisClient, cfg.Session.KeyPrefix, sessionTTL, log)
		zapLog.Info("Redis connected successfully")
	}

	// --- External clients ---
	genaiClient := genai.NewClient(&genai.Config{
		BaseURL: cfg.APIs.GenAI.BaseURL,
		APIKey:  cfg.APIs.GenAI.APIKey,
		Model:   cfg.APIs.GenAI.Model,
		Timeout: config.GetDuration(cfg.APIs.GenAI.Timeout),
	}, log)

	searchClient := websearch.NewClient(&websearch.Config{
		BaseURL: cfg.APIs.WebSearch.BaseURL,
		APIKey:  cfg.APIs.WebSearch.APIKey,
		Engine:  cfg.APIs.WebSearch.Engine,
		Timeout: config.GetDuration(cfg.APIs.WebSearch.Timeout),
	}, log)

	currencyClient := currency.NewClient(&currency.Config{
		BaseURL: cfg.APIs.Currency.BaseURL,
		APIKey:  cfg.APIs.Currency.APIKey,
		Timeout: config.GetDuration(cfg.APIs.Currency.Timeout),
	}, log)

	emailSender, err := email.NewSender(ctx, &email.Config{
		Enabled:   cfg.Integrations.AWS.SES.Enabled,
		AWSRegion: cfg.Integrations.AWS.Region,
		FromEmail: cfg.Integrations.AWS.SES.FromEmail,
	}, log)
	if err != nil {
		zapLog.Fatal("email sender init failed", zap.Error(err))
	}

	zapLog.Info("All external service clients initialized")

	// --- Pipeline stages ---
	intentCfg := analyzeintent.LoadConfig()
	intentCfg.Timeout = stageTimeout(cfg, analyzeintent.StageName, intentCfg.Timeout)
	intentHandler := analyzeintent.NewHandler(intentCfg, genaiClient, log)

	findCfg := findscholarships.LoadConfig()
	findCfg.Timeout = stageTimeout(cfg, findscholarships.StageName, findCfg.Timeout)
	findHandler := findscholarships.NewHandler(findCfg, searchClient, genaiClient, log)

	scoreCfg := scoreprofile.LoadConfig()
	scoreCfg.Timeout = stageTimeout(cfg, scoreprofile.StageName, scoreCfg.Timeout)
	scoreHandler := scoreprofile.NewHandler(scoreCfg, genaiClient, log)

	financeCfg := estimatefinances.LoadConfig()
	financeCfg.Timeout = stageTimeout(cfg, estimatefinances.StageName, financeCfg.Timeout)
	financeHandler := estimatefinances.NewHandler(financeCfg, genaiClient, currencyClient, log)

	adviceCfg := synthesizeadvice.LoadConfig()
	adviceCfg.Timeout = stageTimeout(cfg, synthesizeadvice.StageName, adviceCfg.Timeout)
	adviceHandler := synthesizeadvice.NewHandler(adviceCfg, genaiClient, log)

	runner := pipeline.NewRunner(intentHandler, findHandler, scoreHandler, financeHandler, adviceHandler, log)

	// --- HTTP surface ---
	service := chat.NewService(runner, store, emailSender, obs, log)
	mux := chat.NewRouter(service, log)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      mux,
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	zapLog.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("shutdown incomplete", zap.Error(err))
	}
	zapLog.Info("Server stopped")
}

// stageTimeout honors a configured per-stage timeout, falling back to the
// stage default.
func stageTimeout(cfg *config.Config, stageName string, fallback time.Duration) time.Duration {
	stage := config.GetStageConfig(cfg, stageName)
	if stage.Timeout > 0 {
		return config.GetDuration(stage.Timeout)
	}
	return fallback
}
