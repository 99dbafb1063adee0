package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"frontierBot/internal/analysis"
	"frontierBot/internal/config"
	"frontierBot/internal/finance"
	"frontierBot/internal/logging"
	"frontierBot/internal/openai"
	"frontierBot/internal/server"
	"frontierBot/internal/storage"
	"frontierBot/internal/telegram"
)

func main() {
	cfg, err := config.Load(os.Getenv("FRONTIER_CONFIG"), "config.toml")
	if err != nil {
		boot := logging.New("info", "console", os.Stderr)
		boot.Fatal().Err(err).Msg("config")
	}
	log := logging.New(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
	if missing := cfg.ValidateBot(); len(missing) > 0 {
		log.Fatal().Str("missing", strings.Join(missing, ", ")).Msg("config incomplete")
	}
	start, end, _ := cfg.Simulation.Range()

	// Ensure parent directory for the DB exists
	_ = os.MkdirAll(filepath.Dir(cfg.Storage.DBPath), 0o755)
	db, err := storage.OpenSQLite("file:" + cfg.Storage.DBPath + "?_fk=1")
	if err != nil {
		log.Fatal().Err(err).Msg("db open")
	}
	defer db.Close()
	if err := storage.InitSchema(db); err != nil {
		log.Fatal().Err(err).Msg("db schema")
	}
	log.Info().Str("path", cfg.Storage.DBPath).Msg("usage log ready")

	httpClient := &http.Client{Timeout: cfg.Yahoo.GetTimeout()}
	if cfg.Yahoo.CacheDir != "" {
		if httpClient, err = finance.CacheClient(cfg.Yahoo.CacheDir, 24*time.Hour, cfg.Yahoo.GetTimeout()); err != nil {
			log.Fatal().Err(err).Msg("yahoo cache")
		}
	}
	prices := finance.NewClient(
		finance.WithHTTPClient(httpClient),
		finance.WithRateLimit(cfg.Yahoo.RequestsPerSecond, cfg.Yahoo.Burst),
		finance.WithConcurrency(cfg.Yahoo.Concurrency),
		finance.WithLogger(logging.Component(log, "yahoo")),
	)
	runner := analysis.NewRunner(prices, logging.Component(log, "analysis"))

	var comment telegram.Commentator
	if cfg.OpenAI.APIKey != "" {
		comment = openai.NewCommentator(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	} else {
		log.Info().Msg("OPENAI_API_KEY not set, commentary disabled")
	}

	tgLog := logging.Component(log, "telegram")
	api, err := telegram.Connect(cfg.Telegram.Token, cfg.Telegram.WebhookPublicURL, tgLog)
	if err != nil {
		log.Fatal().Err(err).Msg("telegram")
	}
	h := telegram.NewHandlers(api, storage.NewStore(db), runner, comment, telegram.FrontierDefaults{
		Start:        start,
		End:          end,
		Samples:      cfg.Simulation.Samples,
		MaxSamples:   cfg.Simulation.MaxSamples,
		RiskFreeRate: cfg.Simulation.RiskFreeRate,
	}, tgLog)
	bot := telegram.NewBot(h, tgLog)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mux := server.NewHTTPMux(bot.WebhookHandler) // registers /telegram/webhook
	if err := server.ListenAndServe(ctx, ":"+cfg.Server.Port, mux, logging.Component(log, "http")); err != nil {
		log.Error().Err(err).Msg("server error")
		os.Exit(1)
	}
}
