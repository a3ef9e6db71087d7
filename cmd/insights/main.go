package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"MarketInsights/internal/api"
	"MarketInsights/internal/collector"
	"MarketInsights/internal/config"
	"MarketInsights/internal/metrics"
	"MarketInsights/internal/model"
	"MarketInsights/internal/notifier"
	"MarketInsights/internal/scheduler"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] MarketInsights starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] %v", err)
	}
	if cfg.DataSource.APIKey == "" {
		log.Println("[WARN] no API key configured, upstream requests will be rejected")
	}
	defaultStart, err := model.ParseDate(cfg.DefaultStart)
	if err != nil {
		log.Fatalf("[FATAL] default_start: %v", err)
	}

	m := metrics.NewCollector("market_insights")

	fetcher := collector.NewFredFetcher(cfg.DataSource.BaseURL, cfg.DataSource.Timeout, cfg.Proxy)
	log.Printf("[INFO] data source: %s (%s)", fetcher.Name(), fetcher.BaseURL)
	col := collector.NewCollector(fetcher, cfg.DataSource.APIKey, m)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Report delivery
	var sender notifier.Sender = notifier.LogSender{}
	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		sender = notifier.RetrySender{Notifier: tn, MaxRetries: 3, BaseBackoff: time.Second}
	} else {
		log.Println("[INFO] Telegram not configured, reports go to the log")
	}

	sched := scheduler.NewScheduler(ctx, col, sender, m, cfg.Series, cfg.Report.LookbackDays, defaultStart)
	if err := sched.Register(cfg.Report.Cron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing report now")
		go sched.RunReportNow()
	}

	// HTTP server
	handler := api.NewSeriesHandler(col, cfg.Series, defaultStart)
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.NewRouter(handler, m),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.DataSource.Timeout + 15*time.Second,
	}
	go func() {
		log.Printf("[INFO] HTTP server listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[ERROR] HTTP server: %v", err)
			cancel()
		}
	}()

	log.Println("[INFO] MarketInsights is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Println("[INFO] shutdown signal received, stopping...")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[WARN] HTTP shutdown: %v", err)
	}
	cancel()
	log.Println("[INFO] MarketInsights stopped")
}
