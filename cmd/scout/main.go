package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"PrebloomScout/internal/collector"
	"PrebloomScout/internal/config"
	"PrebloomScout/internal/directory"
	"PrebloomScout/internal/extractor"
	"PrebloomScout/internal/logger"
	"PrebloomScout/internal/metrics"
	"PrebloomScout/internal/notifier"
	"PrebloomScout/internal/recorder"
	"PrebloomScout/internal/scheduler"
	"PrebloomScout/internal/scorer"
	"PrebloomScout/internal/scout"
	"PrebloomScout/internal/validator"
)

func main() {
	_ = godotenv.Load()

	defaultPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultPath = v
	}
	cfgPath := flag.String("config", defaultPath, "config file path")
	once := flag.Bool("once", false, "run a single scan and exit")
	flag.Parse()

	// Load config
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := logger.Init(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}); err != nil {
		log.Fatal().Err(err).Msg("init logger")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	log.Info().Str("config", *cfgPath).Msg("PrebloomScout starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Directory loader with snapshot cache
	var cache directory.SnapshotCache
	switch {
	case cfg.Directory.RedisAddr != "":
		rc, err := directory.NewRedisCache(ctx, cfg.Directory.RedisAddr, cfg.Directory.RedisPassword,
			cfg.Directory.RedisDB, cfg.Directory.RedisPrefix, cfg.Directory.CacheTTL)
		if err != nil {
			log.Warn().Err(err).Msg("redis cache unavailable, falling back to file cache")
			cache = directory.NewFileCache(cfg.Directory.CacheFile, cfg.Directory.CacheTTL)
		} else {
			cache = rc
			defer rc.Close()
		}
	case cfg.Directory.CacheFile != "":
		cache = directory.NewFileCache(cfg.Directory.CacheFile, cfg.Directory.CacheTTL)
	}
	fetcher := directory.NewNasdaqTraderFetcher(cfg.Directory.NasdaqListedURL, cfg.Directory.OtherListedURL, cfg.Proxy)
	loader := directory.NewLoader(fetcher, cache)

	// Sources
	var sources []collector.Source
	for _, path := range cfg.Sources.Files {
		sources = append(sources, &collector.FileSource{Path: path})
	}
	if cfg.Sources.HTTP.BaseURL != "" {
		hs := collector.NewHTTPSource(cfg.Sources.HTTP.BaseURL, cfg.Sources.HTTP.APIKey, cfg.Proxy, cfg.Sources.Subreddits)
		hs.PageSize = cfg.Sources.HTTP.PageSize
		hs.MaxPages = cfg.Sources.HTTP.MaxPages
		sources = append(sources, hs)
	}
	for _, src := range sources {
		log.Info().Str("source", src.Name()).Msg("text source configured")
	}
	col := collector.NewCollector(sources, cfg.Sources.Subreddits)

	// Rules
	stoplist := extractor.DefaultStoplist().With(cfg.Extractor.ExtraStopwords...).Without(cfg.Extractor.AllowWords...)
	largeCaps := validator.DefaultLargeCaps
	if len(cfg.Exclusions.LargeCaps) > 0 {
		largeCaps = cfg.Exclusions.LargeCaps
	}
	keywords := validator.DefaultBiotechKeywords
	if len(cfg.Exclusions.BiotechKeywords) > 0 {
		keywords = cfg.Exclusions.BiotechKeywords
	}
	exclusions := validator.NewExclusions(largeCaps,
		!cfg.Exclusions.IncludeETFs, !cfg.Exclusions.IncludeADRs, !cfg.Exclusions.IncludeBiotech,
		keywords, validator.DefaultBiotechTags)

	// Recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	met := metrics.New(reg)
	if cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(reg))
		srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("metrics server")
			}
		}()
		defer srv.Close()
		log.Info().Str("addr", cfg.Metrics.Addr).Msg("metrics server started")
	}

	fixedNow, _, _ := cfg.FixedNow()
	svc := &scout.Service{
		Loader:     loader,
		Collector:  col,
		Extractor:  extractor.New(stoplist),
		Exclusions: exclusions,
		Scorer: scorer.New(scorer.Config{
			BaselineSpanDays: cfg.Scoring.BaselineSpanDays,
			MaxBaseline:      cfg.Scoring.MaxBaseline,
			MinRecent:        cfg.Scoring.MinRecent,
			MaxTotal:         cfg.Scoring.MaxTotal,
			MinMomentumRatio: cfg.Scoring.MinMomentumRatio,
			TopN:             cfg.Scoring.TopN,
		}),
		Recorder:         rec,
		Metrics:          met,
		CSVPath:          cfg.Report.CSVPath,
		Workers:          cfg.Run.Workers,
		EvidenceCapacity: cfg.Scoring.EvidenceCapacity,
		LookbackDays:     cfg.Run.LookbackDays,
		FixedNow:         fixedNow,
	}

	// Telegram notifier
	var tn *notifier.TelegramNotifier
	var sender scheduler.Sender
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		sender = tn
	}

	sched := scheduler.NewScheduler(ctx, svc, sender, cfg.Report.NotifyTopN)

	if *once {
		rep, err := svc.Scan(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("scan failed")
		}
		for i, e := range rep.Result.Entries {
			if i >= cfg.Report.NotifyTopN {
				break
			}
			log.Info().Int("rank", i+1).Str("ticker", e.Ticker).Int("recent", e.Recent).Int("old", e.Old).
				Float64("score", e.Score).Str("tier", e.Tier).Msg("candidate")
		}
		if sender != nil {
			if err := sender.SendWithRetry(ctx, notifier.FormatRankedReport(rep.Result, cfg.Report.NotifyTopN), 3); err != nil {
				log.Error().Err(err).Msg("send report")
			}
		}
		return
	}

	if err := sched.RegisterAll(cfg.Schedule.ScanCron); err != nil {
		log.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")
	}

	if cfg.Run.OnStart {
		log.Info().Msg("run.on_start enabled, executing scan now")
		go sched.RunNow()
	}

	log.Info().Msg("PrebloomScout is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping...")
	cancel()
}
