// Package app wires the amoeba trading daemon together: pattern memory,
// food source assessment, market feed, realtime streams and the HTTP API.
package app

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"amoeba-trading/api"
	"amoeba-trading/cache"
	"amoeba-trading/config"
	"amoeba-trading/database"
	"amoeba-trading/feed"
	"amoeba-trading/intelligence"
	"amoeba-trading/memory"
	"amoeba-trading/notifications"
	"amoeba-trading/realtime"
	"amoeba-trading/websocket"
)

// App holds the assembled application components.
type App struct {
	cfg *config.Config

	bank     *memory.Bank
	learner  *memory.Learner
	assessor *intelligence.Assessor

	redis    *cache.RedisClient
	db       *database.Database
	repo     *database.SignalRepository
	notifier *notifications.WebhookManager
	broker   *realtime.Broker
	hub      *websocket.Hub
	feed     *feed.MarketFeed
	server   *api.Server
}

// New assembles the application from configuration. Redis and the database
// are optional; the daemon runs on in-memory state alone when they are
// unavailable.
func New(cfg *config.Config) *App {
	a := &App{cfg: cfg}

	a.bank = memory.NewBank(memory.Options{
		SweepInterval:       cfg.Memory.SweepInterval(),
		LearningRate:        cfg.Memory.LearningRate,
		SimilarityThreshold: cfg.Memory.SimilarityThreshold,
		QueryLimit:          cfg.Memory.QueryLimit,
		BlendLimit:          cfg.Memory.BlendLimit,
		BaseWeight:          cfg.Memory.BaseWeight,
		HistoryWeight:       cfg.Memory.HistoryWeight,
	})
	a.learner = memory.NewLearner(a.bank)
	a.assessor = intelligence.NewAssessor()

	a.redis = cache.NewRedisClient(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)

	if cfg.DatabaseEnabled {
		db, err := database.Connect(cfg.DatabaseHost, cfg.DatabasePort,
			cfg.DatabaseName, cfg.DatabaseUser, cfg.DatabasePassword)
		if err != nil {
			log.Printf("⚠️  Signal audit log disabled: %v", err)
		} else {
			a.db = db
			a.repo = database.NewSignalRepository(db)
			if err := a.repo.InitSchema(); err != nil {
				log.Printf("⚠️  Audit log schema migration failed: %v", err)
				a.repo = nil
			}
		}
	}

	a.notifier = notifications.NewWebhookManager(cfg.NotifyURLs, a.redis)
	a.broker = realtime.NewBroker()
	a.hub = websocket.NewHub()

	if cfg.Feed.Enabled {
		a.feed = feed.New(cfg.Feed.Symbols, time.Duration(cfg.Feed.IntervalSeconds)*time.Second,
			a.assessor, a.learner, a.broker, a.hub, a.notifier, a.redis, a.repo)
	}

	a.server = api.NewServer(a.learner, a.assessor, a.notifier, a.broker,
		a.hub, a.repo, cfg.WebhookSecret)

	return a
}

// Start runs the daemon until an interrupt or termination signal arrives.
func (a *App) Start() {
	log.Println("🦠 Amoeba trading daemon starting")

	go a.broker.Run()

	if a.feed != nil {
		go a.feed.Start()
	}

	go func() {
		if err := a.server.Start(a.cfg.HTTPPort); err != nil {
			log.Fatalf("❌ API server failed: %v", err)
		}
	}()

	a.waitForShutdown()
}

// waitForShutdown blocks on SIGINT/SIGTERM and then tears components down.
func (a *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutdown signal received")

	if a.feed != nil {
		a.feed.Stop()
	}
	a.broker.Stop()
	a.hub.Stop()

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.Printf("⚠️  Redis close failed: %v", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			log.Printf("⚠️  Database close failed: %v", err)
		}
	}

	log.Println("👋 Amoeba trading daemon stopped")
}
