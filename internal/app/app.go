package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrSnakeDoc/revisit/internal/alarm"
	"github.com/MrSnakeDoc/revisit/internal/config"
	"github.com/MrSnakeDoc/revisit/internal/httpserver"
	"github.com/MrSnakeDoc/revisit/internal/httpserver/deps"
	"github.com/MrSnakeDoc/revisit/internal/logger"
	"github.com/MrSnakeDoc/revisit/internal/matcher"
	"github.com/MrSnakeDoc/revisit/internal/notify"
	"github.com/MrSnakeDoc/revisit/internal/push"
	"github.com/MrSnakeDoc/revisit/internal/recorder"
	"github.com/MrSnakeDoc/revisit/internal/redis"
	"github.com/MrSnakeDoc/revisit/internal/router"
	"github.com/MrSnakeDoc/revisit/internal/scheduler"
	"github.com/MrSnakeDoc/revisit/internal/sources/seed"
	"github.com/MrSnakeDoc/revisit/internal/store"
	redisstore "github.com/MrSnakeDoc/revisit/internal/store/redis"
	"github.com/MrSnakeDoc/revisit/internal/version"
)

// hubNotifier delivers notifications by pushing them to connected
// frontends over the websocket hub. The frontend owns actual display.
type hubNotifier struct {
	hub *push.Hub
}

func (n *hubNotifier) Display(_ context.Context, notif notify.Notification) error {
	n.hub.Broadcast(push.Event{
		Type:    push.EventNotification,
		Payload: notif,
	})
	return nil
}

type App struct {
	cfg    *config.Config
	logger logger.Logger
	server *httpserver.Server

	store     *redisstore.Store
	hub       *push.Hub
	alarms    *alarm.Manager
	scheduler *scheduler.ReminderScheduler

	// rootCtx bounds every background worker (alarms, pub/sub, hub).
	rootCtx context.Context
	cancel  context.CancelFunc
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Initialize Redis early - fail fast if unavailable
	loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
	redisClient, err := redis.New(redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		RedisDB:        cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	loggerClient.Info("Redis initialized successfully")

	rootCtx, cancel := context.WithCancel(context.Background())

	st := redisstore.NewStore(redisClient, loggerClient)

	alarms := alarm.NewManager(rootCtx, loggerClient)
	rec := recorder.New(st, loggerClient)
	sched := scheduler.New(st, alarms, rec, loggerClient, cfg.SnoozeDelay, cfg.DailyResetAt)

	hub := push.NewHub(loggerClient)
	dispatcher := notify.NewDispatcher(st, &hubNotifier{hub: hub}, rec, sched, loggerClient)

	openPopup := func() {
		hub.Broadcast(push.Event{Type: push.EventOpenPopup})
	}

	// Cross-component hooks. Function fields rather than interfaces so
	// the event producers stay unaware of the notification layer.
	rec.FirstVisitHook = dispatcher.SiteVisited
	sched.OnReminderDue = dispatcher.ReminderDue
	dispatcher.OpenList = openPopup

	rt := router.New(loggerClient)
	handlers := &router.Handlers{
		Store:      st,
		Matcher:    matcher.New(st, loggerClient),
		Recorder:   rec,
		Scheduler:  sched,
		Dispatcher: dispatcher,
		Logger:     loggerClient,
		OpenPopup:  openPopup,
	}
	handlers.RegisterAll(rt)

	// React to store changes, whichever process instance made them:
	// settings changes re-derive the alarm set, site changes are pushed
	// to connected frontends.
	st.OnChange(store.KeySettings, func() {
		if err := sched.Reconcile(rootCtx); err != nil {
			loggerClient.Error("failed to reconcile reminders after settings change",
				logger.Error(err))
		}
	})
	st.OnChange(store.KeySites, func() {
		hub.Broadcast(push.Event{Type: push.EventSitesChanged})
	})

	d := deps.Deps{
		Logger:       loggerClient,
		StartTime:    time.Now(),
		Version:      version.Version,
		Commit:       version.Commit,
		BuildDate:    version.BuildDate,
		GoVersion:    version.GoVersion,
		Router:       rt,
		Hub:          hub,
		AllowedCIDRS: cfg.AllowedCIDRS,
		TrustProxy:   cfg.TrustProxy,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:       cfg,
		logger:    loggerClient,
		server:    server,
		store:     st,
		hub:       hub,
		alarms:    alarms,
		scheduler: sched,
		rootCtx:   rootCtx,
		cancel:    cancel,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Revisit v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Revisit %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Background workers live on the root context so they survive until
	// the shutdown sequence below, not just until the first signal.
	a.store.Start(a.rootCtx)
	go a.hub.Run(a.rootCtx)

	if a.cfg.SeedFile != "" {
		a.seedSites(a.rootCtx)
	}

	if err := a.scheduler.Start(a.rootCtx); err != nil {
		return fmt.Errorf("failed to start reminder scheduler: %w", err)
	}
	a.logger.Info("reminder scheduler started")

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		a.cancel()
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	// Tear down alarms, pub/sub subscriber and hub after the server so
	// in-flight requests keep working components until the very end.
	a.alarms.Stop()
	a.cancel()

	if err := a.store.Close(); err != nil {
		a.logger.Warnf("failed to close redis: %v", err)
	} else {
		a.logger.Info("✅ Redis closed cleanly")
	}

	a.logger.Info("✅ Revisit stopped cleanly")
	return nil
}

// seedSites imports the configured YAML seed file. Seeding failures are
// never fatal: the daemon is still fully usable without the file.
func (a *App) seedSites(ctx context.Context) {
	f, err := seed.NewLoader(a.cfg.SeedFile).Load()
	if err != nil {
		a.logger.Warn("failed to load seed file",
			logger.String("file", a.cfg.SeedFile),
			logger.Error(err))
		return
	}

	if _, err := seed.NewImporter(a.store, a.logger).Import(ctx, f); err != nil {
		a.logger.Warn("failed to import seed file",
			logger.String("file", a.cfg.SeedFile),
			logger.Error(err))
	}
}
