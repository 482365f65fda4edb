// Package main runs the troop portal HTTP server with WebSocket sync progress and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/troop78/troophub/config"
	"github.com/troop78/troophub/internal/archivesync"
	"github.com/troop78/troophub/internal/blasts"
	"github.com/troop78/troophub/internal/realtime"
	"github.com/troop78/troophub/internal/store"
	"github.com/troop78/troophub/internal/viewas"
	"github.com/troop78/troophub/internal/worker"
	"github.com/troop78/troophub/pkg/queue"
	"github.com/troop78/troophub/pkg/redis"
	"github.com/troop78/troophub/pkg/validation"
)

const memoryQueueSize = 256

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	if err := validation.RegisterGin(); err != nil {
		logger.Fatal("register validators", zap.Error(err))
	}

	var s *store.Store
	if cfg.Fixtures.Path != "" {
		s, err = store.Load(cfg.Fixtures.Path)
	} else {
		s, err = store.LoadEmbedded()
	}
	if err != nil {
		logger.Fatal("load fixtures", zap.Error(err))
	}

	schedule, err := cfg.Troop.Schedule()
	if err != nil {
		logger.Fatal("meeting schedule", zap.Error(err))
	}

	ctx := context.Background()
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	// Without Redis everything runs in-process: a memory queue, delivery logs in the
	// store and a local WebSocket hub. With Redis, cmd/worker drains the queue.
	var (
		jobQueue queue.JobQueue
		recorder blasts.DeliveryRecorder
		hub      *realtime.Hub
	)
	if cfg.Redis.Enabled() {
		rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			logger.Fatal("redis", zap.Error(err))
		}
		defer rdb.Close()

		jobQueue = queue.NewQueue(rdb.Client, logger)
		recorder = blasts.NewRedisRecorder(rdb.Client)
		redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
		hub = realtime.NewHub(logger, redisPubSub, redisPubSub)
	} else {
		memQueue := queue.NewMemoryQueue(memoryQueueSize, logger)
		jobQueue = memQueue
		recorder = blasts.NewStoreRecorder(s)
		hub = realtime.NewHub(logger, nil, nil)

		processor := worker.NewBlastDeliveryProcessor(memQueue, recorder, logger)
		go processor.Run(workerCtx)
		logger.Info("in-process blast worker started")
	}

	tokens := viewas.NewTokenService(cfg.ViewAs.Secret, cfg.ViewAs.ExpireHours)
	manager := archivesync.NewManager(archivesync.DefaultScript(archivesync.DefaultFiles), cfg.Sync.Speed, hub, logger)

	router := newRouter(deps{
		store:    s,
		tokens:   tokens,
		queue:    jobQueue,
		recorder: recorder,
		hub:      hub,
		manager:  manager,
		schedule: schedule,
		meetings: cfg.Troop.MeetingsShown,
		origins:  cfg.Server.Origins(),
		logger:   logger,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port), zap.Bool("redis", cfg.Redis.Enabled()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	manager.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
