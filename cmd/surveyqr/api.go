package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/orafadelg/surveyqr/internal/api"
	"github.com/orafadelg/surveyqr/internal/keyring"
	"github.com/orafadelg/surveyqr/internal/logger"
	"github.com/orafadelg/surveyqr/internal/notify"
	"github.com/orafadelg/surveyqr/internal/qr"
	workerpool "github.com/orafadelg/surveyqr/internal/worker"
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long:  `Start the surveyqr API server to build signed survey links and serve QR images.`,
	Run:   runAPIServer,
}

func runAPIServer(cmd *cobra.Command, args []string) {
	logger, err := logger.InitForAPI(cfg.App.LogLevel, true)
	if err != nil {
		fmt.Println("Failed to initialize logger:", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Redis backs the render cache and batch job results. The server still
	// works without it, just slower and without persisted job output.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Warn("Redis unreachable, running without render cache",
			zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		redisClient = nil
	} else {
		logger.Info("Connected to Redis successfully", zap.String("addr", cfg.Redis.Addr))
	}

	// Per-store signing keys come from Postgres when configured, otherwise
	// every store shares the static secret.
	var keys keyring.Keyring = keyring.NewStatic(cfg.Survey.SigningSecret)
	if cfg.Survey.DatabaseURL != "" {
		registry, err := keyring.Open(cfg.Survey.DatabaseURL)
		if err != nil {
			logger.Fatal("Failed to open key registry", zap.Error(err))
		}
		defer registry.Close()
		keys = registry
		logger.Info("Using Postgres key registry")
	}

	var onBatchDone api.BatchCallback
	if cfg.Telegram.BotToken != "" {
		telegramTransport := &http.Transport{}
		if proxyURL := cfg.Telegram.ProxyURL; proxyURL != "" {
			proxy, err := url.Parse(proxyURL)
			if err != nil {
				logger.Fatal("Failed to parse proxy URL", zap.Error(err))
			}
			telegramTransport.Proxy = http.ProxyURL(proxy)
		}

		telegram := notify.NewTelegram(
			cfg.Telegram.BotToken,
			cfg.Telegram.Channel,
			cfg.Telegram.Template,
			&http.Client{
				Timeout:   10 * time.Second,
				Transport: telegramTransport,
			},
		)

		tgLimiter := rate.NewLimiter(rate.Every(cfg.Telegram.SendingInterval), 1)

		onBatchDone = func(summary notify.BatchSummary, samplePNG []byte) {
			go func() {
				if err := tgLimiter.Wait(context.Background()); err != nil {
					logger.Error("Rate limit error", zap.Error(err))
					return
				}

				var sendErr error
				if samplePNG != nil {
					sendErr = telegram.SendQRCode(summary, samplePNG)
				} else {
					sendErr = telegram.SendSummary(summary)
				}
				if sendErr != nil {
					logger.Error("Failed to send Telegram notification", zap.Error(sendErr))
				}
			}()
		}
	}

	handler := api.NewHandler(api.HandlerOpts{
		Keyring: keys,
		QR:      qr.NewGenerator(cfg.QR.BoxSize),
		Redis:   redisClient,
		Pool: workerpool.NewPool(workerpool.Config{
			WorkerCount:   cfg.Worker.Count,
			TaskQueueSize: cfg.Worker.QueueSize,
		}),
		Logger: logger,
		Defaults: api.Defaults{
			Domain:     cfg.Survey.Domain,
			SurveyCode: cfg.Survey.SurveyCode,
			Timestamp:  cfg.Survey.IncludeTimestamp,
		},
		Version: api.VersionInfo{
			Version:   version,
			Commit:    commit,
			Date:      date,
			GoVersion: goVersion,
			Platform:  platform,
		},
		CacheTTL:    cfg.Redis.CacheTTL,
		OnBatchDone: onBatchDone,
	})
	defer handler.Close()

	router := api.NewRouter(handler)

	serverAddr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("Server starting",
			zap.String("address", server.Addr),
			zap.Duration("read_timeout", cfg.Server.ReadTimeout),
			zap.Duration("write_timeout", cfg.Server.WriteTimeout),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}
}
