// @title           Pet3D Studio API
// @version         1.0.0
// @description     Backend API for turning pet photos into 3D models and selling them as 3D prints. It handles photo uploads, 3D generation through Hunyuan 3D, print orders and PayPal checkout.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"pet3d-backend/internal/config"
	"pet3d-backend/internal/database"
	"pet3d-backend/internal/handlers"
	"pet3d-backend/internal/hunyuan"
	"pet3d-backend/internal/lock"
	"pet3d-backend/internal/logging"
	"pet3d-backend/internal/middleware"
	"pet3d-backend/internal/notify"
	"pet3d-backend/internal/paypal"
	"pet3d-backend/internal/services"
	"pet3d-backend/internal/storage"
	"pet3d-backend/internal/supabase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Setup(cfg.LogLevel, cfg.LogPretty)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DatabaseDriver).Msg("failed to open database")
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}
	if err := db.SeedPrintSizes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to seed print sizes")
	}
	log.Info().Str("driver", cfg.DatabaseDriver).Msg("database ready")

	// Credentials may live in system_config instead of the environment.
	stored, err := db.LoadSystemConfig(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load system config")
	}
	cfg.ApplySystemConfig(stored)
	if err := cfg.ValidateProviders(); err != nil {
		log.Fatal().Err(err).Msg("provider credentials missing")
	}

	generator, err := hunyuan.NewClient(hunyuan.Options{
		Endpoint:     cfg.HunyuanEndpoint,
		Region:       cfg.HunyuanRegion,
		SecretID:     cfg.HunyuanSecretID,
		SecretKey:    cfg.HunyuanSecretKey,
		GenerateType: cfg.HunyuanGenerateType,
		Timeout:      cfg.ProviderTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize Hunyuan client")
	}

	payments := paypal.NewClient(paypal.Options{
		BaseURL:      cfg.PayPalAPIBaseURL(),
		ClientID:     cfg.PayPalClientID,
		ClientSecret: cfg.PayPalClientSecret,
		BrandName:    cfg.PayPalBrandName,
		Currency:     cfg.PayPalCurrency,
		Timeout:      cfg.ProviderTimeout,
	})

	var supabaseClient *supabase.Client
	if cfg.SupabaseURL != "" && cfg.SupabasePublishableKey != "" {
		supabaseClient, err = supabase.NewClient(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize Supabase client")
		}
	}

	store, err := newAssetStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.AssetBackend).Msg("failed to initialize asset store")
	}

	var (
		locker  lock.Locker = lock.NewLocalLocker()
		limiter middleware.Limiter
	)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("failed to reach redis")
		}
		rl, err := lock.NewRedisLocker(rdb, "pet3d:lock", 5*time.Minute)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize redis locker")
		}
		locker = rl
		limiter = middleware.NewRedisLimiter(rdb, "pet3d:rl", cfg.StatusPollsPerMinute)
		log.Info().Str("addr", cfg.RedisAddr).Msg("using redis for locks and rate limits")
	} else {
		limiter = middleware.NewLocalLimiter(cfg.StatusPollsPerMinute)
	}

	dispatcher := notify.NewDispatcher(newOperatorNotifier(cfg, supabaseClient), 10*time.Second)

	router := handlers.NewRouter(handlers.RouterConfig{
		JWTSecret:      cfg.SupabaseJWTSecret,
		CORSOrigins:    cfg.CORSAllowedOrigins,
		MaxUploadBytes: cfg.UploadMaxBytes,
		StatusLimiter:  limiter,
		Users:          services.NewUserService(db),
		Images:         services.NewImageService(db, store, cfg.UploadMaxBytes),
		Models:         services.NewModelService(db, generator, store, locker),
		PrintSizes:     services.NewPrintSizeService(db),
		Orders:         services.NewOrderService(db, locker, dispatcher),
		Payments:       services.NewPaymentService(db, payments, locker, dispatcher),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("environment", cfg.Environment).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	dispatcher.Wait()
}

func newAssetStore(cfg *config.Config) (services.AssetStore, error) {
	if cfg.AssetBackend == "s3" {
		return storage.NewS3Store(storage.Config{
			Endpoint:      cfg.S3Endpoint,
			Region:        cfg.S3Region,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			Bucket:        cfg.S3Bucket,
			PublicBaseURL: cfg.S3PublicBaseURL,
			UsePathStyle:  cfg.S3UsePathStyle,
		})
	}
	return supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabasePublishableKey, cfg.SupabaseStorageBucket)
}

// newOperatorNotifier fans out to every configured channel. The log channel is
// always on.
func newOperatorNotifier(cfg *config.Config, sb *supabase.Client) notify.Notifier {
	channels := notify.Multi{notify.LogNotifier{}}
	if cfg.TelegramBotToken != "" && cfg.TelegramOperatorChatID != 0 {
		tg, err := notify.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramOperatorChatID)
		if err != nil {
			log.Warn().Err(err).Msg("telegram notifications disabled")
		} else {
			channels = append(channels, tg)
		}
	}
	if sb != nil {
		channels = append(channels, supabase.NewNotificationSink(sb, cfg.NotificationsTable))
	}
	return channels
}
