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

	zlog "github.com/rs/zerolog/log"

	"github.com/tixflow/listing-service/internal/application/draft"
	"github.com/tixflow/listing-service/internal/application/payment"
	"github.com/tixflow/listing-service/internal/application/upload"
	"github.com/tixflow/listing-service/internal/application/wizard"
	"github.com/tixflow/listing-service/internal/config"
	"github.com/tixflow/listing-service/internal/domain"
	redisc "github.com/tixflow/listing-service/internal/infrastructure/caching/redis"
	"github.com/tixflow/listing-service/internal/infrastructure/gateway"
	"github.com/tixflow/listing-service/internal/infrastructure/memory"
	rabbitpub "github.com/tixflow/listing-service/internal/infrastructure/messaging/rabbitmq"
	"github.com/tixflow/listing-service/internal/infrastructure/storage"
	"github.com/tixflow/listing-service/internal/logger"
	"github.com/tixflow/listing-service/internal/tracing"
	"github.com/tixflow/listing-service/internal/transport/http/handlers"
	"github.com/tixflow/listing-service/internal/transport/http/router"
)

var version = "dev"

// App holds all dependencies for the service
type App struct {
	Config *config.Config
	Server *http.Server
	Wizard *wizard.Service

	Redis     *redisc.Client
	Publisher *rabbitpub.Publisher
	Tracer    *tracing.TracerProvider
}

func main() {
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := NewApp(ctx, cfg)
	if err != nil {
		zlog.Fatal().Err(err).Msg("app init failed")
	}

	go app.Wizard.RunJanitor(ctx, time.Minute, cfg.SessionIdleTTL)

	go func() {
		zlog.Info().Str("addr", cfg.HTTPAddr).Str("env", cfg.AppEnv).Msg("listening")
		if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal().Err(err).Msg("server crashed")
		}
	}()

	<-ctx.Done()
	zlog.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Err(err).Msg("http shutdown failed")
	}
	app.Close(shutdownCtx)
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{Config: cfg}

	// 1) Tracing
	tp, err := tracing.Init(ctx, tracing.Config{
		ServiceName:    router.ServiceName,
		ServiceVersion: version,
		OTLPEndpoint:   cfg.OTELEndpoint,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, err
	}
	app.Tracer = tp

	// 2) Infrastructure
	var kv interface {
		draft.KV
		gateway.ByteCache
	}
	var checkers []handlers.ReadinessChecker
	if cfg.RedisURL != "" {
		rc, err := redisc.New(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		app.Redis = rc
		kv = rc
		checkers = append(checkers, handlers.NewPingChecker("redis", rc.Ping))
		zlog.Info().Msg("redis draft store ready")
	} else {
		kv = memory.NewKV()
		zlog.Warn().Msg("REDIS_URL empty: drafts are kept in memory and lost on restart")
	}

	var objects upload.ObjectStore
	if cfg.S3Bucket != "" {
		s3c, err := storage.NewS3Client(cfg, logger.Log)
		if err != nil {
			return nil, err
		}
		if cfg.AppEnv == "dev" {
			if err := s3c.EnsureBucket(ctx); err != nil {
				zlog.Warn().Err(err).Str("bucket", cfg.S3Bucket).Msg("bucket check failed")
			}
		}
		objects = s3c
		checkers = append(checkers, handlers.NewPingChecker("s3", s3c.Ping))
	} else {
		base := cfg.CDNBaseURL
		if base == "" {
			base = "memory://objects"
		}
		objects = memory.NewObjectStore(base)
		zlog.Warn().Msg("S3_BUCKET empty: uploads are kept in memory and not served")
	}

	var publisher payment.Publisher
	if cfg.RabbitURL != "" {
		p, err := rabbitpub.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			return nil, err
		}
		app.Publisher = p
		publisher = p
		checkers = append(checkers, handlers.NewPingChecker("rabbitmq", p.Ping))
		zlog.Info().Str("exchange", cfg.RabbitExchange).Msg("rabbit publisher ready")
	} else {
		zlog.Warn().Msg("RABBIT_URL empty: listing.paid events will not be published")
	}

	remote := gateway.NewClient(cfg.APIBaseURL, cfg.GatewayTimeout)
	events := gateway.NewCachedEvents(remote, kv, cfg.EventsCacheTTL)

	// 3) Application
	svc := wizard.NewService(draft.NewStore(kv, cfg.DraftTTL), remote, wizard.Options{
		Keys: domain.DefaultDraftKeys(),
		Fees: wizard.FeeSchedule{
			HighPriceThreshold: cfg.FeeHighThreshold,
			HighFee:            cfg.FeeHigh,
			NormalFee:          cfg.FeeNormal,
		},
		Autosave: cfg.AutosaveInterval,
		Events:   events,
	})
	app.Wizard = svc

	gate := upload.NewGate(objects, upload.Options{
		MaxBytes:     cfg.UploadMaxBytes,
		AllowedTypes: cfg.UploadAllowedMIME,
		Prefix:       cfg.UploadObjectPrefix,
	})

	if cfg.PaymentAllowedOrigin == "" {
		zlog.Warn().Msg("PAYMENT_ALLOWED_ORIGIN empty: every payment message will be dropped")
	}
	listener := payment.NewListener(cfg.PaymentAllowedOrigin, payment.NewHub(), svc, publisher)

	// 4) Transport
	httpHandler := router.New(router.Handlers{
		Wizard:  handlers.NewWizardHandler(svc),
		Payment: handlers.NewPaymentHandler(listener),
		Upload:  handlers.NewUploadHandler(gate, cfg.UploadMaxBytes),
		Catalog: handlers.NewCatalogHandler(events, remote),
		Auth:    handlers.NewAuthHandler(remote, svc),
		Health:  handlers.NewHealthHandler(checkers...),
	}, cfg)

	// 5) Server
	app.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpHandler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	return app, nil
}

// Close flushes pending autosaves before the backends go away.
func (a *App) Close(ctx context.Context) {
	if a.Wizard != nil {
		a.Wizard.Close(ctx)
	}
	if a.Publisher != nil {
		_ = a.Publisher.Close()
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.Tracer != nil {
		if err := a.Tracer.Shutdown(ctx); err != nil {
			zlog.Warn().Err(err).Msg("tracer shutdown failed")
		}
	}
}
