// Package main provides the entry point and command line of the countdown contest service
//
// @title Countdown Contest API
// @version 1.0
// @description Sponsor campaigns with a countdown, a secret code revealed at the deadline and a single winner.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amirphl/countdown-contest/app/handlers"
	"github.com/amirphl/countdown-contest/app/middleware"
	"github.com/amirphl/countdown-contest/app/router"
	"github.com/amirphl/countdown-contest/app/scheduler"
	"github.com/amirphl/countdown-contest/app/services"
	businessflow "github.com/amirphl/countdown-contest/business_flow"
	"github.com/amirphl/countdown-contest/config"
	"github.com/amirphl/countdown-contest/repository"
	"github.com/amirphl/countdown-contest/utils"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Application represents the main application structure
type Application struct {
	router    router.Router
	config    *config.ProductionConfig
	flows     *flows
	stopFuncs []func()
}

// flows holds the business flows shared by the HTTP server and the CLI
type flows struct {
	campaign      businessflow.CampaignFlow
	winner        businessflow.WinnerFlow
	adminCampaign businessflow.AdminCampaignFlow
	adminAuth     businessflow.AdminAuthFlow
	export        businessflow.WinnerExportFlow
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "countdown-contest",
		Short:         "Sponsor countdown campaigns with a single winner",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newAdminCommand(),
		newSeedCommand(),
		newExportWinnersCommand(),
	)
	return root
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadProductionConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(parent context.Context, cfg *config.ProductionConfig) error {
	closeLog := setupLogging(cfg.Logging)
	defer closeLog()

	log.Println("Starting countdown contest application...")

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	app, err := initializeApplication(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	app.router.SetupRoutes()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		serverErr <- app.router.Start(address)
	}()

	select {
	case <-sigChan:
		log.Println("Shutting down gracefully...")
	case err := <-serverErr:
		if err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}

	for _, fn := range app.stopFuncs {
		fn()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.router.GetApp().ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
	return nil
}

func initializeApplication(ctx context.Context, cfg *config.ProductionConfig) (*Application, error) {
	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	rdb, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}

	app := &Application{config: cfg}
	if rdb != nil {
		app.stopFuncs = append(app.stopFuncs, startCacheHealthMonitor(ctx, rdb, 30*time.Second))
	}

	f, tokenService, err := buildFlows(ctx, cfg, db, rdb)
	if err != nil {
		return nil, err
	}
	app.flows = f

	if cfg.Export.Enabled {
		exportScheduler := scheduler.NewWinnerExportScheduler(f.export, scheduler.NewRedisLocker(rdb), cfg.Export.Interval)
		stop, err := exportScheduler.Start(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to start export scheduler: %w", err)
		}
		app.stopFuncs = append(app.stopFuncs, stop)
	}

	app.router = router.NewFiberRouter(cfg, router.Handlers{
		Campaign:      handlers.NewCampaignHandler(f.campaign),
		CampaignAdmin: handlers.NewCampaignAdminHandler(f.adminCampaign, f.export),
		Winner:        handlers.NewWinnerHandler(f.winner),
		Stats:         handlers.NewStatsHandler(f.campaign),
		AdminAuth:     handlers.NewAdminHandler(f.adminAuth),
	}, middleware.NewAuthMiddleware(tokenService))

	return app, nil
}

// buildFlows wires repositories and services into the business flows.
// rdb may be nil, in which case in-memory stores are used and claim throttling is off.
func buildFlows(ctx context.Context, cfg *config.ProductionConfig, db *gorm.DB, rdb *redis.Client) (*flows, services.TokenService, error) {
	campaignRepo := repository.NewCampaignRepository(db)
	winnerRepo := repository.NewWinnerRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	txRunner := repository.NewTransactionRunner(db)

	var (
		revocations    services.RevocationStore
		challengeStore services.ChallengeStore
	)
	if rdb != nil {
		revocations = services.NewRedisRevocationStore(rdb)
		challengeStore = services.NewRedisChallengeStore(rdb)
	} else {
		log.Println("Redis disabled: using in-memory token revocation and captcha stores")
		revocations = services.NewMemoryRevocationStore()
		challengeStore = services.NewMemoryChallengeStore()
	}

	tokenService, err := services.NewTokenService(
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.UseRSAKeys,
		cfg.JWT.PrivateKey,
		cfg.JWT.PublicKey,
		cfg.JWT.SecretKey,
		revocations,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	captchaSvc, err := services.NewCaptchaServiceRotate(
		challengeStore,
		cfg.Contest.CaptchaTTL,
		cfg.Contest.CaptchaPadding,
		cfg.Contest.CaptchaImageSize,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize captcha service: %w", err)
	}

	var storage services.ObjectStorage
	if cfg.Storage.Enabled() {
		storage, err = services.NewS3ObjectStorage(ctx, services.ObjectStorageConfig{
			Endpoint:        cfg.Storage.Endpoint,
			Region:          cfg.Storage.Region,
			Bucket:          cfg.Storage.Bucket,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			PublicBaseURL:   cfg.Storage.PublicBaseURL,
			UsePathStyle:    cfg.Storage.UsePathStyle,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize object storage: %w", err)
		}
	}

	clock := utils.SystemClock{}
	window := cfg.Contest.ClaimWindowAfterReveal
	throttle := services.NewRedisClaimThrottle(rdb, cfg.Contest.ClaimAttemptLimit, cfg.Contest.ClaimAttemptWindow)

	return &flows{
		campaign:      businessflow.NewCampaignFlow(campaignRepo, winnerRepo, clock, window),
		winner:        businessflow.NewWinnerFlow(campaignRepo, winnerRepo, auditRepo, txRunner, throttle, clock, window, middleware.ObserveClaim),
		adminCampaign: businessflow.NewAdminCampaignFlow(campaignRepo, winnerRepo, auditRepo, clock, window),
		adminAuth:     businessflow.NewAdminAuthFlow(adminRepo, auditRepo, tokenService, captchaSvc, cfg.JWT.AccessTokenTTL),
		export:        businessflow.NewWinnerExportFlow(winnerRepo, auditRepo, storage, clock),
	}, tokenService, nil
}

// setupLogging points the standard logger at stdout, a rotating file, or both.
// The returned function closes the file.
func setupLogging(cfg config.LoggingConfig) func() {
	log.SetFlags(log.LstdFlags | log.LUTC)

	if cfg.Output != "file" && cfg.Output != "both" {
		log.SetOutput(os.Stdout)
		return func() {}
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	var w io.Writer = rotator
	if cfg.Output == "both" {
		w = io.MultiWriter(os.Stdout, rotator)
	}
	log.SetOutput(w)

	return func() {
		log.SetOutput(os.Stdout)
		_ = rotator.Close()
	}
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.New(log.Default(), gormlogger.Config{
			SlowThreshold:             cfg.SlowQueryTime,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		NowFunc:        utils.UTCNow,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// initializeCache initializes the Redis client and verifies connectivity
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established (db=%d)", opt.DB)
	return rc, nil
}

// startCacheHealthMonitor periodically pings Redis. The returned function stops it.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Printf("Redis healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}
