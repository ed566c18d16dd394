package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"garment-studio/app/controller"
	"garment-studio/app/router"
	"garment-studio/config"
	"garment-studio/customization"
	"garment-studio/db"
	"garment-studio/pricing"
	"garment-studio/repository"
	"garment-studio/service"
)

const (
	thumbnailCacheDir = "cache/images"
	assetFetchTimeout = 30 * time.Second
)

// App holds the wired HTTP handler and the background workers that need a clean stop
type App struct {
	Handler http.Handler

	cancel  context.CancelFunc
	capture *service.CaptureService
	jobs    *service.RegenerationJobs
	sweeper *service.RegenerationSweeper
}

// Initialize initializes the application
func Initialize(ctx context.Context, cfg *config.Config) (*App, error) {
	// Initialize database connection
	if err := db.InitDB(cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if err := db.Migrate(db.DB); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	// Initialize repositories
	designRepo := repository.NewDesignRepository(db.DB)
	orderRepo := repository.NewOrderCustomizationRepository(db.DB)

	fetcher := service.NewHTTPAssetFetcher(assetFetchTimeout)

	// Customization sessions, optionally priced from a local pricebook
	managerOpts := []customization.ManagerOption{customization.WithTTL(cfg.Session.TTL)}
	if cfg.Pricing.PricebookPath != "" {
		engine, err := pricing.NewEngine(cfg.Pricing.PricebookPath)
		if err != nil {
			return nil, err
		}
		managerOpts = append(managerOpts, customization.WithPricebook(engine))
	}
	sessions := customization.NewManager(fetcher, managerOpts...)

	workerCtx, cancel := context.WithCancel(ctx)
	a := &App{cancel: cancel}
	go sessions.RunJanitor(workerCtx, cfg.Session.SweepInterval)

	// Google Drive is optional unless captures are stored there
	driveService, err := initDrive(workerCtx, cfg)
	if err != nil {
		cancel()
		return nil, err
	}

	// Capture pipeline
	store, err := service.NewArtifactStore(workerCtx, cfg.Storage, cfg.App.PublicBaseURL, driveService)
	if err != nil {
		cancel()
		return nil, err
	}
	renderer, err := service.NewRenderer(cfg.Capture, fetcher)
	if err != nil {
		cancel()
		return nil, err
	}
	composer := service.NewComposer(cfg.Capture.CanvasWidth, cfg.Capture.CanvasHeight, cfg.Capture.PixelRatio)
	a.capture = service.NewCaptureService(composer, renderer, store)

	regeneration := service.NewRegenerationService(orderRepo, a.capture, cfg.Regeneration.Concurrency)
	a.jobs = service.NewRegenerationJobs(workerCtx, regeneration)
	if cfg.Regeneration.SweepCron != "" {
		a.sweeper = service.NewRegenerationSweeper(orderRepo, regeneration, cfg.Regeneration.SweepLimit)
		if err := a.sweeper.Start(workerCtx, cfg.Regeneration.SweepCron); err != nil {
			cancel()
			return nil, err
		}
	}

	// Cart hand-off
	cartService := service.NewCartService(sessions, a.capture, service.NewCartClient(cfg.Cart.ServiceURL, cfg.Cart.Timeout))

	// Design catalog
	thumbs, err := service.NewThumbnailCache(thumbnailCacheDir)
	if err != nil {
		zap.L().Warn("⚠️ Thumbnail cache disabled", zap.Error(err))
		thumbs = nil
	}
	designService := service.NewDesignService(designRepo, driveService, fetcher, thumbs)
	var syncService service.SyncServiceInterface
	if driveService != nil {
		syncService = service.NewSyncService(driveService, designRepo)
	}

	preview := service.NewChromedpRenderer(service.ChromedpConfig{
		ChromePath: cfg.Capture.ChromePath,
		Timeout:    cfg.Capture.Timeout,
	}, fetcher)

	// Create controllers
	controllers := &router.Controllers{
		Session:      controller.NewSessionController(sessions, designService, cartService),
		Design:       controller.NewDesignController(designService, syncService, cfg.Designs.DriveFolderID),
		Regeneration: controller.NewRegenerationController(regeneration, a.jobs, orderRepo, composer, preview),
		Order:        controller.NewOrderController(orderRepo),
	}
	if local, ok := store.(*service.LocalArtifactStore); ok {
		controllers.CapturesDir = local.Dir()
	}

	// Setup routes
	mux := http.NewServeMux()
	router.SetupRoutes(mux, controllers)
	a.Handler = mux

	zap.L().Info("✅ Application initialized",
		zap.String("storage", cfg.Storage.Backend),
		zap.String("renderer", cfg.Capture.Renderer),
		zap.Bool("drive", driveService != nil),
		zap.Bool("sweep", a.sweeper != nil),
	)
	return a, nil
}

// initDrive connects to Google Drive when credentials are configured or Drive storage is required
func initDrive(ctx context.Context, cfg *config.Config) (service.DriveServiceInterface, error) {
	credentialsPath := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	required := cfg.Storage.Backend == "drive"
	if credentialsPath == "" && !required && cfg.Designs.DriveFolderID == "" {
		zap.L().Info("ℹ️ Google Drive not configured, design sync disabled")
		return nil, nil
	}

	driveService, err := service.NewDriveService(ctx, credentialsPath)
	if err != nil {
		if required {
			return nil, err
		}
		zap.L().Warn("⚠️ Google Drive unavailable, design sync disabled", zap.Error(err))
		return nil, nil
	}
	return driveService, nil
}

// Shutdown stops background workers, waits for in-flight captures and closes the database
func (a *App) Shutdown(ctx context.Context) {
	if a.sweeper != nil {
		a.sweeper.Stop()
	}
	a.jobs.Wait(ctx)
	a.capture.Wait(ctx)
	a.cancel()
	if err := db.CloseDB(); err != nil {
		zap.L().Warn("⚠️ Failed to close database", zap.Error(err))
	}
}
