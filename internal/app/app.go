package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"gardenvision/internal/config"
	"gardenvision/internal/fusion"
	"gardenvision/internal/handlers"
	"gardenvision/internal/logger"
	"gardenvision/internal/repository/sqlite"
	"gardenvision/internal/routes"
	"gardenvision/internal/services"
	"gardenvision/internal/services/ai"
	"gardenvision/internal/services/cache"
	"gardenvision/internal/services/media"
	"gardenvision/internal/services/storage"
	"gardenvision/internal/services/websocket"

	"golang.org/x/sync/errgroup"
)

type App struct {
	config        *config.Config
	logger        *logger.Logger
	db            *sqlite.DB
	primary       *ai.DetectorService
	species       *ai.DetectorService
	redis         *cache.RedisService
	bufferService *storage.BufferService
	hubService    *websocket.HubService
	manager       *services.Manager
	checks        map[string]handlers.Check
}

// NewEngine builds the fusion engine from configuration. species may be nil.
func NewEngine(cfg *config.Config, primary, species fusion.Detector) (*fusion.Engine, error) {
	return fusion.NewEngine(primary, species, media.JPEGEncoder{Quality: cfg.Fusion.CropQuality},
		fusion.WithThresholds(fusion.Thresholds{
			PlantMinConfidence:   cfg.Fusion.PlantMinConfidence,
			MinIoU:               cfg.Fusion.MinIoU,
			SpeciesMinConfidence: cfg.Fusion.SpeciesMinConfidence,
		}),
		fusion.WithSpeciesWorkers(cfg.Fusion.SpeciesWorkers),
	)
}

func NewApp() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.NewLogger(cfg)

	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	primary := ai.NewDetectorService("primary", cfg.Primary, log)
	species := ai.NewDetectorService("species", cfg.Species, log)

	var speciesDetector fusion.Detector
	if species.Ready() {
		speciesDetector = species
	} else {
		log.Warning("Species model unavailable, every plant will report an unknown species")
	}

	engine, err := NewEngine(cfg, primary, speciesDetector)
	if err != nil {
		db.Close()
		return nil, err
	}

	checks := map[string]handlers.Check{
		"database": db.Ping,
		"primary_model": func(context.Context) error {
			if !primary.Ready() {
				return ai.ErrNotInitialized
			}
			return nil
		},
	}

	opts := services.ManagerOptions{
		InferenceTimeout: cfg.Fusion.InferenceTimeout,
		ArchiveWorkers:   cfg.ArchiveWorkers,
	}

	var redis *cache.RedisService
	if cfg.Redis.Enabled {
		redis = cache.NewRedisService(cfg.Redis, log)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := redis.Ping(ctx)
		cancel()
		if err != nil {
			log.Warning("Redis connection failed, cache disabled: %v", err)
			redis.Close()
			redis = nil
		} else {
			opts.Cache = redis
			checks["redis"] = redis.Ping
		}
	}

	buffer := storage.NewBufferService(cfg.ImageDirectory, cfg.ImageBufferSize, log)
	hub := websocket.NewHubService(log)
	mng := services.NewManager(engine, sqlite.NewPhotoRepository(db), sqlite.NewPlantRepository(db), buffer, hub, opts, log)

	return &App{
		config:        cfg,
		logger:        log,
		db:            db,
		primary:       primary,
		species:       species,
		redis:         redis,
		bufferService: buffer,
		hubService:    hub,
		manager:       mng,
		checks:        checks,
	}, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	router := routes.SetupRoutes(a.manager, a.hubService, a.checks, a.config, a.logger)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", a.config.Port),
		Handler:      router,
		ReadTimeout:  a.config.ReadTimeout,
		WriteTimeout: a.config.WriteTimeout,
	}

	a.logger.Info("Garden vision server on http://localhost:%d", a.config.Port)
	a.logger.Info("Images: %s, database: %s", a.config.ImageDirectory, a.config.DatabasePath)
	a.logger.Info("Primary model: %s, species model: %s", a.config.Primary.ModelPath, a.config.Species.ModelPath)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.bufferService.Run(gctx, time.Duration(a.config.FlushInterval)*time.Second)
		return nil
	})
	g.Go(func() error {
		a.hubService.Run(gctx)
		return nil
	})
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	a.Close()
	return err
}

// Close releases models, caches and the database. Pending archive writes
// are flushed first.
func (a *App) Close() {
	a.manager.Stop()
	a.bufferService.FlushImages()
	if a.redis != nil {
		a.redis.Close()
	}
	a.primary.Close()
	a.species.Close()
	if err := a.db.Close(); err != nil {
		a.logger.Error("Error closing database: %v", err)
	}
	a.logger.Sync()
}
