package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sahilchouksey/career-guidance-api/api"
	"github.com/sahilchouksey/career-guidance-api/config"
	"github.com/sahilchouksey/career-guidance-api/database"
	"github.com/sahilchouksey/career-guidance-api/router"
	"github.com/sahilchouksey/career-guidance-api/services"
	"github.com/sahilchouksey/career-guidance-api/services/cron"
	"github.com/sahilchouksey/career-guidance-api/services/storage"
	"github.com/sahilchouksey/career-guidance-api/utils"
	"github.com/sahilchouksey/career-guidance-api/utils/cache"
)

const shutdownTimeout = 15 * time.Second

// LoadConfig loads .env (outside production), parses the environment and
// configures the global logger.
func LoadConfig() (*config.EnvironmentVariable, error) {
	if err := config.LoadENV(); err != nil {
		return nil, err
	}

	getEnv, err := config.Get()
	if err != nil {
		return nil, err
	}

	utils.SetupLogger(getEnv.LOG_LEVEL, getEnv.LOG_FORMAT)
	return getEnv, nil
}

func SetupAndRunServer() error {
	getEnv, err := LoadConfig()
	if err != nil {
		return err
	}
	if err := getEnv.ValidateServer(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect and bootstrap. Outside production a failure stops the process here.
	store, err := database.NewStoreFromConfig(getEnv, true)
	if err != nil {
		return err
	}
	if err := store.Start(ctx); err != nil {
		log.Error().Msg("check that the database is running and the DB_* / DATABASE_URL variables are correct")
		return err
	}

	var redisCache *cache.RedisCache
	if getEnv.REDIS_URL != "" {
		redisCache, err = cache.NewRedisCache(getEnv.REDIS_URL)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, caching and brute force protection disabled")
			redisCache = nil
		}
	}

	var objects storage.ObjectStore
	if getEnv.SpacesConfigured() {
		spacesConfig, err := storage.ConfigFromEnv(getEnv)
		if err != nil {
			return err
		}
		client, err := storage.NewSpacesClient(spacesConfig)
		if err != nil {
			return fmt.Errorf("failed to create object storage client: %w", err)
		}
		objects = client
	} else {
		log.Info().Msg("object storage not configured, document uploads and exports disabled")
	}

	// Initialize Cron Manager (only if enabled via environment variable)
	var cronManager *cron.CronManager
	if getEnv.CRON_ENABLED {
		cronManager = cron.NewCronManager(store, cron.Options{
			ExportSchedule: getEnv.EXPORT_CRON,
			Exporter:       services.NewExportService(store, objects),
		})
		if err := cronManager.Start(); err != nil {
			// Don't fail the app, just log the warning
			log.Warn().Err(err).Msg("failed to start cron jobs")
			cronManager = nil
		}
	}

	// Defer Closing DB and stopping cron jobs
	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		if redisCache != nil {
			redisCache.Close()
		}
		if err := store.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close database")
		}
	}()

	server := api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT))
	router.SetupRoutes(server.GetEngine(), router.Dependencies{
		Config:  getEnv,
		Store:   store,
		Cache:   redisCache,
		Objects: objects,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
