package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/redis/go-redis/v9"

	"github.com/shenikar/city_emergency_response/internal/config"
	"github.com/shenikar/city_emergency_response/internal/datamanager"
	"github.com/shenikar/city_emergency_response/internal/decision"
	"github.com/shenikar/city_emergency_response/internal/environment"
	v1 "github.com/shenikar/city_emergency_response/internal/handler/http/v1"
	"github.com/shenikar/city_emergency_response/internal/ledger"
	"github.com/shenikar/city_emergency_response/internal/models"
	"github.com/shenikar/city_emergency_response/internal/repository"
	"github.com/shenikar/city_emergency_response/internal/service"
	"github.com/shenikar/city_emergency_response/internal/unit"
	"github.com/shenikar/city_emergency_response/internal/webhook"
	"github.com/shenikar/city_emergency_response/pkg/logger"
	"github.com/shenikar/city_emergency_response/pkg/postgres"
	redisclient "github.com/shenikar/city_emergency_response/pkg/redis"
	"github.com/sirupsen/logrus"

	_ "github.com/shenikar/city_emergency_response/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// unitHomes - здания, в которых стартуют подразделения каждой специализации
var unitHomes = map[models.UnitType]models.BuildingType{
	models.UnitMedical:    models.BuildingHospital,
	models.UnitRescue:     models.BuildingFireStation,
	models.UnitSecurity:   models.BuildingPoliceStation,
	models.UnitMonitoring: models.BuildingFireStation,
	models.UnitTraffic:    models.BuildingPoliceStation,
}

// @title City Emergency Response API
// @version 1.0
// @description Drives and observes a simulated city emergency response exercise.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func runMigrations(cfg *config.Config, log *logrus.Logger) error {
	log.Info("Running database migrations...")

	migrationURL := cfg.DatabaseURL
	if !strings.HasPrefix(migrationURL, "pgx5://") {
		migrationURL = strings.Replace(migrationURL, "postgres://", "pgx5://", 1)
	}

	m, err := migrate.New("file://migrations", migrationURL)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database migrations applied successfully")
	return nil
}

// newUnits создает по одному подразделению на специализацию у его базового здания
func newUnits(env *environment.Environment, d decision.Decider, cfg *config.Config, log *logrus.Logger) ([]*unit.Unit, error) {
	ucfg := unit.Config{MaxRetries: cfg.StepMaxRetries, RetryDelay: cfg.StepRetryDelay}
	units := make([]*unit.Unit, 0, len(models.UnitTypes))
	for _, typ := range models.UnitTypes {
		home := models.Location{X: float64(cfg.CityWidth) / 2, Y: float64(cfg.CityHeight) / 2}
		if b := env.Buildings(unitHomes[typ]); len(b) > 0 {
			home = b[0].Location
		}
		u, err := unit.New(string(typ)+"_1", typ, home, env, d, ucfg, log)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, nil
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	log := logger.New(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Артефакты прогонов хранятся в PostgreSQL, если он настроен, иначе в памяти
	var store service.ArtifactStore
	if cfg.DatabaseURL != "" {
		if err := runMigrations(cfg, log); err != nil {
			log.Fatalf("Failed to run database migrations: %v", err)
		}
		dbpool, err := postgres.NewPostgresDB(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
		defer dbpool.Close()
		log.Info("Successfully connected to PostgreSQL")
		store = repository.NewArtifactRepository(dbpool)
	} else {
		log.Warn("DATABASE_URL is not set. Run artifacts are kept in memory")
		store = repository.NewMemoryStore()
	}

	// Redis: кэш снимков состояния и очередь вебхуков
	var (
		snapshotCache datamanager.SnapshotCache
		publisher     webhook.ResultPublisher
		workerDone    <-chan struct{}
		redisClient   *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient, err = redisclient.NewRedisClient(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		log.Info("Successfully connected to Redis")

		snapshotCache = repository.NewSnapshotCache(redisClient, cfg.SnapshotTTL)
		publisher = webhook.NewRedisResultPublisher(redisClient)
		workerDone = webhook.NewWorker(redisClient, log, cfg).Start(ctx)
	} else {
		log.Warn("REDIS_ADDR is not set. Snapshot cache and webhooks are disabled")
	}

	env, err := environment.New(environment.Config{
		Width:        cfg.CityWidth,
		Height:       cfg.CityHeight,
		Seed:         cfg.SimSeed,
		TrafficDecay: cfg.TrafficDecay,
		BundlePolicy: ledger.ParseBundlePolicy(cfg.BundlePolicy),
	}, log)
	if err != nil {
		log.Fatalf("Failed to build environment: %v", err)
	}
	env.Start()
	defer env.Stop()

	var decider decision.Decider = decision.NewRuleBased()
	if cfg.DecisionURL != "" {
		decider = decision.NewHTTPClient(cfg.DecisionURL, cfg.DecisionSecret, cfg.DecisionTimeout, log)
		log.WithField("url", cfg.DecisionURL).Info("Using remote decision service")
	}

	units, err := newUnits(env, decider, cfg, log)
	if err != nil {
		log.Fatalf("Failed to create units: %v", err)
	}

	exerciseService, err := service.NewExerciseService(env, units, decider, datamanager.New(snapshotCache, log), store, publisher, cfg, log)
	if err != nil {
		log.Fatalf("Failed to create exercise service: %v", err)
	}

	if cfg.ScenarioFile != "" {
		reqs, err := service.LoadScenarios(cfg.ScenarioFile)
		if err != nil {
			log.Fatalf("Failed to load scenarios: %v", err)
		}
		events, err := service.StartScenarios(ctx, exerciseService, reqs)
		if err != nil {
			log.Fatalf("Failed to start scenarios: %v", err)
		}
		log.Infof("Started %d scenarios from %s", len(events), cfg.ScenarioFile)
	}

	handler := v1.NewHandler(exerciseService, log, cfg)

	router := gin.Default()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Error starting HTTP server: %v", err)
		}
	}()
	log.Infof("HTTP server started on port %s", cfg.HTTPPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Received shutdown signal, shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}
	cancel()
	if workerDone != nil {
		<-workerDone
	}

	log.Info("Server gracefully stopped")
}
