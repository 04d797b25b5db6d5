package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"dispatch/cmd"
	dispatchhttp "dispatch/internal/adapters/in/http"
	"dispatch/internal/adapters/out/postgres/courierrepo"
	"dispatch/internal/adapters/out/postgres/jobrepo"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	configs := getConfigs()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	db, err := openDatabase(configs)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	app := cmd.NewCompositionRoot(configs, db, logger)

	jobManager := app.CreateJobManager()
	if err = jobManager.StartAll(); err != nil {
		log.Fatalf("Failed to start scheduled jobs: %v", err)
	}
	defer jobManager.StopAll()

	go handleShutdown(jobManager)

	startWebServer(&app, logger, configs.HTTPPort)
}

func getConfigs() cmd.Config {
	// A missing .env file is fine in containerized deployments where the
	// environment is injected directly.
	_ = godotenv.Load(".env")

	return cmd.Config{
		HTTPPort:              envOrDefault("HTTP_PORT", "8080"),
		DBHost:                envOrDefault("DB_HOST", "localhost"),
		DBPort:                envOrDefault("DB_PORT", "5432"),
		DBUser:                envOrDefault("DB_USER", "postgres"),
		DBPassword:            envOrDefault("DB_PASSWORD", "postgres"),
		DBName:                envOrDefault("DB_NAME", "dispatch"),
		DBSslMode:             envOrDefault("DB_SSLMODE", "disable"),
		MaxOffersPerBroadcast: envIntOrDefault("MAX_OFFERS_PER_BROADCAST", 10),
		ScanBatchSize:         envIntOrDefault("SCAN_BATCH_SIZE", 100),
		ExpiryBatchSize:       envIntOrDefault("EXPIRY_BATCH_SIZE", 100),
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envIntOrDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Fatalf("Invalid value for %s: %q", key, value)
	}
	return parsed
}

func openDatabase(configs cmd.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		configs.DBHost, configs.DBPort, configs.DBUser, configs.DBPassword,
		configs.DBName, configs.DBSslMode)

	db, err := gorm.Open(postgresdriver.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err = db.AutoMigrate(&jobrepo.JobDTO{}, &courierrepo.CourierDTO{}); err != nil {
		return nil, err
	}

	return db, nil
}

func startWebServer(app *cmd.CompositionRoot, logger *slog.Logger, port string) {
	server := dispatchhttp.NewServer(
		app.CreateCreateJobCommandHandler(),
		app.CreateStartBroadcastCommandHandler(),
		app.CreateAcceptJobCommandHandler(),
		app.CreateAssignManuallyCommandHandler(),
		app.CreateGetJobStatusQueryHandler(),
		app.CreateGetActiveJobsForCourierQueryHandler(),
		app.CreateGetAvailableJobsForCourierQueryHandler(),
		logger,
	)

	e := echo.New()
	server.RegisterRoutes(e)

	e.Logger.Fatal(e.Start(fmt.Sprintf("0.0.0.0:%s", port)))
}

func handleShutdown(jobManager interface{ StopAll() }) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	jobManager.StopAll()
	os.Exit(0)
}
