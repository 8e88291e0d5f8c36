package main

import (
	"log/slog"
	"os"

	"github.com/Amaan112005/mindmate/repository"
	"github.com/Amaan112005/mindmate/services"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	// Setup structured logging with JSON format
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	config := services.LoadConfig()
	server := services.NewServer(config)

	if config.Database.URL != "" {
		db, err := gorm.Open(postgres.Open(config.Database.URL), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormLogLevel(config.Database.LogLevel)),
		})
		if err != nil {
			slog.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}

		sqlDB, err := db.DB()
		if err != nil {
			slog.Error("Failed to get database handle", "error", err)
			os.Exit(1)
		}
		if config.Database.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(config.Database.MaxIdleConns)
		}
		if config.Database.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(config.Database.MaxOpenConns)
		}
		defer sqlDB.Close()

		repo := repository.NewGORMRepository(db)
		if err := repo.AutoMigrate(); err != nil {
			slog.Error("Failed to migrate database", "error", err)
			os.Exit(1)
		}
		slog.Info("Connected to database")

		server.SetDatabase(repo, db)

		if config.Database.Seed {
			seeder := services.NewDatabaseSeeder(repo)
			if err := seeder.SeedDatabase(); err != nil {
				slog.Error("Failed to seed database", "error", err)
			}
		}
	} else {
		slog.Warn("Database URL not configured, running without database")
	}

	if err := server.InitializeServices(); err != nil {
		slog.Error("Failed to initialize services", "error", err)
		os.Exit(1)
	}

	server.Start()
}

func gormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
