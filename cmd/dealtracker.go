package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"time"

	"dealtracker/internal/client"
	"dealtracker/internal/configuration"
	"dealtracker/internal/database"
	"dealtracker/internal/logger"
	"dealtracker/internal/server"

	"github.com/go-redis/redis/v9"
)

func main() {
	runApp()
	time.Sleep(10 * time.Second)
	os.Exit(1)
}

func runApp() error {
	appContext := context.Background()
	logOutput := io.Writer(os.Stdout)
	appLogger := logger.NewLogger(logger.LevelError, logOutput)

	defer func() {
		if r := recover(); r != nil {
			appLogger.Errorf("APPLICATION CRASHED: %+v", r)
		}
	}()

	config, err := configuration.GetConfig("config.toml")
	if err != nil {
		appLogger.Error("Error getting configuration from config.toml:", err)
		return err
	}

	if config.LogToFile {
		logFile, err := os.OpenFile("dealtracker_backend.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			appLogger.Error("Error opening log file:", err)
			return err
		}
		defer func() {
			if err := logFile.Close(); err != nil {
				appLogger.Error("Error closing log file:", err)
			}
		}()
		logOutput = io.MultiWriter(logOutput, logFile)
	}
	appLogger = logger.NewLogger(config.LogLevel, logOutput)

	if config.LogLevel >= logger.LevelDebug {
		conf, err := json.MarshalIndent(config, "", "  ")
		if err != nil {
			appLogger.Error("Error marshalling Config to JSON:", err)
			return err
		}
		appLogger.Debugf("Config:\n%s", conf)
	}

	appLogger.Info("Connecting to DB at", config.DatabaseURI)
	dbConn, err := database.ConnectDB(appContext, config.DatabaseURI)
	if err != nil {
		appLogger.Error("Error connecting to DB:", err)
		return err
	}
	defer func() {
		if err := dbConn.Disconnect(appContext); err != nil {
			appLogger.Error("Error disconnecting from DB:", err)
		}
	}()

	db := database.Database{Database: dbConn.Database(database.Name)}
	storeClient := client.Client{
		Client:       &http.Client{Timeout: config.FetchTimeout},
		Redis:        redis.NewClient(&redis.Options{Addr: config.RedisAddress}),
		FCMKey:       config.FCMKey,
		SteamCountry: config.SteamCountry,
		SteamLocale:  config.SteamLocale,
		Logger:       appLogger,
	}

	srv := server.Server{
		DB:            db,
		Client:        storeClient,
		Logger:        appLogger,
		AuthSecretKey: config.AuthSecretKey,
	}

	poller := server.Poller{
		DB:     db,
		Source: storeClient,
		Notifier: server.PushNotifier{
			Client: storeClient,
			Logger: appLogger,
		},
		Logger: appLogger,
		Warmup: config.WarmupDelay,
	}
	appLogger.Info("Starting price check poller with interval:", config.CheckInterval)
	go poller.CheckPricesInInterval(appContext, time.NewTicker(config.CheckInterval))

	httpSrv := &http.Server{
		Handler:      srv.Router(),
		Addr:         config.ServerAddress,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	appLogger.Info("Serving on", httpSrv.Addr)
	return httpSrv.ListenAndServe()
}
