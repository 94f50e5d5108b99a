package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/urfave/cli/v3"
	"gopkg.in/natefinch/lumberjack.v2"

	"quiz-pocket/internal/assets"
	"quiz-pocket/internal/connectivity"
	"quiz-pocket/internal/device"
	"quiz-pocket/internal/gateway"
	"quiz-pocket/internal/quiz"
	"quiz-pocket/internal/quiz/sqlite"
	"quiz-pocket/internal/syncer"
)

func main() {
	// .env is optional; real env vars win either way.
	_ = godotenv.Load()

	root := &cli.Command{
		Name:  "quizpocket",
		Usage: "Offline-first local data layer for the quiz app",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "db", Value: envString("QUIZPOCKET_DB", "quizpocket.db"), Usage: "sqlite database file"},
			&cli.StringFlag{Name: "data-dir", Value: envString("QUIZPOCKET_DATA_DIR", "quizpocket-data"), Usage: "directory for cached assets and device settings"},
			&cli.StringFlag{Name: "api", Value: envString("QUIZPOCKET_API", ""), Usage: "remote service base URL"},
			&cli.StringFlag{Name: "probe-url", Value: envString("QUIZPOCKET_PROBE_URL", ""), Usage: "connectivity probe URL"},
			&cli.StringFlag{Name: "log-file", Value: envString("QUIZPOCKET_LOG_FILE", ""), Usage: "also log to this rotating file"},
			&cli.BoolFlag{Name: "keep-on-empty", Value: envBool("QUIZPOCKET_KEEP_ON_EMPTY"), Usage: "keep cached rows when a fetch returns zero rows"},
			&cli.BoolFlag{Name: "offline", Usage: "skip all network calls and read the local store"},
		},
		Commands: []*cli.Command{
			refreshCommand(),
			showCommand(),
			completeCommand(),
			syncCommand(),
			profileCommand(),
		},
	}

	if err := root.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

type app struct {
	settings *device.Settings
	store    *sqlite.SQLiteStore
	service  *quiz.Service
	engine   *syncer.Engine
	logger   *slog.Logger
}

func buildApp(cmd *cli.Command) (*app, func(), error) {
	logger := setupLogger(cmd.String("log-file"))

	dataDir := cmd.String("data-dir")
	settings, err := device.Load(filepath.Join(dataDir, "settings.json"))
	if err != nil {
		return nil, nil, err
	}

	store, err := sqlite.NewSQLiteStore(cmd.String("db"))
	if err != nil {
		return nil, nil, err
	}

	client := gateway.NewClient(cmd.String("api"), nil)

	var oracle connectivity.Oracle = connectivity.NewProbe(cmd.String("probe-url"), nil)
	if cmd.Bool("offline") {
		oracle = connectivity.Static(false)
	}

	cache := assets.NewCache(filepath.Join(dataDir, "images"), nil, logger)

	service := quiz.NewService(quiz.ServiceConfig{
		Catalog:               store,
		Gateway:               client,
		Oracle:                oracle,
		Assets:                cache,
		Logger:                logger,
		KeepCacheOnEmptyFetch: cmd.Bool("keep-on-empty"),
	})

	engine := syncer.New(store, client, settings.DeviceID, syncer.Policy{}, logger)

	a := &app{
		settings: settings,
		store:    store,
		service:  service,
		engine:   engine,
		logger:   logger,
	}
	cleanup := func() {
		a.service.Flush()
		_ = a.store.Close()
	}
	return a, cleanup, nil
}

func setupLogger(logFile string) *slog.Logger {
	var out io.Writer = os.Stdout
	if logFile != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		})
	}

	logger := slog.New(tint.NewHandler(out, &tint.Options{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	return logger
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envBool(key string) bool {
	switch os.Getenv(key) {
	case "1", "true", "yes":
		return true
	}
	return false
}
