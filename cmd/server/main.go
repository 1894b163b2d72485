// Package main is the entry point of the application
package main

import (
	"flag"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tecu23/match-server/internal/auth"
	"github.com/tecu23/match-server/pkg/chess"
	"github.com/tecu23/match-server/pkg/config"
	"github.com/tecu23/match-server/pkg/events"
	"github.com/tecu23/match-server/pkg/game"
	"github.com/tecu23/match-server/pkg/server"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,

	CheckOrigin: func(r *http.Request) bool {
		path := os.Getenv("FRONTEND_PATH")
		if path == "" {
			return true
		}
		return path == r.Header.Get("Origin")
	},
}

// application encapsulates global dependencies
type application struct {
	Auth        *auth.APIKeyAuth
	Logger      *zap.Logger
	Config      *config.Config
	Registry    *game.Registry
	Coordinator *game.Coordinator
	Hub         *server.Hub
	Server      *http.Server

	StartTime time.Time
}

func main() {
	debug := flag.Bool("debug", false, "enable debug logging")
	port := flag.String("port", "", "server port (overrides config)")
	flag.Parse()

	logger := initLogger(*debug)
	defer logger.Sync()

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file loaded", zap.Error(err))
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("loading config error", zap.Error(err))
	}
	if *port != "" {
		cfg.Port = *port
	}
	if *debug {
		cfg.Debug = true
	}

	// Initialize event publisher
	publisher := events.NewPublisher()

	// Initialize the shared state containers
	directory := game.NewDirectory()
	registry := game.NewRegistry(logger)
	matchmaker := game.NewMatchmaker(registry, chess.TimeControl{
		WhiteTime: cfg.InitialTimeMs,
		BlackTime: cfg.InitialTimeMs,
	}, cfg.RatingRange, logger)

	coordinator := game.NewCoordinator(
		directory,
		registry,
		matchmaker,
		publisher,
		cfg.DisconnectGrace,
		logger,
	)

	hub := server.NewHub(coordinator, publisher, logger)

	var authKeys []string
	if envAPIKeys := os.Getenv("API_KEYS"); envAPIKeys != "" {
		// Split comma-separated list of API keys
		keys := strings.Split(envAPIKeys, ",")
		for i, key := range keys {
			keys[i] = strings.TrimSpace(key)
		}
		authKeys = keys
	}

	app := &application{
		Auth:        auth.NewAPIKeyAuth(authKeys),
		Logger:      logger,
		Config:      cfg,
		Registry:    registry,
		Coordinator: coordinator,
		Hub:         hub,
		StartTime:   time.Now(),
	}

	go app.Hub.Run()
	go app.Coordinator.RunTicker(cfg.TickInterval)

	if err := app.serve(); err != nil {
		logger.Fatal("error serving", zap.Error(err))
	}
}

func initLogger(debug bool) *zap.Logger {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	return logger
}

// Shutdown cleans up resources
func (app *application) Shutdown() {
	if app.Coordinator != nil {
		app.Coordinator.Shutdown()
	}
	if app.Hub != nil {
		app.Hub.Shutdown()
	}

	app.Logger.Info("All components shut down successfully")
}
