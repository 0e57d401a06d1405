package main

import (
	"fmt"
	"log/slog"
	"os"

	"gameplex/database"
	"gameplex/internal/config"
	"gameplex/internal/http-api/handler"
	"gameplex/internal/http-api/repository"
	"gameplex/internal/http-api/service"
	"gameplex/internal/ingestion/assets"
	"gameplex/internal/ingestion/rawg"
	"gameplex/internal/ingestion/scanner"
	"gameplex/internal/saves"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	// Ingestion pipeline: RAWG client, on-disk asset mirror, library scanner.
	rawgClient := rawg.NewClient(cfg.RAWGAPIURL, cfg.RAWGAPIKey, cfg.UpstreamTimeout)
	assetCache := assets.NewCache(cfg.GameLibraryPath, rawgClient.HTTPClient())
	libraryScanner := scanner.NewScanner(db, rawgClient, assetCache, cfg.GameLibraryPath, cfg.MaxScreenshots, logger)

	// Cloud save store
	saveStore := saves.NewStore(cfg.SavesPath, cfg.SavesLimit, logger)

	// Repositories
	gameRepo := repository.NewGameRepo(db)
	genreRepo := repository.NewGenreRepo(db)
	collectionRepo := repository.NewCollectionRepository(db)
	userDataRepo := repository.NewUserDataRepository(db)

	// Services
	gameSvc := service.NewGameService(gameRepo, userDataRepo, cfg.GameLibraryPath, logger)
	userDataSvc := service.NewUserDataService(userDataRepo, gameRepo)
	collectionSvc := service.NewCollectionService(collectionRepo, gameRepo)
	saveSvc := service.NewSaveService(saveStore, gameRepo)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	// Game artwork and screenshots are served straight from the library tree.
	router.Static("/gamelibrary", cfg.GameLibraryPath)
	router.Static("/saves", cfg.SavesPath)
	router.Static("/static", cfg.StaticPath)

	api := router.Group("/api")
	handler.NewGameHandler(gameSvc, userDataSvc).RegisterRoutes(api)
	handler.NewGenreHandler(genreRepo).RegisterRoutes(api)
	handler.NewCollectionHandler(collectionSvc).RegisterRoutes(api)
	handler.NewSaveHandler(saveSvc).RegisterRoutes(api)
	handler.NewLibraryHandler(libraryScanner).RegisterRoutes(api)
	handler.NewMetadataHandler(rawgClient).RegisterRoutes(api)

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	logger.Info("starting server", "addr", addr, "env", cfg.GoEnv)
	if err := router.Run(addr); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
