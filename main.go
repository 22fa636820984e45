package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql (migrations)
	"go.uber.org/zap"

	"github.com/excelq/excelq-engine/pkg/config"
	"github.com/excelq/excelq-engine/pkg/database"
	"github.com/excelq/excelq-engine/pkg/handlers"
	"github.com/excelq/excelq-engine/pkg/logging"
	"github.com/excelq/excelq-engine/pkg/middleware"
	"github.com/excelq/excelq-engine/pkg/repositories"
	"github.com/excelq/excelq-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("version", cfg.Version),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.URL())),
		zap.Bool("redis_enabled", cfg.Redis.Host != ""))

	ctx := context.Background()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:             cfg.Database.URL(),
		MaxConnections:  cfg.Database.MaxConnections,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database",
			zap.String("error", logging.SanitizeError(err)))
	}
	defer db.Close()

	if err := runMigrations(cfg, logger); err != nil {
		logger.Fatal("Failed to run migrations",
			zap.String("error", logging.SanitizeError(err)))
	}

	cache, err := database.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	if cache != nil {
		defer cache.Close()
	}

	// Repositories
	fileRepo := repositories.NewFileRepository(db)
	sheetRepo := repositories.NewSheetRepository(db)
	rowRepo := repositories.NewRowRepository(db)
	searchRepo := repositories.NewSearchRepository(db)
	pdfRepo := repositories.NewPDFRepository(db)

	// Services
	ingestService := services.NewIngestService(db, fileRepo, sheetRepo, rowRepo, logger)
	fileService := services.NewFileService(db, fileRepo, sheetRepo, logger)
	sheetService := services.NewSheetService(sheetRepo, rowRepo)
	searchService := services.NewSearchService(searchRepo, logger)
	suggestionService := services.NewSuggestionService(searchRepo, cache, logger)
	pdfService := services.NewPDFService(pdfRepo, cfg.Upload.PDFDir, logger)

	mux := http.NewServeMux()

	// Register handlers
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewUploadHandler(ingestService, cfg, logger).RegisterRoutes(mux)
	handlers.NewDataHandler(fileService, sheetService, logger).RegisterRoutes(mux)
	handlers.NewSearchHandler(searchService, suggestionService, logger).RegisterRoutes(mux)
	handlers.NewPDFHandler(pdfService, cfg, logger).RegisterRoutes(mux)

	// Stored PDFs are served directly; the search UI links into them by page.
	mux.Handle("/pdfs/", http.StripPrefix("/pdfs/", http.FileServer(http.Dir(cfg.Upload.PDFDir))))

	// Serve static UI files
	mux.Handle("/", http.FileServer(http.Dir(cfg.UIDir)))

	handler := middleware.RequestLogger(logger)(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting excelq-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "local" || env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func runMigrations(cfg *config.Config, logger *zap.Logger) error {
	sqlDB, err := sql.Open("pgx", cfg.Database.URL())
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	return database.RunMigrations(sqlDB, cfg.MigrationsPath, logger)
}
