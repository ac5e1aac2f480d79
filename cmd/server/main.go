package main

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/afero"
	"resty.dev/v3"

	"github.com/ztoursph/booking-api/internal/assets"
	"github.com/ztoursph/booking-api/internal/auth"
	"github.com/ztoursph/booking-api/internal/composer"
	"github.com/ztoursph/booking-api/internal/config"
	"github.com/ztoursph/booking-api/internal/database"
	"github.com/ztoursph/booking-api/internal/documents"
	"github.com/ztoursph/booking-api/internal/format"
	"github.com/ztoursph/booking-api/internal/handlers"
	"github.com/ztoursph/booking-api/internal/metrics"
	"github.com/ztoursph/booking-api/internal/notifier"
	"github.com/ztoursph/booking-api/internal/records"
	"github.com/ztoursph/booking-api/internal/scancode"
	"github.com/ztoursph/booking-api/internal/sections"
	"github.com/ztoursph/booking-api/internal/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load Configuration
	cfg := config.LoadConfig()
	if cfg.JWTSecret == "" {
		log.Fatalf("JWT_SECRET must be set")
	}

	// Connect to Database
	db := database.Connect(cfg)
	store := records.NewStore(db)

	// Document pipeline
	httpClient := resty.New().SetTimeout(cfg.HTTPAssetTimeout)
	defer httpClient.Close()
	resolver := assets.NewResolver(assets.Overlay(cfg.AssetsDir),
		assets.WithHTTPClient(httpClient),
		assets.WithFont(assets.FontRegular, cfg.FontRegular),
		assets.WithFont(assets.FontBold, cfg.FontBold),
		assets.WithFont(assets.FontMono, cfg.FontMono),
		assets.WithLogger(logger),
	)

	formatter := format.New(cfg.Location())
	layout := sections.DefaultLayout(formatter)
	layout.Issuer = sections.Issuer{
		Address:  cfg.IssuerAddress,
		Email:    cfg.IssuerEmail,
		Whatsapp: cfg.IssuerWhatsapp,
		Office:   cfg.IssuerOffice,
	}
	layout.Preparer = sections.Preparer{Name: cfg.PreparerName, Title: cfg.PreparerTitle}

	comp := composer.New(resolver, scancode.NewQREncoder(256), cfg.VerifyURL,
		composer.WithLayout(layout),
		composer.WithImages(composer.Images{
			Logo:       cfg.LogoAsset,
			Signature:  cfg.SignatureAsset,
			Background: cfg.BackgroundAsset,
		}),
		composer.WithLogger(logger),
	)

	if err := os.MkdirAll(cfg.StorageDir, 0o755); err != nil {
		log.Fatalf("Failed to create storage dir: %v", err)
	}
	objects := storage.New(afero.NewBasePathFs(afero.NewOsFs(), cfg.StorageDir), cfg.StorageBucket, []byte(cfg.JWTSecret),
		storage.WithPublicURL(cfg.StoragePublicURL),
		storage.WithTTL(cfg.StorageURLTTL),
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Initialize Notifier
	session, err := notifier.NewDiscordSession(cfg.DiscordBotToken)
	if err != nil {
		logger.Warn("discord notifier not initialized", "error", err)
	}
	discordNotifier := notifier.NewDiscordNotifier(session, cfg.DiscordNotificationsChannelID, logger)

	docs := documents.NewService(store, comp, objects,
		documents.WithNotifier(discordNotifier),
		documents.WithMetrics(metrics.New(reg)),
		documents.WithFormatter(formatter),
		documents.WithConcurrency(cfg.BatchConcurrency),
		documents.WithLogger(logger),
	)

	// Initialize Handlers
	authHandler := auth.NewAuthHandler(cfg, db)
	h := handlers.Handlers{
		Auth:      authHandler,
		APIKeys:   handlers.NewAPIKeyHandler(db, authHandler),
		Packages:  handlers.NewPackageHandler(store),
		Documents: handlers.NewDocumentHandler(docs, authHandler, logger),
		Files:     handlers.NewFileHandler(objects, logger),
		Metrics:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}
	if cfg.EnableCORS {
		h.CORSOrigin = cfg.FrontendURL
	}

	// Initialize Router
	r := chi.NewRouter()
	handlers.RegisterRoutes(r, h)

	// Start Server
	logger.Info("starting server", "port", cfg.Port)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
