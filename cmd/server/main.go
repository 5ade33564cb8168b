package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"netatlas/internal/config"
	"netatlas/internal/handler"
	"netatlas/internal/logger"
	"netatlas/internal/repository/sqlite"
	"netatlas/internal/service"
	"netatlas/internal/vault"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default: search standard locations)")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	if err := run(*configPath, *addr, *dbPath); err != nil {
		fmt.Fprintf(os.Stderr, "netatlas: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, addrFlag, dbFlag string) error {
	var (
		cfg  *config.Config
		from string
		err  error
	)
	if configPath != "" {
		cfg, from, err = config.LoadFromPath(configPath)
	} else {
		cfg, from, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if addrFlag != "" {
		cfg.Server.Addr = addrFlag
	}
	if dbFlag != "" {
		cfg.Database.Path = dbFlag
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	if from != "" {
		log.Info("config loaded", zap.String("path", from))
	} else {
		log.Info("no config file found, using defaults")
	}

	v, err := vault.New(cfg.Encryption.Key)
	if err != nil {
		return fmt.Errorf("init vault: %w", err)
	}

	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer repo.Close()
	log.Info("database opened", zap.String("path", cfg.Database.Path))

	eventBus := service.NewEventBus()
	eventChan := make(chan service.Event, 100)
	eventBus.Subscribe(eventChan)
	go func() {
		for event := range eventChan {
			log.Debug("event", zap.String("type", string(event.Type)), zap.Any("payload", event.Payload))
		}
	}()

	treeSvc := service.NewTreeService(repo, eventBus)
	networkSvc := service.NewNetworkService(repo, v, eventBus)
	deviceSvc := service.NewDeviceService(repo, eventBus)
	secretSvc := service.NewSecretService(repo, v, eventBus)

	h := handler.New(treeSvc, networkSvc, deviceSvc, secretSvc, log)
	mux := http.NewServeMux()

	// Roots and trees
	mux.HandleFunc("GET /api/roots", h.Identified(h.ListRoots))
	mux.HandleFunc("POST /api/roots", h.Identified(h.CreateRoot))
	mux.HandleFunc("PUT /api/roots/{rootID}", h.Identified(h.UpdateRoot))
	mux.HandleFunc("DELETE /api/roots/{rootID}", h.Identified(h.DeleteRoot))
	mux.HandleFunc("GET /api/roots/{rootID}/tree", h.Identified(h.GetTree))

	// Spaces
	mux.HandleFunc("POST /api/roots/{rootID}/spaces", h.Identified(h.CreateSpace))
	mux.HandleFunc("PUT /api/roots/{rootID}/spaces/{id}", h.Identified(h.UpdateSpace))
	mux.HandleFunc("DELETE /api/roots/{rootID}/spaces/{id}", h.Identified(h.DeleteSpace))

	// VLANs
	mux.HandleFunc("GET /api/roots/{rootID}/vlans", h.Identified(h.ListVlans))
	mux.HandleFunc("POST /api/roots/{rootID}/vlans", h.Identified(h.CreateVlan))
	mux.HandleFunc("PUT /api/roots/{rootID}/vlans/{id}", h.Identified(h.UpdateVlan))
	mux.HandleFunc("DELETE /api/roots/{rootID}/vlans/{id}", h.Identified(h.DeleteVlan))

	// Wi-Fi networks
	mux.HandleFunc("GET /api/roots/{rootID}/wifi", h.Identified(h.ListWifiNetworks))
	mux.HandleFunc("POST /api/roots/{rootID}/wifi", h.Identified(h.CreateWifiNetwork))
	mux.HandleFunc("PUT /api/roots/{rootID}/wifi/{id}", h.Identified(h.UpdateWifiNetwork))
	mux.HandleFunc("DELETE /api/roots/{rootID}/wifi/{id}", h.Identified(h.DeleteWifiNetwork))
	mux.HandleFunc("POST /api/roots/{rootID}/wifi/{id}/reveal", h.Identified(h.RevealWifiPassword))

	// Devices and interfaces
	mux.HandleFunc("GET /api/roots/{rootID}/devices", h.Identified(h.ListDevices))
	mux.HandleFunc("POST /api/roots/{rootID}/devices", h.Identified(h.CreateDevice))
	mux.HandleFunc("GET /api/roots/{rootID}/devices/{id}", h.Identified(h.GetDevice))
	mux.HandleFunc("PUT /api/roots/{rootID}/devices/{id}", h.Identified(h.UpdateDevice))
	mux.HandleFunc("DELETE /api/roots/{rootID}/devices/{id}", h.Identified(h.DeleteDevice))
	mux.HandleFunc("GET /api/roots/{rootID}/devices/{deviceID}/interfaces", h.Identified(h.ListInterfaces))
	mux.HandleFunc("POST /api/roots/{rootID}/devices/{deviceID}/interfaces", h.Identified(h.CreateInterface))
	mux.HandleFunc("PUT /api/roots/{rootID}/interfaces/{id}", h.Identified(h.UpdateInterface))
	mux.HandleFunc("DELETE /api/roots/{rootID}/interfaces/{id}", h.Identified(h.DeleteInterface))

	// Connections and graph
	mux.HandleFunc("GET /api/roots/{rootID}/connections", h.Identified(h.ListConnections))
	mux.HandleFunc("POST /api/roots/{rootID}/connections", h.Identified(h.CreateConnection))
	mux.HandleFunc("PUT /api/roots/{rootID}/connections/{id}", h.Identified(h.UpdateConnection))
	mux.HandleFunc("DELETE /api/roots/{rootID}/connections/{id}", h.Identified(h.DeleteConnection))
	mux.HandleFunc("GET /api/roots/{rootID}/graph", h.Identified(h.GetGraph))
	mux.HandleFunc("GET /api/roots/{rootID}/export", h.Identified(h.ExportGraph))

	// Secrets
	mux.HandleFunc("GET /api/roots/{rootID}/secrets", h.Identified(h.ListSecrets))
	mux.HandleFunc("POST /api/roots/{rootID}/secrets", h.Identified(h.CreateSecret))
	mux.HandleFunc("POST /api/roots/{rootID}/secrets/{id}/reveal", h.Identified(h.RevealSecret))
	mux.HandleFunc("DELETE /api/roots/{rootID}/secrets/{id}", h.Identified(h.DeleteSecret))

	finalHandler := handler.Chain(mux,
		handler.Recover(log),
		handler.CORS,
		handler.Logging(log),
	)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      finalHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info("server stopped")
	return nil
}
