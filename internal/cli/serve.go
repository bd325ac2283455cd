package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/okeefe/typeduel/internal/api"
	"github.com/okeefe/typeduel/internal/config"
	"github.com/okeefe/typeduel/internal/factory"
	"github.com/okeefe/typeduel/internal/services/session"
	redisstorage "github.com/okeefe/typeduel/internal/storage/redis"
)

// newServeCmd creates the serve command
func newServeCmd() *cobra.Command {
	var (
		port         int
		storageType  string
		passagesFile string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the typing race server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			// Flags win over environment
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if cmd.Flags().Changed("storage") {
				cfg.StorageType = storageType
			}
			if cmd.Flags().Changed("passages") {
				cfg.PassagesFile = passagesFile
			}

			return runServer(cfg)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 4000, "Port to listen on (env: PORT)")
	cmd.Flags().StringVar(&storageType, "storage", factory.StorageTypeMemory, "Storage backend: memory, redis (env: STORAGE_TYPE)")
	cmd.Flags().StringVar(&passagesFile, "passages", "", "Newline-delimited passage file (env: PASSAGES_FILE)")

	return cmd
}

func runServer(cfg config.Config) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	factoryCfg := factory.Config{
		Logger:      logger,
		StorageType: cfg.StorageType,
		SessionConfig: session.Config{
			CountdownFrom: cfg.CountdownFrom,
			TickInterval:  cfg.TickInterval,
		},
	}

	if cfg.StorageType == factory.StorageTypeRedis {
		if cfg.RedisURL == "" {
			return fmt.Errorf("REDIS_URL required when storage type is redis")
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		redisCfg.RoomTTL = cfg.RoomTTL
		factoryCfg.RedisConfig = &redisCfg
	}

	app, err := factory.New(factoryCfg)
	if err != nil {
		return fmt.Errorf("creating application: %w", err)
	}

	ctx := context.Background()

	if cfg.PassagesFile != "" {
		if err := app.PassageService.LoadFromFile(ctx, cfg.PassagesFile); err != nil {
			logger.Warn("could not load passages file, using built-in pool",
				slog.String("path", cfg.PassagesFile),
				slog.String("error", err.Error()))
		}
	} else if err := app.PassageService.LoadFromStorage(ctx); err != nil {
		logger.Warn("could not load passages from storage, using built-in pool",
			slog.String("error", err.Error()))
	}

	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		SocketHandler:  app.SocketHandler,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Host
	serverConfig.Port = cfg.Port
	server := api.NewServer(router, serverConfig, logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", cfg.StorageType),
		slog.Int("passages", app.PassageService.Count()))

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	logger.Info("server stopped")
	return nil
}
