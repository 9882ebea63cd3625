package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"HaruChat/be/internal/auth"
	"HaruChat/be/internal/chatbot"
	"HaruChat/be/internal/config"
	HDb "HaruChat/be/internal/db"
	"HaruChat/be/internal/llm"
	"HaruChat/be/internal/logger"
	"HaruChat/be/internal/session"
	"HaruChat/be/internal/user"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath, envPath string

	root := &cobra.Command{
		Use:           "haruchat",
		Short:         "HaruChat API server",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), configPath, envPath)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config/config.yaml", "path to the YAML config file")
	root.PersistentFlags().StringVar(&envPath, "env", ".env", "path to the dotenv file")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), configPath, envPath)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create missing database tables and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := bootstrap(configPath, envPath)
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			db, err := openDatabase(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			return db.Close()
		},
	})

	return root
}

func bootstrap(configPath, envPath string) (*config.Config, *zap.Logger, error) {
	// Load configuration
	cfg, err := config.LoadConfig(configPath, envPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, logger.NewLogger(cfg.Log.Debug), nil
}

func openDatabase(ctx context.Context, cfg *config.Config, log *zap.Logger) (*HDb.HDb, error) {
	db, err := HDb.NewHDb(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Info("database ready", zap.String("driver", cfg.Database.Driver))
	return db, nil
}

func serve(ctx context.Context, configPath, envPath string) error {
	cfg, log, err := bootstrap(configPath, envPath)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	if !cfg.Log.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := openDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("failed to close database", zap.Error(err))
		}
	}()

	// Initialize router
	router := gin.New()
	router.Use(logger.GinMiddleware(log), gin.Recovery())

	// Configure CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowOrigins,
		AllowMethods:     cfg.CORS.AllowMethods,
		AllowHeaders:     cfg.CORS.AllowHeaders,
		ExposeHeaders:    cfg.CORS.ExposeHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
	}))

	// Chat gateway; one pooled client serves every upstream call
	httpClient := &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			DialContext:         (&net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 20,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
	gateway := llm.NewGateway(cfg.LLM, httpClient, log.Named("llm"))
	for _, info := range gateway.Catalog() {
		if !info.Configured {
			log.Warn("provider has no api key configured", zap.String("provider", info.Name))
		}
	}

	chatService := chatbot.NewChatService(gateway, log.Named("chat"))
	chatController := chatbot.NewChatController(chatService, log.Named("chat"))
	chatController.RegisterRoutes(router)

	// User management
	tokens := auth.NewTokenManager(cfg.JWT)
	requireAuth := auth.RequireAuth(tokens)

	userRepository := user.NewRepositoryImpl(db)
	userService := user.NewServiceImpl(userRepository)
	userController := user.NewControllerImpl(userService, requireAuth)
	userController.RegisterRoutes(router)

	// Auth management
	authService := auth.NewServiceImpl(userService, tokens)
	authController := auth.NewControllerImpl(authService)
	authController.RegisterRoutes(router)

	// Sessions and messages
	sessionService := session.NewServiceImpl(session.NewRepositoryImpl(db))
	sessionController := session.NewControllerImpl(sessionService, requireAuth)
	sessionController.RegisterRoutes(router)

	// Start server
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("error starting server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	httpClient.CloseIdleConnections()
	return nil
}
