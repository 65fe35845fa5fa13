package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zen-systems/listingsmith/pkg/access"
	"github.com/zen-systems/listingsmith/pkg/actions"
	"github.com/zen-systems/listingsmith/pkg/logging"
	"github.com/zen-systems/listingsmith/pkg/server"
	"github.com/zen-systems/listingsmith/pkg/store"
)

func serveCmd() *cobra.Command {
	var addr string
	var demoUser string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the AI tools over HTTP",
		Long: `Starts the HTTP API. Users and past sales come from DATABASE_URL when
	set; otherwise an in-memory store is used and --demo-user registers an
	admin account for local testing.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if addr == "" {
				addr = cfg.Addr
			}

			logger, err := logging.New(debugFlag)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer logger.Sync()

			gen, err := buildService(ctx, cfg, logger)
			if err != nil {
				return err
			}

			var (
				users store.Users
				sales store.Sales
			)
			if cfg.DatabaseURL != "" {
				pg, err := store.NewPostgres(ctx, cfg.DatabaseURL)
				if err != nil {
					return err
				}
				defer pg.Close()
				users, sales = pg, pg
				logger.Info("using postgres store")
			} else {
				mem := store.NewMemory()
				if demoUser != "" {
					mem.PutUser(store.User{ID: demoUser, Role: access.RoleAdmin})
				}
				users, sales = mem, mem
				logger.Warn("DATABASE_URL not set, using in-memory store")
			}

			if !debugFlag {
				gin.SetMode(gin.ReleaseMode)
			}
			router := server.New(actions.NewService(users, sales, gen), gen.Configured(), logger)
			return run(ctx, &http.Server{Addr: addr, Handler: router}, logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default LISTINGSMITH_ADDR or :8080)")
	cmd.Flags().StringVar(&demoUser, "demo-user", "", "user ID to register as admin in the in-memory store")
	return cmd
}

// run serves until SIGINT or SIGTERM, then drains in-flight requests.
func run(ctx context.Context, srv *http.Server, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server exited gracefully")
	return nil
}
