// cmd/serve.go
package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/officialprakashkumarsingh/render/internal/agent"
	"github.com/officialprakashkumarsingh/render/internal/browser"
	"github.com/officialprakashkumarsingh/render/internal/config"
	"github.com/officialprakashkumarsingh/render/internal/llmclient"
	"github.com/officialprakashkumarsingh/render/internal/observability"
	"github.com/officialprakashkumarsingh/render/internal/screenshots"
	"github.com/officialprakashkumarsingh/render/internal/server"
)

const browserShutdownTimeout = 20 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the browsing agent HTTP service.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.NewConfigFromViper(viper.GetViper())
		if err != nil {
			return err
		}
		return runServe(cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// runServe wires every component and blocks until the process receives an
// interrupt.
func runServe(cfg *config.Config) error {
	logger := observability.GetLogger()

	llm, err := llmclient.NewGeminiClient(cfg.LLM, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize completion client (hint: set RENDER_LLM_API_KEY): %w", err)
	}

	store, err := screenshots.NewStore(cfg.Screenshots.Dir, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize screenshot store: %w", err)
	}

	// Browser launch is deferred until the first agent request.
	manager := browser.NewManager(cfg.Browser, logger)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), browserShutdownTimeout)
		defer cancel()
		if err := manager.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Browser shutdown reported an error.", zap.Error(err))
		}
	}()

	executor := agent.NewExecutor(store, logger)
	controller := agent.NewController(llm, manager, executor, cfg.Agent, logger)
	srv := server.NewServer(cfg.Server, controller, store.Dir(), logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("http server failed: %w", err)
	}

	logger.Info("Service stopped.")
	return nil
}
