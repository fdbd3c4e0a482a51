package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/raagalabs/carnaticguru/config"
	core "github.com/raagalabs/carnaticguru/internal/agent/core"
	"github.com/raagalabs/carnaticguru/internal/agent/telemetry"
	"github.com/raagalabs/carnaticguru/internal/lesson"
	"github.com/raagalabs/carnaticguru/internal/router"
	srv "github.com/raagalabs/carnaticguru/internal/server"
)

func main() {
	var root = &cobra.Command{Use: "guru"}

	var configPath string
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config.json")

	var serveAddr string
	var serve = &cobra.Command{
		Use:   "serve",
		Short: "Run HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(configPath)
			if serveAddr != "" {
				cfg.Server.Address = serveAddr
			}
			return srv.Run(cfg)
		},
	}
	serve.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")

	var migDir string
	var direction string
	var steps int
	var migrate = &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(configPath)
			dsn, err := cfg.Databases.Postgres.DSN()
			if err != nil {
				dsn = os.Getenv("DATABASE_URL")
			}
			return srv.Migrate(migDir, dsn, direction, steps)
		},
	}
	migrate.Flags().StringVar(&migDir, "dir", "file://migrations", "migrations source (file://migrations)")
	migrate.Flags().StringVar(&direction, "direction", "up", "up or down")
	migrate.Flags().IntVar(&steps, "steps", 0, "number of steps (0 = all)")

	var askUser string
	var askCategory string
	var ask = &cobra.Command{
		Use:   "ask [query]",
		Short: "Answer one query from the command line, without the server or database",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(configPath)
			if err := cfg.Lesson.Validate(); err != nil {
				return err
			}
			doc, err := lesson.Load(cfg.Lesson.Path)
			if err != nil {
				return fmt.Errorf("load lesson document: %w", err)
			}
			provider, err := core.NewLLMProvider(cfg.LLM)
			if err != nil {
				return err
			}
			tele := telemetry.New(cfg.Telemetry)
			searcher := lesson.NewRetriever(doc, cfg.Lesson)
			agents := core.NewAgents(cfg, provider, tele, searcher)
			orch := core.NewOrchestrator(cfg, router.New(cfg.Router), agents, discardSessions{}, tele)

			query := args[0]
			for _, a := range args[1:] {
				query += " " + a
			}
			reply, err := orch.Process(cmd.Context(), core.UserQuery{
				UserID:   askUser,
				Content:  query,
				Category: askCategory,
			})
			if err != nil {
				return err
			}
			fmt.Println(reply.Response)
			return nil
		},
	}
	ask.Flags().StringVar(&askUser, "user", "admin", "user id to ask as")
	ask.Flags().StringVar(&askCategory, "category", "", "category hint (lesson, pattern, raga)")

	root.AddCommand(serve, migrate, ask)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// discardSessions keeps the ask command independent of Postgres.
type discardSessions struct{}

func (discardSessions) EnsureSession(ctx context.Context, appName, userID, sessionID string) error {
	return nil
}

func (discardSessions) AppendEvent(ctx context.Context, appName, userID, sessionID, author, content string) error {
	return nil
}
