package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fitnesspoint/internal/app"
	"fitnesspoint/internal/config"
	"fitnesspoint/internal/db"
	"fitnesspoint/internal/logger"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

func main() {
	logger.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "import",
		Short:         "Run or queue FitnessPoint member imports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(), newEnqueueCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var id int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process one import job synchronously",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				stats, err := a.Runner.Run(cmd.Context(), id)
				if err != nil {
					return fmt.Errorf("import %d: %w", id, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "import %d: %s (%d succeeded, %d failed, %d processed)\n",
					id, stats.FinalStatus(), stats.SuccessCount, stats.FailedCount, stats.TotalProcessed)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&id, "id", 0, "Import job ID (required)")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newEnqueueCmd() *cobra.Command {
	var id int

	cmd := &cobra.Command{
		Use:   "enqueue",
		Short: "Push an import job onto the worker queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				if _, err := a.Imports.GetByID(cmd.Context(), id); err != nil {
					return fmt.Errorf("import %d: %w", id, err)
				}
				if err := a.Queue.Enqueue(cmd.Context(), id); err != nil {
					return fmt.Errorf("queue import %d: %w", id, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "import %d queued\n", id)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&id, "id", 0, "Import job ID (required)")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func withApp(fn func(a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	return fn(app.New(cfg, database, rdb))
}
