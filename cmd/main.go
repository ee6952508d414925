package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"s3batch/internal/app"
	"s3batch/internal/config"
	"s3batch/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:          "s3batch",
	Short:        "Parallel batch client for S3-compatible object storage",
	Long:         `A concurrent command-line client for S3-compatible object stores: recursive upload, download and delete with bounded parallelism, listing, presigned URLs and a transfer journal.`,
	SilenceUsage: true,
}

var uploadCmd = &cobra.Command{
	Use:   "upload <bucket> <src> [dest-prefix]",
	Short: "Upload a file or directory tree",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		destPrefix := ""
		if len(args) == 3 {
			destPrefix = args[2]
		}
		return withApp(cmd, func(ctx context.Context, a *app.App, cfg *config.Config) error {
			return a.Upload(ctx, app.UploadRequest{
				Bucket:      args[0],
				Src:         args[1],
				DestPrefix:  destPrefix,
				Parallelism: cfg.Transfer.Parallelism,
			})
		})
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download <bucket> <key> <dest>",
	Short: "Download an object, or a whole prefix with --recursive",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		recursive, _ := cmd.Flags().GetBool("recursive")
		return withApp(cmd, func(ctx context.Context, a *app.App, cfg *config.Config) error {
			return a.Download(ctx, app.DownloadRequest{
				Bucket:      args[0],
				Key:         args[1],
				Dest:        args[2],
				Recursive:   recursive,
				Parallelism: cfg.Transfer.Parallelism,
			})
		})
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <bucket> <key>",
	Short: "Delete an object, or a whole prefix with --recursive",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		recursive, _ := cmd.Flags().GetBool("recursive")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		confirmed, _ := cmd.Flags().GetBool("yes")
		return withApp(cmd, func(ctx context.Context, a *app.App, cfg *config.Config) error {
			return a.Delete(ctx, app.DeleteRequest{
				Bucket:      args[0],
				Key:         args[1],
				Recursive:   recursive,
				DryRun:      dryRun,
				Confirmed:   confirmed,
				Parallelism: cfg.Transfer.Parallelism,
			})
		})
	},
}

var lsCmd = &cobra.Command{
	Use:   "ls <bucket> [prefix]",
	Short: "List objects under a prefix",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		prefix := ""
		if len(args) == 2 {
			prefix = args[1]
		}
		return withApp(cmd, func(ctx context.Context, a *app.App, cfg *config.Config) error {
			return a.List(ctx, args[0], prefix)
		})
	},
}

var presignCmd = &cobra.Command{
	Use:   "presign <bucket> <key>",
	Short: "Generate a presigned URL for one object",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		method, _ := cmd.Flags().GetString("method")
		expires, _ := cmd.Flags().GetDuration("expires")
		return withApp(cmd, func(ctx context.Context, a *app.App, cfg *config.Config) error {
			u, err := a.Presign(ctx, args[0], args[1], method, expires)
			if err != nil {
				return err
			}
			fmt.Println(u.String())
			return nil
		})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent transfer outcomes from the journal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		return withApp(cmd, func(ctx context.Context, a *app.App, cfg *config.Config) error {
			return a.History(limit)
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (yaml)")
	rootCmd.PersistentFlags().String("endpoint", "", "S3-compatible endpoint (host:port)")
	rootCmd.PersistentFlags().String("access-key", "", "Access key")
	rootCmd.PersistentFlags().String("secret-key", "", "Secret key")
	rootCmd.PersistentFlags().Bool("secure", true, "Use HTTPS")
	rootCmd.PersistentFlags().Int("parallelism", 8, "Number of concurrent workers")
	rootCmd.PersistentFlags().String("journal", "./s3batch.db", "Transfer journal database file")
	rootCmd.PersistentFlags().String("metrics-listen", "", "Expose Prometheus metrics on this address (e.g. :9090)")
	rootCmd.PersistentFlags().Bool("show-progress", true, "Show progress display")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug/info/warn/error)")

	downloadCmd.Flags().BoolP("recursive", "r", false, "Download every object under the key as a prefix")

	rmCmd.Flags().BoolP("recursive", "r", false, "Delete every object under the key as a prefix")
	rmCmd.Flags().Bool("dry-run", false, "Report what would be deleted without deleting")
	rmCmd.Flags().BoolP("yes", "y", false, "Confirm the deletion")

	presignCmd.Flags().String("method", "GET", "HTTP method to presign (GET or PUT)")
	presignCmd.Flags().Duration("expires", 15*time.Minute, "URL validity duration")

	historyCmd.Flags().Int("limit", 20, "Maximum number of records to show")

	rootCmd.AddCommand(uploadCmd, downloadCmd, rmCmd, lsCmd, presignCmd, historyCmd)
}

// withApp loads config, builds the application and runs fn under a context
// cancelled on SIGINT/SIGTERM.
func withApp(cmd *cobra.Command, fn func(context.Context, *app.App, *config.Config) error) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	a, err := app.New(cfg, log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info("Received shutdown signal, gracefully stopping...")
		cancel()
	}()

	err = fn(ctx, a, cfg)

	if closeErr := a.Close(); closeErr != nil {
		log.Error("Error closing application", zap.Error(closeErr))
	}

	return err
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
