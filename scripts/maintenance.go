package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"alfredoptarigan/career-assistant/internal/config"
	"alfredoptarigan/career-assistant/internal/logger"
	"alfredoptarigan/career-assistant/internal/repositories"
	"alfredoptarigan/career-assistant/internal/services"
)

const app = "career-maintenance"

var (
	rootCmd = &cobra.Command{
		Use:   app,
		Short: "Housekeeping and diagnostics for the career assistant API",
	}

	cleanupCmd = &cobra.Command{
		Use:   "cleanup",
		Short: "Delete expired comparison cache entries and archived reports",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCleanup(cmd.Context())
		},
	}

	listModelsCmd = &cobra.Command{
		Use:   "list-models",
		Short: "List the Gemini models that support generateContent",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runListModels(cmd.Context())
		},
	}
)

func init() {
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindEnv("debug", "LOG_DEBUG")
	viper.BindEnv("json", "LOG_JSON")

	cleanupCmd.Flags().Duration("cache-max-age", 0, "delete cache entries not updated within this duration (default CACHE_MAX_AGE)")
	cleanupCmd.Flags().Duration("report-max-age", 0, "delete archived reports older than this duration (default REPORT_MAX_AGE)")
	viper.BindPFlag("cache-max-age", cleanupCmd.Flags().Lookup("cache-max-age"))
	viper.BindPFlag("report-max-age", cleanupCmd.Flags().Lookup("report-max-age"))

	rootCmd.AddCommand(cleanupCmd, listModelsCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newLogger() *zap.Logger {
	zlog, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	return zlog
}

// durationOverride returns the flag value when set, fallback otherwise.
func durationOverride(key string, fallback time.Duration) time.Duration {
	if d := viper.GetDuration(key); d > 0 {
		return d
	}
	return fallback
}

func runCleanup(ctx context.Context) error {
	cfg := config.Load()
	zlog := newLogger()
	defer zlog.Sync()

	db, err := config.InitDatabase(cfg, zlog)
	if err != nil {
		return fmt.Errorf("cleanup needs a database: %w", err)
	}

	cacheRepo := repositories.NewComparisonCacheRepository(db)
	reportRepo := repositories.NewReportRepository(db)
	storageService := services.NewStorageService(cfg.Storage.ReportPath)
	archive := services.NewReportArchive(storageService, reportRepo, zlog)

	janitor := services.NewJanitor(cacheRepo, archive, services.JanitorOptions{
		CacheMaxAge:  durationOverride("cache-max-age", cfg.Housekeeping.CacheMaxAge),
		ReportMaxAge: durationOverride("report-max-age", cfg.Housekeeping.ReportMaxAge),
	}, zlog)

	stats, err := janitor.RunOnce(ctx)
	fmt.Printf("Deleted %d cache entries and %d archived reports\n", stats.CacheEntries, stats.Reports)
	return err
}

func runListModels(ctx context.Context) error {
	cfg := config.Load()
	zlog := newLogger()
	defer zlog.Sync()

	gemini, err := services.NewGeminiService(ctx, services.GeminiOptions{
		APIKey: cfg.Gemini.APIKey,
		Model:  cfg.Gemini.Model,
	}, zlog)
	if err != nil {
		return err
	}

	models, err := gemini.ListModels(ctx)
	if err != nil {
		return err
	}

	fmt.Println("Models supporting generateContent:")
	for _, m := range models {
		fmt.Printf("  %-40s %s\n", m.ShortName, m.Name)
	}
	fmt.Printf("\nConfigured model: %s\n", gemini.ModelName())
	return nil
}
