package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"radio-epg/config"
	"radio-epg/epg"
	"radio-epg/logging"

	"github.com/spf13/cobra"
)

var (
	configPath string
	outputPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:           "radio-epg",
	Short:         "Build the XMLTV guide for Vietnamese radio stations",
	Long:          `Fetches the Hanoi, VOH and VOV Giao thông schedules and writes them as one XMLTV guide.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "source list (default sources.yaml, or $EPG_CONFIG)")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "guide output path")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if outputPath != "" {
		cfg.Output = outputPath
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	logging.Configure(logging.Config{Level: cfg.LogLevel, File: cfg.LogFile})

	log := logging.WithComponent("main")
	log.Info().Str(logging.FieldPath, cfg.Output).Msg("starting EPG update")
	if err := epg.Generate(cmd.Context(), cfg); err != nil {
		return err
	}
	log.Info().Msg("EPG update completed")
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log := logging.Base()
		log.Error().Err(err).Msg("failed to update EPG")
		stop()
		os.Exit(1)
	}
}
