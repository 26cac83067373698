package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"playerkit/internal/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var rootCmd = &cobra.Command{
	Use:   "playerd [source...]",
	Short: "Run a media player with an HTTP control API",
	Long: "playerd builds a player from a playlist, plays it on the simulated engine\n" +
		"and exposes status, control and an event stream over HTTP.\n\n" +
		"Sources given on the command line replace the playlist from the config file.",
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringP("config", "c", "", "Path to the player config (default $"+config.EnvConfigPath+" or "+config.DefaultPath+")")
	rootCmd.Flags().IntP("port", "p", 0, "HTTP API port (overrides config and environment)")
	rootCmd.Flags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.Flags().Bool("dev", false, "Use development logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	// Load environment variables
	envErr := godotenv.Load()

	settings, err := settingsFromFlags(cmd, args)
	if err != nil {
		return err
	}

	app := fx.New(AppOptions(settings))
	if err := app.Err(); err != nil {
		return fmt.Errorf("failed to build player: %w", err)
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("failed to start player: %w", err)
	}
	if envErr != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "No .env file found, using environment variables")
	}

	// Wait for interrupt signal
	<-ctx.Done()

	if err := app.Stop(context.Background()); err != nil {
		return fmt.Errorf("failed to stop player: %w", err)
	}
	return nil
}

func settingsFromFlags(cmd *cobra.Command, args []string) (Settings, error) {
	flags := cmd.Flags()

	path, err := flags.GetString("config")
	if err != nil {
		return Settings{}, err
	}
	if path == "" {
		path = os.Getenv(config.EnvConfigPath)
	}
	if path == "" {
		path = config.DefaultPath
	}

	port, err := flags.GetInt("port")
	if err != nil {
		return Settings{}, err
	}
	level, err := flags.GetString("log-level")
	if err != nil {
		return Settings{}, err
	}
	dev, err := flags.GetBool("dev")
	if err != nil {
		return Settings{}, err
	}

	return Settings{
		ConfigPath:  path,
		Sources:     args,
		Port:        port,
		LogLevel:    level,
		Development: dev,
		Getenv:      os.Getenv,
	}, nil
}
