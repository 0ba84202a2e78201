// Package cmd provides the enrollctl commands.
package cmd

import (
	"context"
	"os"

	"github.com/jrsteele09/go-enrollment-client/app"
	"github.com/jrsteele09/go-enrollment-client/internal/config"
	"github.com/jrsteele09/go-enrollment-client/internal/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "enrollctl",
	Short: "Command line client for the enrollment management backend",
	Long: `enrollctl signs in to the enrollment backend and keeps the session
alive between runs. The refresh cookie and access token are stored locally
(sqlite by default) and renewed automatically when the backend answers 401.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", config.GetEnv("ENROLLCTL_CONFIG", ""),
		"config file (default: ENROLLCTL_CONFIG env var, ./enrollctl.yaml or ~/.enrollctl/enrollctl.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error); overrides the config file")
}

// session is what every command works with: the app plus the terminal it
// redirects and toasts on.
type session struct {
	*app.App
	term *terminal
	log  zerolog.Logger
}

// openSession loads the configuration and builds the app. The terminal is
// registered as the navigator straight away since the CLI has no other router.
func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := config.New(cfgFile)
	if err != nil {
		return nil, err
	}

	level := cfg.GetLogLevel()
	if logLevel != "" {
		level = logLevel
	}
	log := logger.NewWithWriter(os.Stderr, cfg.GetEnv(), level)

	term := newTerminal(cmd.OutOrStdout())
	a, err := app.New(commandContext(cmd), cfg, log, app.WithToaster(term), app.WithFallbackNavigator(term))
	if err != nil {
		log.Err(err).Msg("Failed to start session client")
		return nil, err
	}
	a.Notifier.RegisterNavigator(term)

	return &session{App: a, term: term, log: log}, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
