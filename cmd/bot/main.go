package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"hwstatusbot/internal/app"
	"hwstatusbot/internal/config"
	logx "hwstatusbot/pkg/logx"
)

// exitError carries a process exit code through cobra.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			cancel()
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, "fatal:", err)
		cancel()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts app.Options

	cmd := &cobra.Command{
		Use:           "hwstatusbot",
		Short:         "Polls homework review statuses and reports changes to Telegram",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to config file (.json, .yaml); empty uses defaults and environment")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", "", "dotenv file to load (default ./.env if present)")

	cmd.AddCommand(newCheckCmd(&opts))
	return cmd
}

func newCheckCmd(opts *app.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate configuration and credentials without contacting any service",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, err := app.LoadConfig(*opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "config ok")
			fmt.Fprintf(out, "  poll.interval: %s\n", orDefault(cfg.Poll.Interval, "10m"))
			fmt.Fprintf(out, "  poll.empty_homeworks: %s\n", orDefault(cfg.Poll.EmptyHomeworks, "error"))
			fmt.Fprintf(out, "  telegram.chat_id: %s\n", cfg.Telegram.ChatID)
			return nil
		},
	}
}

func run(ctx context.Context, opts app.Options) error {
	a, err := app.New(opts)
	if err != nil {
		var ce *config.ConfigError
		if errors.As(err, &ce) {
			// already logged by the app
			return &exitError{code: 0, err: err}
		}
		return err
	}

	runErr := a.Run(ctx)

	closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.Close(closeCtx); err != nil {
		logx.NewConsole("info").Warn("shutdown incomplete", logx.Err(err))
	}
	return runErr
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
