package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/maxgio92/fnbound/internal/config"
	"github.com/maxgio92/fnbound/internal/logger"
)

// Exit codes.
const (
	exitOK    = 0
	exitRun   = 1
	exitUsage = 2
)

// exitError carries the process exit code of a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// runFailure marks err as a failure of the run itself rather than of its
// invocation.
func runFailure(err error) error {
	return &exitError{code: exitRun, err: err}
}

// app is the state shared by the commands of one invocation.
type app struct {
	v          *viper.Viper
	configFile string
	stdout     io.Writer
	stderr     io.Writer
}

// settings reads the configuration file and returns the validated settings.
func (a *app) settings() (*config.Settings, error) {
	if err := config.ReadFile(a.v, a.configFile); err != nil {
		return nil, err
	}
	return config.Load(a.v)
}

func (a *app) logger() (*slog.Logger, error) {
	return logger.New(a.stderr, a.v.GetString(config.KeyLogLevel), a.v.GetString(config.KeyLogFormat))
}

// bindFlags binds command flags to configuration keys once cmd is selected
// to run, so that commands sharing a key do not shadow each other.
func (a *app) bindFlags(cmd *cobra.Command, keys map[string]string) {
	cmd.PreRunE = func(cmd *cobra.Command, _ []string) error {
		for key, flag := range keys {
			if err := a.v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
				return fmt.Errorf("error binding flag %s: %w", flag, err)
			}
		}
		return nil
	}
}

// rootCommand creates the fnbound command tree.
func rootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "fnbound",
		Short:         "Score function boundary recovery against ground truth",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configFile, "config", "c", "", "Path to a configuration file (default ./fnbound.yaml)")
	pf.String("log-level", "info", "Log level: debug, info, warn, error")
	pf.String("log-format", logger.FormatText, "Log format: text, json")
	if err := a.v.BindPFlag(config.KeyLogLevel, pf.Lookup("log-level")); err != nil {
		panic(err)
	}
	if err := a.v.BindPFlag(config.KeyLogFormat, pf.Lookup("log-format")); err != nil {
		panic(err)
	}

	root.AddCommand(
		scoreCommand(a),
		reportCommand(a),
		historyCommand(a),
		versionCommand(a),
	)
	return root
}

// run executes the command line args and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{v: config.New(), stdout: stdout, stderr: stderr}
	root := rootCommand(a)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)

	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUsage
}
