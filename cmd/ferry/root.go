package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/ferry/internal/config"
	"github.com/ALT-F4-LLC/ferry/internal/db"
	"github.com/ALT-F4-LLC/ferry/internal/logging"
	"github.com/ALT-F4-LLC/ferry/internal/output"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

type contextKey string

const (
	dbKey     contextKey = "db"
	cfgKey    contextKey = "cfg"
	loggerKey contextKey = "logger"
)

// CmdError wraps an error with a machine-readable error code for structured output.
type CmdError struct {
	Err  error
	Code output.ErrorCode
}

func (e *CmdError) Error() string { return e.Err.Error() }

func (e *CmdError) Unwrap() error { return e.Err }

func cmdErr(err error, code output.ErrorCode) *CmdError {
	return &CmdError{Err: err, Code: code}
}

// exportErr maps an export failure to its error code.
func exportErr(err error) *CmdError {
	return cmdErr(err, output.CodeFor(err))
}

var rootCmd = &cobra.Command{
	Use:     "ferry",
	Short:   "Stream database records to CSV, JSON or XML",
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if _, ok := cmd.Annotations["skipConfig"]; ok {
			return nil
		}

		path, _ := cmd.Flags().GetString("config")
		cfg, err := config.Resolve(path)
		if err != nil {
			var ve config.ValidationError
			if errors.As(err, &ve) {
				return cmdErr(err, output.ErrValidation)
			}
			return cmdErr(err, output.ErrGeneral)
		}

		level := cfg.Logging.Level
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			level = "debug"
		}
		logger := logging.New(level, cfg.Logging.Format, cmd.ErrOrStderr())

		ctx := context.WithValue(cmd.Context(), cfgKey, cfg)
		ctx = context.WithValue(ctx, loggerKey, logger)

		if _, ok := cmd.Annotations["skipDB"]; ok {
			cmd.SetContext(ctx)
			return nil
		}

		if cfg.Database.DSN == "" {
			return cmdErr(
				fmt.Errorf("no database configured, set database.dsn in %s or run 'ferry demo' to create one", config.FileName),
				output.ErrNotFound,
			)
		}

		conn, err := db.Open(cfg.Database.Driver, cfg.Database.DSN)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		if err := db.SetPoolSize(conn, cfg.Database.Driver, cfg.Database.MaxOpenConns); err != nil {
			conn.Close()
			return err
		}
		logger.Debug("database opened", "driver", cfg.Database.Driver)

		cmd.SetContext(context.WithValue(ctx, dbKey, conn))
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		conn, ok := cmd.Context().Value(dbKey).(*sql.DB)
		if ok && conn != nil {
			return conn.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the configuration file (default: $FERRY_CONFIG or ./ferry.yaml)")
	rootCmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func getWriter(cmd *cobra.Command) *output.Writer {
	jsonMode, _ := cmd.Flags().GetBool("json")
	quietMode, _ := cmd.Flags().GetBool("quiet")
	w := output.New(jsonMode, quietMode)
	w.Stdout = cmd.OutOrStdout()
	w.Stderr = cmd.ErrOrStderr()
	return w
}

func getCfg(cmd *cobra.Command) *config.Config {
	cfg, _ := cmd.Context().Value(cfgKey).(*config.Config)
	return cfg
}

func getDB(cmd *cobra.Command) *sql.DB {
	conn, _ := cmd.Context().Value(dbKey).(*sql.DB)
	return conn
}

func getLogger(cmd *cobra.Command) *slog.Logger {
	if l, ok := cmd.Context().Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return logging.Discard()
}

// Execute runs the root command and returns an exit code. An interrupt
// cancels the running command.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		jsonMode, _ := rootCmd.PersistentFlags().GetBool("json")
		quietMode, _ := rootCmd.PersistentFlags().GetBool("quiet")
		w := output.New(jsonMode, quietMode)
		w.Stdout = rootCmd.OutOrStdout()
		w.Stderr = rootCmd.ErrOrStderr()

		var ce *CmdError
		if errors.As(err, &ce) {
			return w.Error(ce.Err, ce.Code)
		}
		return w.Error(err, output.ErrGeneral)
	}
	return 0
}
