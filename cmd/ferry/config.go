package main

import (
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/ferry/internal/db"
	"github.com/ALT-F4-LLC/ferry/internal/output"
)

type configInfo struct {
	ConfigPath     string `json:"config_path"`
	ConfigFound    bool   `json:"config_found"`
	Driver         string `json:"driver"`
	DSN            string `json:"dsn"`
	SchemaVersion  int    `json:"schema_version,omitempty"`
	Entities       int    `json:"entities"`
	Format         string `json:"format"`
	LogLevel       string `json:"log_level"`
	MetricsEnabled bool   `json:"metrics_enabled"`
	NATSURL        string `json:"nats_url,omitempty"`
	FerryConfigEnv string `json:"ferry_config_env"`
}

var configCmd = &cobra.Command{
	Use:         "config",
	Short:       "Display the resolved ferry configuration",
	Annotations: map[string]string{"skipDB": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		cfg := getCfg(cmd)

		info := configInfo{
			ConfigPath:     cfg.Path,
			ConfigFound:    cfg.Path != "",
			Driver:         cfg.Database.Driver,
			DSN:            redactDSN(cfg.Database.DSN),
			Entities:       len(cfg.Entities),
			Format:         cfg.Export.Format,
			LogLevel:       cfg.Logging.Level,
			MetricsEnabled: cfg.Metrics.Enabled,
			NATSURL:        cfg.Events.NATSURL,
			FerryConfigEnv: os.Getenv("FERRY_CONFIG"),
		}
		if !info.ConfigFound {
			w.Warn("No configuration file found. Run 'ferry demo' to create one.")
		}

		if cfg.Database.DSN != "" && cfg.Database.Driver == string(db.SQLite) {
			if _, err := os.Stat(cfg.Database.DSN); err == nil {
				conn, err := db.Open(cfg.Database.Driver, cfg.Database.DSN)
				if err != nil {
					return cmdErr(fmt.Errorf("opening database: %w", err), output.ErrGeneral)
				}
				defer conn.Close()

				v, err := db.SchemaVersion(conn)
				if err != nil {
					w.Warn("reading schema version: %v", err)
				}
				info.SchemaVersion = v
			}
		}

		w.Success(info, formatConfigHuman(info))
		return nil
	},
}

// redactDSN hides the password of URL-style DSNs.
func redactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return dsn
	}
	return u.Redacted()
}

func formatEnvValue(val string) string {
	if val == "" {
		return "(not set)"
	}
	return val
}

func formatConfigHuman(info configInfo) string {
	path := info.ConfigPath
	if !info.ConfigFound {
		path = "(defaults)"
	}

	lines := fmt.Sprintf("Config file:     %s\n", path)
	lines += fmt.Sprintf("Driver:          %s\n", info.Driver)
	lines += fmt.Sprintf("DSN:             %s\n", formatEnvValue(info.DSN))
	if info.SchemaVersion > 0 {
		lines += fmt.Sprintf("Schema version:  %d\n", info.SchemaVersion)
	}
	lines += fmt.Sprintf("Entities:        %d\n", info.Entities)
	lines += fmt.Sprintf("Default format:  %s\n", info.Format)
	lines += fmt.Sprintf("Log level:       %s\n", info.LogLevel)
	lines += fmt.Sprintf("Metrics:         %t\n", info.MetricsEnabled)
	lines += fmt.Sprintf("NATS:            %s\n", formatEnvValue(info.NATSURL))
	lines += fmt.Sprintf("FERRY_CONFIG:    %s", formatEnvValue(info.FerryConfigEnv))

	return lines
}

func init() {
	rootCmd.AddCommand(configCmd)
}
