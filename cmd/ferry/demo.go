package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/ferry/internal/config"
	"github.com/ALT-F4-LLC/ferry/internal/db"
	"github.com/ALT-F4-LLC/ferry/internal/output"
)

const defaultDemoDB = "ferry-demo.db"

type demoInfo struct {
	DBPath        string   `json:"db_path"`
	ConfigPath    string   `json:"config_path"`
	SchemaVersion int      `json:"schema_version"`
	Entities      []string `json:"entities"`
}

var demoCmd = &cobra.Command{
	Use:   "demo [database]",
	Short: "Create a seeded SQLite database and a ferry.yaml describing it",
	Long: `Create a SQLite database with users, tags and articles, seed it with
sample rows, and write a configuration file mapping those tables to
entities. Existing databases are migrated and only seeded when empty.`,
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{"skipConfig": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)

		dbPath := defaultDemoDB
		if len(args) == 1 {
			dbPath = args[0]
		}

		explicit, _ := cmd.Flags().GetString("config")
		cfgPath, _, err := config.ResolvePath(explicit)
		if err != nil {
			return cmdErr(fmt.Errorf("resolving configuration path: %w", err), output.ErrGeneral)
		}
		force, _ := cmd.Flags().GetBool("force")
		if _, err := os.Stat(cfgPath); err == nil && !force {
			return cmdErr(
				fmt.Errorf("configuration file %s already exists: use --force to replace it", cfgPath),
				output.ErrConflict,
			)
		} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cmdErr(fmt.Errorf("checking configuration file: %w", err), output.ErrIO)
		}

		if dir := filepath.Dir(dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return cmdErr(fmt.Errorf("creating directory: %w", err), output.ErrIO)
			}
		}

		conn, err := db.Open(string(db.SQLite), dbPath)
		if err != nil {
			return cmdErr(fmt.Errorf("opening database: %w", err), output.ErrGeneral)
		}
		defer conn.Close()

		if err := db.Initialize(conn); err != nil {
			return cmdErr(fmt.Errorf("initializing schema: %w", err), output.ErrGeneral)
		}
		if err := db.Migrate(conn); err != nil {
			return cmdErr(fmt.Errorf("migrating schema: %w", err), output.ErrGeneral)
		}
		if err := db.Seed(conn); err != nil {
			return cmdErr(fmt.Errorf("seeding demo data: %w", err), output.ErrGeneral)
		}
		schemaVersion, err := db.SchemaVersion(conn)
		if err != nil {
			return cmdErr(fmt.Errorf("reading schema version: %w", err), output.ErrGeneral)
		}

		cfg := config.Default()
		cfg.Database.Driver = string(db.SQLite)
		cfg.Database.DSN = dbPath
		cfg.Entities = db.DemoEntities()
		if err := config.Validate(cfg); err != nil {
			return cmdErr(err, output.ErrValidation)
		}
		if err := config.Save(cfgPath, cfg); err != nil {
			return cmdErr(err, output.ErrIO)
		}

		names := make([]string, len(cfg.Entities))
		for i, e := range cfg.Entities {
			names[i] = e.Name
		}

		w.Success(demoInfo{
			DBPath:        dbPath,
			ConfigPath:    cfgPath,
			SchemaVersion: schemaVersion,
			Entities:      names,
		}, fmt.Sprintf("Demo database ready at %s, configuration written to %s", dbPath, cfgPath))
		return nil
	},
}

func init() {
	demoCmd.Flags().Bool("force", false, "Replace an existing configuration file")
	rootCmd.AddCommand(demoCmd)
}
