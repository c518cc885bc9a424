package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/ferry/internal/config"
	"github.com/ALT-F4-LLC/ferry/internal/db"
	"github.com/ALT-F4-LLC/ferry/internal/events"
	"github.com/ALT-F4-LLC/ferry/internal/export"
	"github.com/ALT-F4-LLC/ferry/internal/format"
	"github.com/ALT-F4-LLC/ferry/internal/output"
	"github.com/ALT-F4-LLC/ferry/internal/source/sqlsource"
	"github.com/ALT-F4-LLC/ferry/internal/transform"
)

var exportCmd = &cobra.Command{
	Use:   "export <entity>",
	Short: "Export the records of one entity",
	Long: `Stream the records of one entity to CSV, JSON or XML.

Filters, sort keys and paging are pushed down to the database. Output goes
to stdout unless --output names a file.`,
	Example: `  ferry export user --format json
  ferry export article --where author=1 --sort publishedAt:desc --limit 10
  ferry export user --fields id,email,fullName --transform concat:fullName=firstName,lastName
  ferry export user --transform mask:email -o users.csv`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		cfg := getCfg(cmd)
		logger := getLogger(cmd)

		req, err := buildRequest(cmd, cfg, args[0])
		if err != nil {
			return cmdErr(err, output.ErrValidation)
		}

		outPath, _ := cmd.Flags().GetString("output")
		force, _ := cmd.Flags().GetBool("force")
		if outPath != "" && outPath != "-" && !force {
			proceed, err := confirmOverwrite(w, outPath)
			if err != nil {
				return err
			}
			if !proceed {
				w.Info("Cancelled.")
				return nil
			}
		}

		dialect, err := db.ParseDialect(cfg.Database.Driver)
		if err != nil {
			return cmdErr(err, output.ErrValidation)
		}
		catalog, err := cfg.Catalog()
		if err != nil {
			return cmdErr(fmt.Errorf("building entity catalog: %w", err), output.ErrValidation)
		}
		src, err := sqlsource.New(getDB(cmd), dialect, catalog, sqlsource.WithLogger(logger))
		if err != nil {
			return cmdErr(err, output.ErrValidation)
		}

		listener, metrics, cleanup := buildListeners(cfg, logger, w)
		defer cleanup()

		exporter := export.New(src, format.DefaultRegistry(cfg.Export.Settings),
			export.WithListener(listener),
			export.WithLogger(logger),
		)

		var res export.Result
		destination := output.StdoutDestination
		if outPath == "" || outPath == "-" {
			res, err = exporter.Export(cmd.Context(), req, cmd.OutOrStdout())
		} else {
			destination = outPath
			res, err = exporter.ExportToFile(cmd.Context(), req, outPath)
		}

		if metrics != nil {
			if perr := metrics.Push(); perr != nil {
				w.Warn("%v", perr)
			}
		}
		if err != nil {
			return exportErr(err)
		}

		summary := output.ExportSummary{
			RunID:       res.RunID,
			Entity:      req.Entity,
			Format:      string(req.Format),
			Destination: destination,
			Records:     res.Records,
			Bytes:       res.Bytes,
			Duration:    res.Duration,
		}
		w.Summary(summary)
		return nil
	},
}

// buildRequest assembles the export request from the flags, falling back
// to the configured format and options.
func buildRequest(cmd *cobra.Command, cfg *config.Config, entity string) (export.Request, error) {
	flags := cmd.Flags()

	formatName, _ := flags.GetString("format")
	if formatName == "" {
		formatName = cfg.Export.Format
	}

	wheres, _ := flags.GetStringArray("where")
	criteria, err := parseCriteria(wheres)
	if err != nil {
		return export.Request{}, err
	}

	sorts, _ := flags.GetStringArray("sort")
	orderBy, err := parseSort(sorts)
	if err != nil {
		return export.Request{}, err
	}

	specs, _ := flags.GetStringArray("transform")
	transformers, err := transform.ParseAll(specs)
	if err != nil {
		return export.Request{}, err
	}

	limit, _ := flags.GetInt("limit")
	offset, _ := flags.GetInt("offset")
	fields, _ := flags.GetStringSlice("fields")

	opts := cfg.ExportOptions()
	if flags.Changed("bool-as-string") {
		v, _ := flags.GetBool("bool-as-string")
		opts.BooleanToInteger = export.Bool(!v)
	}
	if flags.Changed("datetime-format") {
		opts.DateTimeFormat, _ = flags.GetString("datetime-format")
	}
	if flags.Changed("null-value") {
		raw, _ := flags.GetString("null-value")
		opts.NullValue = parseNullValue(raw)
	}
	if flags.Changed("strict") {
		opts.StrictFields, _ = flags.GetBool("strict")
	}
	if flags.Changed("no-default-extraction") {
		opts.DisableDefaultExtraction, _ = flags.GetBool("no-default-extraction")
	}

	return export.Request{
		Entity:       entity,
		Format:       format.Normalize(formatName),
		Criteria:     criteria,
		OrderBy:      orderBy,
		Limit:        limit,
		Offset:       offset,
		Fields:       fields,
		Options:      &opts,
		Transformers: transformers,
	}, nil
}

// confirmOverwrite reports whether an existing file at path may be
// replaced. In JSON mode an existing file is a conflict.
func confirmOverwrite(w *output.Writer, path string) (bool, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}
	if w.JSONMode {
		return false, cmdErr(
			fmt.Errorf("output file %s already exists: use --force to overwrite it", path),
			output.ErrConflict,
		)
	}

	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("%s already exists. Overwrite it?", path)).
				Affirmative("Yes, overwrite").
				Negative("Cancel").
				Value(&confirmed),
		),
	)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, cmdErr(fmt.Errorf("interactive form failed: %w", err), output.ErrGeneral)
	}
	return confirmed, nil
}

// buildListeners wires the lifecycle listeners enabled by cfg. The returned
// Metrics is nil when metrics are disabled. cleanup drains the NATS
// connection, if any.
func buildListeners(cfg *config.Config, logger *slog.Logger, w *output.Writer) (export.Listener, *events.Metrics, func()) {
	listeners := []export.Listener{events.NewLogListener(logger)}
	cleanup := func() {}

	var metrics *events.Metrics
	if cfg.Metrics.Enabled {
		m, err := events.NewMetrics(cfg.Metrics.Job, cfg.Metrics.PushgatewayURL)
		if err != nil {
			w.Warn("metrics disabled: %v", err)
		} else {
			metrics = m
			listeners = append(listeners, m)
		}
	}

	if cfg.Events.NATSURL != "" {
		nc, err := events.Connect(cfg.Events.NATSURL, logger)
		if err != nil {
			w.Warn("event publishing disabled: %v", err)
		} else {
			listeners = append(listeners, events.NewNATSListener(nc, cfg.Events.SubjectPrefix, logger))
			cleanup = func() {
				if err := nc.Drain(); err != nil {
					logger.Warn("draining NATS connection", "error", err)
				}
			}
		}
	}

	return events.Combine(listeners...), metrics, cleanup
}

func init() {
	exportCmd.Flags().StringP("format", "f", "", "Output format: csv, json, xml (default: export.format from config)")
	exportCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	exportCmd.Flags().StringArrayP("where", "w", nil, "Equality filter field=value (repeatable, null matches null)")
	exportCmd.Flags().StringArrayP("sort", "s", nil, "Sort key field[:asc|desc] (repeatable)")
	exportCmd.Flags().Int("limit", 0, "Maximum number of records (0 means no limit)")
	exportCmd.Flags().Int("offset", 0, "Number of records to skip")
	exportCmd.Flags().StringSlice("fields", nil, "Fields to export, in order (default: every plain field)")
	exportCmd.Flags().StringArrayP("transform", "t", nil, "Transform name:args, e.g. mask:email or concat:fullName=firstName,lastName (repeatable)")
	exportCmd.Flags().Bool("bool-as-string", false, "Render booleans as true/false instead of 1/0")
	exportCmd.Flags().String("datetime-format", "", "Go time layout for date/time values")
	exportCmd.Flags().String("null-value", "", "Replacement for null values")
	exportCmd.Flags().Bool("strict", false, "Reject unknown fields instead of exporting them as null")
	exportCmd.Flags().Bool("no-default-extraction", false, "Let transforms populate every field")
	exportCmd.Flags().Bool("force", false, "Overwrite the output file without asking")
	rootCmd.AddCommand(exportCmd)
}
