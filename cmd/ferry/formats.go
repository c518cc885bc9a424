package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/ferry/internal/format"
	"github.com/ALT-F4-LLC/ferry/internal/render"
	"github.com/ALT-F4-LLC/ferry/internal/transform"
)

type formatInfo struct {
	Format    string `json:"format"`
	Extension string `json:"extension"`
	MimeType  string `json:"mime_type"`
}

var formatsCmd = &cobra.Command{
	Use:         "formats",
	Short:       "List the supported export formats and transforms",
	Annotations: map[string]string{"skipDB": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		cfg := getCfg(cmd)

		formats := format.DefaultRegistry(cfg.Export.Settings).Formats()
		infos := make([]formatInfo, len(formats))
		for i, f := range formats {
			infos[i] = formatInfo{Format: f.String(), Extension: f.Extension(), MimeType: f.MimeType()}
		}
		transforms := transform.Names()

		msg := render.RenderFormats(formats) + "\nTransforms: " + strings.Join(transforms, ", ")
		w.Success(struct {
			Formats    []formatInfo `json:"formats"`
			Transforms []string     `json:"transforms"`
		}{
			Formats:    infos,
			Transforms: transforms,
		}, msg)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}
