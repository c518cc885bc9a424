package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/ferry/internal/output"
	"github.com/ALT-F4-LLC/ferry/internal/render"
)

var entitiesCmd = &cobra.Command{
	Use:         "entities",
	Short:       "List the configured entities",
	Annotations: map[string]string{"skipDB": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		cfg := getCfg(cmd)

		catalog, err := cfg.Catalog()
		if err != nil {
			return cmdErr(fmt.Errorf("building entity catalog: %w", err), output.ErrValidation)
		}
		entities := catalog.Entities()

		treeMode, _ := cmd.Flags().GetBool("tree")
		var msg string
		if treeMode {
			msg = render.RenderAssociationTree(entities)
		} else {
			msg = render.RenderEntities(entities)
		}

		w.Success(entities, msg)
		return nil
	},
}

var fieldsCmd = &cobra.Command{
	Use:         "fields <entity>",
	Short:       "Show the fields and associations of an entity",
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{"skipDB": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		cfg := getCfg(cmd)

		catalog, err := cfg.Catalog()
		if err != nil {
			return cmdErr(fmt.Errorf("building entity catalog: %w", err), output.ErrValidation)
		}
		entity, ok := catalog.Lookup(args[0])
		if !ok {
			return cmdErr(
				fmt.Errorf("entity %q not found: available entities are %v", args[0], catalog.Names()),
				output.ErrNotFound,
			)
		}

		doc, _ := cmd.Flags().GetBool("doc")
		if !doc {
			w.Success(entity, render.RenderFields(entity))
			return nil
		}

		md, err := render.RenderMarkdown(render.EntityMarkdown(entity))
		if err != nil {
			w.Warn("rendering markdown: %v", err)
		}
		w.Success(entity, md)
		return nil
	},
}

func init() {
	entitiesCmd.Flags().Bool("tree", false, "Show associations as a tree")
	fieldsCmd.Flags().Bool("doc", false, "Render the entity as a markdown document")
	rootCmd.AddCommand(entitiesCmd)
	rootCmd.AddCommand(fieldsCmd)
}
