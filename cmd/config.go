package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"github.com/ilblu/belaf/internal/config"
	"github.com/ilblu/belaf/internal/manifest"
)

// newConfigCmd groups configuration-inspection subcommands. Unlike
// belaf init, these never write to the repository; they describe the
// shape of belaf/config.toml and the release manifest format.
func newConfigCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "config",
		Short: "Inspect this engine's configuration and manifest formats",
	}
	c.AddCommand(newConfigSchemaCmd())
	c.AddCommand(newConfigShowCmd())
	return c
}

// newConfigSchemaCmd reflects Config and ReleaseManifest into JSON Schema,
// the reverse direction of the teacher's tools/config-schema-generator
// (which reflects a schema to validate hand-written TOML/YAML); here the
// schema is emitted for editor tooling and CI validation of
// belaf/config.toml and generated release manifests.
func newConfigSchemaCmd() *cobra.Command {
	var target string
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema for the config file or release manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := &jsonschema.Reflector{ExpandedStruct: true}
			var schema *jsonschema.Schema
			switch target {
			case "config":
				schema = r.Reflect(&config.Config{})
			case "manifest":
				schema = r.Reflect(&manifest.ReleaseManifest{})
			default:
				return fmt.Errorf("unknown --target %q, want \"config\" or \"manifest\"", target)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(schema)
		},
	}
	cmd.Flags().StringVar(&target, "target", "config", `which schema to print: "config" or "manifest"`)
	return cmd
}

// newConfigShowCmd prints the fully layered configuration (embedded
// defaults plus the current repository's overlay) as TOML, so an operator
// can see what belaf actually resolved without hand-merging the overlay.
func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration for the current repository",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			cfg, err := config.Load(dir)
			if err != nil {
				return err
			}
			data, err := config.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
