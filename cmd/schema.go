package cmd

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"
	"github.com/streamcap/streamcap/pipeline"
)

func init() {
	rootCmd.AddCommand(schemaCmd)
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of the run summary emitted by run --json",
	Run: func(cmd *cobra.Command, args []string) {
		reflector := new(jsonschema.Reflector)
		reflector.Anonymous = true

		schema := reflector.Reflect(pipeline.Summary{})
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		handleErr(encoder.Encode(schema))
	},
}
