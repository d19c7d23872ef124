package cli

import (
	"github.com/spf13/cobra"
)

// newRefsCommand exposes the read-only reference tables whose ids the
// property and parameter commands take as flags.
func newRefsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refs",
		Short: "List reference data (value types, property sections)",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "value-types",
		Short: "List all value types",
		RunE: func(cmd *cobra.Command, args []string) error {
			cli := getCliContext(cmd)
			types, err := cli.Client.Get(cmd.Context(), "/value-types/value-type/", nil)
			if err != nil {
				return err
			}
			return printJSON(map[string]any{"value_types": types})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "sections",
		Short: "List all property sections",
		RunE: func(cmd *cobra.Command, args []string) error {
			cli := getCliContext(cmd)
			sections, err := cli.Client.Get(cmd.Context(), "/property-sections/section-name/", nil)
			if err != nil {
				return err
			}
			return printJSON(map[string]any{"property_sections": sections})
		},
	})

	return cmd
}
