// cmd/eligibility-cli/encode.go
package main

import (
	"loan-eligibility-workers/internal/eligibility/features"

	"github.com/spf13/cobra"
)

func newEncodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Print the feature vector for an application",
		RunE: func(cmd *cobra.Command, args []string) error {
			input, _ := cmd.Flags().GetString("input")
			formDefaults, _ := cmd.Flags().GetBool("form-defaults")

			raw, err := readApplication(cmd, input)
			if err != nil {
				return err
			}
			if formDefaults {
				raw = raw.WithDefaults(features.FormDefaults)
			}

			v := features.Encode(raw)
			return printJSON(cmd, map[string]interface{}{
				"features":      v.Slice(),
				"namedFeatures": v.Named(),
			})
		},
	}
	cmd.Flags().StringP("input", "i", "-", "Application JSON file, or - for stdin")
	cmd.Flags().Bool("form-defaults", false, "Fill absent fields with the loan form defaults")
	return cmd
}
