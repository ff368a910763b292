// cmd/eligibility-cli/root.go
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"loan-eligibility-workers/internal/common/logger"
	"loan-eligibility-workers/internal/eligibility/features"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "eligibility-cli",
		Short:         "Loan eligibility tooling",
		Long:          "Encode applications, run the eligibility model locally, manage the activity registry and submit applications to the workflow.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(newEncodeCmd())
	root.AddCommand(newPredictCmd())
	root.AddCommand(newRegistryCmd())
	root.AddCommand(newCacheCmd())
	root.AddCommand(newSubmitCmd())
	return root
}

func cliLogger(cmd *cobra.Command) logger.Logger {
	level, _ := cmd.Flags().GetString("log-level")
	return logger.NewStructured(level, "console")
}

// readApplication reads a JSON object from path, or from stdin when path is "-".
func readApplication(cmd *cobra.Command, path string) (features.RawApplication, error) {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw features.RawApplication
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}
	if raw == nil {
		raw = features.RawApplication{}
	}
	return raw, nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
