// cmd/eligibility-cli/predict.go
package main

import (
	"context"
	"fmt"
	"time"

	"loan-eligibility-workers/internal/eligibility"
	"loan-eligibility-workers/internal/eligibility/classifier"
	"loan-eligibility-workers/internal/eligibility/features"

	"github.com/spf13/cobra"
)

func newPredictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Evaluate an application against a model",
		RunE: func(cmd *cobra.Command, args []string) error {
			input, _ := cmd.Flags().GetString("input")
			modelPath, _ := cmd.Flags().GetString("model")
			remoteURL, _ := cmd.Flags().GetString("remote-url")
			timeout, _ := cmd.Flags().GetDuration("timeout")
			formDefaults, _ := cmd.Flags().GetBool("form-defaults")

			var model classifier.Classifier
			switch {
			case remoteURL != "":
				model = classifier.NewRemoteClassifier(remoteURL, timeout)
			case modelPath != "":
				m, err := classifier.LoadLinearModel(modelPath)
				if err != nil {
					return err
				}
				model = m
			default:
				return fmt.Errorf("one of --model or --remote-url is required")
			}

			raw, err := readApplication(cmd, input)
			if err != nil {
				return err
			}
			if formDefaults {
				raw = raw.WithDefaults(features.FormDefaults)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			result, err := eligibility.NewEvaluator(model, cliLogger(cmd)).Evaluate(ctx, raw)
			if err != nil {
				return err
			}

			return printJSON(cmd, map[string]interface{}{
				"result":          result.Decision.ResultText(),
				"approved":        result.Decision.Approved,
				"status":          result.Decision.Status,
				"label":           result.Label,
				"labelRecognized": result.Recognized,
			})
		},
	}
	cmd.Flags().StringP("input", "i", "-", "Application JSON file, or - for stdin")
	cmd.Flags().StringP("model", "m", "", "Linear model file (JSON or YAML)")
	cmd.Flags().String("remote-url", "", "Model server URL, used instead of --model")
	cmd.Flags().Duration("timeout", 5*time.Second, "Prediction timeout")
	cmd.Flags().Bool("form-defaults", true, "Fill absent fields with the loan form defaults")
	return cmd
}
