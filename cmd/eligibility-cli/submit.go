// cmd/eligibility-cli/submit.go
package main

import (
	"context"
	"time"

	"loan-eligibility-workers/internal/common/camunda"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const defaultProcessID = "loan-eligibility"

func newSubmitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Start a loan eligibility process instance for an application",
		RunE: func(cmd *cobra.Command, args []string) error {
			input, _ := cmd.Flags().GetString("input")
			applicationID, _ := cmd.Flags().GetString("application-id")
			processID, _ := cmd.Flags().GetString("process-id")
			broker, _ := cmd.Flags().GetString("broker")
			timeout, _ := cmd.Flags().GetDuration("timeout")

			raw, err := readApplication(cmd, input)
			if err != nil {
				return err
			}

			variables := submitVariables(applicationID, raw)

			zeebe, err := camunda.NewClient(broker)
			if err != nil {
				return err
			}
			defer zeebe.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			instance, err := zeebe.CreateInstance(ctx, processID, variables)
			if err != nil {
				return err
			}

			return printJSON(cmd, map[string]interface{}{
				"applicationId":       variables["applicationId"],
				"processInstanceKey":  instance.GetProcessInstanceKey(),
				"processDefinitionId": instance.GetBpmnProcessId(),
				"version":             instance.GetVersion(),
			})
		},
	}
	cmd.Flags().StringP("input", "i", "-", "Application JSON file, or - for stdin")
	cmd.Flags().String("application-id", "", "Application ID (generated when empty)")
	cmd.Flags().String("process-id", defaultProcessID, "BPMN process ID")
	cmd.Flags().String("broker", "localhost:26500", "Zeebe gateway address")
	cmd.Flags().Duration("timeout", 30*time.Second, "Submission timeout")
	return cmd
}

// submitVariables builds the process variables the predict worker reads.
func submitVariables(applicationID string, application map[string]interface{}) map[string]interface{} {
	if applicationID == "" {
		applicationID = uuid.New().String()
	}
	return map[string]interface{}{
		"applicationId": applicationID,
		"application":   application,
	}
}
