// cmd/eligibility-cli/registry.go
package main

import (
	"errors"
	"fmt"
	"io/fs"

	"loan-eligibility-workers/pkg/registry"

	"github.com/spf13/cobra"
)

const defaultRegistryPath = "configs/activity-registry.json"

func newRegistryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect and edit the activity registry",
	}
	cmd.PersistentFlags().String("path", defaultRegistryPath, "Path to registry file")

	cmd.AddCommand(newRegistryValidateCmd())
	cmd.AddCommand(newRegistryAddCmd())
	cmd.AddCommand(newRegistryUpdateCmd())
	cmd.AddCommand(newRegistryStructsCmd())
	return cmd
}

func newRegistryValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the registry for missing fields, duplicates and bad schemas",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("path")

			reg, err := registry.LoadRegistry(path)
			if err != nil {
				return err
			}
			if err := reg.Validate(); err != nil {
				return fmt.Errorf("registry validation failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registry validation passed (%d activities).\n", len(reg.Activities))
			return nil
		},
	}
}

func newRegistryAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("path")
			id, _ := cmd.Flags().GetString("id")
			displayName, _ := cmd.Flags().GetString("display-name")
			description, _ := cmd.Flags().GetString("description")
			category, _ := cmd.Flags().GetString("category")
			taskType, _ := cmd.Flags().GetString("task-type")
			version, _ := cmd.Flags().GetString("version")
			status, _ := cmd.Flags().GetString("status")
			timeout, _ := cmd.Flags().GetString("timeout")
			retries, _ := cmd.Flags().GetInt("retries")

			if id == "" || displayName == "" || category == "" || taskType == "" {
				return fmt.Errorf("id, display-name, category and task-type are required")
			}

			reg, err := registry.LoadRegistry(path)
			if errors.Is(err, fs.ErrNotExist) {
				reg = registry.New("1.0.0")
			} else if err != nil {
				return err
			}

			err = reg.Add(registry.Activity{
				ID:                   id,
				DisplayName:          displayName,
				Description:          description,
				Category:             category,
				Version:              version,
				TaskType:             taskType,
				ImplementationStatus: status,
				InputSchema:          map[string]interface{}{},
				OutputSchema:         map[string]interface{}{},
				ErrorCodes:           []string{},
				Timeout:              timeout,
				Retries:              retries,
				Workflows:            []string{},
				Tags:                 []string{},
			})
			if err != nil {
				return err
			}
			if err := reg.Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added activity: %s\n", id)
			return nil
		},
	}
	cmd.Flags().String("id", "", "Activity ID (e.g. score-credit-bureau)")
	cmd.Flags().String("display-name", "", "Display name")
	cmd.Flags().String("description", "", "Description")
	cmd.Flags().String("category", "", "Category (e.g. eligibility)")
	cmd.Flags().String("task-type", "", "Zeebe task type")
	cmd.Flags().String("version", "1.0.0", "Version")
	cmd.Flags().String("status", "planned", "Implementation status (planned, in-progress, completed, verified)")
	cmd.Flags().String("timeout", "10s", "Job timeout")
	cmd.Flags().Int("retries", 3, "Job retries")
	return cmd
}

func newRegistryUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Set one field of an activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("path")
			id, _ := cmd.Flags().GetString("id")
			field, _ := cmd.Flags().GetString("field")
			value, _ := cmd.Flags().GetString("value")

			if id == "" || field == "" || value == "" {
				return fmt.Errorf("id, field and value are required")
			}

			reg, err := registry.LoadRegistry(path)
			if err != nil {
				return err
			}
			if err := reg.Update(id, field, value); err != nil {
				return err
			}
			if err := reg.Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated activity %s, field %s to %s\n", id, field, value)
			return nil
		},
	}
	cmd.Flags().String("id", "", "Activity ID to update")
	cmd.Flags().String("field", "", "Field to update (status, version, timeout, retries, ...)")
	cmd.Flags().String("value", "", "New value for the field")
	return cmd
}
