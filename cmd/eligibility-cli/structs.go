// cmd/eligibility-cli/structs.go
package main

import (
	"fmt"
	"sort"
	"strings"

	"loan-eligibility-workers/pkg/registry"

	"github.com/spf13/cobra"
)

func newRegistryStructsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "structs",
		Short: "Print Go Input and Output types for an activity's schemas",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("path")
			id, _ := cmd.Flags().GetString("id")

			reg, err := registry.LoadRegistry(path)
			if err != nil {
				return err
			}
			activity, ok := reg.FindByID(id)
			if !ok {
				return fmt.Errorf("%w: %s", registry.ErrActivityNotFound, id)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "package %s\n\n", packageName(activity.TaskType))
			fmt.Fprint(cmd.OutOrStdout(), renderStruct("Input", activity.InputSchema))
			fmt.Fprintln(cmd.OutOrStdout())
			fmt.Fprint(cmd.OutOrStdout(), renderStruct("Output", activity.OutputSchema))
			return nil
		},
	}
	cmd.Flags().String("id", "", "Activity ID")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

// packageName follows the worker package convention: the task type without dashes.
func packageName(taskType string) string {
	return strings.ReplaceAll(taskType, "-", "")
}

func renderStruct(name string, schema map[string]interface{}) string {
	properties := schemaProperties(schema)

	keys := make([]string, 0, len(properties))
	for k := range properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "type %s struct {\n", name)
	for _, prop := range keys {
		details, ok := properties[prop].(map[string]interface{})
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "\t%s %s `json:\"%s\"`", fieldName(prop), goType(details), prop)
		if desc, _ := details["description"].(string); desc != "" {
			fmt.Fprintf(&b, " // %s", desc)
		}
		b.WriteString("\n")
	}
	b.WriteString("}\n")
	return b.String()
}

func schemaProperties(schema map[string]interface{}) map[string]interface{} {
	if props, ok := schema["properties"].(map[string]interface{}); ok {
		return props
	}
	return map[string]interface{}{}
}

func goType(details map[string]interface{}) string {
	switch details["type"] {
	case "string":
		return "string"
	case "number":
		return "float64"
	case "integer":
		return "int"
	case "boolean":
		return "bool"
	case "object":
		if additional, ok := details["additionalProperties"].(map[string]interface{}); ok {
			return "map[string]" + goType(additional)
		}
		return "map[string]interface{}"
	case "array":
		if items, ok := details["items"].(map[string]interface{}); ok {
			return "[]" + goType(items)
		}
		return "[]interface{}"
	default:
		return "interface{}"
	}
}

// fieldName exports prop and upper-cases a trailing "Id", so applicationId becomes ApplicationID.
func fieldName(prop string) string {
	if prop == "" {
		return prop
	}
	name := strings.ToUpper(prop[:1]) + prop[1:]
	if strings.HasSuffix(name, "Id") {
		name = strings.TrimSuffix(name, "Id") + "ID"
	}
	return name
}
