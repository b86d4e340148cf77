package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fivetwenty-io/aidbox-client/internal/constants"
	"github.com/fivetwenty-io/aidbox-client/pkg/aidbox"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// encode writes value as JSON or YAML. It reports false for table output.
func encode(out io.Writer, value interface{}) (bool, error) {
	switch format := outputFormat(); format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", strings.Repeat(" ", constants.JSONIndentSize))

		return true, encoder.Encode(value)
	case constants.FormatYAML:
		return true, yaml.NewEncoder(out).Encode(value)
	case constants.FormatTable:
		return false, nil
	default:
		return true, fmt.Errorf("%w: %s", constants.ErrUnsupportedFormat, format)
	}
}

// renderResources prints resources as a table with one column per field, or
// as a JSON/YAML list of their data.
func renderResources(out io.Writer, resources []*aidbox.Resource) error {
	data := make([]map[string]any, 0, len(resources))
	for _, resource := range resources {
		data = append(data, resource.Data())
	}

	done, err := encode(out, data)
	if done || err != nil {
		return err
	}

	if len(resources) == 0 {
		_, _ = fmt.Fprintln(out, "No resources found")

		return nil
	}

	columns := resourceColumns(resources)

	headers := make([]string, len(columns))
	for i, column := range columns {
		headers[i] = columnHeader(column)
	}

	table := tablewriter.NewWriter(out)
	table.Header(toAny(headers)...)

	for _, resource := range resources {
		row := make([]string, len(columns))

		for i, column := range columns {
			value, err := resource.Get(column)
			if err != nil {
				row[i] = ""

				continue
			}

			row[i] = cell(value)
		}

		err = table.Append(row)
		if err != nil {
			return fmt.Errorf("failed to append table row: %w", err)
		}
	}

	err = table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// renderResource prints a single resource as field/value rows.
func renderResource(out io.Writer, resource *aidbox.Resource) error {
	done, err := encode(out, resource.Data())
	if done || err != nil {
		return err
	}

	table := tablewriter.NewWriter(out)
	table.Header("Field", "Value")

	for _, field := range resource.Fields() {
		value, err := resource.Get(field)
		if err != nil {
			continue
		}

		err = table.Append(field, cell(value))
		if err != nil {
			return fmt.Errorf("failed to append table row: %w", err)
		}
	}

	err = table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// resourceColumns returns id first, then every other field set on any resource.
func resourceColumns(resources []*aidbox.Resource) []string {
	seen := map[string]bool{constants.FieldID: true}
	columns := []string{}

	for _, resource := range resources {
		for _, field := range resource.Fields() {
			if !seen[field] {
				seen[field] = true
				columns = append(columns, field)
			}
		}
	}

	sort.Strings(columns)

	return append([]string{constants.FieldID}, columns...)
}

func columnHeader(field string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(field, "_", " "))
}

func cell(value aidbox.Value) string {
	if value.Kind() != aidbox.KindScalar {
		return value.String()
	}

	scalar, _ := value.Scalar()
	if s, ok := scalar.(string); ok {
		return s
	}

	data, err := json.Marshal(scalar)
	if err != nil {
		return value.String()
	}

	return string(data)
}

func toAny(values []string) []any {
	result := make([]any, len(values))
	for i, value := range values {
		result[i] = value
	}

	return result
}
