package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"expertfinder/internal/version"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
	FormatHuman OutputFormat = "human"
)

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatYAML:
		return formatYAML(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// formatJSON formats the response as JSON
func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// formatYAML formats the response as YAML. The value goes through JSON first
// so field names follow the json tags.
func formatYAML(resp interface{}) (string, error) {
	data, err := json.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	var generic interface{}
	if err := json.Unmarshal(data, &generic); err != nil {
		return "", fmt.Errorf("failed to decode JSON: %w", err)
	}

	out, err := yaml.Marshal(generic)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return strings.TrimRight(string(out), "\n"), nil
}

// formatHuman formats the response in human-readable format
func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *WhoResponse:
		return formatWhoHuman(v)
	case version.Build:
		return formatVersionHuman(v), nil
	default:
		// For unknown types, fall back to JSON
		return formatJSON(resp)
	}
}

// formatWhoHuman formats a WhoResponse in human-readable format
func formatWhoHuman(resp *WhoResponse) (string, error) {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Experts for %s (%s)\n", resp.File, resp.Strategy))
	if resp.Head != "" {
		head := resp.Head
		if len(head) > 12 {
			head = head[:12]
		}
		b.WriteString(fmt.Sprintf("At commit %s\n", head))
	}
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	if len(resp.Experts) == 0 {
		b.WriteString("No experts found.\n")
		return b.String(), nil
	}

	for i, e := range resp.Experts {
		b.WriteString(fmt.Sprintf("  %d. %s (%.2f)\n", i+1, e.Author, e.Score))
	}
	return b.String(), nil
}
