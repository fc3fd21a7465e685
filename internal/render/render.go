// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render writes a grouped paper document as JSON or YAML.
// Query objects keep the column order of the source CSV.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-artifacts/pkg/types"
)

// FormatFor returns the output format for path. A non-empty override wins;
// otherwise a .yaml or .yml extension selects YAML and anything else JSON.
func FormatFor(path string, override types.OutputFormat) (types.OutputFormat, error) {
	if override != "" {
		switch f := types.OutputFormat(strings.ToLower(string(override))); f {
		case types.FormatJSON, types.FormatYAML:
			return f, nil
		default:
			return "", fmt.Errorf("unsupported format %q: use json or yaml", override)
		}
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return types.FormatYAML, nil
	}
	return types.FormatJSON, nil
}

// Render writes papers to w in the given format.
func Render(w io.Writer, papers []types.Paper, format types.OutputFormat) error {
	switch format {
	case types.FormatJSON, "":
		return JSON(w, papers)
	case types.FormatYAML:
		return YAML(w, papers)
	default:
		return fmt.Errorf("unsupported format %q: use json or yaml", format)
	}
}

// JSON writes papers as a JSON array indented by two spaces. A nil or empty
// document renders as [].
func JSON(w io.Writer, papers []types.Paper) error {
	if papers == nil {
		papers = []types.Paper{}
	}
	data, err := json.MarshalIndent(papers, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// YAML writes papers as a YAML sequence.
func YAML(w io.Writer, papers []types.Paper) error {
	if papers == nil {
		papers = []types.Paper{}
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(papers); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}
