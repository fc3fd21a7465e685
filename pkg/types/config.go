// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Default column names of the query log CSV.
const (
	DefaultPaperIDColumn      = "arxiv_id"
	DefaultPaperTitleColumn   = "arxiv_title"
	DefaultArtifactIDColumn   = "artifact_id"
	DefaultArtifactTextColumn = "artifact_text"
)

// Columns names the CSV columns the aggregator groups by.
type Columns struct {
	// PaperID is the primary grouping key (default "arxiv_id").
	PaperID string `json:"paper_id" yaml:"paper_id" mapstructure:"paper_id"`

	// PaperTitle is optional; rows may omit it (default "arxiv_title").
	PaperTitle string `json:"paper_title" yaml:"paper_title" mapstructure:"paper_title"`

	// ArtifactID is the secondary grouping key (default "artifact_id").
	ArtifactID string `json:"artifact_id" yaml:"artifact_id" mapstructure:"artifact_id"`

	// ArtifactText is the artifact description column (default "artifact_text").
	ArtifactText string `json:"artifact_text" yaml:"artifact_text" mapstructure:"artifact_text"`
}

// DefaultColumns returns the standard query log column names.
func DefaultColumns() Columns {
	return Columns{
		PaperID:      DefaultPaperIDColumn,
		PaperTitle:   DefaultPaperTitleColumn,
		ArtifactID:   DefaultArtifactIDColumn,
		ArtifactText: DefaultArtifactTextColumn,
	}
}

// WithDefaults fills any empty column name with its default.
func (c Columns) WithDefaults() Columns {
	d := DefaultColumns()
	if c.PaperID == "" {
		c.PaperID = d.PaperID
	}
	if c.PaperTitle == "" {
		c.PaperTitle = d.PaperTitle
	}
	if c.ArtifactID == "" {
		c.ArtifactID = d.ArtifactID
	}
	if c.ArtifactText == "" {
		c.ArtifactText = d.ArtifactText
	}
	return c
}

// OutputFormat selects how the grouped document is rendered.
type OutputFormat string

const (
	FormatJSON OutputFormat = "json"
	FormatYAML OutputFormat = "yaml"
)

// ConvertConfig holds settings for one CSV-to-document conversion.
type ConvertConfig struct {
	// InputPath is the query log CSV.
	InputPath string `json:"input_path" yaml:"input_path"`

	// OutputPath receives the rendered document; it is replaced atomically.
	OutputPath string `json:"output_path" yaml:"output_path"`

	// Format overrides the format implied by OutputPath's extension.
	Format OutputFormat `json:"format,omitempty" yaml:"format,omitempty"`

	Columns Columns `json:"columns" yaml:"columns"`
}

// StoreConfig holds settings for the SQLite index.
type StoreConfig struct {
	// DBPath is the SQLite database file (default "paper-artifacts.db").
	DBPath string `json:"db_path" yaml:"db_path"`
}
