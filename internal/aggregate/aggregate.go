// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package aggregate groups query log rows into papers and artifacts.
//
// Grouping is a single forward pass. Papers keep the first-seen order of
// their paper ID and artifacts keep the first-seen order of their artifact ID
// within the paper. Every row is retained verbatim in the queries of the
// artifact it references.
package aggregate

import (
	"errors"
	"fmt"
	"io"

	"github.com/pdiddy/paper-artifacts/pkg/types"
)

// ErrBuilderFailed is returned by Add after an earlier row was rejected.
var ErrBuilderFailed = errors.New("aggregation already failed")

// MissingFieldError reports a row that lacks a required column.
type MissingFieldError struct {
	// Row is the 1-based data row number.
	Row int
	// Field is the missing column name.
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("row %d: missing required column %q", e.Row, e.Field)
}

// RowSource yields rows one at a time and returns io.EOF after the last one.
type RowSource interface {
	Next() (types.Row, error)
}

type paperGroup struct {
	id        string
	title     string
	titleSet  bool
	artifacts []*types.Artifact
	byID      map[string]int
}

// Builder accumulates rows. It is fed with Add and finalized with Papers.
// A Builder is not safe for concurrent use.
type Builder struct {
	cols   types.Columns
	papers []*paperGroup
	byID   map[string]int
	rows   int
	err    error
}

// New returns an empty Builder using the given column names. Empty names
// fall back to the defaults.
func New(cols types.Columns) *Builder {
	return &Builder{
		cols: cols.WithDefaults(),
		byID: make(map[string]int),
	}
}

// Add groups one row. The row is copied, so callers may reuse its storage.
// A row missing the paper ID or artifact ID column fails with a
// *MissingFieldError and the Builder rejects every later call.
func (b *Builder) Add(row types.Row) error {
	if b.err != nil {
		return ErrBuilderFailed
	}
	b.rows++
	if row.Index == 0 {
		row.Index = b.rows
	}

	paperID, ok := row.Get(b.cols.PaperID)
	if !ok {
		return b.fail(row.Index, b.cols.PaperID)
	}
	artifactID, ok := row.Get(b.cols.ArtifactID)
	if !ok {
		return b.fail(row.Index, b.cols.ArtifactID)
	}

	p := b.paper(paperID, row)

	i, seen := p.byID[artifactID]
	if !seen {
		text, ok := row.Get(b.cols.ArtifactText)
		if !ok {
			return b.fail(row.Index, b.cols.ArtifactText)
		}
		i = len(p.artifacts)
		p.artifacts = append(p.artifacts, &types.Artifact{ID: artifactID, Text: text})
		p.byID[artifactID] = i
	}

	a := p.artifacts[i]
	a.Queries = append(a.Queries, row.Clone())
	return nil
}

// paper returns the group for id, creating it on first sight and applying
// the title-fill rule on later rows.
func (b *Builder) paper(id string, row types.Row) *paperGroup {
	title, hasTitle := row.Get(b.cols.PaperTitle)

	if i, ok := b.byID[id]; ok {
		p := b.papers[i]
		if !p.titleSet && title != "" {
			p.title = title
			p.titleSet = true
		}
		return p
	}

	p := &paperGroup{
		id:       id,
		title:    title,
		titleSet: hasTitle,
		byID:     make(map[string]int),
	}
	b.byID[id] = len(b.papers)
	b.papers = append(b.papers, p)
	return p
}

func (b *Builder) fail(row int, field string) error {
	b.err = &MissingFieldError{Row: row, Field: field}
	return b.err
}

// Err returns the error that stopped the Builder, if any.
func (b *Builder) Err() error {
	return b.err
}

// Rows returns the number of rows passed to Add.
func (b *Builder) Rows() int {
	return b.rows
}

// Papers finalizes the grouping into an ordered document. The result shares
// no storage with the Builder; repeated calls return equal documents. It
// returns nil if the Builder failed.
func (b *Builder) Papers() []types.Paper {
	if b.err != nil {
		return nil
	}
	out := make([]types.Paper, 0, len(b.papers))
	for _, p := range b.papers {
		paper := types.Paper{
			ID:        p.id,
			Title:     p.title,
			Artifacts: make([]types.Artifact, 0, len(p.artifacts)),
		}
		for _, a := range p.artifacts {
			queries := make([]types.Row, len(a.Queries))
			for j, q := range a.Queries {
				queries[j] = q.Clone()
			}
			paper.Artifacts = append(paper.Artifacts, types.Artifact{
				ID:      a.ID,
				Text:    a.Text,
				Queries: queries,
			})
		}
		out = append(out, paper)
	}
	return out
}

// Aggregate groups rows in a single pass. Any malformed row aborts the whole
// aggregation and no papers are returned.
func Aggregate(rows []types.Row, cols types.Columns) ([]types.Paper, error) {
	b := New(cols)
	for _, r := range rows {
		if err := b.Add(r); err != nil {
			return nil, err
		}
	}
	return b.Papers(), nil
}

// FromSource drains src into a new Builder and finalizes it. Errors from src
// other than io.EOF are returned unchanged.
func FromSource(src RowSource, cols types.Columns) ([]types.Paper, error) {
	b := New(cols)
	for {
		row, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if err := b.Add(row); err != nil {
			return nil, err
		}
	}
	return b.Papers(), nil
}
