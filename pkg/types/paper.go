// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/valyala/fastjson"
	"go.yaml.in/yaml/v3"
)

// Field is one column of a CSV record.
type Field struct {
	Name  string
	Value string
}

// Row is a single CSV record ("query") with its columns in header order.
// Index is the 1-based data row number; the header row is not counted.
type Row struct {
	Index  int
	Fields []Field
}

// NewRow builds a Row from alternating name/value pairs. It panics on an odd
// number of arguments and is meant for fixtures and literals.
func NewRow(index int, pairs ...string) Row {
	if len(pairs)%2 != 0 {
		panic("types.NewRow: odd number of name/value arguments")
	}
	r := Row{Index: index, Fields: make([]Field, 0, len(pairs)/2)}
	for i := 0; i < len(pairs); i += 2 {
		r.Fields = append(r.Fields, Field{Name: pairs[i], Value: pairs[i+1]})
	}
	return r
}

// Get returns the value of the named column and whether the row carries it.
// An empty value for a present column returns ("", true).
func (r Row) Get(name string) (string, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Clone returns a copy of r that shares no backing storage with it.
func (r Row) Clone() Row {
	fields := make([]Field, len(r.Fields))
	copy(fields, r.Fields)
	return Row{Index: r.Index, Fields: fields}
}

// MarshalJSON renders the row as a JSON object whose keys follow column order.
// Index is positional metadata and is not part of the object.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeJSONString(&buf, f.Name)
		buf.WriteByte(':')
		writeJSONString(&buf, f.Value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a flat object of string values, keeping key order.
func (r *Row) UnmarshalJSON(data []byte) error {
	v, err := fastjson.ParseBytes(data)
	if err != nil {
		return fmt.Errorf("parsing row: %w", err)
	}
	obj, err := v.Object()
	if err != nil {
		return fmt.Errorf("parsing row: %w", err)
	}

	fields := make([]Field, 0, obj.Len())
	var visitErr error
	obj.Visit(func(key []byte, val *fastjson.Value) {
		if visitErr != nil {
			return
		}
		s, err := val.StringBytes()
		if err != nil {
			visitErr = fmt.Errorf("row field %q: %w", key, err)
			return
		}
		fields = append(fields, Field{Name: string(key), Value: string(s)})
	})
	if visitErr != nil {
		return visitErr
	}
	r.Fields = fields
	return nil
}

// MarshalYAML renders the row as a mapping node in column order.
func (r Row) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, f := range r.Fields {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Value},
		)
	}
	return node, nil
}

func writeJSONString(buf *bytes.Buffer, s string) {
	encoded, _ := json.Marshal(s)
	buf.Write(encoded)
}

// Artifact groups every query row that referenced one artifact of a paper.
type Artifact struct {
	// ID is the artifact_id value shared by all queries.
	ID string `json:"id" yaml:"id"`

	// Text is the artifact_text of the first row seen for this artifact.
	Text string `json:"text" yaml:"text"`

	// Queries holds the original rows in file order, duplicates included.
	Queries []Row `json:"queries" yaml:"queries"`
}

// Paper groups the artifacts referenced under one arxiv_id.
type Paper struct {
	// ID is the arXiv identifier (e.g. "2301.07041").
	ID string `json:"id" yaml:"id"`

	// Title is the paper title, empty when no row supplied one.
	Title string `json:"title" yaml:"title"`

	// Artifacts lists artifacts in first-seen order.
	Artifacts []Artifact `json:"artifacts" yaml:"artifacts"`
}

// QueryCount returns the number of query rows across all artifacts.
func (p Paper) QueryCount() int {
	n := 0
	for _, a := range p.Artifacts {
		n += len(a.Queries)
	}
	return n
}
