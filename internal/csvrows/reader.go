// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package csvrows reads a CSV file with a header row as a stream of
// types.Row values keyed by header name.
package csvrows

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/paper-artifacts/pkg/types"
)

const utf8BOM = "\ufeff"

// Reader yields one types.Row per CSV record after the header.
type Reader struct {
	r      *csv.Reader
	header []string
	names  []string // distinct header names, in first-seen order
	slot   []int    // header column -> index into names
	index  int
	done   bool
}

// NewReader reads the header row from r. An empty input yields a Reader
// that returns io.EOF on the first call to Next.
func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	rd := &Reader{r: cr}

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		rd.done = true
		return rd, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	rd.header = make([]string, len(header))
	copy(rd.header, header)
	if len(rd.header) > 0 {
		rd.header[0] = strings.TrimPrefix(rd.header[0], utf8BOM)
	}

	seen := make(map[string]int, len(rd.header))
	rd.slot = make([]int, len(rd.header))
	for i, name := range rd.header {
		s, ok := seen[name]
		if !ok {
			s = len(rd.names)
			seen[name] = s
			rd.names = append(rd.names, name)
		}
		rd.slot[i] = s
	}
	return rd, nil
}

// Header returns the column names in file order, repeats included.
func (rd *Reader) Header() []string {
	return rd.header
}

// Next returns the next record. A record shorter than the header carries only
// its leading columns; a longer record is an error. A column name repeated in
// the header appears once, at its first position, with the last value.
func (rd *Reader) Next() (types.Row, error) {
	if rd.done {
		return types.Row{}, io.EOF
	}

	record, err := rd.r.Read()
	if errors.Is(err, io.EOF) {
		rd.done = true
		return types.Row{}, io.EOF
	}
	rd.index++
	if err != nil {
		return types.Row{}, fmt.Errorf("reading row %d: %w", rd.index, err)
	}
	if len(record) > len(rd.header) {
		return types.Row{}, fmt.Errorf("reading row %d: %d fields, header has %d", rd.index, len(record), len(rd.header))
	}

	values := make([]string, len(rd.names))
	present := make([]bool, len(rd.names))
	for i, v := range record {
		values[rd.slot[i]] = v
		present[rd.slot[i]] = true
	}

	row := types.Row{Index: rd.index, Fields: make([]types.Field, 0, len(rd.names))}
	for s, name := range rd.names {
		if present[s] {
			row.Fields = append(row.Fields, types.Field{Name: name, Value: values[s]})
		}
	}
	return row, nil
}
