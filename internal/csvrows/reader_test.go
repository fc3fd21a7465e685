// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package csvrows

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-artifacts/pkg/types"
)

func readAll(t *testing.T, input string) ([]types.Row, error) {
	t.Helper()
	rd, err := NewReader(strings.NewReader(input))
	require.NoError(t, err)
	var rows []types.Row
	for {
		r, err := rd.Next()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		rows = append(rows, r)
	}
}

func TestReader(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []types.Row
	}{
		{
			name:  "header only",
			input: "arxiv_id,artifact_id,artifact_text\n",
			want:  nil,
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
		{
			name:  "fields in header order",
			input: "arxiv_id,artifact_id,artifact_text,extra\n2301.1,a1,code,x\n2301.2,a2,data,\n",
			want: []types.Row{
				types.NewRow(1, "arxiv_id", "2301.1", "artifact_id", "a1", "artifact_text", "code", "extra", "x"),
				types.NewRow(2, "arxiv_id", "2301.2", "artifact_id", "a2", "artifact_text", "data", "extra", ""),
			},
		},
		{
			name:  "quoted fields with commas and newlines",
			input: "arxiv_id,artifact_text\n\"1\",\"a, b\nc\"\n",
			want: []types.Row{
				types.NewRow(1, "arxiv_id", "1", "artifact_text", "a, b\nc"),
			},
		},
		{
			name:  "short row omits trailing columns",
			input: "arxiv_id,artifact_id,artifact_text\n1\n",
			want: []types.Row{
				types.NewRow(1, "arxiv_id", "1"),
			},
		},
		{
			name:  "repeated column keeps first position and last value",
			input: "arxiv_id,artifact_id,artifact_text,note,note\nP1,A1,t,first,second\n",
			want: []types.Row{
				types.NewRow(1, "arxiv_id", "P1", "artifact_id", "A1", "artifact_text", "t", "note", "second"),
			},
		},
		{
			name:  "repeated key column uses last value",
			input: "arxiv_id,artifact_id,arxiv_id\nP1,A1,P2\nP3,A2\n",
			want: []types.Row{
				types.NewRow(1, "arxiv_id", "P2", "artifact_id", "A1"),
				types.NewRow(2, "arxiv_id", "P3", "artifact_id", "A2"),
			},
		},
		{
			name:  "byte order mark stripped",
			input: "\ufeffarxiv_id,artifact_id\n1,a\n",
			want: []types.Row{
				types.NewRow(1, "arxiv_id", "1", "artifact_id", "a"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readAll(t, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReader_Header(t *testing.T) {
	rd, err := NewReader(strings.NewReader("a,b,c,b\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "b"}, rd.Header())
}

func TestReader_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{
			name:    "row longer than header",
			input:   "a,b\n1,2\n1,2,3\n",
			wantErr: "reading row 2: 3 fields, header has 2",
		},
		{
			name:    "bare quote",
			input:   "a,b\n1,x\"y\n",
			wantErr: "reading row 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readAll(t, tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
