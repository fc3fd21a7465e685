// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-artifacts/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	cfg := types.StoreConfig{DBPath: filepath.Join(t.TempDir(), "index", "test.db")}
	s, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func samplePapers() []types.Paper {
	return []types.Paper{
		{
			ID:    "2301.07041",
			Title: "Efficient Attention",
			Artifacts: []types.Artifact{
				{
					ID:   "repo",
					Text: "reference implementation",
					Queries: []types.Row{
						types.NewRow(1, "arxiv_id", "2301.07041", "artifact_id", "repo", "artifact_text", "reference implementation", "q", "where is the code?"),
						types.NewRow(3, "arxiv_id", "2301.07041", "artifact_id", "repo", "artifact_text", "x", "q", "license?"),
					},
				},
				{
					ID:   "data",
					Text: "benchmark",
					Queries: []types.Row{
						types.NewRow(2, "arxiv_id", "2301.07041", "artifact_id", "data", "artifact_text", "benchmark", "q", "size?"),
					},
				},
			},
		},
		{
			ID: "1706.03762",
			Artifacts: []types.Artifact{
				{
					ID:   "repo",
					Text: "tensor2tensor",
					Queries: []types.Row{
						types.NewRow(4, "zz", "first", "arxiv_id", "1706.03762", "artifact_id", "repo", "artifact_text", "tensor2tensor"),
					},
				},
			},
		},
	}
}

func TestStore_RoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	summary, err := s.Import(ctx, "log.csv", samplePapers())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Inserted)
	assert.Equal(t, 0, summary.Replaced)
	assert.Equal(t, 4, summary.Queries)
	_, err = uuid.Parse(summary.ID)
	assert.NoError(t, err)

	got, err := s.Papers(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(samplePapers(), got); diff != "" {
		t.Errorf("Papers() mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_ReimportReplacesInPlace(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.Import(ctx, "first.csv", samplePapers())
	require.NoError(t, err)

	update := []types.Paper{
		{
			ID:    "2301.07041",
			Title: "Efficient Attention (v2)",
			Artifacts: []types.Artifact{
				{ID: "repo", Text: "moved", Queries: []types.Row{types.NewRow(1, "arxiv_id", "2301.07041", "artifact_id", "repo")}},
			},
		},
		{
			ID: "2005.14165",
			Artifacts: []types.Artifact{
				{ID: "model", Text: "weights", Queries: []types.Row{types.NewRow(2, "arxiv_id", "2005.14165", "artifact_id", "model")}},
			},
		},
	}
	summary, err := s.Import(ctx, "second.csv", update)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Inserted)
	assert.Equal(t, 1, summary.Replaced)

	got, err := s.Papers(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"2301.07041", "1706.03762", "2005.14165"},
		[]string{got[0].ID, got[1].ID, got[2].ID})
	assert.Equal(t, "Efficient Attention (v2)", got[0].Title)
	require.Len(t, got[0].Artifacts, 1)
	assert.Equal(t, "moved", got[0].Artifacts[0].Text)

	imports, err := s.Imports(ctx)
	require.NoError(t, err)
	require.Len(t, imports, 2)
	assert.Equal(t, "first.csv", imports[0].Source)
	assert.Equal(t, "second.csv", imports[1].Source)
	assert.Equal(t, summary.ID, imports[1].ID)
	assert.False(t, imports[1].ImportedAt.IsZero())
}

func TestStore_Empty(t *testing.T) {
	s := testStore(t)
	got, err := s.Papers(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestStore_ImportsBadTimestamp(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO imports (id, source, imported_at, papers, queries) VALUES ('x', 'log.csv', 'yesterday', 0, 0)`)
	require.NoError(t, err)

	_, err = s.Imports(ctx)
	assert.ErrorContains(t, err, "parsing import x timestamp")
}
