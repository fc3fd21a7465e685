// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fastjson"

	"github.com/pdiddy/paper-artifacts/internal/convert"
)

const logCSV = `arxiv_id,arxiv_title,artifact_id,artifact_text,question
2301.07041,Efficient Attention,repo,github.com/x/attn,where is the code?
2301.07041,,data,glue subset,how big?
1706.03762,Attention Is All You Need,repo,tensor2tensor,which commit?
2301.07041,,repo,ignored,license?
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRootConvert(t *testing.T) {
	dir := t.TempDir()
	in := writeCSV(t, dir, "log.csv", logCSV)
	out := filepath.Join(dir, "papers.json")

	status, err := execute(t, in, out, "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, status, "2 papers, 3 artifacts, 4 queries")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	v, err := fastjson.ParseBytes(data)
	require.NoError(t, err)

	papers := v.GetArray()
	require.Len(t, papers, 2)
	assert.Equal(t, "2301.07041", string(papers[0].GetStringBytes("id")))
	repo := papers[0].GetArray("artifacts")[0]
	assert.Equal(t, "github.com/x/attn", string(repo.GetStringBytes("text")))
	assert.Len(t, repo.GetArray("queries"), 2)
}

func TestRootConvert_Errors(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "papers.json")

	_, err := execute(t, filepath.Join(dir, "missing.csv"), out, "--format", "json")
	assert.ErrorIs(t, err, convert.ErrInputNotFound)
	assert.NoFileExists(t, out)

	bad := writeCSV(t, dir, "bad.csv", "arxiv_id,artifact_text\n2301.07041,x\n")
	_, err = execute(t, bad, out, "--format", "json")
	assert.ErrorIs(t, err, convert.ErrRead)
	assert.ErrorContains(t, err, `row 1: missing required column "artifact_id"`)
	assert.NoFileExists(t, out)

	_, err = execute(t, bad)
	assert.Error(t, err, "root command needs two arguments")
}

func TestIndexAndExport(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "index.db")
	first := writeCSV(t, dir, "first.csv", logCSV)
	second := writeCSV(t, dir, "second.csv",
		"arxiv_id,arxiv_title,artifact_id,artifact_text,question\n2005.14165,GPT-3,model,weights,where?\n")

	status, err := execute(t, "index", first, second, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, status, "indexed "+first)
	assert.Contains(t, status, "indexed "+second)

	out := filepath.Join(dir, "export.yaml")
	status, err = execute(t, "export", out, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, status, "exported 3 papers")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "- id: \"2301.07041\"")
	assert.Contains(t, string(data), "title: GPT-3")
}

func TestVersion(t *testing.T) {
	status, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "paper-artifacts dev\n", status)
}
