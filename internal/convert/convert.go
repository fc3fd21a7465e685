// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns a query log CSV into a grouped paper document.
// The pipeline reads every row, groups them, renders the whole document in
// memory and only then replaces the output file, so a failed run never leaves
// a partial or modified output behind.
package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-artifacts/internal/aggregate"
	"github.com/pdiddy/paper-artifacts/internal/csvrows"
	"github.com/pdiddy/paper-artifacts/internal/render"
	"github.com/pdiddy/paper-artifacts/pkg/types"
)

// Terminal failure classes. Errors returned by Run and Load wrap exactly one
// of these.
var (
	ErrInputNotFound = errors.New("input file not found")
	ErrRead          = errors.New("read error")
	ErrWrite         = errors.New("write error")
)

// Summary holds the counts from a successful conversion.
type Summary struct {
	Rows      int
	Papers    int
	Artifacts int
	Queries   int
}

func summarize(rows int, papers []types.Paper) Summary {
	s := Summary{Rows: rows, Papers: len(papers)}
	for _, p := range papers {
		s.Artifacts += len(p.Artifacts)
		s.Queries += p.QueryCount()
	}
	return s
}

// Load reads and groups the CSV at path. Context cancellation is checked
// between rows.
func Load(ctx context.Context, path string, cols types.Columns, log *zap.Logger) ([]types.Paper, int, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, 0, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return nil, 0, fmt.Errorf("%w: opening %s: %v", ErrRead, path, err)
	}
	defer f.Close()

	rd, err := csvrows.NewReader(f)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s: %w", ErrRead, path, err)
	}
	log.Debug("read header", zap.String("input", path), zap.Strings("columns", rd.Header()))

	b := aggregate.New(cols)
	for {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		row, err := rd.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %s: %w", ErrRead, path, err)
		}
		if err := b.Add(row); err != nil {
			return nil, 0, fmt.Errorf("%w: %s: %w", ErrRead, path, err)
		}
	}

	papers := b.Papers()
	log.Debug("grouped rows",
		zap.Int("rows", b.Rows()),
		zap.Int("papers", len(papers)))
	return papers, b.Rows(), nil
}

// Run converts cfg.InputPath into cfg.OutputPath and prints a status line
// to w. On error the output path is left untouched.
func Run(ctx context.Context, cfg types.ConvertConfig, log *zap.Logger, w io.Writer) (Summary, error) {
	if log == nil {
		log = zap.NewNop()
	}

	format, err := render.FormatFor(cfg.OutputPath, cfg.Format)
	if err != nil {
		return Summary{}, fmt.Errorf("%w: %w", ErrWrite, err)
	}

	papers, rows, err := Load(ctx, cfg.InputPath, cfg.Columns, log)
	if err != nil {
		return Summary{}, err
	}

	var buf bytes.Buffer
	if err := render.Render(&buf, papers, format); err != nil {
		return Summary{}, fmt.Errorf("%w: %w", ErrWrite, err)
	}

	if err := WriteFileAtomic(cfg.OutputPath, buf.Bytes(), 0o644); err != nil {
		return Summary{}, fmt.Errorf("%w: %w", ErrWrite, err)
	}

	s := summarize(rows, papers)
	log.Info("wrote document",
		zap.String("output", cfg.OutputPath),
		zap.String("format", string(format)),
		zap.Int("bytes", buf.Len()))
	fmt.Fprintf(w, "converted %s -> %s (%d papers, %d artifacts, %d queries)\n",
		cfg.InputPath, cfg.OutputPath, s.Papers, s.Artifacts, s.Queries)
	return s, nil
}

// WriteFileAtomic writes data to a temporary file next to path and renames
// it over path. The destination is either fully replaced or not touched.
// An existing destination keeps its permission bits; perm applies to new files.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	info, err := os.Stat(path)
	switch {
	case err == nil:
		perm = info.Mode().Perm()
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("checking %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("setting mode on %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("renaming to %s: %w", path, err)
	}
	return nil
}
