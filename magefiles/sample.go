//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const sampleDir = "testdata"

// sampleCSV is a small query log covering repeated papers, repeated
// artifacts, and a row without a title.
const sampleCSV = `arxiv_id,arxiv_title,artifact_id,artifact_text,query
2301.07041,Efficient Attention Mechanisms,repo,github.com/example/attn,Where is the training script?
2301.07041,,repo,github.com/example/attn,Which license applies?
2301.07041,,dataset,GLUE subset,How many examples?
1706.03762,Attention Is All You Need,repo,tensor2tensor,Which commit reproduces Table 2?
`

// Sample writes testdata/sample.csv and converts it to testdata/sample.json
// with a freshly built binary.
func Sample() error {
	mg.Deps(Build)

	if err := os.MkdirAll(sampleDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", sampleDir, err)
	}
	in := filepath.Join(sampleDir, "sample.csv")
	if err := os.WriteFile(in, []byte(sampleCSV), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", in, err)
	}
	out := filepath.Join(sampleDir, "sample.json")
	return sh.RunV(filepath.Join(binDir, binName), in, out)
}

// Stats prints Go production and test line counts.
func Stats() error {
	prod, test, err := countGoLines(".")
	if err != nil {
		return err
	}
	fmt.Printf("Lines of code (Go, production): %d\n", prod)
	fmt.Printf("Lines of code (Go, tests):      %d\n", test)
	return nil
}
