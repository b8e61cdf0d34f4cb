package ingest

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Lines in chat exports can be large (embedded media descriptions).
const maxLineBytes = 4 * 1024 * 1024

// Report tracks the outcome of one file's normalization pass.
type Report struct {
	RunID    uuid.UUID     `json:"run_id"`
	Input    string        `json:"input"`
	Output   string        `json:"output"`
	Total    int           `json:"total"`
	Kept     int           `json:"kept"`
	Dropped  int           `json:"dropped"`
	Duration time.Duration `json:"duration"`
}

// FileResult pairs one input file with its report or failure.
type FileResult struct {
	Input  string
	Report *Report
	Err    error
}

// Pipeline streams raw ndjson files through the classifier and writes one
// normalized ndjson file per input. Each pass touches only its own
// input/output pair, so files may be processed concurrently.
type Pipeline struct {
	classifier *Classifier
	outDir     string
}

func NewPipeline(tokens TokenCounter, outDir string) *Pipeline {
	return &Pipeline{
		classifier: NewClassifier(tokens),
		outDir:     outDir,
	}
}

// OutputPath returns the normalized file path derived from an input path.
func (p *Pipeline) OutputPath(inPath string) string {
	base := filepath.Base(inPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(p.outDir, stem+".ndjson")
}

// ProcessFile normalizes one raw file. The input is never modified. Malformed
// lines are skipped and counted as dropped; a missing token counter aborts the
// file and removes the partial output.
func (p *Pipeline) ProcessFile(ctx context.Context, inPath string) (*Report, error) {
	start := time.Now()

	if err := os.MkdirAll(p.outDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	in, err := os.Open(inPath)
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	defer in.Close()

	outPath := p.OutputPath(inPath)
	out, err := os.Create(outPath)
	if err != nil {
		return nil, fmt.Errorf("creating output: %w", err)
	}

	w := bufio.NewWriter(out)
	kept, total := 0, 0

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		if total%1024 == 0 && ctx.Err() != nil {
			out.Close()
			os.Remove(outPath)
			return nil, ctx.Err()
		}
		total++

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var raw RawRecord
		if err := json.Unmarshal([]byte(line), &raw); err != nil {
			// Bad line: skip, count, continue.
			continue
		}

		rec, err := p.classifier.Classify(&raw)
		if err != nil {
			out.Close()
			os.Remove(outPath)
			return nil, fmt.Errorf("%s line %d: %w", inPath, total, err)
		}
		if rec == nil {
			continue
		}

		data, err := json.Marshal(rec)
		if err != nil {
			continue
		}
		w.Write(data)
		w.WriteByte('\n')
		kept++
	}

	if err := scanner.Err(); err != nil {
		out.Close()
		os.Remove(outPath)
		return nil, fmt.Errorf("reading %s: %w", inPath, err)
	}
	if err := w.Flush(); err != nil {
		out.Close()
		os.Remove(outPath)
		return nil, fmt.Errorf("writing %s: %w", outPath, err)
	}
	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("closing %s: %w", outPath, err)
	}

	return &Report{
		RunID:    uuid.New(),
		Input:    inPath,
		Output:   outPath,
		Total:    total,
		Kept:     kept,
		Dropped:  total - kept,
		Duration: time.Since(start),
	}, nil
}

// ProcessFiles normalizes every input with at most workers passes in flight.
// One file's failure does not abort the others; results come back in input
// order.
func (p *Pipeline) ProcessFiles(ctx context.Context, inPaths []string, workers int) []FileResult {
	if workers < 1 {
		workers = 1
	}

	results := make([]FileResult, len(inPaths))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, path := range inPaths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			report, err := p.ProcessFile(ctx, path)
			results[i] = FileResult{Input: path, Report: report, Err: err}
		}(i, path)
	}

	wg.Wait()
	return results
}
