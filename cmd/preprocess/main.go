package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/senzi/weibochat-insight/internal/ingest"
)

func main() {
	outDir := flag.String("out-dir", "data/processed", "directory for normalized output files")
	tokenizer := flag.String("tokenizer", "words", "token counter: words, runes, or none")
	workers := flag.Int("workers", 4, "max files processed concurrently")
	flag.Parse()

	inputs := flag.Args()
	if len(inputs) == 0 {
		fmt.Fprintln(os.Stderr, "usage: preprocess [flags] <raw.ndjson> [more files...]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	counter, err := ingest.NewCounter(*tokenizer)
	if err != nil {
		log.Fatalf("Invalid tokenizer: %v", err)
	}

	pipeline := ingest.NewPipeline(counter, *outDir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		log.Println("Interrupted, stopping...")
		cancel()
	}()

	results := pipeline.ProcessFiles(ctx, inputs, *workers)

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			log.Printf("FAILED %s: %v", res.Input, res.Err)
			continue
		}
		r := res.Report
		log.Printf("%s -> %s: kept %d/%d (dropped %d) in %s",
			r.Input, r.Output, r.Kept, r.Total, r.Dropped, r.Duration.Round(time.Millisecond))
	}

	log.Printf("Done: %d/%d files normalized", len(results)-failed, len(results))
	if failed > 0 {
		os.Exit(1)
	}
}
