package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/invoice-renamer/internal/common"
	"github.com/joseph-ayodele/invoice-renamer/internal/invoice"
	"github.com/joseph-ayodele/invoice-renamer/internal/naming"
	"github.com/joseph-ayodele/invoice-renamer/internal/pdftext"
	"github.com/joseph-ayodele/invoice-renamer/internal/schema"
)

type output struct {
	invoice.Record
	SuggestedName string `json:"suggestedName"`
}

func (o output) MarshalJSON() ([]byte, error) {
	rec, err := json.Marshal(o.Record)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(rec, &m); err != nil {
		return nil, err
	}
	m["suggestedName"] = o.SuggestedName
	return json.Marshal(m)
}

func main() {
	cfg := common.LoadConfig()

	var (
		validate = flag.Bool("validate", cfg.PDF.Validate, "validate PDF structure before reading text")
		noText   = flag.Bool("no-text", false, "omit the reconstructed full text from the output")
		timeout  = flag.Duration("timeout", cfg.Ingest.ProcessTimeout, "per-file timeout")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	if flag.NArg() == 0 {
		logger.Error("usage", "cmd", "extract [-validate] [-no-text] <file.pdf>...")
		os.Exit(2)
	}

	decoder := pdftext.NewExtractor(pdftext.Config{Validate: *validate, MaxPages: cfg.PDF.MaxPages}, logger)
	extractor := invoice.NewExtractor(logger)
	opts := naming.Options{MaxLength: cfg.Naming.MaxLength}

	var outputs []output
	failed := 0
	for _, path := range flag.Args() {
		rec, err := extractFile(context.Background(), *timeout, decoder, extractor, path)
		if err != nil {
			logger.Error("extract failed", "path", path, "error", err)
			failed++
			continue
		}
		if *noText {
			rec.FullText = ""
		}
		outputs = append(outputs, output{Record: rec, SuggestedName: naming.FileName(rec, opts)})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	var v any = outputs
	if len(outputs) == 1 && flag.NArg() == 1 {
		v = outputs[0]
	}
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "encode: %v\n", err)
		os.Exit(1)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func extractFile(ctx context.Context, timeout time.Duration, decoder pdftext.Decoder, extractor *invoice.Extractor, path string) (invoice.Record, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	pages, err := decoder.Decode(ctx, path)
	if err != nil {
		return invoice.Record{}, err
	}
	rec, err := extractor.Extract(ctx, filepath.Base(path), pages)
	if err != nil {
		return invoice.Record{}, err
	}
	if err := schema.ValidateRecord(rec); err != nil {
		return invoice.Record{}, err
	}
	return rec, nil
}
