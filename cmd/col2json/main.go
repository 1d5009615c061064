// Command col2json exports a columnar file as newline-delimited JSON, one
// object per row.
//
//	col2json [flags] FILE
//
// With --workers above 1 the file is decoded in parallel chunks while the
// output keeps file order.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/colstream/colstream/reader"
	"github.com/colstream/colstream/rowcodec"
	"github.com/colstream/colstream/rows"
	"github.com/colstream/colstream/tojson"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("col2json: %v", err)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("col2json", flag.ExitOnError)
	cfgPath := fs.String("config", "", "optional YAML config file")
	batchSize := fs.Int("batch-size", 0, "rows decoded per engine read")
	workers := fs.Int("workers", 0, "concurrent decode workers; 1 streams sequentially")
	columns := fs.String("columns", "", "comma-separated column names to export (dots escaped as \\.)")
	output := fs.String("output", "", "output path, default stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: col2json [flags] FILE")
	}

	cfg, err := LoadConfig(*cfgPath)
	if err != nil {
		return err
	}
	if *batchSize > 0 {
		cfg.BatchSize = *batchSize
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}
	if *columns != "" {
		cfg.Columns = strings.Split(*columns, ",")
	}
	if *output != "" {
		cfg.Output = *output
	}

	r, err := reader.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer r.Close()

	out := os.Stdout
	if cfg.Output != "" {
		f, err := os.Create(cfg.Output)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	w := bufio.NewWriter(out)
	defer w.Flush()

	if cfg.Workers > 1 {
		return exportParallel(r, cfg, w)
	}
	return exportSequential(r, cfg, w)
}

func exportSequential(r *reader.Reader, cfg *Config, w *bufio.Writer) error {
	sr, err := tojson.NewStructuredReader(r, reader.Options{IncludeNames: includeNames(cfg)}, cfg.BatchSize)
	if err != nil {
		return err
	}
	defer sr.Close()

	for {
		more, err := sr.Next()
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
		values, err := tojson.Rows(sr.Batch())
		if err != nil {
			return err
		}
		if err := writeLines(w, values); err != nil {
			return err
		}
	}
}

func exportParallel(r *reader.Reader, cfg *Config, w *bufio.Writer) error {
	values, err := rows.ParallelCollect(context.Background(), r,
		func() rowcodec.Decoder[any] { return tojson.RowDecoder(cfg.Columns...) },
		rows.ParallelOptions{BatchSize: cfg.BatchSize, Workers: cfg.Workers})
	if err != nil {
		return err
	}
	return writeLines(w, values)
}

func includeNames(cfg *Config) []string {
	if len(cfg.Columns) == 0 {
		return nil
	}
	return cfg.Columns
}

func writeLines(w *bufio.Writer, values []any) error {
	for _, v := range values {
		line, err := tojson.Marshal(v)
		if err != nil {
			return err
		}
		if _, err := w.Write(line); err != nil {
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return nil
}
