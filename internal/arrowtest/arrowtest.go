// Package arrowtest builds small Arrow IPC file fixtures for tests.
package arrowtest

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Record builds one record through a RecordBuilder callback.
func Record(t testing.TB, schema *arrow.Schema, fill func(*array.RecordBuilder)) arrow.Record {
	t.Helper()
	b := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer b.Release()
	fill(b)
	rec := b.NewRecord()
	t.Cleanup(rec.Release)
	return rec
}

// FileBytes serializes records into an IPC file image, one record batch
// per record.
func FileBytes(t testing.TB, schema *arrow.Schema, records ...arrow.Record) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := ipc.NewFileWriter(&buf, ipc.WithSchema(schema))
	if err != nil {
		t.Fatalf("arrowtest: new file writer: %v", err)
	}
	for i, rec := range records {
		if err := w.Write(rec); err != nil {
			t.Fatalf("arrowtest: write record %d: %v", i, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("arrowtest: close file writer: %v", err)
	}
	return buf.Bytes()
}

// TempFile writes a file image to disk and returns its path. The file is
// removed with the test's temporary directory.
func TempFile(t testing.TB, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.arrow")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("arrowtest: write temp file: %v", err)
	}
	return path
}

// LongFile builds a single-column file of long values named "v", one
// record batch per chunk. A nil pointer is a null row.
func LongFile(t testing.TB, chunks ...[]*int64) []byte {
	t.Helper()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "v", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
	}, nil)
	records := make([]arrow.Record, 0, len(chunks))
	for _, chunk := range chunks {
		chunk := chunk
		records = append(records, Record(t, schema, func(b *array.RecordBuilder) {
			vb := b.Field(0).(*array.Int64Builder)
			for _, v := range chunk {
				if v == nil {
					vb.AppendNull()
				} else {
					vb.Append(*v)
				}
			}
		}))
	}
	return FileBytes(t, schema, records...)
}

// Longs converts plain values into LongFile's nullable representation.
func Longs(values ...int64) []*int64 {
	out := make([]*int64, len(values))
	for i := range values {
		v := values[i]
		out[i] = &v
	}
	return out
}
