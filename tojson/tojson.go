// Package tojson renders column batches as plain JSON-ready values without
// a compiled row decoder, driven entirely by the file's kind tree.
package tojson

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/colstream/colstream/kind"
	"github.com/colstream/colstream/reader"
	"github.com/colstream/colstream/vector"
)

// DefaultBatchSize is used when NewStructuredReader gets a non-positive
// batch size.
const DefaultBatchSize = 1024

// StructuredReader walks a file schema-first: each Next refills one column
// batch, which Rows can then turn into row-major values.
type StructuredReader struct {
	rr    *reader.RowReader
	batch *vector.Column
}

// NewStructuredReader opens a cursor over the file with the given
// projection and batch size.
func NewStructuredReader(r *reader.Reader, opts reader.Options, batchSize int) (*StructuredReader, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	rr, err := r.RowReader(opts)
	if err != nil {
		return nil, err
	}
	return &StructuredReader{rr: rr, batch: rr.RowBatch(batchSize)}, nil
}

// Kind returns the projected type tree the reader walks.
func (s *StructuredReader) Kind() kind.Kind { return s.rr.Kind() }

// Next refills the batch with the next rows. The previous batch contents
// are overwritten.
func (s *StructuredReader) Next() (bool, error) { return s.rr.ReadInto(s.batch) }

// Batch returns the current batch, valid until the next call to Next.
func (s *StructuredReader) Batch() *vector.Column { return s.batch }

// Close releases the underlying cursor.
func (s *StructuredReader) Close() error { return s.rr.Close() }

// Rows converts a batch into one value per row: maps for structs, slices
// for lists, nil for nulls. Timestamps render as RFC 3339 with
// nanoseconds, dates as "2006-01-02", decimals as scaled decimal strings
// and binary as base64.
func Rows(col *vector.Column) ([]any, error) {
	out := make([]any, 0, col.NumElements())
	for i := 0; i < col.NumElements(); i++ {
		v, err := valueAt(col, i)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Marshal renders one converted value as JSON.
func Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func valueAt(col *vector.Column, i int) (any, error) {
	if !col.IsNotNull(i) {
		return nil, nil
	}
	switch col.Category() {
	case vector.CatLong:
		v, err := col.Longs()
		if err != nil {
			return nil, err
		}
		switch col.Kind().Prim {
		case kind.Boolean:
			return v.Value(i) != 0, nil
		case kind.Date:
			return time.Unix(v.Value(i)*86_400, 0).UTC().Format("2006-01-02"), nil
		default:
			return v.Value(i), nil
		}
	case vector.CatDouble:
		v, err := col.Doubles()
		if err != nil {
			return nil, err
		}
		return v.Value(i), nil
	case vector.CatBytes:
		v, err := col.Bytes()
		if err != nil {
			return nil, err
		}
		if col.Kind().Prim == kind.Binary {
			return base64.StdEncoding.EncodeToString(v.Value(i)), nil
		}
		return string(v.Value(i)), nil
	case vector.CatTimestamp:
		v, err := col.Timestamps()
		if err != nil {
			return nil, err
		}
		return time.Unix(v.Seconds(i), v.Nanos(i)).UTC().Format(time.RFC3339Nano), nil
	case vector.CatDecimal:
		v, err := col.Decimals()
		if err != nil {
			return nil, err
		}
		return v.Value(i).ToString(v.Scale()), nil
	case vector.CatStruct:
		v, err := col.Structs()
		if err != nil {
			return nil, err
		}
		row := make(map[string]any, v.NumFields())
		for f := 0; f < v.NumFields(); f++ {
			fv, err := valueAt(v.Field(f), i)
			if err != nil {
				return nil, err
			}
			row[v.FieldName(f)] = fv
		}
		return row, nil
	case vector.CatList:
		v, err := col.Lists()
		if err != nil {
			return nil, err
		}
		start, end, err := v.Range(i)
		if err != nil {
			return nil, err
		}
		items := make([]any, 0, end-start)
		for j := start; j < end; j++ {
			item, err := valueAt(v.Elements(), j)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return items, nil
	case vector.CatMap:
		return mapValueAt(col, i)
	case vector.CatUnion:
		v, err := col.Unions()
		if err != nil {
			return nil, err
		}
		b := v.Branch(i)
		inner, err := valueAt(v.BranchColumn(b), v.ValueIndex(i))
		if err != nil {
			return nil, err
		}
		return map[string]any{"branch": b, "value": inner}, nil
	default:
		return nil, fmt.Errorf("tojson: cannot render %s column", col.Kind())
	}
}

// mapValueAt renders string-keyed maps as JSON objects and everything else
// as a list of key/value entries, preserving entry order.
func mapValueAt(col *vector.Column, i int) (any, error) {
	v, err := col.Maps()
	if err != nil {
		return nil, err
	}
	start, end, err := v.Range(i)
	if err != nil {
		return nil, err
	}
	if col.Kind().Key.Prim == kind.String {
		obj := make(map[string]any, end-start)
		keys, err := v.Keys().Bytes()
		if err != nil {
			return nil, err
		}
		for j := start; j < end; j++ {
			val, err := valueAt(v.Values(), j)
			if err != nil {
				return nil, err
			}
			obj[string(keys.Value(j))] = val
		}
		return obj, nil
	}
	entries := make([]any, 0, end-start)
	for j := start; j < end; j++ {
		key, err := valueAt(v.Keys(), j)
		if err != nil {
			return nil, err
		}
		val, err := valueAt(v.Values(), j)
		if err != nil {
			return nil, err
		}
		entries = append(entries, map[string]any{"key": key, "value": val})
	}
	return entries, nil
}
