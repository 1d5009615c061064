package rowcodec

import (
	"github.com/colstream/colstream/kind"
	"github.com/colstream/colstream/vector"
)

// StructDecoder decodes struct columns into values of type T, built field
// by field from registered setters. Struct fields with no registered
// decoder are ignored, which is how a decoder expresses column projection.
//
// Register fields with Field before the first CheckKind or AppendRange
// call:
//
//	type Commit struct {
//		ID      int64
//		Message string
//	}
//
//	dec := rowcodec.NewStruct[Commit]()
//	rowcodec.Field(dec, "id", rowcodec.Int64(), func(c *Commit, v int64) { c.ID = v })
//	rowcodec.Field(dec, "message", rowcodec.String(), func(c *Commit, v string) { c.Message = v })
type StructDecoder[T any] struct {
	fields []boundField[T]
}

type boundField[T any] struct {
	name   string
	check  func(kind.Kind) error
	decode func(col *vector.Column, start, n int, out []T, base int) error
}

// NewStruct returns a struct decoder with no fields registered.
func NewStruct[T any]() *StructDecoder[T] {
	return &StructDecoder[T]{}
}

// Field registers a decoder for the named struct field together with the
// setter that stores the decoded value into the row under construction.
// It is a package function rather than a method so the field type can
// differ per registration.
func Field[T, F any](d *StructDecoder[T], name string, dec Decoder[F], set func(row *T, v F)) {
	var scratch []F
	d.fields = append(d.fields, boundField[T]{
		name:  name,
		check: dec.CheckKind,
		decode: func(col *vector.Column, start, n int, out []T, base int) error {
			var err error
			scratch, err = dec.AppendRange(col, start, n, scratch[:0])
			if err != nil {
				return err
			}
			for i, v := range scratch {
				set(&out[base+i], v)
			}
			return nil
		},
	})
}

// Columns lists the registered field names, escaped for use as a column
// projection.
func (d *StructDecoder[T]) Columns() []string {
	cols := make([]string, len(d.fields))
	for i, f := range d.fields {
		cols[i] = EscapeName(f.name)
	}
	return cols
}

func (d *StructDecoder[T]) CheckKind(k kind.Kind) error {
	if k.Prim != kind.Struct {
		return mismatch("struct", k)
	}
	for _, f := range d.fields {
		fk, ok := k.FieldByName(f.name)
		if !ok {
			return missingField(f.name)
		}
		if err := f.check(fk.Kind); err != nil {
			return atField(f.name, err)
		}
	}
	return nil
}

func (d *StructDecoder[T]) AppendRange(col *vector.Column, start, n int, out []T) ([]T, error) {
	v, err := col.Structs()
	if err != nil {
		return out, err
	}
	if err := requireNoNulls(col, start, n); err != nil {
		return out, err
	}
	base := len(out)
	var zero T
	for i := 0; i < n; i++ {
		out = append(out, zero)
	}
	for _, f := range d.fields {
		child, ok := v.FieldByName(f.name)
		if !ok {
			return out, missingField(f.name)
		}
		if err := f.decode(child, start, n, out, base); err != nil {
			return out, atField(f.name, err)
		}
	}
	return out, nil
}
