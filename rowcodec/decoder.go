package rowcodec

import (
	"github.com/colstream/colstream/kind"
	"github.com/colstream/colstream/vector"
)

// Decoder converts a range of column rows into values of type T.
//
// CheckKind is called once, before any data is read, and must reject any
// kind the decoder cannot handle; AppendRange may then assume the column
// matches. Decoders carry at most scratch buffers, so a single decoder
// must not be shared between goroutines.
type Decoder[T any] interface {
	// CheckKind reports whether columns of kind k can be decoded.
	CheckKind(k kind.Kind) error

	// AppendRange decodes rows [start, start+n) of col and appends them
	// to out. On error the rows appended so far are unspecified.
	AppendRange(col *vector.Column, start, n int, out []T) ([]T, error)
}

// Nullable adapts any decoded type to columns that contain nulls. The zero
// Nullable is the null value.
type Nullable[T any] struct {
	Valid bool
	Value T
}

// Some wraps a present value.
func Some[T any](v T) Nullable[T] { return Nullable[T]{Valid: true, Value: v} }

// Get returns the value and whether it is present.
func (n Nullable[T]) Get() (T, bool) { return n.Value, n.Valid }

// DecodeAll decodes every row of the column.
func DecodeAll[T any](dec Decoder[T], col *vector.Column) ([]T, error) {
	return dec.AppendRange(col, 0, col.NumElements(), nil)
}

// requireNoNulls enforces the non-nullable contract over a row range.
func requireNoNulls(col *vector.Column, start, n int) error {
	if !col.HasNulls() {
		return nil
	}
	for i := 0; i < n; i++ {
		if !col.IsNotNull(start + i) {
			return &UnexpectedNullError{Index: start + i}
		}
	}
	return nil
}

// NullableOf lifts a decoder over nullable columns: null rows decode to
// the zero Nullable, valid rows to Some of the inner decoding.
func NullableOf[T any](inner Decoder[T]) Decoder[Nullable[T]] {
	return &nullableDecoder[T]{inner: inner}
}

type nullableDecoder[T any] struct {
	inner   Decoder[T]
	scratch []T
}

func (d *nullableDecoder[T]) CheckKind(k kind.Kind) error {
	return d.inner.CheckKind(k)
}

func (d *nullableDecoder[T]) AppendRange(col *vector.Column, start, n int, out []Nullable[T]) ([]Nullable[T], error) {
	// Decode maximal runs of valid rows in one inner call each.
	for i := 0; i < n; {
		if !col.IsNotNull(start + i) {
			out = append(out, Nullable[T]{})
			i++
			continue
		}
		run := i + 1
		for run < n && col.IsNotNull(start+run) {
			run++
		}
		var err error
		d.scratch, err = d.inner.AppendRange(col, start+i, run-i, d.scratch[:0])
		if err != nil {
			return out, err
		}
		for _, v := range d.scratch {
			out = append(out, Some(v))
		}
		i = run
	}
	return out, nil
}
