package rowcodec

import (
	"github.com/colstream/colstream/kind"
	"github.com/colstream/colstream/vector"
)

// Bool decodes boolean columns.
func Bool() Decoder[bool] { return boolDecoder{} }

type boolDecoder struct{}

func (boolDecoder) CheckKind(k kind.Kind) error {
	if k.Prim != kind.Boolean {
		return mismatch("boolean", k)
	}
	return nil
}

func (boolDecoder) AppendRange(col *vector.Column, start, n int, out []bool) ([]bool, error) {
	v, err := col.Longs()
	if err != nil {
		return out, err
	}
	if err := requireNoNulls(col, start, n); err != nil {
		return out, err
	}
	for i := 0; i < n; i++ {
		out = append(out, v.Value(start+i) != 0)
	}
	return out, nil
}

// Int8 decodes byte columns.
func Int8() Decoder[int8] { return intDecoder[int8]{want: kind.Byte} }

// Int16 decodes short columns.
func Int16() Decoder[int16] { return intDecoder[int16]{want: kind.Short} }

// Int32 decodes int columns.
func Int32() Decoder[int32] { return intDecoder[int32]{want: kind.Int} }

// Int64 decodes long columns.
func Int64() Decoder[int64] { return intDecoder[int64]{want: kind.Long} }

type intDecoder[T int8 | int16 | int32 | int64] struct {
	want kind.Primitive
}

func (d intDecoder[T]) CheckKind(k kind.Kind) error {
	if k.Prim != d.want {
		return mismatch(d.want.String(), k)
	}
	return nil
}

func (d intDecoder[T]) AppendRange(col *vector.Column, start, n int, out []T) ([]T, error) {
	v, err := col.Longs()
	if err != nil {
		return out, err
	}
	if err := requireNoNulls(col, start, n); err != nil {
		return out, err
	}
	for i := 0; i < n; i++ {
		out = append(out, T(v.Value(start+i)))
	}
	return out, nil
}

// Float32 decodes float columns.
func Float32() Decoder[float32] { return floatDecoder[float32]{want: kind.Float} }

// Float64 decodes double columns.
func Float64() Decoder[float64] { return floatDecoder[float64]{want: kind.Double} }

type floatDecoder[T float32 | float64] struct {
	want kind.Primitive
}

func (d floatDecoder[T]) CheckKind(k kind.Kind) error {
	if k.Prim != d.want {
		return mismatch(d.want.String(), k)
	}
	return nil
}

func (d floatDecoder[T]) AppendRange(col *vector.Column, start, n int, out []T) ([]T, error) {
	v, err := col.Doubles()
	if err != nil {
		return out, err
	}
	if err := requireNoNulls(col, start, n); err != nil {
		return out, err
	}
	for i := 0; i < n; i++ {
		out = append(out, T(v.Value(start+i)))
	}
	return out, nil
}

// String decodes string columns. Values are copied out of the batch, so
// they stay valid after the next read.
func String() Decoder[string] { return stringDecoder{} }

type stringDecoder struct{}

func (stringDecoder) CheckKind(k kind.Kind) error {
	if k.Prim != kind.String {
		return mismatch("string", k)
	}
	return nil
}

func (stringDecoder) AppendRange(col *vector.Column, start, n int, out []string) ([]string, error) {
	v, err := col.Bytes()
	if err != nil {
		return out, err
	}
	if err := requireNoNulls(col, start, n); err != nil {
		return out, err
	}
	for i := 0; i < n; i++ {
		out = append(out, string(v.Value(start+i)))
	}
	return out, nil
}

// Binary decodes binary columns. Each row gets its own copy of the bytes.
func Binary() Decoder[[]byte] { return binaryDecoder{} }

type binaryDecoder struct{}

func (binaryDecoder) CheckKind(k kind.Kind) error {
	if k.Prim != kind.Binary {
		return mismatch("binary", k)
	}
	return nil
}

func (binaryDecoder) AppendRange(col *vector.Column, start, n int, out [][]byte) ([][]byte, error) {
	v, err := col.Bytes()
	if err != nil {
		return out, err
	}
	if err := requireNoNulls(col, start, n); err != nil {
		return out, err
	}
	for i := 0; i < n; i++ {
		row := v.Value(start + i)
		out = append(out, append(make([]byte, 0, len(row)), row...))
	}
	return out, nil
}
