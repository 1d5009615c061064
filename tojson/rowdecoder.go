package tojson

import (
	"github.com/colstream/colstream/kind"
	"github.com/colstream/colstream/rowcodec"
	"github.com/colstream/colstream/vector"
)

// RowDecoder adapts the schema-driven conversion to the row decoding
// contract, yielding one JSON-ready value per row. With column names it
// also acts as a projection, like a struct decoder's registered fields.
func RowDecoder(columns ...string) rowcodec.Decoder[any] {
	return rowDecoder{columns: columns}
}

type rowDecoder struct {
	columns []string
}

// Columns reports the projection; nil means every column.
func (d rowDecoder) Columns() []string {
	if len(d.columns) == 0 {
		return nil
	}
	return d.columns
}

func (d rowDecoder) CheckKind(k kind.Kind) error {
	if k.Prim != kind.Struct {
		return &rowcodec.SchemaMismatchError{Want: "struct", Got: k.String()}
	}
	return nil
}

func (d rowDecoder) AppendRange(col *vector.Column, start, n int, out []any) ([]any, error) {
	for i := 0; i < n; i++ {
		v, err := valueAt(col, start+i)
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
	return out, nil
}
