package tojson

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colstream/colstream/internal/arrowtest"
	"github.com/colstream/colstream/reader"
)

func mixedSchema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "ok", Type: arrow.FixedWidthTypes.Boolean},
		{Name: "name", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "at", Type: arrow.FixedWidthTypes.Timestamp_us},
		{Name: "day", Type: arrow.FixedWidthTypes.Date32},
		{Name: "price", Type: &arrow.Decimal128Type{Precision: 10, Scale: 2}},
		{Name: "tags", Type: arrow.ListOf(arrow.BinaryTypes.String)},
		{Name: "attrs", Type: arrow.MapOf(arrow.BinaryTypes.String, arrow.PrimitiveTypes.Int64)},
	}, nil)
}

func mixedRecord(t *testing.T) arrow.Record {
	t.Helper()
	return arrowtest.Record(t, mixedSchema(), func(b *array.RecordBuilder) {
		b.Field(0).(*array.Int64Builder).AppendValues([]int64{1, 2}, nil)
		b.Field(1).(*array.BooleanBuilder).AppendValues([]bool{true, false}, nil)
		nameB := b.Field(2).(*array.StringBuilder)
		nameB.Append("ada")
		nameB.AppendNull()
		b.Field(3).(*array.TimestampBuilder).AppendValues([]arrow.Timestamp{1_500_000, 0}, nil)
		b.Field(4).(*array.Date32Builder).AppendValues([]arrow.Date32{19_000, 0}, nil)
		prcB := b.Field(5).(*array.Decimal128Builder)
		prcB.Append(decimal128.FromI64(1299))
		prcB.Append(decimal128.FromI64(-50))
		tagB := b.Field(6).(*array.ListBuilder)
		tagV := tagB.ValueBuilder().(*array.StringBuilder)
		tagB.Append(true)
		tagV.Append("x")
		tagV.Append("y")
		tagB.Append(true)
		attrB := b.Field(7).(*array.MapBuilder)
		attrK := attrB.KeyBuilder().(*array.StringBuilder)
		attrV := attrB.ItemBuilder().(*array.Int64Builder)
		attrB.Append(true)
		attrK.Append("n")
		attrV.Append(9)
		attrB.Append(true)
	})
}

func TestStructuredReaderRows(t *testing.T) {
	data := arrowtest.FileBytes(t, mixedSchema(), mixedRecord(t))
	r, err := reader.NewFromBytes(data)
	require.NoError(t, err)
	defer r.Close()

	sr, err := NewStructuredReader(r, reader.Options{}, 0)
	require.NoError(t, err)
	defer sr.Close()

	more, err := sr.Next()
	require.NoError(t, err)
	require.True(t, more)

	rows, err := Rows(sr.Batch())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	first := rows[0].(map[string]any)
	assert.Equal(t, int64(1), first["id"])
	assert.Equal(t, true, first["ok"])
	assert.Equal(t, "ada", first["name"])
	assert.Equal(t, "1970-01-01T00:00:01.5Z", first["at"])
	assert.Equal(t, "2022-01-08", first["day"])
	assert.Equal(t, "12.99", first["price"])
	assert.Equal(t, []any{"x", "y"}, first["tags"])
	assert.Equal(t, map[string]any{"n": int64(9)}, first["attrs"])

	second := rows[1].(map[string]any)
	assert.Nil(t, second["name"], "null renders as nil")
	assert.Equal(t, []any{}, second["tags"], "empty list renders as empty, not nil")
	assert.Equal(t, map[string]any{}, second["attrs"])

	more, err = sr.Next()
	require.NoError(t, err)
	assert.False(t, more)
}

func TestStructuredReaderProjection(t *testing.T) {
	data := arrowtest.FileBytes(t, mixedSchema(), mixedRecord(t))
	r, err := reader.NewFromBytes(data)
	require.NoError(t, err)
	defer r.Close()

	sr, err := NewStructuredReader(r, reader.Options{IncludeNames: []string{"id"}}, 16)
	require.NoError(t, err)
	defer sr.Close()

	assert.Equal(t, "struct<id:long>", sr.Kind().String())

	more, err := sr.Next()
	require.NoError(t, err)
	require.True(t, more)
	rows, err := Rows(sr.Batch())
	require.NoError(t, err)
	assert.Equal(t, []any{
		map[string]any{"id": int64(1)},
		map[string]any{"id": int64(2)},
	}, rows)
}

func TestMarshal(t *testing.T) {
	out, err := Marshal(map[string]any{"id": int64(7)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7}`, string(out))
}
