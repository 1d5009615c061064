package rowcodec

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colstream/colstream/kind"
	"github.com/colstream/colstream/vector"
)

type commitRow struct {
	ID      int64
	Message string
	Parents []int64
}

func commitKind() kind.Kind {
	return kind.NewStruct(
		kind.Field{Name: "id", Kind: kind.Of(kind.Long)},
		kind.Field{Name: "message", Kind: kind.Of(kind.String)},
		kind.Field{Name: "parents", Kind: kind.NewList(kind.Of(kind.Long))},
	)
}

func commitDecoder() *StructDecoder[commitRow] {
	d := NewStruct[commitRow]()
	Field(d, "id", Int64(), func(r *commitRow, v int64) { r.ID = v })
	Field(d, "message", String(), func(r *commitRow, v string) { r.Message = v })
	Field(d, "parents", ListOf(Int64()), func(r *commitRow, v []int64) { r.Parents = v })
	return d
}

func commitColumn(t *testing.T) *vector.Column {
	t.Helper()
	st := arrow.StructOf(
		arrow.Field{Name: "id", Type: arrow.PrimitiveTypes.Int64},
		arrow.Field{Name: "message", Type: arrow.BinaryTypes.String},
		arrow.Field{Name: "parents", Type: arrow.ListOf(arrow.PrimitiveTypes.Int64)},
	)
	sb := array.NewStructBuilder(memory.DefaultAllocator, st)
	defer sb.Release()
	idB := sb.FieldBuilder(0).(*array.Int64Builder)
	msgB := sb.FieldBuilder(1).(*array.StringBuilder)
	parB := sb.FieldBuilder(2).(*array.ListBuilder)
	parV := parB.ValueBuilder().(*array.Int64Builder)

	sb.Append(true)
	idB.Append(1)
	msgB.Append("initial")
	parB.Append(true) // no parents

	sb.Append(true)
	idB.Append(2)
	msgB.Append("fix")
	parB.Append(true)
	parV.Append(1)

	arr := sb.NewArray()
	t.Cleanup(arr.Release)
	return fill(t, commitKind(), arr)
}

func TestStructDecode(t *testing.T) {
	dec := commitDecoder()
	col := commitColumn(t)

	require.NoError(t, dec.CheckKind(col.Kind()))
	got, err := DecodeAll(dec, col)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, commitRow{ID: 1, Message: "initial", Parents: []int64{}}, got[0])
	assert.Equal(t, commitRow{ID: 2, Message: "fix", Parents: []int64{1}}, got[1])
}

func TestStructProjection(t *testing.T) {
	// Registering a subset of fields is a projection; unregistered columns
	// are never touched.
	d := NewStruct[commitRow]()
	Field(d, "id", Int64(), func(r *commitRow, v int64) { r.ID = v })

	assert.Equal(t, []string{"id"}, d.Columns())

	col := commitColumn(t)
	require.NoError(t, d.CheckKind(col.Kind()))
	got, err := DecodeAll(d, col)
	require.NoError(t, err)
	assert.Equal(t, []commitRow{{ID: 1}, {ID: 2}}, got)
}

func TestStructCheckKindMissingField(t *testing.T) {
	d := NewStruct[commitRow]()
	Field(d, "author", String(), func(r *commitRow, v string) { r.Message = v })

	err := d.CheckKind(commitKind())
	require.Error(t, err)
	var sm *SchemaMismatchError
	require.ErrorAs(t, err, &sm)
	assert.Equal(t, "author", sm.Path)
	assert.Equal(t, "absent", sm.Got)
}

func TestStructCheckKindFieldTypeMismatch(t *testing.T) {
	d := NewStruct[commitRow]()
	Field(d, "message", Int64(), func(r *commitRow, v int64) { r.ID = v })

	err := d.CheckKind(commitKind())
	var sm *SchemaMismatchError
	require.ErrorAs(t, err, &sm)
	assert.Equal(t, "message", sm.Path)
	assert.Equal(t, "long", sm.Want)
	assert.Equal(t, "string", sm.Got)
}

func TestStructCheckKindNestedPath(t *testing.T) {
	type outer struct{ X int64 }

	inner := NewStruct[int64]()
	Field(inner, "x", Int64(), func(r *int64, v int64) { *r = v })
	d := NewStruct[outer]()
	Field(d, "nested", inner, func(r *outer, v int64) { r.X = v })

	k := kind.NewStruct(kind.Field{
		Name: "nested",
		Kind: kind.NewStruct(kind.Field{Name: "x", Kind: kind.Of(kind.String)}),
	})
	err := d.CheckKind(k)
	var sm *SchemaMismatchError
	require.ErrorAs(t, err, &sm)
	assert.Equal(t, "nested.x", sm.Path)
}

func TestStructColumnsEscaped(t *testing.T) {
	type row struct{ V int64 }
	d := NewStruct[row]()
	Field(d, "weird.name", Int64(), func(r *row, v int64) { r.V = v })
	assert.Equal(t, []string{`weird\.name`}, d.Columns())
}

func TestNullableStruct(t *testing.T) {
	st := arrow.StructOf(arrow.Field{Name: "x", Type: arrow.PrimitiveTypes.Int64, Nullable: true})
	sb := array.NewStructBuilder(memory.DefaultAllocator, st)
	defer sb.Release()
	xb := sb.FieldBuilder(0).(*array.Int64Builder)

	sb.Append(true)
	xb.Append(10)
	sb.AppendNull()
	xb.AppendNull()

	arr := sb.NewArray()
	defer arr.Release()

	k := kind.NewStruct(kind.Field{Name: "x", Kind: kind.Of(kind.Long)})
	col := fill(t, k, arr)

	type row struct{ X int64 }
	inner := NewStruct[row]()
	Field(inner, "x", Int64(), func(r *row, v int64) { r.X = v })

	// Without Nullable the null struct row is an error.
	_, err := DecodeAll(inner, col)
	var nullErr *UnexpectedNullError
	require.ErrorAs(t, err, &nullErr)

	got, err := DecodeAll(NullableOf[row](inner), col)
	require.NoError(t, err)
	assert.Equal(t, []Nullable[row]{Some(row{X: 10}), {}}, got)
}
