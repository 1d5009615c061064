package vector

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/colstream/colstream/kind"
)

func TestSetFromArrowLongs(t *testing.T) {
	b := array.NewInt64Builder(memory.DefaultAllocator)
	defer b.Release()
	b.Append(1)
	b.AppendNull()
	b.Append(-3)
	arr := b.NewArray()
	defer arr.Release()

	col := NewColumn(kind.Of(kind.Long), 8)
	if err := col.SetFromArrow(arr, 0, 3); err != nil {
		t.Fatalf("SetFromArrow: %v", err)
	}

	if col.NumElements() != 3 {
		t.Fatalf("NumElements = %d, want 3", col.NumElements())
	}
	if !col.HasNulls() {
		t.Fatal("expected nulls")
	}
	v, err := col.Longs()
	if err != nil {
		t.Fatalf("Longs: %v", err)
	}
	if v.Value(0) != 1 || v.Value(2) != -3 {
		t.Errorf("unexpected values: %d, %d", v.Value(0), v.Value(2))
	}
	if col.IsNotNull(1) {
		t.Error("row 1 should be null")
	}
	if !col.IsNotNull(0) || !col.IsNotNull(2) {
		t.Error("rows 0 and 2 should be set")
	}
}

func TestSetFromArrowOffsetRange(t *testing.T) {
	b := array.NewInt64Builder(memory.DefaultAllocator)
	defer b.Release()
	b.AppendValues([]int64{10, 20, 30, 40, 50}, nil)
	arr := b.NewArray()
	defer arr.Release()

	col := NewColumn(kind.Of(kind.Long), 8)
	if err := col.SetFromArrow(arr, 1, 3); err != nil {
		t.Fatalf("SetFromArrow: %v", err)
	}
	v, _ := col.Longs()
	if col.NumElements() != 3 || v.Value(0) != 20 || v.Value(2) != 40 {
		t.Errorf("range fill wrong: n=%d first=%d last=%d", col.NumElements(), v.Value(0), v.Value(2))
	}
	if col.HasNulls() {
		t.Error("no nulls expected")
	}
}

func TestSetFromArrowStrings(t *testing.T) {
	b := array.NewStringBuilder(memory.DefaultAllocator)
	defer b.Release()
	b.Append("")
	b.Append("hello")
	b.AppendNull()
	b.Append("xyz")
	arr := b.NewArray()
	defer arr.Release()

	col := NewColumn(kind.Of(kind.String), 8)
	if err := col.SetFromArrow(arr, 0, 4); err != nil {
		t.Fatalf("SetFromArrow: %v", err)
	}
	v, err := col.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if string(v.Value(1)) != "hello" || string(v.Value(3)) != "xyz" {
		t.Errorf("unexpected strings %q, %q", v.Value(1), v.Value(3))
	}
	if len(v.Value(0)) != 0 {
		t.Errorf("row 0 should be empty, got %q", v.Value(0))
	}
	if col.IsNotNull(2) {
		t.Error("row 2 should be null")
	}
}

func TestSetFromArrowList(t *testing.T) {
	lb := array.NewListBuilder(memory.DefaultAllocator, arrow.PrimitiveTypes.Int64)
	defer lb.Release()
	vb := lb.ValueBuilder().(*array.Int64Builder)

	lb.Append(true) // [1, 2]
	vb.Append(1)
	vb.Append(2)
	lb.Append(true) // []
	lb.AppendNull() // null
	lb.Append(true) // [3]
	vb.Append(3)

	arr := lb.NewArray()
	defer arr.Release()

	col := NewColumn(kind.NewList(kind.Of(kind.Long)), 8)
	if err := col.SetFromArrow(arr, 0, 4); err != nil {
		t.Fatalf("SetFromArrow: %v", err)
	}
	v, err := col.Lists()
	if err != nil {
		t.Fatalf("Lists: %v", err)
	}

	start, end, err := v.Range(0)
	if err != nil || start != 0 || end != 2 {
		t.Errorf("row 0 range = [%d, %d) err=%v, want [0, 2)", start, end, err)
	}
	start, end, err = v.Range(1)
	if err != nil || start != end {
		t.Errorf("row 1 should be empty, got [%d, %d) err=%v", start, end, err)
	}
	if !col.IsNotNull(1) {
		t.Error("an empty list row is present, not null")
	}
	if col.IsNotNull(2) {
		t.Error("row 2 should be null")
	}

	elems, _ := v.Elements().Longs()
	if v.Elements().NumElements() != 3 || elems.Value(0) != 1 || elems.Value(2) != 3 {
		t.Errorf("unexpected elements")
	}
}

func TestSetFromArrowListTail(t *testing.T) {
	lb := array.NewListBuilder(memory.DefaultAllocator, arrow.PrimitiveTypes.Int64)
	defer lb.Release()
	vb := lb.ValueBuilder().(*array.Int64Builder)
	for i := 0; i < 4; i++ {
		lb.Append(true)
		vb.Append(int64(10 * i))
		vb.Append(int64(10*i + 1))
	}
	arr := lb.NewArray()
	defer arr.Release()

	// A partial fill must rebase child offsets to zero.
	col := NewColumn(kind.NewList(kind.Of(kind.Long)), 8)
	if err := col.SetFromArrow(arr, 2, 2); err != nil {
		t.Fatalf("SetFromArrow: %v", err)
	}
	v, _ := col.Lists()
	start, end, err := v.Range(0)
	if err != nil || start != 0 || end != 2 {
		t.Fatalf("row 0 range = [%d, %d) err=%v, want [0, 2)", start, end, err)
	}
	elems, _ := v.Elements().Longs()
	if elems.Value(0) != 20 || elems.Value(1) != 21 {
		t.Errorf("unexpected tail elements %d, %d", elems.Value(0), elems.Value(1))
	}
}

func TestSetFromArrowStructNullPropagation(t *testing.T) {
	st := arrow.StructOf(arrow.Field{Name: "x", Type: arrow.PrimitiveTypes.Int64, Nullable: true})
	sb := array.NewStructBuilder(memory.DefaultAllocator, st)
	defer sb.Release()
	xb := sb.FieldBuilder(0).(*array.Int64Builder)

	sb.Append(true)
	xb.Append(7)
	sb.AppendNull() // also appends null to every child builder
	sb.Append(true)
	xb.Append(9)

	arr := sb.NewArray()
	defer arr.Release()

	k := kind.NewStruct(kind.Field{Name: "x", Kind: kind.Of(kind.Long)})
	col := NewColumn(k, 8)
	if err := col.SetFromArrow(arr, 0, 3); err != nil {
		t.Fatalf("SetFromArrow: %v", err)
	}
	v, _ := col.Structs()
	x, ok := v.FieldByName("x")
	if !ok {
		t.Fatal("field x missing")
	}
	if x.IsNotNull(1) {
		t.Error("field of a null struct row must read as null")
	}
	if col.IsNotNull(1) {
		t.Error("row 1 should be null")
	}
	xs, _ := x.Longs()
	if xs.Value(0) != 7 || xs.Value(2) != 9 {
		t.Errorf("unexpected field values")
	}
}

func TestSetFromArrowTimestamp(t *testing.T) {
	dt := arrow.FixedWidthTypes.Timestamp_us.(*arrow.TimestampType)
	b := array.NewTimestampBuilder(memory.DefaultAllocator, dt)
	defer b.Release()
	b.Append(arrow.Timestamp(1_500_000))  // 1.5s
	b.Append(arrow.Timestamp(-1))         // 1us before epoch
	arr := b.NewArray()
	defer arr.Release()

	col := NewColumn(kind.Of(kind.Timestamp), 8)
	if err := col.SetFromArrow(arr, 0, 2); err != nil {
		t.Fatalf("SetFromArrow: %v", err)
	}
	v, _ := col.Timestamps()
	if v.Seconds(0) != 1 || v.Nanos(0) != 500_000_000 {
		t.Errorf("row 0 = (%d, %d), want (1, 500000000)", v.Seconds(0), v.Nanos(0))
	}
	if v.Seconds(1) != -1 || v.Nanos(1) != 999_999_000 {
		t.Errorf("row 1 = (%d, %d), want (-1, 999999000)", v.Seconds(1), v.Nanos(1))
	}
}

func TestReuseAcrossFills(t *testing.T) {
	col := NewColumn(kind.Of(kind.Long), 8)

	b := array.NewInt64Builder(memory.DefaultAllocator)
	defer b.Release()
	b.AppendValues([]int64{1, 2, 3, 4}, nil)
	arr := b.NewArray()
	defer arr.Release()

	if err := col.SetFromArrow(arr, 0, 4); err != nil {
		t.Fatal(err)
	}
	if err := col.SetFromArrow(arr, 0, 2); err != nil {
		t.Fatal(err)
	}
	if col.NumElements() != 2 {
		t.Errorf("NumElements after refill = %d, want 2", col.NumElements())
	}
	v, _ := col.Longs()
	if v.Value(1) != 2 {
		t.Errorf("refilled value = %d, want 2", v.Value(1))
	}
}

func TestViewKindMismatch(t *testing.T) {
	col := NewColumn(kind.Of(kind.String), 4)
	_, err := col.Longs()
	if err == nil {
		t.Fatal("expected a mismatch error")
	}
	if _, ok := err.(*KindMismatchError); !ok {
		t.Errorf("expected *KindMismatchError, got %T", err)
	}
}

func TestMalformedOffsets(t *testing.T) {
	col := NewColumn(kind.NewList(kind.Of(kind.Long)), 4)
	col.begin(1)
	col.notNull = append(col.notNull, true)
	col.childOffsets = append(col.childOffsets[:0], 2, 1) // start > end
	col.children[0].begin(2)

	v, _ := col.Lists()
	if _, _, err := v.Range(0); err == nil {
		t.Fatal("expected a malformed offsets error")
	} else if _, ok := err.(*MalformedOffsetsError); !ok {
		t.Errorf("expected *MalformedOffsetsError, got %T", err)
	}
}
