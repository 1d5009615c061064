package vector

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow/decimal128"

	"github.com/colstream/colstream/kind"
)

// Category is the storage category of a Column. Several kinds share one
// category (all integer-like kinds are stored as int64, like Boolean and
// Date; String and Binary share the bytes layout).
type Category int

const (
	CatLong Category = iota
	CatDouble
	CatBytes
	CatTimestamp
	CatDecimal
	CatStruct
	CatList
	CatMap
	CatUnion
)

var catNames = [...]string{
	CatLong:      "long",
	CatDouble:    "double",
	CatBytes:     "bytes",
	CatTimestamp: "timestamp",
	CatDecimal:   "decimal",
	CatStruct:    "struct",
	CatList:      "list",
	CatMap:       "map",
	CatUnion:     "union",
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(catNames) {
		return "unknown"
	}
	return catNames[c]
}

// CategoryOf maps a kind to its storage category.
func CategoryOf(k kind.Kind) Category {
	switch k.Prim {
	case kind.Boolean, kind.Byte, kind.Short, kind.Int, kind.Long, kind.Date:
		return CatLong
	case kind.Float, kind.Double:
		return CatDouble
	case kind.String, kind.Binary:
		return CatBytes
	case kind.Timestamp:
		return CatTimestamp
	case kind.Decimal:
		return CatDecimal
	case kind.Struct:
		return CatStruct
	case kind.List:
		return CatList
	case kind.Map:
		return CatMap
	case kind.Union:
		return CatUnion
	default:
		return CatStruct
	}
}

// KindMismatchError reports a checked view conversion against a column of
// another category.
type KindMismatchError struct {
	Requested Category
	Kind      kind.Kind
}

func (e *KindMismatchError) Error() string {
	return fmt.Sprintf("vector: column of kind %s cannot be viewed as %s", e.Kind, e.Requested)
}

// MalformedOffsetsError reports a list or map row whose child range is
// inconsistent with the child column.
type MalformedOffsetsError struct {
	Index      int
	Start, End int
	Elements   int
}

func (e *MalformedOffsetsError) Error() string {
	return fmt.Sprintf("vector: malformed offsets at row %d: [%d, %d) with %d child elements",
		e.Index, e.Start, e.End, e.Elements)
}

// Column is one refillable columnar buffer, matching one Kind node. The
// owning row reader overwrites it on every read; callers must copy out any
// value they keep past the next read.
type Column struct {
	kind     kind.Kind
	cat      Category
	capacity int

	n        int
	hasNulls bool
	notNull  []bool

	longs    []int64
	doubles  []float64
	blob     []byte
	offsets  []int32 // n+1 byte offsets into blob (CatBytes)
	seconds  []int64
	nanos    []int64
	decimals []decimal128.Num

	// Struct: one child per field.
	// List: children[0] = elements. Map: children[0] = keys, children[1] = values.
	// Union: one child per branch.
	children     []*Column
	childOffsets []int32 // n+1 rebased child offsets (CatList, CatMap)
	tags         []uint8 // per-row branch (CatUnion)
	childIndex   []int32 // per-row index into children[tags[i]] (CatUnion)
}

// NewColumn allocates a column tree for the given kind, sized for capacity
// rows at every level. Variable-length children (list elements, blobs) grow
// on demand and keep their capacity across refills.
func NewColumn(k kind.Kind, capacity int) *Column {
	c := &Column{
		kind:     k,
		cat:      CategoryOf(k),
		capacity: capacity,
		notNull:  make([]bool, 0, capacity),
	}
	switch c.cat {
	case CatLong:
		c.longs = make([]int64, 0, capacity)
	case CatDouble:
		c.doubles = make([]float64, 0, capacity)
	case CatBytes:
		c.blob = make([]byte, 0, capacity*8)
		c.offsets = make([]int32, 0, capacity+1)
	case CatTimestamp:
		c.seconds = make([]int64, 0, capacity)
		c.nanos = make([]int64, 0, capacity)
	case CatDecimal:
		c.decimals = make([]decimal128.Num, 0, capacity)
	case CatStruct:
		c.children = make([]*Column, len(k.Fields))
		for i, f := range k.Fields {
			c.children[i] = NewColumn(f.Kind, capacity)
		}
	case CatList:
		c.children = []*Column{NewColumn(*k.Elem, capacity)}
		c.childOffsets = make([]int32, 0, capacity+1)
	case CatMap:
		c.children = []*Column{NewColumn(*k.Key, capacity), NewColumn(*k.Value, capacity)}
		c.childOffsets = make([]int32, 0, capacity+1)
	case CatUnion:
		c.children = make([]*Column, len(k.Branches))
		for i, b := range k.Branches {
			c.children[i] = NewColumn(b, capacity)
		}
		c.tags = make([]uint8, 0, capacity)
		c.childIndex = make([]int32, 0, capacity)
	}
	return c
}

// Kind returns the kind this column was allocated for.
func (c *Column) Kind() kind.Kind { return c.kind }

// Category returns the storage category.
func (c *Column) Category() Category { return c.cat }

// Capacity returns the maximum number of rows one refill may produce.
func (c *Column) Capacity() int { return c.capacity }

// NumElements returns the number of valid rows after the last refill.
func (c *Column) NumElements() int { return c.n }

// HasNulls reports whether the last refill produced at least one null row.
func (c *Column) HasNulls() bool { return c.hasNulls }

// IsNotNull reports whether row i holds a value.
func (c *Column) IsNotNull(i int) bool {
	if !c.hasNulls {
		return true
	}
	return c.notNull[i]
}

// forceNull marks row i null after the fact; used to propagate struct
// parent nulls into children so field decoders observe them.
func (c *Column) forceNull(i int) {
	c.notNull[i] = false
	c.hasNulls = true
	if c.cat == CatStruct {
		for _, child := range c.children {
			child.forceNull(i)
		}
	}
}

// begin resets the column for a refill of n rows.
func (c *Column) begin(n int) {
	c.n = n
	c.hasNulls = false
	c.notNull = c.notNull[:0]
}

// Longs returns the integer-like view of the column.
func (c *Column) Longs() (LongView, error) {
	if c.cat != CatLong {
		return LongView{}, &KindMismatchError{Requested: CatLong, Kind: c.kind}
	}
	return LongView{c}, nil
}

// Doubles returns the floating-point view of the column.
func (c *Column) Doubles() (DoubleView, error) {
	if c.cat != CatDouble {
		return DoubleView{}, &KindMismatchError{Requested: CatDouble, Kind: c.kind}
	}
	return DoubleView{c}, nil
}

// Bytes returns the string/binary view of the column.
func (c *Column) Bytes() (BytesView, error) {
	if c.cat != CatBytes {
		return BytesView{}, &KindMismatchError{Requested: CatBytes, Kind: c.kind}
	}
	return BytesView{c}, nil
}

// Timestamps returns the timestamp view of the column.
func (c *Column) Timestamps() (TimestampView, error) {
	if c.cat != CatTimestamp {
		return TimestampView{}, &KindMismatchError{Requested: CatTimestamp, Kind: c.kind}
	}
	return TimestampView{c}, nil
}

// Decimals returns the decimal view of the column.
func (c *Column) Decimals() (DecimalView, error) {
	if c.cat != CatDecimal {
		return DecimalView{}, &KindMismatchError{Requested: CatDecimal, Kind: c.kind}
	}
	return DecimalView{c}, nil
}

// Structs returns the struct view of the column.
func (c *Column) Structs() (StructView, error) {
	if c.cat != CatStruct {
		return StructView{}, &KindMismatchError{Requested: CatStruct, Kind: c.kind}
	}
	return StructView{c}, nil
}

// Lists returns the list view of the column.
func (c *Column) Lists() (ListView, error) {
	if c.cat != CatList {
		return ListView{}, &KindMismatchError{Requested: CatList, Kind: c.kind}
	}
	return ListView{c}, nil
}

// Maps returns the map view of the column.
func (c *Column) Maps() (MapView, error) {
	if c.cat != CatMap {
		return MapView{}, &KindMismatchError{Requested: CatMap, Kind: c.kind}
	}
	return MapView{c}, nil
}

// Unions returns the union view of the column.
func (c *Column) Unions() (UnionView, error) {
	if c.cat != CatUnion {
		return UnionView{}, &KindMismatchError{Requested: CatUnion, Kind: c.kind}
	}
	return UnionView{c}, nil
}

// LongView reads integer-like columns (Boolean, Byte, Short, Int, Long,
// Date). Booleans are 0 or 1; dates are days since the Unix epoch.
type LongView struct{ c *Column }

func (v LongView) Value(i int) int64 { return v.c.longs[i] }

// DoubleView reads Float and Double columns.
type DoubleView struct{ c *Column }

func (v DoubleView) Value(i int) float64 { return v.c.doubles[i] }

// BytesView reads String and Binary columns. The returned slice aliases the
// column's blob and is invalidated by the next refill.
type BytesView struct{ c *Column }

func (v BytesView) Value(i int) []byte {
	return v.c.blob[v.c.offsets[i]:v.c.offsets[i+1]]
}

// TimestampView reads Timestamp columns as (seconds, nanoseconds) pairs
// with 0 <= nanoseconds < 1e9.
type TimestampView struct{ c *Column }

func (v TimestampView) Seconds(i int) int64 { return v.c.seconds[i] }
func (v TimestampView) Nanos(i int) int64   { return v.c.nanos[i] }

// DecimalView reads Decimal columns as unscaled 128-bit integers. The scale
// and precision come from the column's kind, never from the data.
type DecimalView struct{ c *Column }

func (v DecimalView) Value(i int) decimal128.Num { return v.c.decimals[i] }
func (v DecimalView) Precision() int32           { return v.c.kind.Precision }
func (v DecimalView) Scale() int32               { return v.c.kind.Scale }

// StructView exposes a struct column's field columns. Field columns have
// the same element count as the parent, and rows where the parent is null
// are null in every field.
type StructView struct{ c *Column }

func (v StructView) NumFields() int        { return len(v.c.children) }
func (v StructView) Field(i int) *Column   { return v.c.children[i] }
func (v StructView) FieldName(i int) string {
	return v.c.kind.Fields[i].Name
}

// FieldByName returns the field column with the given name.
func (v StructView) FieldByName(name string) (*Column, bool) {
	for i, f := range v.c.kind.Fields {
		if f.Name == name {
			return v.c.children[i], true
		}
	}
	return nil, false
}

// ListView exposes a list column: one elements child plus per-row ranges.
type ListView struct{ c *Column }

// Elements returns the child column holding every row's elements,
// concatenated in row order.
func (v ListView) Elements() *Column { return v.c.children[0] }

// Range returns the half-open element range of row i. An empty range is a
// present, empty list; whether the row is null is reported by the column
// itself, not by the range.
func (v ListView) Range(i int) (start, end int, err error) {
	start = int(v.c.childOffsets[i])
	end = int(v.c.childOffsets[i+1])
	if start > end || end > v.c.children[0].n {
		return 0, 0, &MalformedOffsetsError{Index: i, Start: start, End: end, Elements: v.c.children[0].n}
	}
	return start, end, nil
}

// MapView exposes a map column: key and value children plus per-row ranges.
type MapView struct{ c *Column }

func (v MapView) Keys() *Column   { return v.c.children[0] }
func (v MapView) Values() *Column { return v.c.children[1] }

// Range returns the half-open entry range of row i over both children.
func (v MapView) Range(i int) (start, end int, err error) {
	start = int(v.c.childOffsets[i])
	end = int(v.c.childOffsets[i+1])
	if start > end || end > v.c.children[0].n || end > v.c.children[1].n {
		return 0, 0, &MalformedOffsetsError{Index: i, Start: start, End: end, Elements: v.c.children[0].n}
	}
	return start, end, nil
}

// UnionView exposes a dense union column. Every row carries the branch it
// belongs to and its index inside that branch's child column.
type UnionView struct{ c *Column }

func (v UnionView) NumBranches() int          { return len(v.c.children) }
func (v UnionView) BranchColumn(b int) *Column { return v.c.children[b] }

// Branch returns the branch row i was encoded with.
func (v UnionView) Branch(i int) int { return int(v.c.tags[i]) }

// ValueIndex returns row i's index inside its branch column.
func (v UnionView) ValueIndex(i int) int { return int(v.c.childIndex[i]) }
