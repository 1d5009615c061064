package vector

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// SetFromArrow refills the column with rows [off, off+n) of an engine
// array, reusing the column's buffers. The array must match the column's
// kind; the engine guarantees this for batches it produced itself.
func (c *Column) SetFromArrow(arr arrow.Array, off, n int) error {
	c.begin(n)
	for i := 0; i < n; i++ {
		valid := arr.IsValid(off + i)
		c.notNull = append(c.notNull, valid)
		if !valid {
			c.hasNulls = true
		}
	}

	switch c.cat {
	case CatLong:
		return c.setLongs(arr, off, n)
	case CatDouble:
		return c.setDoubles(arr, off, n)
	case CatBytes:
		return c.setBytes(arr, off, n)
	case CatTimestamp:
		return c.setTimestamps(arr, off, n)
	case CatDecimal:
		return c.setDecimals(arr, off, n)
	case CatStruct:
		return c.setStruct(arr, off, n)
	case CatList:
		return c.setList(arr, off, n)
	case CatMap:
		return c.setMap(arr, off, n)
	case CatUnion:
		return c.setUnion(arr, off, n)
	default:
		return fmt.Errorf("vector: cannot fill %s column from %s", c.cat, arr.DataType())
	}
}

// SetFromRecord refills a struct column from rows [off, off+n) of a record
// batch. fieldIdx maps each child, in kind order, to its record column.
// The top level of a file is a non-nullable struct, so every row is valid.
func (c *Column) SetFromRecord(rec arrow.Record, fieldIdx []int, off, n int) error {
	if c.cat != CatStruct {
		return &KindMismatchError{Requested: CatStruct, Kind: c.kind}
	}
	c.begin(n)
	for i := 0; i < n; i++ {
		c.notNull = append(c.notNull, true)
	}
	for j, child := range c.children {
		if err := child.SetFromArrow(rec.Column(fieldIdx[j]), off, n); err != nil {
			return fmt.Errorf("column %q: %w", c.kind.Fields[j].Name, err)
		}
	}
	return nil
}

func fillErr(c *Column, arr arrow.Array) error {
	return fmt.Errorf("vector: cannot fill %s column from %s array", c.kind, arr.DataType())
}

func (c *Column) setLongs(arr arrow.Array, off, n int) error {
	c.longs = c.longs[:0]
	switch a := arr.(type) {
	case *array.Boolean:
		for i := 0; i < n; i++ {
			var v int64
			if a.IsValid(off+i) && a.Value(off+i) {
				v = 1
			}
			c.longs = append(c.longs, v)
		}
	case *array.Int8:
		for i := 0; i < n; i++ {
			c.longs = append(c.longs, int64(a.Value(off+i)))
		}
	case *array.Int16:
		for i := 0; i < n; i++ {
			c.longs = append(c.longs, int64(a.Value(off+i)))
		}
	case *array.Int32:
		for i := 0; i < n; i++ {
			c.longs = append(c.longs, int64(a.Value(off+i)))
		}
	case *array.Int64:
		for i := 0; i < n; i++ {
			c.longs = append(c.longs, a.Value(off+i))
		}
	case *array.Date32:
		for i := 0; i < n; i++ {
			c.longs = append(c.longs, int64(a.Value(off+i)))
		}
	case *array.Date64:
		for i := 0; i < n; i++ {
			c.longs = append(c.longs, floorDiv(int64(a.Value(off+i)), 86_400_000))
		}
	default:
		return fillErr(c, arr)
	}
	return nil
}

func (c *Column) setDoubles(arr arrow.Array, off, n int) error {
	c.doubles = c.doubles[:0]
	switch a := arr.(type) {
	case *array.Float32:
		for i := 0; i < n; i++ {
			c.doubles = append(c.doubles, float64(a.Value(off+i)))
		}
	case *array.Float64:
		for i := 0; i < n; i++ {
			c.doubles = append(c.doubles, a.Value(off+i))
		}
	default:
		return fillErr(c, arr)
	}
	return nil
}

func (c *Column) setBytes(arr arrow.Array, off, n int) error {
	c.blob = c.blob[:0]
	c.offsets = append(c.offsets[:0], 0)
	appendRow := func(b []byte) {
		c.blob = append(c.blob, b...)
		c.offsets = append(c.offsets, int32(len(c.blob)))
	}
	switch a := arr.(type) {
	case *array.String:
		for i := 0; i < n; i++ {
			if a.IsValid(off + i) {
				appendRow([]byte(a.Value(off + i)))
			} else {
				appendRow(nil)
			}
		}
	case *array.LargeString:
		for i := 0; i < n; i++ {
			if a.IsValid(off + i) {
				appendRow([]byte(a.Value(off + i)))
			} else {
				appendRow(nil)
			}
		}
	case *array.Binary:
		for i := 0; i < n; i++ {
			if a.IsValid(off + i) {
				appendRow(a.Value(off + i))
			} else {
				appendRow(nil)
			}
		}
	case *array.LargeBinary:
		for i := 0; i < n; i++ {
			if a.IsValid(off + i) {
				appendRow(a.Value(off + i))
			} else {
				appendRow(nil)
			}
		}
	default:
		return fillErr(c, arr)
	}
	return nil
}

func (c *Column) setTimestamps(arr arrow.Array, off, n int) error {
	a, ok := arr.(*array.Timestamp)
	if !ok {
		return fillErr(c, arr)
	}
	unit := a.DataType().(*arrow.TimestampType).Unit
	c.seconds = c.seconds[:0]
	c.nanos = c.nanos[:0]
	for i := 0; i < n; i++ {
		v := int64(a.Value(off + i))
		var sec, nano int64
		switch unit {
		case arrow.Second:
			sec = v
		case arrow.Millisecond:
			sec, nano = v/1_000, (v%1_000)*1_000_000
		case arrow.Microsecond:
			sec, nano = v/1_000_000, (v%1_000_000)*1_000
		case arrow.Nanosecond:
			sec, nano = v/1_000_000_000, v%1_000_000_000
		}
		if nano < 0 {
			sec--
			nano += 1_000_000_000
		}
		c.seconds = append(c.seconds, sec)
		c.nanos = append(c.nanos, nano)
	}
	return nil
}

func (c *Column) setDecimals(arr arrow.Array, off, n int) error {
	a, ok := arr.(*array.Decimal128)
	if !ok {
		return fillErr(c, arr)
	}
	c.decimals = c.decimals[:0]
	for i := 0; i < n; i++ {
		c.decimals = append(c.decimals, a.Value(off+i))
	}
	return nil
}

func (c *Column) setStruct(arr arrow.Array, off, n int) error {
	a, ok := arr.(*array.Struct)
	if !ok {
		return fillErr(c, arr)
	}
	st := a.DataType().(*arrow.StructType)
	for j, f := range c.kind.Fields {
		idx, ok := st.FieldIdx(f.Name)
		if !ok {
			return fmt.Errorf("vector: struct array has no field %q", f.Name)
		}
		if err := c.children[j].SetFromArrow(a.Field(idx), off, n); err != nil {
			return fmt.Errorf("field %q: %w", f.Name, err)
		}
	}
	// A null struct row nulls every field; field payloads at such rows are
	// undefined and must not be read.
	if c.hasNulls {
		for i := 0; i < n; i++ {
			if !c.notNull[i] {
				for _, child := range c.children {
					child.forceNull(i)
				}
			}
		}
	}
	return nil
}

func (c *Column) setList(arr arrow.Array, off, n int) error {
	switch a := arr.(type) {
	case *array.List:
		offs := a.Offsets()
		base := offs[off]
		c.childOffsets = c.childOffsets[:0]
		for i := 0; i <= n; i++ {
			c.childOffsets = append(c.childOffsets, offs[off+i]-base)
		}
		span := int(offs[off+n] - base)
		return c.children[0].SetFromArrow(a.ListValues(), int(base), span)
	case *array.LargeList:
		offs := a.Offsets()
		base := offs[off]
		c.childOffsets = c.childOffsets[:0]
		for i := 0; i <= n; i++ {
			c.childOffsets = append(c.childOffsets, int32(offs[off+i]-base))
		}
		span := int(offs[off+n] - base)
		return c.children[0].SetFromArrow(a.ListValues(), int(base), span)
	default:
		return fillErr(c, arr)
	}
}

func (c *Column) setMap(arr arrow.Array, off, n int) error {
	a, ok := arr.(*array.Map)
	if !ok {
		return fillErr(c, arr)
	}
	offs := a.Offsets()
	base := offs[off]
	c.childOffsets = c.childOffsets[:0]
	for i := 0; i <= n; i++ {
		c.childOffsets = append(c.childOffsets, offs[off+i]-base)
	}
	span := int(offs[off+n] - base)
	if err := c.children[0].SetFromArrow(a.Keys(), int(base), span); err != nil {
		return err
	}
	return c.children[1].SetFromArrow(a.Items(), int(base), span)
}

func (c *Column) setUnion(arr arrow.Array, off, n int) error {
	a, ok := arr.(*array.DenseUnion)
	if !ok {
		return fillErr(c, arr)
	}
	nb := len(c.children)
	first := make([]int32, nb)
	last := make([]int32, nb)
	seen := make([]bool, nb)
	for i := 0; i < n; i++ {
		b := a.ChildID(off + i)
		if b < 0 || b >= nb {
			return fmt.Errorf("vector: union branch %d out of range", b)
		}
		o := a.ValueOffset(off + i)
		if !seen[b] || o < first[b] {
			first[b] = o
		}
		if !seen[b] || o > last[b] {
			last[b] = o
		}
		seen[b] = true
	}
	for b, child := range c.children {
		if !seen[b] {
			if err := child.SetFromArrow(a.Field(b), 0, 0); err != nil {
				return err
			}
			continue
		}
		if err := child.SetFromArrow(a.Field(b), int(first[b]), int(last[b]-first[b])+1); err != nil {
			return err
		}
	}
	c.tags = c.tags[:0]
	c.childIndex = c.childIndex[:0]
	for i := 0; i < n; i++ {
		b := a.ChildID(off + i)
		c.tags = append(c.tags, uint8(b))
		c.childIndex = append(c.childIndex, a.ValueOffset(off+i)-first[b])
	}
	return nil
}

// floorDiv divides rounding toward negative infinity, so pre-epoch
// millisecond dates land on the correct day.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
