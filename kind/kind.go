// Package kind describes the column type tree reported by a columnar file.
//
// A Kind node mirrors one column of the file's schema, possibly nested.
// The package is named "kind" rather than "type" to keep call sites
// readable and to avoid clashing with the language keyword.
package kind

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
)

// Primitive tags a Kind node with its category.
type Primitive int

const (
	Boolean Primitive = iota
	Byte
	Short
	Int
	Long
	Float
	Double
	String
	Binary
	Timestamp
	Date
	Decimal
	Struct
	List
	Map
	Union
)

var primNames = [...]string{
	Boolean:   "boolean",
	Byte:      "byte",
	Short:     "short",
	Int:       "int",
	Long:      "long",
	Float:     "float",
	Double:    "double",
	String:    "string",
	Binary:    "binary",
	Timestamp: "timestamp",
	Date:      "date",
	Decimal:   "decimal",
	Struct:    "struct",
	List:      "list",
	Map:       "map",
	Union:     "union",
}

func (p Primitive) String() string {
	if p < 0 || int(p) >= len(primNames) {
		return "unknown"
	}
	return primNames[p]
}

// Field is a named child of a Struct kind.
type Field struct {
	Name string
	Kind Kind
}

// Kind is a tagged description of one column's type. Only the members
// relevant to Prim are set; a Kind is immutable once obtained from a
// reader.
type Kind struct {
	Prim Primitive

	// Struct
	Fields []Field
	// List
	Elem *Kind
	// Map
	Key   *Kind
	Value *Kind
	// Union
	Branches []Kind
	// Decimal
	Precision int32
	Scale     int32
}

// Of returns a Kind with no nested members. It is meant for the primitive
// categories; composite kinds have dedicated constructors.
func Of(p Primitive) Kind {
	return Kind{Prim: p}
}

// NewStruct returns a Struct kind with the given fields, in order.
func NewStruct(fields ...Field) Kind {
	return Kind{Prim: Struct, Fields: fields}
}

// NewList returns a List kind with the given element kind.
func NewList(elem Kind) Kind {
	return Kind{Prim: List, Elem: &elem}
}

// NewMap returns a Map kind with the given key and value kinds.
func NewMap(key, value Kind) Kind {
	return Kind{Prim: Map, Key: &key, Value: &value}
}

// NewUnion returns a Union kind over the given branch kinds, in
// discriminant order.
func NewUnion(branches ...Kind) Kind {
	return Kind{Prim: Union, Branches: branches}
}

// NewDecimal returns a Decimal kind with the given precision and scale.
func NewDecimal(precision, scale int32) Kind {
	return Kind{Prim: Decimal, Precision: precision, Scale: scale}
}

// Equal reports whether two kinds are structurally identical, including
// field names, nesting and decimal precision/scale.
func Equal(a, b Kind) bool {
	if a.Prim != b.Prim {
		return false
	}
	switch a.Prim {
	case Struct:
		if len(a.Fields) != len(b.Fields) {
			return false
		}
		for i := range a.Fields {
			if a.Fields[i].Name != b.Fields[i].Name || !Equal(a.Fields[i].Kind, b.Fields[i].Kind) {
				return false
			}
		}
		return true
	case List:
		return Equal(*a.Elem, *b.Elem)
	case Map:
		return Equal(*a.Key, *b.Key) && Equal(*a.Value, *b.Value)
	case Union:
		if len(a.Branches) != len(b.Branches) {
			return false
		}
		for i := range a.Branches {
			if !Equal(a.Branches[i], b.Branches[i]) {
				return false
			}
		}
		return true
	case Decimal:
		return a.Precision == b.Precision && a.Scale == b.Scale
	default:
		return true
	}
}

// FieldByName returns the child of a Struct kind with the given name.
func (k Kind) FieldByName(name string) (Field, bool) {
	for _, f := range k.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// String renders the kind as a type string, the inverse of Parse.
func (k Kind) String() string {
	var b strings.Builder
	k.write(&b)
	return b.String()
}

func (k Kind) write(b *strings.Builder) {
	switch k.Prim {
	case Struct:
		b.WriteString("struct<")
		for i, f := range k.Fields {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(f.Name)
			b.WriteByte(':')
			f.Kind.write(b)
		}
		b.WriteByte('>')
	case List:
		b.WriteString("list<")
		k.Elem.write(b)
		b.WriteByte('>')
	case Map:
		b.WriteString("map<")
		k.Key.write(b)
		b.WriteByte(',')
		k.Value.write(b)
		b.WriteByte('>')
	case Union:
		b.WriteString("union<")
		for i, br := range k.Branches {
			if i > 0 {
				b.WriteByte(',')
			}
			br.write(b)
		}
		b.WriteByte('>')
	case Decimal:
		b.WriteString("decimal(")
		b.WriteString(strconv.Itoa(int(k.Precision)))
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(int(k.Scale)))
		b.WriteByte(')')
	default:
		b.WriteString(k.Prim.String())
	}
}

// UnsupportedTypeError reports a storage-level type that has no Kind
// representation.
type UnsupportedTypeError struct {
	DataType arrow.DataType
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("kind: unsupported column type %s", e.DataType)
}

// FromArrow converts an Arrow data type into a Kind tree.
func FromArrow(dt arrow.DataType) (Kind, error) {
	switch dt := dt.(type) {
	case *arrow.BooleanType:
		return Of(Boolean), nil
	case *arrow.Int8Type:
		return Of(Byte), nil
	case *arrow.Int16Type:
		return Of(Short), nil
	case *arrow.Int32Type:
		return Of(Int), nil
	case *arrow.Int64Type:
		return Of(Long), nil
	case *arrow.Float32Type:
		return Of(Float), nil
	case *arrow.Float64Type:
		return Of(Double), nil
	case *arrow.StringType, *arrow.LargeStringType:
		return Of(String), nil
	case *arrow.BinaryType, *arrow.LargeBinaryType:
		return Of(Binary), nil
	case *arrow.TimestampType:
		return Of(Timestamp), nil
	case *arrow.Date32Type, *arrow.Date64Type:
		return Of(Date), nil
	case *arrow.Decimal128Type:
		return NewDecimal(dt.Precision, dt.Scale), nil
	case *arrow.StructType:
		fields := make([]Field, 0, dt.NumFields())
		for i := 0; i < dt.NumFields(); i++ {
			f := dt.Field(i)
			fk, err := FromArrow(f.Type)
			if err != nil {
				return Kind{}, err
			}
			fields = append(fields, Field{Name: f.Name, Kind: fk})
		}
		return NewStruct(fields...), nil
	case *arrow.ListType:
		elem, err := FromArrow(dt.Elem())
		if err != nil {
			return Kind{}, err
		}
		return NewList(elem), nil
	case *arrow.LargeListType:
		elem, err := FromArrow(dt.Elem())
		if err != nil {
			return Kind{}, err
		}
		return NewList(elem), nil
	case *arrow.MapType:
		key, err := FromArrow(dt.KeyType())
		if err != nil {
			return Kind{}, err
		}
		value, err := FromArrow(dt.ItemType())
		if err != nil {
			return Kind{}, err
		}
		return NewMap(key, value), nil
	case *arrow.DenseUnionType:
		branches := make([]Kind, 0, len(dt.Fields()))
		for _, f := range dt.Fields() {
			bk, err := FromArrow(f.Type)
			if err != nil {
				return Kind{}, err
			}
			branches = append(branches, bk)
		}
		return NewUnion(branches...), nil
	default:
		return Kind{}, &UnsupportedTypeError{DataType: dt}
	}
}

// FromArrowSchema converts a record schema into the file-level Struct kind.
func FromArrowSchema(schema *arrow.Schema) (Kind, error) {
	fields := make([]Field, 0, schema.NumFields())
	for i := 0; i < schema.NumFields(); i++ {
		f := schema.Field(i)
		fk, err := FromArrow(f.Type)
		if err != nil {
			return Kind{}, err
		}
		fields = append(fields, Field{Name: f.Name, Kind: fk})
	}
	return NewStruct(fields...), nil
}
