package kind

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
)

func TestParsePrimitives(t *testing.T) {
	cases := []struct {
		input string
		want  Kind
	}{
		{"boolean", Of(Boolean)},
		{"tinyint", Of(Byte)},
		{"byte", Of(Byte)},
		{"smallint", Of(Short)},
		{"int", Of(Int)},
		{"bigint", Of(Long)},
		{"long", Of(Long)},
		{"float", Of(Float)},
		{"double", Of(Double)},
		{"string", Of(String)},
		{"binary", Of(Binary)},
		{"timestamp", Of(Timestamp)},
		{"date", Of(Date)},
	}
	for _, c := range cases {
		got, err := Parse(c.input)
		if err != nil {
			t.Errorf("Parse(%q): unexpected error %v", c.input, err)
			continue
		}
		if !Equal(got, c.want) {
			t.Errorf("Parse(%q) = %s, want %s", c.input, got, c.want)
		}
	}
}

func TestParseDecimal(t *testing.T) {
	got, err := Parse("decimal(18,4)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Precision != 18 || got.Scale != 4 {
		t.Errorf("got precision=%d scale=%d, want 18/4", got.Precision, got.Scale)
	}

	if _, err := Parse("decimal()"); err == nil {
		t.Error("decimal() should not parse")
	}
}

func TestParseNested(t *testing.T) {
	got, err := Parse("struct<a:boolean,b:struct<b1:smallint,b2:int>,c:list<string>,d:map<string,long>>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := NewStruct(
		Field{Name: "a", Kind: Of(Boolean)},
		Field{Name: "b", Kind: NewStruct(
			Field{Name: "b1", Kind: Of(Short)},
			Field{Name: "b2", Kind: Of(Int)},
		)},
		Field{Name: "c", Kind: NewList(Of(String))},
		Field{Name: "d", Kind: NewMap(Of(String), Of(Long))},
	)
	if !Equal(got, want) {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestParseUnion(t *testing.T) {
	got, err := Parse("union<string,boolean>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !Equal(got, NewUnion(Of(String), Of(Boolean))) {
		t.Errorf("got %s", got)
	}

	if _, err := Parse("union<a:boolean>"); err == nil {
		t.Error("union with field names should not parse")
	}
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{
		"",
		"notatype",
		"not a type",
		"struct<boolean>",
		"list<>",
		"map<boolean>",
		"struct<a:int",
		"int,",
	} {
		if _, err := Parse(input); err == nil {
			t.Errorf("Parse(%q) should fail", input)
		}
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, input := range []string{
		"boolean",
		"decimal(10,2)",
		"struct<a:long,b:list<string>>",
		"map<string,struct<x:double>>",
		"union<string,long>",
		"list<map<string,binary>>",
	} {
		k, err := Parse(input)
		if err != nil {
			t.Fatalf("Parse(%q): %v", input, err)
		}
		if k.String() != input {
			t.Errorf("round trip: got %q, want %q", k.String(), input)
		}
	}
}

func TestEqual(t *testing.T) {
	a := NewStruct(Field{Name: "x", Kind: Of(Long)})
	b := NewStruct(Field{Name: "x", Kind: Of(Int)})
	c := NewStruct(Field{Name: "y", Kind: Of(Long)})
	if Equal(a, b) || Equal(a, c) {
		t.Error("kinds with different field types or names must not compare equal")
	}
	if !Equal(a, NewStruct(Field{Name: "x", Kind: Of(Long)})) {
		t.Error("identical kinds must compare equal")
	}
	if Equal(NewDecimal(10, 2), NewDecimal(10, 3)) {
		t.Error("decimals with different scales must not compare equal")
	}
}

func TestFromArrowSchema(t *testing.T) {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: "name", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "score", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		{Name: "tags", Type: arrow.ListOf(arrow.BinaryTypes.String), Nullable: true},
		{Name: "attrs", Type: arrow.MapOf(arrow.BinaryTypes.String, arrow.BinaryTypes.String), Nullable: true},
		{Name: "price", Type: &arrow.Decimal128Type{Precision: 12, Scale: 2}, Nullable: true},
	}, nil)

	got, err := FromArrowSchema(schema)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "struct<id:long,name:string,score:double,tags:list<string>,attrs:map<string,string>,price:decimal(12,2)>"
	if got.String() != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestFromArrowUnsupported(t *testing.T) {
	_, err := FromArrow(&arrow.Float16Type{})
	if err == nil {
		t.Fatal("expected an error for float16")
	}
	if _, ok := err.(*UnsupportedTypeError); !ok {
		t.Errorf("expected *UnsupportedTypeError, got %T", err)
	}
}
