package rowcodec

import (
	"fmt"

	"github.com/colstream/colstream/kind"
)

// SchemaMismatchError reports that a decoder was checked against a kind it
// cannot decode. Path is the dotted field path from the checked root, with
// each segment escaped; it is empty when the root itself mismatched.
type SchemaMismatchError struct {
	Path string
	Want string
	Got  string
}

func (e *SchemaMismatchError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("rowcodec: schema mismatch: want %s, got %s", e.Want, e.Got)
	}
	return fmt.Sprintf("rowcodec: schema mismatch at %s: want %s, got %s", e.Path, e.Want, e.Got)
}

func mismatch(want string, got kind.Kind) *SchemaMismatchError {
	return &SchemaMismatchError{Want: want, Got: got.String()}
}

func missingField(name string) *SchemaMismatchError {
	return &SchemaMismatchError{Path: EscapeName(name), Want: "a field with this name", Got: "absent"}
}

// atField prefixes a field name onto the path of a mismatch bubbling up
// from a nested check.
func atField(name string, err error) error {
	if sm, ok := err.(*SchemaMismatchError); ok {
		path := EscapeName(name)
		if sm.Path != "" {
			path += "." + sm.Path
		}
		return &SchemaMismatchError{Path: path, Want: sm.Want, Got: sm.Got}
	}
	return fmt.Errorf("field %q: %w", name, err)
}

// UnexpectedNullError reports a null row decoded into a target type with no
// null representation. Wrap the target in Nullable to accept nulls.
type UnexpectedNullError struct {
	Index int
}

func (e *UnexpectedNullError) Error() string {
	return fmt.Sprintf("rowcodec: null value at row %d has no representation in the target type", e.Index)
}

// DecimalOverflowError reports a decimal that cannot be brought to the
// requested scale without losing digits or overflowing int64.
type DecimalOverflowError struct {
	Unscaled  string
	FromScale int32
	ToScale   int32
}

func (e *DecimalOverflowError) Error() string {
	return fmt.Sprintf("rowcodec: decimal %s (scale %d) does not fit int64 at scale %d",
		e.Unscaled, e.FromScale, e.ToScale)
}
