package rowcodec

import (
	"fmt"

	"github.com/colstream/colstream/kind"
	"github.com/colstream/colstream/vector"
)

// UnionValue is one decoded union row: the branch the writer chose and the
// value decoded by that branch's decoder.
type UnionValue struct {
	Branch int
	Value  any
}

// UnionDecoder decodes dense union columns. One decoder must be registered
// per branch, in branch order, with Branch.
type UnionDecoder struct {
	branches []unionBranch
}

type unionBranch struct {
	check  func(kind.Kind) error
	decode func(col *vector.Column, i int) (any, error)
}

// NewUnion returns a union decoder with no branches registered.
func NewUnion() *UnionDecoder {
	return &UnionDecoder{}
}

// Branch registers the decoder for the next union branch.
func Branch[T any](u *UnionDecoder, dec Decoder[T]) {
	var scratch []T
	u.branches = append(u.branches, unionBranch{
		check: dec.CheckKind,
		decode: func(col *vector.Column, i int) (any, error) {
			var err error
			scratch, err = dec.AppendRange(col, i, 1, scratch[:0])
			if err != nil {
				return nil, err
			}
			return scratch[0], nil
		},
	})
}

func (u *UnionDecoder) CheckKind(k kind.Kind) error {
	if k.Prim != kind.Union {
		return mismatch("union", k)
	}
	if len(k.Branches) != len(u.branches) {
		return &SchemaMismatchError{
			Want: fmt.Sprintf("union with %d branches", len(u.branches)),
			Got:  k.String(),
		}
	}
	for i, b := range u.branches {
		if err := b.check(k.Branches[i]); err != nil {
			return fmt.Errorf("branch %d: %w", i, err)
		}
	}
	return nil
}

func (u *UnionDecoder) AppendRange(col *vector.Column, start, n int, out []UnionValue) ([]UnionValue, error) {
	v, err := col.Unions()
	if err != nil {
		return out, err
	}
	if err := requireNoNulls(col, start, n); err != nil {
		return out, err
	}
	for i := 0; i < n; i++ {
		b := v.Branch(start + i)
		if b >= len(u.branches) {
			return out, fmt.Errorf("rowcodec: row %d uses unregistered union branch %d", start+i, b)
		}
		val, err := u.branches[b].decode(v.BranchColumn(b), v.ValueIndex(start+i))
		if err != nil {
			return out, fmt.Errorf("branch %d: %w", b, err)
		}
		out = append(out, UnionValue{Branch: b, Value: val})
	}
	return out, nil
}
