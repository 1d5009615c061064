package rowcodec

import (
	"math/big"

	"github.com/apache/arrow-go/v18/arrow/decimal128"

	"github.com/colstream/colstream/kind"
	"github.com/colstream/colstream/vector"
)

// Decimal is an exact fixed-point value: a 128-bit unscaled integer plus
// the scale and precision declared by the column's kind. The numeric value
// is Unscaled * 10^-Scale.
type Decimal struct {
	Unscaled  decimal128.Num
	Precision int32
	Scale     int32
}

// String renders the value in plain decimal notation, e.g. "-12.30" for
// unscaled -1230 at scale 2.
func (d Decimal) String() string {
	return d.Unscaled.ToString(d.Scale)
}

// BigInt returns the unscaled value as a big integer.
func (d Decimal) BigInt() *big.Int {
	return d.Unscaled.BigInt()
}

// Decimals decodes decimal columns without rescaling.
func Decimals() Decoder[Decimal] { return decimalDecoder{} }

type decimalDecoder struct{}

func (decimalDecoder) CheckKind(k kind.Kind) error {
	if k.Prim != kind.Decimal {
		return mismatch("decimal", k)
	}
	return nil
}

func (decimalDecoder) AppendRange(col *vector.Column, start, n int, out []Decimal) ([]Decimal, error) {
	v, err := col.Decimals()
	if err != nil {
		return out, err
	}
	if err := requireNoNulls(col, start, n); err != nil {
		return out, err
	}
	for i := 0; i < n; i++ {
		out = append(out, Decimal{Unscaled: v.Value(start + i), Precision: v.Precision(), Scale: v.Scale()})
	}
	return out, nil
}

// DecimalInt64 decodes decimal columns into int64 unscaled values at the
// given scale. Rescaling that would drop nonzero digits, or a result that
// does not fit int64, fails with DecimalOverflowError.
func DecimalInt64(scale int32) Decoder[int64] { return decimalInt64Decoder{scale: scale} }

type decimalInt64Decoder struct {
	scale int32
}

func (d decimalInt64Decoder) CheckKind(k kind.Kind) error {
	if k.Prim != kind.Decimal {
		return mismatch("decimal", k)
	}
	return nil
}

func (d decimalInt64Decoder) AppendRange(col *vector.Column, start, n int, out []int64) ([]int64, error) {
	v, err := col.Decimals()
	if err != nil {
		return out, err
	}
	if err := requireNoNulls(col, start, n); err != nil {
		return out, err
	}
	from := v.Scale()
	for i := 0; i < n; i++ {
		r, err := rescaleInt64(v.Value(start+i), from, d.scale)
		if err != nil {
			return out, err
		}
		out = append(out, r)
	}
	return out, nil
}

func rescaleInt64(num decimal128.Num, from, to int32) (int64, error) {
	v := num.BigInt()
	switch {
	case to > from:
		v.Mul(v, pow10(to-from))
	case to < from:
		var rem big.Int
		v.QuoRem(v, pow10(from-to), &rem)
		if rem.Sign() != 0 {
			return 0, &DecimalOverflowError{Unscaled: num.BigInt().String(), FromScale: from, ToScale: to}
		}
	}
	if !v.IsInt64() {
		return 0, &DecimalOverflowError{Unscaled: num.BigInt().String(), FromScale: from, ToScale: to}
	}
	return v.Int64(), nil
}

func pow10(d int32) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(d)), nil)
}
