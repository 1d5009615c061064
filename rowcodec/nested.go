package rowcodec

import (
	"github.com/colstream/colstream/kind"
	"github.com/colstream/colstream/vector"
)

// ListOf decodes list columns, one freshly allocated slice per row. An
// empty list decodes to an empty non-nil slice; a null list is rejected
// unless the decoder is wrapped in NullableOf.
func ListOf[E any](elem Decoder[E]) Decoder[[]E] {
	return &listDecoder[E]{elem: elem}
}

type listDecoder[E any] struct {
	elem Decoder[E]
}

func (d *listDecoder[E]) CheckKind(k kind.Kind) error {
	if k.Prim != kind.List {
		return mismatch("list", k)
	}
	return d.elem.CheckKind(*k.Elem)
}

func (d *listDecoder[E]) AppendRange(col *vector.Column, start, n int, out [][]E) ([][]E, error) {
	v, err := col.Lists()
	if err != nil {
		return out, err
	}
	if err := requireNoNulls(col, start, n); err != nil {
		return out, err
	}
	elems := v.Elements()
	for i := 0; i < n; i++ {
		s, e, err := v.Range(start + i)
		if err != nil {
			return out, err
		}
		row, err := d.elem.AppendRange(elems, s, e-s, make([]E, 0, e-s))
		if err != nil {
			return out, err
		}
		out = append(out, row)
	}
	return out, nil
}

// Pair is one map entry. Maps decode to entry slices rather than Go maps,
// so entry order and duplicate keys survive the round trip.
type Pair[K, V any] struct {
	Key   K
	Value V
}

// MapOf decodes map columns into entry slices.
func MapOf[K, V any](key Decoder[K], value Decoder[V]) Decoder[[]Pair[K, V]] {
	return &mapDecoder[K, V]{key: key, value: value}
}

type mapDecoder[K, V any] struct {
	key      Decoder[K]
	value    Decoder[V]
	kScratch []K
	vScratch []V
}

func (d *mapDecoder[K, V]) CheckKind(k kind.Kind) error {
	if k.Prim != kind.Map {
		return mismatch("map", k)
	}
	if err := d.key.CheckKind(*k.Key); err != nil {
		return err
	}
	return d.value.CheckKind(*k.Value)
}

func (d *mapDecoder[K, V]) AppendRange(col *vector.Column, start, n int, out [][]Pair[K, V]) ([][]Pair[K, V], error) {
	v, err := col.Maps()
	if err != nil {
		return out, err
	}
	if err := requireNoNulls(col, start, n); err != nil {
		return out, err
	}
	keys, values := v.Keys(), v.Values()
	for i := 0; i < n; i++ {
		s, e, err := v.Range(start + i)
		if err != nil {
			return out, err
		}
		d.kScratch, err = d.key.AppendRange(keys, s, e-s, d.kScratch[:0])
		if err != nil {
			return out, err
		}
		d.vScratch, err = d.value.AppendRange(values, s, e-s, d.vScratch[:0])
		if err != nil {
			return out, err
		}
		row := make([]Pair[K, V], 0, e-s)
		for j := range d.kScratch {
			row = append(row, Pair[K, V]{Key: d.kScratch[j], Value: d.vScratch[j]})
		}
		out = append(out, row)
	}
	return out, nil
}
