// Package rowcodec converts column batches into row-oriented Go values.
//
// A Decoder[T] is checked once against a column kind and then appends
// decoded rows to a caller-owned slice, so per-batch decoding allocates
// only for variable-length values. Struct rows are assembled field by
// field from registered setters; see NewStruct and Field.
package rowcodec
