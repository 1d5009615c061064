// Package vector holds reusable column batches: fixed-capacity,
// column-major buffers refilled in place by a row reader. A Column is
// downcast to a category-specific view (longs, doubles, bytes, struct,
// list, map, ...) through checked conversions; values read from a view are
// only valid until the next refill.
package vector
