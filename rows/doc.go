// Package rows turns a file reader plus a row decoder into row iteration:
// a sequential double-ended iterator with exact remaining counts, and an
// order-preserving parallel collector.
package rows
