// Package reader is the boundary to the columnar storage engine. A Reader
// wraps one Arrow IPC file and hands out independent row cursors; each
// cursor refills a reusable vector.Column batch, never crossing an engine
// record batch in a single read.
package reader
