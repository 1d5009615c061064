package rows

import (
	"fmt"

	"github.com/colstream/colstream/reader"
	"github.com/colstream/colstream/rowcodec"
	"github.com/colstream/colstream/vector"
)

// DefaultBatchSize is the decode chunk size used when options leave it
// unset.
const DefaultBatchSize = 1024

// Options configures an iterator.
type Options struct {
	// BatchSize is the number of rows decoded per engine read.
	BatchSize int
}

func (o Options) batchSize() int {
	if o.BatchSize > 0 {
		return o.BatchSize
	}
	return DefaultBatchSize
}

// columnLister is implemented by decoders that know which columns they
// touch; the iterator turns it into a projection.
type columnLister interface {
	Columns() []string
}

// Iterator yields decoded rows in file order, from either end. The usual
// loop is
//
//	it, err := rows.New(r, dec, rows.Options{})
//	...
//	for it.Next() {
//		use(it.Row())
//	}
//	if err := it.Err(); err != nil { ... }
//
// The decoder's kind check runs at construction, before any data is read.
// An Iterator is not safe for concurrent use.
type Iterator[T any] struct {
	r    *reader.Reader
	dec  rowcodec.Decoder[T]
	opts reader.Options
	size int

	front *reader.RowReader
	batch *vector.Column

	// Unconsumed rows are fq, then the undecoded middle, then bq:
	// fq covers [fqAbs, fqAbs+len(fq)), bq covers [bqAbs, bqAbs+len(bq)),
	// and the middle is [fqAbs+len(fq), bqAbs).
	fq    []T
	fqAbs int64
	bq    []T
	bqAbs int64
	total int64

	cur    T
	err    error
	closed bool
}

// New builds an iterator over every row of the file. The decoder is
// checked against the file kind first; if it reports its columns those
// become the cursor's projection and the check is repeated on the
// projected kind.
func New[T any](r *reader.Reader, dec rowcodec.Decoder[T], opts Options) (*Iterator[T], error) {
	if err := dec.CheckKind(r.Kind()); err != nil {
		return nil, err
	}
	var ropts reader.Options
	if cl, ok := dec.(columnLister); ok {
		ropts.IncludeNames = cl.Columns()
	}
	front, err := r.RowReader(ropts)
	if err != nil {
		return nil, err
	}
	if err := dec.CheckKind(front.Kind()); err != nil {
		front.Close()
		return nil, err
	}
	total, err := r.NumRows()
	if err != nil {
		front.Close()
		return nil, err
	}
	size := opts.batchSize()
	return &Iterator[T]{
		r:     r,
		dec:   dec,
		opts:  ropts,
		size:  size,
		front: front,
		batch: front.RowBatch(size),
		bqAbs: total,
		total: total,
	}, nil
}

// Remaining returns the exact number of rows not yet yielded from either
// end.
func (it *Iterator[T]) Remaining() int64 {
	return it.bqAbs - it.fqAbs + int64(len(it.bq))
}

// Row returns the row produced by the last successful Next or NextBack.
func (it *Iterator[T]) Row() T { return it.cur }

// Err returns the first error the iterator hit, if any.
func (it *Iterator[T]) Err() error { return it.err }

// Next advances to the next row from the front. It returns false when no
// rows remain or an error occurred; Err tells the two apart.
func (it *Iterator[T]) Next() bool {
	if it.err != nil || it.closed || it.Remaining() == 0 {
		return false
	}
	if len(it.fq) == 0 && it.fqAbs < it.bqAbs {
		if err := it.refillFront(); err != nil {
			it.err = err
			return false
		}
	}
	if len(it.fq) > 0 {
		it.cur = it.fq[0]
		it.fq = it.fq[1:]
		it.fqAbs++
		return true
	}
	// Middle exhausted; the remaining rows were decoded by the back end.
	// Both markers move so the middle stays empty.
	it.cur = it.bq[0]
	it.bq = it.bq[1:]
	it.bqAbs++
	it.fqAbs++
	return true
}

func (it *Iterator[T]) refillFront() error {
	for len(it.fq) == 0 && it.fqAbs < it.bqAbs {
		more, err := it.front.ReadInto(it.batch)
		if err != nil {
			return err
		}
		if !more {
			return fmt.Errorf("rows: engine ended at row %d of %d", it.fqAbs, it.total)
		}
		n := it.batch.NumElements()
		if rem := it.bqAbs - it.fqAbs; int64(n) > rem {
			// The batch overlaps rows already yielded from the back.
			n = int(rem)
		}
		it.fq, err = it.dec.AppendRange(it.batch, 0, n, it.fq[:0])
		if err != nil {
			return err
		}
	}
	return nil
}

// NextBack advances to the next row from the back, yielding rows in
// reverse file order. Front and back consumption may be mixed; every row
// is yielded exactly once.
func (it *Iterator[T]) NextBack() bool {
	if it.err != nil || it.closed || it.Remaining() == 0 {
		return false
	}
	if len(it.bq) == 0 && it.fqAbs+int64(len(it.fq)) < it.bqAbs {
		if err := it.refillBack(); err != nil {
			it.err = err
			return false
		}
	}
	if len(it.bq) > 0 {
		it.cur = it.bq[len(it.bq)-1]
		it.bq = it.bq[:len(it.bq)-1]
		return true
	}
	// Middle exhausted; take the last row the front end decoded. The back
	// marker follows so the middle stays empty.
	it.cur = it.fq[len(it.fq)-1]
	it.fq = it.fq[:len(it.fq)-1]
	it.bqAbs--
	return true
}

// refillBack decodes the trailing chunk of the undecoded middle through a
// fresh cursor, which requires the source to support another handle.
func (it *Iterator[T]) refillBack() error {
	hi := it.bqAbs
	lo := hi - int64(it.size)
	if mid := it.fqAbs + int64(len(it.fq)); lo < mid {
		lo = mid
	}
	back, err := it.r.RowReader(it.opts)
	if err != nil {
		return err
	}
	defer back.Close()
	if err := back.SeekToRow(lo); err != nil {
		return err
	}
	batch := back.RowBatch(it.size)
	chunk := make([]T, 0, hi-lo)
	for int64(len(chunk)) < hi-lo {
		more, err := back.ReadInto(batch)
		if err != nil {
			return err
		}
		if !more {
			return fmt.Errorf("rows: engine ended at row %d of %d", lo+int64(len(chunk)), it.total)
		}
		n := batch.NumElements()
		if rem := hi - lo - int64(len(chunk)); int64(n) > rem {
			n = int(rem)
		}
		chunk, err = it.dec.AppendRange(batch, 0, n, chunk)
		if err != nil {
			return err
		}
	}
	it.bq = chunk
	it.bqAbs = lo
	return nil
}

// Seek repositions the front of the iteration at absolute row n,
// discarding any rows decoded but not yet yielded from the front. Rows
// already claimed by back iteration stay claimed, so n must not exceed
// them.
func (it *Iterator[T]) Seek(n int64) error {
	if it.closed {
		return fmt.Errorf("rows: iterator is closed")
	}
	if n < 0 || n > it.bqAbs {
		return fmt.Errorf("rows: seek to row %d outside [0, %d]", n, it.bqAbs)
	}
	// The cursor may be mid-sequence, where seeking is not allowed, so
	// replace it.
	front, err := it.r.RowReader(it.opts)
	if err != nil {
		return err
	}
	if err := front.SeekToRow(n); err != nil {
		front.Close()
		return err
	}
	it.front.Close()
	it.front = front
	it.batch = front.RowBatch(it.size)
	it.fq = nil
	it.fqAbs = n
	return nil
}

// Collect drains the iterator from the front into a fresh slice.
func (it *Iterator[T]) Collect() ([]T, error) {
	out := make([]T, 0, it.Remaining())
	for it.Next() {
		out = append(out, it.cur)
	}
	if it.err != nil {
		return nil, it.err
	}
	return out, nil
}

// Close releases the iterator's cursor. Closing twice is a no-op.
func (it *Iterator[T]) Close() error {
	if it.closed {
		return nil
	}
	it.closed = true
	return it.front.Close()
}
