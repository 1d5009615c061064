package rows

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/colstream/colstream/reader"
	"github.com/colstream/colstream/rowcodec"
	"github.com/colstream/colstream/vector"
)

// ParallelOptions configures ParallelCollect.
type ParallelOptions struct {
	// BatchSize is the chunk size in rows; every chunk but the last holds
	// exactly this many rows.
	BatchSize int
	// Workers caps the number of chunks decoded at once. Defaults to the
	// number of CPUs.
	Workers int
}

// DefaultParallelBatchSize is the chunk size used when options leave it
// unset.
const DefaultParallelBatchSize = 8192

func (o ParallelOptions) batchSize() int {
	if o.BatchSize > 0 {
		return o.BatchSize
	}
	return DefaultParallelBatchSize
}

func (o ParallelOptions) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.NumCPU()
}

// ParallelCollect decodes the whole file on several goroutines and returns
// the rows in file order, element for element what a sequential iterator
// would produce. Each chunk gets its own cursor and its own decoder from
// newDecoder, since decoders are not safe for concurrent use. The source
// must support concurrent cursors; SingleUse sources fail with
// ErrNotConcurrentSafe. The first error cancels chunks not yet started.
func ParallelCollect[T any](ctx context.Context, r *reader.Reader, newDecoder func() rowcodec.Decoder[T], opts ParallelOptions) ([]T, error) {
	probe := newDecoder()
	if err := probe.CheckKind(r.Kind()); err != nil {
		return nil, err
	}
	var ropts reader.Options
	if cl, ok := probe.(columnLister); ok {
		ropts.IncludeNames = cl.Columns()
	}
	total, err := r.NumRows()
	if err != nil {
		return nil, err
	}

	size := int64(opts.batchSize())
	chunks := int((total + size - 1) / size)
	results := make([][]T, chunks)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())
	for i := 0; i < chunks; i++ {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			lo := int64(i) * size
			hi := lo + size
			if hi > total {
				hi = total
			}
			out, err := decodeChunk(gctx, r, newDecoder(), ropts, lo, hi)
			if err != nil {
				return fmt.Errorf("rows: chunk [%d, %d): %w", lo, hi, err)
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	all := make([]T, 0, total)
	for _, part := range results {
		all = append(all, part...)
	}
	return all, nil
}

func decodeChunk[T any](ctx context.Context, r *reader.Reader, dec rowcodec.Decoder[T], ropts reader.Options, lo, hi int64) ([]T, error) {
	rr, err := r.RowReader(ropts)
	if err != nil {
		return nil, err
	}
	defer rr.Close()
	if err := rr.SeekToRow(lo); err != nil {
		return nil, err
	}

	var batch *vector.Column
	need := hi - lo
	out := make([]T, 0, need)
	for int64(len(out)) < need {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if batch == nil {
			batch = rr.RowBatch(int(need))
		}
		more, err := rr.ReadInto(batch)
		if err != nil {
			return nil, err
		}
		if !more {
			return nil, fmt.Errorf("engine ended at row %d", lo+int64(len(out)))
		}
		n := batch.NumElements()
		if rem := need - int64(len(out)); int64(n) > rem {
			// Record batches need not align with chunk boundaries.
			n = int(rem)
		}
		out, err = dec.AppendRange(batch, 0, n, out)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
