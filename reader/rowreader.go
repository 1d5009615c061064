package reader

import (
	"errors"
	"fmt"
	"sort"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/ipc"

	"github.com/colstream/colstream/kind"
	"github.com/colstream/colstream/rowcodec"
	"github.com/colstream/colstream/vector"
)

// Options configures one row cursor.
type Options struct {
	// IncludeNames selects top-level columns by escaped name (see
	// rowcodec.EscapeName). Nil selects every column; selected columns keep
	// file order. An unknown name fails at cursor construction.
	IncludeNames []string
}

type cursorState int

const (
	stateIdle cursorState = iota
	stateReading
	stateExhausted
	stateClosed
)

// ErrCursorClosed is returned by operations on a closed cursor.
var ErrCursorClosed = errors.New("reader: cursor is closed")

// RowReader is one cursor over a file's rows. It is not safe for
// concurrent use; open one cursor per goroutine instead.
type RowReader struct {
	parent   *Reader
	file     File
	fr       *ipc.FileReader
	kind     kind.Kind // projected Struct kind
	fieldIdx []int

	state    cursorState
	recIdx   int
	rec      arrow.Record
	rowInRec int
	rowNum   int64
}

// RowReader creates an independent cursor positioned before the first row.
func (r *Reader) RowReader(opts Options) (*RowReader, error) {
	fieldIdx, projected, err := project(r.kind, opts.IncludeNames)
	if err != nil {
		return nil, err
	}
	f, err := r.openCursorFile()
	if err != nil {
		return nil, err
	}
	fr, err := ipc.NewFileReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("reader: open file: %w", err)
	}
	DefaultMetrics.OpenCursors.Inc()
	return &RowReader{
		parent:   r,
		file:     f,
		fr:       fr,
		kind:     projected,
		fieldIdx: fieldIdx,
	}, nil
}

// project resolves escaped column names against the file kind.
func project(fileKind kind.Kind, names []string) ([]int, kind.Kind, error) {
	if names == nil {
		idx := make([]int, len(fileKind.Fields))
		for i := range idx {
			idx[i] = i
		}
		return idx, fileKind, nil
	}
	selected := make(map[string]bool, len(names))
	for _, escaped := range names {
		name, err := rowcodec.UnescapeName(escaped)
		if err != nil {
			return nil, kind.Kind{}, err
		}
		if _, ok := fileKind.FieldByName(name); !ok {
			return nil, kind.Kind{}, &rowcodec.SchemaMismatchError{
				Path: escaped,
				Want: "a column with this name",
				Got:  "absent",
			}
		}
		selected[name] = true
	}
	var idx []int
	var fields []kind.Field
	for i, f := range fileKind.Fields {
		if selected[f.Name] {
			idx = append(idx, i)
			fields = append(fields, f)
		}
	}
	return idx, kind.NewStruct(fields...), nil
}

// Kind returns the cursor's projected type tree.
func (rr *RowReader) Kind() kind.Kind { return rr.kind }

// RowBatch allocates a reusable batch matching the cursor's columns,
// holding at most capacity rows per read.
func (rr *RowReader) RowBatch(capacity int) *vector.Column {
	return vector.NewColumn(rr.kind, capacity)
}

// ReadInto refills batch with the next rows: at most the batch's capacity,
// and never spanning two engine record batches. It reports false once the
// cursor is exhausted.
func (rr *RowReader) ReadInto(batch *vector.Column) (bool, error) {
	switch rr.state {
	case stateClosed:
		return false, ErrCursorClosed
	case stateExhausted:
		return false, nil
	}
	for {
		if rr.rec == nil {
			if rr.recIdx >= rr.fr.NumRecords() {
				rr.state = stateExhausted
				return false, nil
			}
			rec, err := rr.fr.RecordAt(rr.recIdx)
			if err != nil {
				return false, fmt.Errorf("reader: record %d: %w", rr.recIdx, err)
			}
			rr.rec = rec
		}
		if rr.rowInRec < int(rr.rec.NumRows()) {
			break
		}
		rr.rec.Release()
		rr.rec = nil
		rr.recIdx++
		rr.rowInRec = 0
	}
	rr.state = stateReading
	n := int(rr.rec.NumRows()) - rr.rowInRec
	if n > batch.Capacity() {
		n = batch.Capacity()
	}
	if err := batch.SetFromRecord(rr.rec, rr.fieldIdx, rr.rowInRec, n); err != nil {
		return false, err
	}
	rr.rowInRec += n
	rr.rowNum += int64(n)
	DefaultMetrics.BatchesRead.Inc()
	DefaultMetrics.RowsRead.Add(float64(n))
	return true, nil
}

// RowNumber returns the absolute index of the next row ReadInto will
// produce.
func (rr *RowReader) RowNumber() int64 { return rr.rowNum }

// SeekToRow positions the cursor on absolute row n. Seeking is legal
// before the first read and after exhaustion, not in the middle of a
// batch sequence; n equal to the row count positions the cursor at the
// end.
func (rr *RowReader) SeekToRow(n int64) error {
	switch rr.state {
	case stateClosed:
		return ErrCursorClosed
	case stateReading:
		return fmt.Errorf("reader: seek while a read sequence is in progress")
	}
	if err := rr.parent.buildIndex(); err != nil {
		return err
	}
	starts := rr.parent.rowStart
	total := starts[len(starts)-1]
	if n < 0 || n > total {
		return fmt.Errorf("reader: seek to row %d outside [0, %d]", n, total)
	}
	if rr.rec != nil {
		rr.rec.Release()
		rr.rec = nil
	}
	DefaultMetrics.Seeks.Inc()
	rr.rowNum = n
	if n == total {
		rr.recIdx = rr.fr.NumRecords()
		rr.rowInRec = 0
		rr.state = stateExhausted
		return nil
	}
	// Greatest i with starts[i] <= n.
	i := sort.Search(len(starts)-1, func(i int) bool { return starts[i+1] > n })
	rr.recIdx = i
	rr.rowInRec = int(n - starts[i])
	rr.state = stateIdle
	return nil
}

// Close releases the cursor's handle. Closing twice is a no-op.
func (rr *RowReader) Close() error {
	if rr.state == stateClosed {
		return nil
	}
	rr.state = stateClosed
	if rr.rec != nil {
		rr.rec.Release()
		rr.rec = nil
	}
	DefaultMetrics.OpenCursors.Dec()
	if err := rr.fr.Close(); err != nil {
		rr.file.Close()
		return err
	}
	return rr.file.Close()
}
