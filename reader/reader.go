package reader

import (
	"errors"
	"fmt"
	"sync"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/ipc"

	"github.com/colstream/colstream/kind"
)

// Reader is a handle on one columnar file: its kind tree, its row count
// and a factory for row cursors. A Reader may be shared between
// goroutines; the cursors it creates may not.
type Reader struct {
	src  Source
	file File
	fr   *ipc.FileReader
	kind kind.Kind

	// Lazy record index: rowStart[i] is the number of rows before record
	// batch i, rowStart[len-1] the file total.
	indexOnce sync.Once
	indexErr  error
	rowStart  []int64

	mu         sync.Mutex
	sharedUsed bool
	closed     bool
}

// Open opens the file at path.
func Open(path string) (*Reader, error) {
	return New(FileSource(path))
}

// NewFromBytes reads a file image held in memory.
func NewFromBytes(data []byte) (*Reader, error) {
	return New(BytesSource(data))
}

// New opens a reader over the given source.
func New(src Source) (*Reader, error) {
	f, err := src.Open()
	if err != nil {
		return nil, fmt.Errorf("reader: open source: %w", err)
	}
	fr, err := ipc.NewFileReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("reader: open file: %w", err)
	}
	k, err := kind.FromArrowSchema(fr.Schema())
	if err != nil {
		fr.Close()
		f.Close()
		return nil, err
	}
	return &Reader{src: src, file: f, fr: fr, kind: k}, nil
}

// Kind returns the file's type tree: a Struct with one field per column.
func (r *Reader) Kind() kind.Kind { return r.kind }

// Schema returns the engine-level schema.
func (r *Reader) Schema() *arrow.Schema { return r.fr.Schema() }

// NumRows returns the file's total row count. The first call walks the
// record index once; the result is cached.
func (r *Reader) NumRows() (int64, error) {
	if err := r.buildIndex(); err != nil {
		return 0, err
	}
	return r.rowStart[len(r.rowStart)-1], nil
}

func (r *Reader) buildIndex() error {
	r.indexOnce.Do(func() {
		n := r.fr.NumRecords()
		starts := make([]int64, n+1)
		for i := 0; i < n; i++ {
			rec, err := r.fr.RecordAt(i)
			if err != nil {
				r.indexErr = fmt.Errorf("reader: index record %d: %w", i, err)
				return
			}
			starts[i+1] = starts[i] + rec.NumRows()
			rec.Release()
		}
		r.rowStart = starts
	})
	return r.indexErr
}

// openCursorFile obtains a handle for a new cursor. A single-use source
// lends the reader's own handle to the first cursor; the second cursor
// fails with ErrNotConcurrentSafe.
func (r *Reader) openCursorFile() (File, error) {
	f, err := r.src.Open()
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, ErrNotConcurrentSafe) {
		return nil, fmt.Errorf("reader: open source: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sharedUsed {
		return nil, ErrNotConcurrentSafe
	}
	r.sharedUsed = true
	return sharedFile{r.file}, nil
}

// Close releases the reader's handle. Cursors already created hold their
// own handles and stay usable.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	if err := r.fr.Close(); err != nil {
		r.file.Close()
		return err
	}
	return r.file.Close()
}
