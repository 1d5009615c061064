package reader

import (
	"bytes"
	"errors"
	"io"
	"os"
	"sync"
)

// File is one independent read handle over a columnar file image.
type File interface {
	io.ReadSeeker
	io.ReaderAt
	io.Closer
}

// Source opens independent read handles over one file. Every cursor gets
// its own handle, which is what makes concurrent read-only cursors
// possible.
type Source interface {
	Open() (File, error)
}

// ErrNotConcurrentSafe is returned when a source cannot supply another
// independent cursor, e.g. a SingleUse source asked for a second one.
var ErrNotConcurrentSafe = errors.New("reader: source does not support another concurrent cursor")

// FileSource reads a file on disk; every Open is a fresh descriptor.
type FileSource string

func (s FileSource) Open() (File, error) {
	return os.Open(string(s))
}

// BytesSource reads an in-memory file image. Opening is free, so it is
// the natural source for parallel iteration over small files.
type BytesSource []byte

func (s BytesSource) Open() (File, error) {
	return nopCloser{bytes.NewReader(s)}, nil
}

type nopCloser struct{ *bytes.Reader }

func (nopCloser) Close() error { return nil }

// SingleUse wraps an already-open handle into a source that hands it out
// exactly once. A Reader on such a source supports one row cursor and no
// parallel iteration; anything needing a further handle fails with
// ErrNotConcurrentSafe.
func SingleUse(f File) Source {
	return &singleUse{f: f}
}

type singleUse struct {
	mu   sync.Mutex
	f    File
	used bool
}

func (s *singleUse) Open() (File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.used {
		return nil, ErrNotConcurrentSafe
	}
	s.used = true
	return s.f, nil
}

// sharedFile lets a cursor borrow the Reader's own handle without closing
// it on cursor close.
type sharedFile struct{ File }

func (sharedFile) Close() error { return nil }
