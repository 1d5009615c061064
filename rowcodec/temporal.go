package rowcodec

import (
	"fmt"
	"time"

	"github.com/colstream/colstream/kind"
	"github.com/colstream/colstream/vector"
)

// Timestamp is an instant as whole seconds since the Unix epoch plus a
// nanosecond part in [0, 1e9). Unlike int64 nanoseconds it covers the full
// range a file can store.
type Timestamp struct {
	Seconds int64
	Nanos   int64
}

// Time converts the instant to a time.Time in UTC.
func (t Timestamp) Time() time.Time {
	return time.Unix(t.Seconds, t.Nanos).UTC()
}

// Date counts days since the Unix epoch; negative values are days before
// it.
type Date int32

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time {
	return time.Unix(int64(d)*86_400, 0).UTC()
}

// Timestamps decodes timestamp columns into Timestamp values.
func Timestamps() Decoder[Timestamp] { return timestampDecoder{} }

type timestampDecoder struct{}

func (timestampDecoder) CheckKind(k kind.Kind) error {
	if k.Prim != kind.Timestamp {
		return mismatch("timestamp", k)
	}
	return nil
}

func (timestampDecoder) AppendRange(col *vector.Column, start, n int, out []Timestamp) ([]Timestamp, error) {
	v, err := col.Timestamps()
	if err != nil {
		return out, err
	}
	if err := requireNoNulls(col, start, n); err != nil {
		return out, err
	}
	for i := 0; i < n; i++ {
		out = append(out, Timestamp{Seconds: v.Seconds(start + i), Nanos: v.Nanos(start + i)})
	}
	return out, nil
}

// Times decodes timestamp columns into time.Time values in UTC.
func Times() Decoder[time.Time] { return timeDecoder{} }

type timeDecoder struct{}

func (timeDecoder) CheckKind(k kind.Kind) error {
	if k.Prim != kind.Timestamp {
		return mismatch("timestamp", k)
	}
	return nil
}

func (timeDecoder) AppendRange(col *vector.Column, start, n int, out []time.Time) ([]time.Time, error) {
	v, err := col.Timestamps()
	if err != nil {
		return out, err
	}
	if err := requireNoNulls(col, start, n); err != nil {
		return out, err
	}
	for i := 0; i < n; i++ {
		out = append(out, time.Unix(v.Seconds(start+i), v.Nanos(start+i)).UTC())
	}
	return out, nil
}

// UnixNanos decodes timestamp columns into nanoseconds since the Unix
// epoch, failing on instants outside the int64 nanosecond range
// (roughly years 1678 through 2262).
func UnixNanos() Decoder[int64] { return unixNanosDecoder{} }

const maxUnixNanoSeconds = (1<<63 - 1) / 1_000_000_000

type unixNanosDecoder struct{}

func (unixNanosDecoder) CheckKind(k kind.Kind) error {
	if k.Prim != kind.Timestamp {
		return mismatch("timestamp", k)
	}
	return nil
}

func (unixNanosDecoder) AppendRange(col *vector.Column, start, n int, out []int64) ([]int64, error) {
	v, err := col.Timestamps()
	if err != nil {
		return out, err
	}
	if err := requireNoNulls(col, start, n); err != nil {
		return out, err
	}
	for i := 0; i < n; i++ {
		sec, nano := v.Seconds(start+i), v.Nanos(start+i)
		if sec > maxUnixNanoSeconds || sec < -maxUnixNanoSeconds-1 {
			return out, fmt.Errorf("rowcodec: timestamp %ds outside int64 nanosecond range at row %d", sec, start+i)
		}
		out = append(out, sec*1_000_000_000+nano)
	}
	return out, nil
}

// Dates decodes date columns.
func Dates() Decoder[Date] { return dateDecoder{} }

type dateDecoder struct{}

func (dateDecoder) CheckKind(k kind.Kind) error {
	if k.Prim != kind.Date {
		return mismatch("date", k)
	}
	return nil
}

func (dateDecoder) AppendRange(col *vector.Column, start, n int, out []Date) ([]Date, error) {
	v, err := col.Longs()
	if err != nil {
		return out, err
	}
	if err := requireNoNulls(col, start, n); err != nil {
		return out, err
	}
	for i := 0; i < n; i++ {
		out = append(out, Date(v.Value(start+i)))
	}
	return out, nil
}
