package format

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/markruiz14/rofdump"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// State is the position of a Decoder in its lifecycle.
type State int

const (
	// Validated means the header has been read and no record has been
	// requested yet.
	Validated State = iota
	// Iterating means Records is being consumed.
	Iterating
	// Exhausted means the data region has been consumed, or the consumer
	// stopped early.
	Exhausted
	// Failed means a record could not be decoded.
	Failed
)

func (s State) String() string {
	switch s {
	case Validated:
		return "validated"
	case Iterating:
		return "iterating"
	case Exhausted:
		return "exhausted"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithLogger sets the logger used for diagnostics. The default discards
// everything.
func WithLogger(log *zap.Logger) Option {
	return func(d *Decoder) {
		d.log = log
	}
}

// WithStrict makes a mismatch between the header's point count and the
// number of records in the data region an Inconsistent error instead of a
// warning.
func WithStrict(strict bool) Option {
	return func(d *Decoder) {
		d.strict = strict
	}
}

// Decoder reads a single ROF log. The header and layout are fixed once Open
// returns; records can be iterated exactly once.
type Decoder struct {
	src    io.ReadSeeker
	closer io.Closer

	header rofdump.Header
	layout rofdump.Layout

	// offset is the read cursor, relative to the start of the source.
	offset int64
	state  State

	strict bool
	log    *zap.Logger
}

// OpenFile opens the ROF file at path. The file is closed if the header is
// invalid; otherwise the caller must Close the Decoder.
func OpenFile(path string, opts ...Option) (*Decoder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &rofdump.IOError{Op: "open", Path: path, Err: err}
	}

	d, err := Open(f, opts...)
	if err != nil {
		return nil, multierr.Append(err, f.Close())
	}
	d.closer = f
	d.log = d.log.With(zap.String("path", path))
	return d, nil
}

// Open validates the ROF header in src and positions it at the start of the
// data region. src is read strictly in increasing offset order afterwards.
func Open(src io.ReadSeeker, opts ...Option) (*Decoder, error) {
	d := &Decoder{
		src: src,
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}

	if err := d.readHeader(); err != nil {
		return nil, err
	}
	if err := d.readLayout(); err != nil {
		return nil, err
	}

	if _, err := src.Seek(rofdump.DataOffset, io.SeekStart); err != nil {
		return nil, &rofdump.IOError{Op: "seek data", Err: err}
	}
	d.offset = rofdump.DataOffset

	d.log.Debug("Opened ROF log",
		zap.Uint32("period", d.header.Period),
		zap.Uint32("points", d.header.Points),
		zap.Int("channels", d.layout.Channels),
		zap.String("size", humanize.Bytes(uint64(d.layout.Size))))

	return d, nil
}

func (d *Decoder) readHeader() error {
	if _, err := d.src.Seek(0, io.SeekStart); err != nil {
		return &rofdump.IOError{Op: "seek magic", Err: err}
	}

	tag := make([]byte, rofdump.TagLen)
	n, err := io.ReadFull(d.src, tag)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return &rofdump.IOError{Op: "read magic", Err: err}
	}
	// Only the magic itself is checked; the fourth byte is usually NUL but
	// is not part of the signature.
	if n < rofdump.MagicLen || !bytes.Equal(tag[:rofdump.MagicLen], rofdump.Magic) {
		return &rofdump.FormatError{
			Kind:   rofdump.BadMagic,
			Detail: fmt.Sprintf("got %q", tag[:min(n, rofdump.MagicLen)]),
		}
	}
	d.header.Tag = decodeTag(tag[:n])

	if _, err := d.src.Seek(rofdump.PeriodOffset, io.SeekStart); err != nil {
		return &rofdump.IOError{Op: "seek period", Err: err}
	}

	var buf [rofdump.SampleLen]byte
	if err := rofdump.ReadExactly(d.src, buf[:], "period"); err != nil {
		return err
	}
	d.header.Period = rofdump.ByteOrder.Uint32(buf[:])

	if err := rofdump.ReadExactly(d.src, buf[:], "point_count"); err != nil {
		return err
	}
	d.header.Points = rofdump.ByteOrder.Uint32(buf[:])

	return nil
}

func (d *Decoder) readLayout() error {
	size, err := d.src.Seek(0, io.SeekEnd)
	if err != nil {
		return &rofdump.IOError{Op: "seek end", Err: err}
	}
	if size < rofdump.DataOffset {
		return rofdump.NewTruncatedError("header", rofdump.DataOffset, int(size))
	}
	if d.header.Points == 0 {
		return &rofdump.FormatError{
			Kind:   rofdump.DivisionByZero,
			Field:  "point_count",
			Detail: "header records zero points",
		}
	}

	dataSize := size - rofdump.DataOffset
	channels := dataSize / int64(d.header.Points) / rofdump.ReadingLen
	// A data region too small for one reading per point would otherwise
	// yield zero-width records forever.
	if dataSize > 0 && channels == 0 {
		return &rofdump.FormatError{
			Kind:  rofdump.Truncated,
			Field: "sample",
			Detail: fmt.Sprintf("%d byte data region cannot hold %d points",
				dataSize, d.header.Points),
		}
	}

	d.layout = rofdump.Layout{
		Channels: int(channels),
		Size:     size,
		DataSize: dataSize,
	}
	return nil
}

// Header returns the decoded header.
func (d *Decoder) Header() rofdump.Header {
	return d.header
}

// Layout returns the layout derived from the file size.
func (d *Decoder) Layout() rofdump.Layout {
	return d.layout
}

// State returns the current lifecycle state.
func (d *Decoder) State() State {
	return d.state
}

// Records returns the records in file order. Iteration stops at the end of
// the data region, after the first error, or when the consumer stops. The
// sequence cannot be restarted: once iteration has begun, later calls yield
// nothing.
func (d *Decoder) Records() iter.Seq2[rofdump.Record, error] {
	return func(yield func(rofdump.Record, error) bool) {
		if d.state != Validated {
			return
		}
		d.state = Iterating

		r := bufio.NewReader(d.src)
		stride := d.layout.Stride()
		count := 0

		for d.offset < d.layout.Size {
			readings, err := d.readRecord(r, stride)
			if err != nil {
				d.state = Failed
				yield(rofdump.Record{}, err)
				return
			}

			rec := rofdump.NewRecord(count, d.header.Period, readings)
			count++
			if !yield(rec, nil) {
				d.state = Exhausted
				return
			}
		}
		d.state = Exhausted

		if err := d.checkCount(count); err != nil {
			d.state = Failed
			yield(rofdump.Record{}, err)
		}
	}
}

func (d *Decoder) readRecord(r io.Reader, stride int) ([]rofdump.Reading, error) {
	buf := make([]byte, stride)
	err := rofdump.ReadExactly(r, buf, "sample")
	if err != nil {
		return nil, err
	}
	d.offset += int64(stride)

	readings := make([]rofdump.Reading, d.layout.Channels)
	for i := range readings {
		p := buf[i*rofdump.ReadingLen:]
		readings[i] = rofdump.Reading{
			RawVoltage: rofdump.ByteOrder.Uint32(p[:rofdump.SampleLen]),
			RawCurrent: rofdump.ByteOrder.Uint32(p[rofdump.SampleLen:rofdump.ReadingLen]),
		}
	}
	return readings, nil
}

// checkCount compares the number of records found against the header.
// End of data is authoritative; the header count only produces a warning
// unless the decoder is strict.
func (d *Decoder) checkCount(count int) error {
	if uint64(count) == uint64(d.header.Points) {
		return nil
	}

	d.log.Warn("Record count does not match header",
		zap.Uint32("points", d.header.Points),
		zap.Int("records", count))

	if !d.strict {
		return nil
	}
	return &rofdump.FormatError{
		Kind:   rofdump.Inconsistent,
		Field:  "point_count",
		Detail: fmt.Sprintf("header declares %d points, data holds %d", d.header.Points, count),
	}
}

// Close releases the underlying file when the Decoder was created by
// OpenFile. It is a no-op otherwise.
func (d *Decoder) Close() error {
	if d.closer == nil {
		return nil
	}
	err := d.closer.Close()
	d.closer = nil
	return err
}
