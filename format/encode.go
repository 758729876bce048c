package format

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/markruiz14/rofdump"
)

// Encode writes an ROF log holding records. An empty header Tag is written
// as the ROF magic. Every record must carry the same number of readings;
// the header's Points is written as given so that inconsistent files can be
// produced deliberately.
func Encode(w io.Writer, h rofdump.Header, records []rofdump.Record) error {
	var buf bytes.Buffer

	tag := make([]byte, rofdump.TagLen)
	if h.Tag == "" {
		copy(tag, rofdump.Magic)
	} else {
		copy(tag, h.Tag)
	}
	buf.Write(tag)
	// Pad out to the period field.
	buf.Write(make([]byte, rofdump.PeriodOffset-rofdump.TagLen))

	if err := binary.Write(&buf, rofdump.ByteOrder, h.Period); err != nil {
		return err
	}
	if err := binary.Write(&buf, rofdump.ByteOrder, h.Points); err != nil {
		return err
	}
	buf.Write(make([]byte, rofdump.DataOffset-buf.Len()))

	channels := -1
	for _, rec := range records {
		if channels == -1 {
			channels = len(rec.Readings)
		}
		if len(rec.Readings) != channels {
			return fmt.Errorf("record %d has %d readings, expected %d", rec.Index, len(rec.Readings), channels)
		}
		if err := binary.Write(&buf, rofdump.ByteOrder, rec.Readings); err != nil {
			return fmt.Errorf("error writing record %d: %w", rec.Index, err)
		}
	}

	_, err := w.Write(buf.Bytes())
	return err
}
