// Package render writes decoded ROF logs as a plain text report or as CSV.
package render

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"

	"github.com/markruiz14/rofdump"
	"go.uber.org/multierr"
)

// Format selects an output representation.
type Format int

const (
	// Text is the human readable report.
	Text Format = iota
	// CSV is one row per record with a header line.
	CSV
)

func (f Format) String() string {
	switch f {
	case Text:
		return "text"
	case CSV:
		return "csv"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat returns the Format named by s.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "text", "txt":
		return Text, nil
	case "csv":
		return CSV, nil
	default:
		return 0, fmt.Errorf("unknown output format %q", s)
	}
}

// Source is a decoded log. *format.Decoder satisfies it.
type Source interface {
	Header() rofdump.Header
	Layout() rofdump.Layout
	Records() iter.Seq2[rofdump.Record, error]
}

// Render writes src to w in format f.
func Render(w io.Writer, f Format, src Source) error {
	switch f {
	case Text:
		return WriteText(w, src)
	case CSV:
		return WriteCSV(w, src)
	default:
		return fmt.Errorf("unsupported output format %s", f)
	}
}

// WriteText writes a summary of the header followed by one line per record.
// An error from the record sequence stops output before the failing record.
func WriteText(w io.Writer, src Source) error {
	bw := bufio.NewWriter(w)

	h := src.Header()
	channels := src.Layout().Channels
	fmt.Fprintf(bw, "Period: %d second(s)\n", h.Period)
	fmt.Fprintf(bw, "Data points: %d\n", h.Points)
	fmt.Fprintf(bw, "Number of channels: %d\n\n", channels)

	for rec, err := range src.Records() {
		if err != nil {
			// Keep the rows already written.
			return multierr.Append(err, bw.Flush())
		}
		if err := checkWidth(rec, channels); err != nil {
			return multierr.Append(err, bw.Flush())
		}

		fmt.Fprintf(bw, "%d:\t", rec.Seconds)
		for _, r := range rec.Readings {
			fmt.Fprintf(bw, "%f(V), %f(A)\t", r.Voltage(), r.Current())
		}
		bw.WriteByte('\n')
	}

	return bw.Flush()
}

// WriteCSV writes a header line naming every channel's voltage and current
// followed by one row per record.
func WriteCSV(w io.Writer, src Source) error {
	cw := csv.NewWriter(w)
	channels := src.Layout().Channels

	if err := cw.Write(csvHeader(channels)); err != nil {
		return err
	}

	row := make([]string, 1+2*channels)
	for rec, err := range src.Records() {
		if err != nil {
			cw.Flush()
			return multierr.Append(err, cw.Error())
		}
		if err := checkWidth(rec, channels); err != nil {
			cw.Flush()
			return multierr.Append(err, cw.Error())
		}

		row[0] = strconv.FormatUint(rec.Seconds, 10)
		for i, r := range rec.Readings {
			row[1+2*i] = formatValue(r.Voltage())
			row[2+2*i] = formatValue(r.Current())
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func csvHeader(channels int) []string {
	header := make([]string, 0, 1+2*channels)
	header = append(header, "Seconds")
	for c := 1; c <= channels; c++ {
		header = append(header,
			fmt.Sprintf("CH%d Voltage", c),
			fmt.Sprintf("CH%d Current", c))
	}
	return header
}

// formatValue matches the six decimal places of the text report.
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func checkWidth(rec rofdump.Record, channels int) error {
	if len(rec.Readings) != channels {
		return fmt.Errorf("record %d has %d readings, expected %d", rec.Index, len(rec.Readings), channels)
	}
	return nil
}
