// Package rofdump holds the data model for ROF logs written by bench power
// supplies. The fixed layout of the file is concentrated here for easy
// reference; decoding lives in the format package and output in render.
package rofdump

import (
	"encoding/binary"
	"math"
	"time"
)

const (
	// MagicLen is the number of bytes compared against Magic.
	MagicLen = 3
	// TagLen is the width of the tag field at the start of the file. The
	// instrument writes the magic followed by a NUL byte.
	TagLen = 4

	// PeriodOffset is the position of the sample period, in seconds.
	PeriodOffset = 16
	// PointsOffset is the position of the number of recorded timestamps.
	PointsOffset = 20
	// DataOffset is the start of the channel data region.
	DataOffset = 28

	// SampleLen is the number of bytes in one raw sample.
	SampleLen = 4
	// ReadingLen is the number of bytes in one channel's voltage/current pair.
	ReadingLen = 2 * SampleLen

	// Scale converts raw samples to volts or amps.
	Scale = 10000.0
)

// Magic identifies an ROF file.
var Magic = []byte{'R', 'O', 'F'}

// ByteOrder is the byte order of every integer in an ROF file.
var ByteOrder = binary.LittleEndian

// Header is the scalar metadata stored at fixed offsets in the file.
type Header struct {
	// Tag is the tag field with NUL bytes stripped, normally "ROF".
	Tag string
	// Period is the number of seconds between samples.
	Period uint32
	// Points is the number of timestamps the instrument claims to have
	// recorded.
	Points uint32
}

// Layout is derived from the file size at open time. Channels are not
// stored in the file.
type Layout struct {
	Channels int
	// Size is the total length of the file in bytes.
	Size int64
	// DataSize is the length of the data region following DataOffset.
	DataSize int64
}

// Stride is the number of bytes in one record.
func (l Layout) Stride() int {
	return l.Channels * ReadingLen
}

// Reading is one channel's voltage and current at a timestamp.
type Reading struct {
	RawVoltage uint32
	RawCurrent uint32
}

// Voltage returns the reading in volts.
func (r Reading) Voltage() float64 {
	return float64(r.RawVoltage) / Scale
}

// Current returns the reading in amps.
func (r Reading) Current() float64 {
	return float64(r.RawCurrent) / Scale
}

// NewReading creates a Reading from physical values, rounded to the nearest
// raw unit.
func NewReading(volts, amps float64) Reading {
	return Reading{
		RawVoltage: uint32(math.Round(volts * Scale)),
		RawCurrent: uint32(math.Round(amps * Scale)),
	}
}

// Record is one timestamp's readings, one per channel in file order.
type Record struct {
	Index int
	// Seconds is Index * Period.
	Seconds  uint64
	Readings []Reading
}

// NewRecord creates the record for the i-th timestamp of a log with the
// given period.
func NewRecord(i int, period uint32, readings []Reading) Record {
	return Record{
		Index:    i,
		Seconds:  uint64(i) * uint64(period),
		Readings: readings,
	}
}

// Elapsed returns the time since the start of the log.
func (r Record) Elapsed() time.Duration {
	return time.Duration(r.Seconds) * time.Second
}
