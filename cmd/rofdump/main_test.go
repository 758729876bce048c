package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/markruiz14/rofdump"
	"github.com/markruiz14/rofdump/format"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	wantText = "Period: 5 second(s)\n" +
		"Data points: 2\n" +
		"Number of channels: 1\n" +
		"\n" +
		"0:\t10.000000(V), 5.000000(A)\t\n" +
		"5:\t20.000000(V), 6.000000(A)\t\n"

	wantCSV = "Seconds,CH1 Voltage,CH1 Current\n" +
		"0,10.000000,5.000000\n" +
		"5,20.000000,6.000000\n"
)

func writeLog(t *testing.T, points uint32, extra ...rofdump.Record) string {
	t.Helper()

	records := []rofdump.Record{
		rofdump.NewRecord(0, 5, []rofdump.Reading{{RawVoltage: 100000, RawCurrent: 50000}}),
		rofdump.NewRecord(1, 5, []rofdump.Reading{{RawVoltage: 200000, RawCurrent: 60000}}),
	}
	records = append(records, extra...)
	var buf bytes.Buffer
	require.NoError(t, format.Encode(&buf, rofdump.Header{Period: 5, Points: points}, records))

	path := filepath.Join(t.TempDir(), "log.rof")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewCommand(viper.New(), &stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestDump_Text(t *testing.T) {
	stdout, stderr, err := execute(t, writeLog(t, 2))
	require.NoError(t, err)
	assert.Equal(t, wantText, stdout)
	assert.Empty(t, stderr)
}

func TestDump_CSV(t *testing.T) {
	stdout, _, err := execute(t, "--csv", writeLog(t, 2))
	require.NoError(t, err)
	assert.Equal(t, wantCSV, stdout)
}

func TestDump_CSVFromEnv(t *testing.T) {
	t.Setenv("ROFDUMP_CSV", "true")

	stdout, _, err := execute(t, writeLog(t, 2))
	require.NoError(t, err)
	assert.Equal(t, wantCSV, stdout)
}

func TestDump_OutputFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.csv")

	stdout, _, err := execute(t, "-c", "-o", out, writeLog(t, 2))
	require.NoError(t, err)
	assert.Empty(t, stdout)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, wantCSV, string(got))
}

func TestDump_PointCountMismatch(t *testing.T) {
	// Three records, but the header claims two points.
	path := writeLog(t, 2, rofdump.NewRecord(2, 5, []rofdump.Reading{{RawVoltage: 300000, RawCurrent: 70000}}))

	t.Run("warning", func(t *testing.T) {
		stdout, stderr, err := execute(t, path)
		require.NoError(t, err)
		assert.Contains(t, stdout, "Data points: 2\n")
		assert.Contains(t, stdout, "10:\t30.000000(V), 7.000000(A)\t\n")
		assert.Contains(t, stderr, "Record count does not match header")
	})

	t.Run("strict", func(t *testing.T) {
		_, stderr, err := execute(t, "--strict", path)
		require.Error(t, err)
		assert.ErrorIs(t, err, rofdump.ErrInconsistent)
		assert.Contains(t, stderr, "Error: ")
	})

	t.Run("quiet", func(t *testing.T) {
		_, stderr, err := execute(t, "--log-level", "error", path)
		require.NoError(t, err)
		assert.Empty(t, stderr)
	})
}

func TestDump_Errors(t *testing.T) {
	dir := t.TempDir()
	badMagic := filepath.Join(dir, "bad.rof")
	require.NoError(t, os.WriteFile(badMagic, []byte("XYZ not a log"), 0o644))
	zeroPoints := filepath.Join(dir, "zero.rof")
	header := make([]byte, rofdump.DataOffset)
	copy(header, rofdump.Magic)
	require.NoError(t, os.WriteFile(zeroPoints, header, 0o644))

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{name: "no file", args: []string{}},
		{name: "two files", args: []string{badMagic, zeroPoints}},
		{name: "missing file", args: []string{filepath.Join(dir, "missing.rof")}},
		{name: "bad magic", args: []string{badMagic}, wantErr: rofdump.ErrBadMagic},
		{name: "zero points", args: []string{zeroPoints}, wantErr: rofdump.ErrDivisionByZero},
		{name: "bad log level", args: []string{"--log-level", "loud", badMagic}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, err := execute(t, tt.args...)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Empty(t, stdout)
			assert.Contains(t, stderr, "Error: ")
		})
	}
}
