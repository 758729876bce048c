// Command rofdump prints the contents of an ROF log as text or CSV.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/markruiz14/rofdump/format"
	"github.com/markruiz14/rofdump/internal/logger"
	"github.com/markruiz14/rofdump/render"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	cmd := NewCommand(viper.New(), os.Stdout, os.Stderr)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

type dumpCommand struct {
	v      *viper.Viper
	stdout io.Writer
	stderr io.Writer

	csv      bool
	strict   bool
	output   string
	logLevel zapcore.Level
}

// NewCommand creates the rofdump command. Every flag can also be set from
// the environment as ROFDUMP_<FLAG>, with dashes replaced by underscores.
func NewCommand(v *viper.Viper, stdout, stderr io.Writer) *cobra.Command {
	dump := &dumpCommand{v: v, stdout: stdout, stderr: stderr}

	cmd := &cobra.Command{
		Use:   "rofdump [flags] FILE",
		Short: "Dump ROF power supply logs",
		Long: `
This tool decodes an ROF log recorded by a bench power supply and prints
the voltage and current of every channel at every sample point.

By default a plain text report is printed: the sample period, the number of
data points and channels, then one line per sample point. With --csv the
output is a CSV table with a Seconds column followed by a voltage and a
current column per channel.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return dump.run(args[0])
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.Flags().BoolVarP(&dump.csv, "csv", "c", false, "print CSV instead of a text report")
	cmd.Flags().BoolVarP(&dump.strict, "strict", "", false, "fail when the number of records does not match the header")
	cmd.Flags().StringVarP(&dump.output, "output", "o", "", "write output to file instead of stdout")
	logger.LevelVar(cmd.Flags(), &dump.logLevel, "log-level", zapcore.WarnLevel, "log level (debug, info, warn, error)")

	v.SetEnvPrefix("ROFDUMP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		panic(err)
	}

	return cmd
}

// outputFormat decides the output representation once, at the boundary.
func (dump *dumpCommand) outputFormat() render.Format {
	if dump.v.GetBool("csv") {
		return render.CSV
	}
	return render.Text
}

func (dump *dumpCommand) run(path string) (err error) {
	level, err := zapcore.ParseLevel(dump.v.GetString("log-level"))
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	log := logger.New(dump.stderr, level)
	defer log.Sync()

	d, err := format.OpenFile(path,
		format.WithLogger(log),
		format.WithStrict(dump.v.GetBool("strict")))
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, d.Close()) }()

	w := dump.stdout
	if output := dump.v.GetString("output"); output != "" && output != "-" {
		out, createErr := os.Create(output)
		if createErr != nil {
			return createErr
		}
		defer func() { err = multierr.Append(err, out.Close()) }()
		w = out
	}

	outFormat := dump.outputFormat()
	log.Debug("Rendering", zap.Stringer("format", outFormat))
	return render.Render(w, outFormat, d)
}
