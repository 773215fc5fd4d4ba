package main

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/cwlpack/cwlpack/tracing"
)

const version = "0.1.0"

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	Verbose   bool
	TraceFile string
}

func (o *RootOptions) logger() *log.Logger {
	if !o.Verbose {
		return log.New(io.Discard)
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           log.DebugLevel,
	})
}

// NewRootCommand creates the root command for the cwlpack CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "cwlpack",
		Short:   "Pack multi-file CWL workflows into one document",
		Version: version,
		Long: `cwlpack resolves every cross-file reference of a CWL workflow -
step run files, imported schema types, $import and $include directives -
and emits one self-contained document. The unpack command reverses the
operation, splitting a packed document back into discrete files.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.TraceFile != "" {
				return tracing.Init("cwlpack", version, opts.TraceFile)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose progress on stderr")
	cmd.PersistentFlags().StringVar(&opts.TraceFile, "trace", "", "write OpenTelemetry traces to the given file")

	cmd.AddCommand(NewPackCommand(opts))
	cmd.AddCommand(NewUnpackCommand(opts))

	return cmd
}
