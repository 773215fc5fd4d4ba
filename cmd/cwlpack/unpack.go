package main

import (
	"github.com/spf13/cobra"
	"github.com/viant/afs"

	"github.com/cwlpack/cwlpack"
	"github.com/cwlpack/cwlpack/internal/yml"
)

// NewUnpackCommand creates the unpack command.
func NewUnpackCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unpack <file> <dir>",
		Short: "Split a packed document into standalone files",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUnpack(cmd, rootOpts, args[0], args[1])
		},
	}
	return cmd
}

func runUnpack(cmd *cobra.Command, opts *RootOptions, source, targetDir string) error {
	logger := opts.logger()
	data, err := afs.New().DownloadWithURL(cmd.Context(), source)
	if err != nil {
		return err
	}
	doc, err := yml.Parse(data)
	if err != nil {
		return err
	}

	svc := cwlpack.New(cwlpack.WithLogger(logger))
	written, err := svc.Unpack(cmd.Context(), doc, targetDir)
	if err != nil {
		return err
	}
	for _, path := range written {
		logger.Info("wrote", "path", path)
	}
	cmd.Printf("unpacked %d files into %s\n", len(written), targetDir)
	return nil
}
