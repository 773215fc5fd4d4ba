package main

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/spf13/cobra"
	"github.com/viant/afs"
	"github.com/viant/afs/file"

	"github.com/cwlpack/cwlpack"
	"github.com/cwlpack/cwlpack/internal/yml"
	"github.com/cwlpack/cwlpack/service/fetcher"
)

// PackOptions holds flags for the pack command.
type PackOptions struct {
	*RootOptions
	Output  string
	JSON    bool
	AddIDs  bool
	Timeout time.Duration
	Retries int
}

// NewPackCommand creates the pack command.
func NewPackCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PackOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "pack <location>",
		Short: "Resolve a workflow and emit it as one document",
		Long: `Pack fetches the workflow at the given path or URL, resolves its
complete reference graph and writes the packed document to stdout or to
the file given with --output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPack(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path (default stdout)")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "emit JSON instead of YAML")
	cmd.Flags().BoolVar(&opts.AddIDs, "add-ids", false, "insert an id into the root process when missing")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 30*time.Second, "per-document fetch timeout")
	cmd.Flags().IntVar(&opts.Retries, "retries", 1, "fetch attempts for remote documents")

	return cmd
}

func runPack(cmd *cobra.Command, opts *PackOptions, location string) error {
	svc := cwlpack.New(
		cwlpack.WithLogger(opts.logger()),
		cwlpack.WithTimeout(opts.Timeout),
		cwlpack.WithRetry(fetcher.RetryConfig{Attempts: opts.Retries, Backoff: 500 * time.Millisecond}),
		cwlpack.WithAddIDs(opts.AddIDs))

	doc, err := svc.Pack(cmd.Context(), location)
	if err != nil {
		return err
	}

	var data []byte
	if opts.JSON {
		if data, err = json.MarshalIndent(doc.Interface(), "", "  "); err != nil {
			return err
		}
		data = append(data, '\n')
	} else if data, err = yml.Marshal(doc); err != nil {
		return err
	}

	if opts.Output == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	return afs.New().Upload(cmd.Context(), opts.Output, file.DefaultFileOsMode, bytes.NewReader(data))
}
