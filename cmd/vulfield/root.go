package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/vaeryn-uk/vulfield"
	"github.com/vaeryn-uk/vulfield/internal/sample"
)

type app struct {
	stdout, stderr io.Writer
	verbose        bool
	registry       *vulfield.Registry
}

func newRoot(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}
	cmd := &cobra.Command{
		Use:           "vulfield",
		Short:         "Inspect and convert documents of the sample types",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Usage()
		},
	}
	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log debug output")

	cmd.AddCommand(
		newSchema(a),
		newTS(a),
		newConvert(a),
		newNormalize(a),
	)
	return cmd
}

func (a *app) setup() error {
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))
	vulfield.SetLogger(logger)

	if err := sample.RegisterDefault(); err != nil {
		return err
	}
	a.registry = vulfield.DefaultRegistry()
	logger.Debug("registered types", "names", a.registry.Names())
	return nil
}
