package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/vaeryn-uk/vulfield"
)

func newSchema(a *app) *cobra.Command {
	var extract bool
	cmd := &cobra.Command{
		Use:   "schema TYPE",
		Short: "Print the JSON Schema of a registered type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.registry.Describe(args[0])
			if err != nil {
				return err
			}
			out, err := d.JSONSchema(extract).Encode()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.stdout, string(out))
			return err
		},
	}
	cmd.Flags().BoolVar(&extract, "extract", false, "describe output written with extracted references")
	return cmd
}

var errOutdated = errors.New("declarations are out of date")

func newTS(a *app) *cobra.Command {
	var (
		opts  vulfield.TypeScriptOptions
		check string
	)
	cmd := &cobra.Command{
		Use:   "ts",
		Short: "Print TypeScript declarations for every registered type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			got, err := a.registry.TypeScript(opts)
			if err != nil {
				return err
			}
			if check == "" {
				_, err = io.WriteString(a.stdout, got)
				return err
			}
			want, err := os.ReadFile(check)
			if err != nil {
				return err
			}
			if string(want) == got {
				return nil
			}
			writeLineDiff(a.stdout, string(want), got)
			return fmt.Errorf("%s: %w", check, errOutdated)
		},
	}
	cmd.Flags().BoolVar(&opts.ExtractReferences, "extract", false, "type references as extracted tokens")
	cmd.Flags().BoolVar(&opts.TypeGuards, "guards", false, "emit type guard functions for subtypes")
	cmd.Flags().StringVar(&check, "check", "", "compare with the declarations in `FILE` instead of printing")
	return cmd
}

// writeLineDiff prints a line-oriented diff from want to got.
func writeLineDiff(w io.Writer, want, got string) {
	dmp := diffpatch.New()
	a, b, lines := dmp.DiffLinesToChars(want, got)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	del := painter(w, color.FgRed)
	ins := painter(w, color.FgGreen)
	for _, d := range diffs {
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			line = strings.TrimSuffix(line, "\n")
			switch d.Type {
			case diffpatch.DiffDelete:
				fmt.Fprintln(w, del("-"+line))
			case diffpatch.DiffInsert:
				fmt.Fprintln(w, ins("+"+line))
			case diffpatch.DiffEqual:
				fmt.Fprintln(w, " "+line)
			}
		}
	}
}
