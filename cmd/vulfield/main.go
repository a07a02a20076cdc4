// Command vulfield inspects the sample types: it prints their JSON Schema
// and TypeScript declarations, converts documents between JSON and YAML and
// normalizes documents through a registered type.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := newRoot(os.Stdout, os.Stderr).Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// painter returns a Sprint function for attrs, or plain fmt.Sprint when w is
// not a terminal.
func painter(w io.Writer, attrs ...color.Attribute) func(a ...any) string {
	if !isTerminal(w) {
		return fmt.Sprint
	}
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint
}

func printError(w io.Writer, err error) {
	red := painter(w, color.FgRed, color.Bold)
	fmt.Fprintln(w, red("error:"), err)
}
