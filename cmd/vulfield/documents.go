package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vaeryn-uk/vulfield"
	"github.com/vaeryn-uk/vulfield/internal/sample"
	"github.com/vaeryn-uk/vulfield/value"
)

func newConvert(a *app) *cobra.Command {
	var to string
	cmd := &cobra.Command{
		Use:   "convert FILE",
		Short: "Convert a document between JSON and YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}
			return writeDocument(a.stdout, doc, to)
		},
	}
	cmd.Flags().StringVar(&to, "to", "json", "output format: json or yaml")
	return cmd
}

func newNormalize(a *app) *cobra.Command {
	var typ, config, to string
	cmd := &cobra.Command{
		Use:   "normalize FILE",
		Short: "Read a document as a registered type and write it back",
		Long: "Deserializes FILE as --type and serializes the result, which drops unknown\n" +
			"members and applies reference and flag settings from --config.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, ok := a.registry.Get(typ)
			if !ok {
				return fmt.Errorf("unknown type %q, expected one of %s", typ, strings.Join(a.registry.Names(), ", "))
			}
			opts := &vulfield.Options{}
			if config != "" {
				data, err := os.ReadFile(config)
				if err != nil {
					return err
				}
				if opts, err = vulfield.ParseOptionsYAML(data); err != nil {
					return err
				}
			}
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}

			dctx := vulfield.NewDeserializationContext()
			dctx.Registry = a.registry
			dctx.Outer = &sample.Pool{}
			if err := opts.ApplyDeserialization(dctx); err != nil {
				return err
			}
			v, ok := entry.Decode(doc, dctx)
			if !ok {
				dctx.Errors.Log(nil)
				return dctx.Errors.Err()
			}

			sctx := vulfield.NewSerializationContext()
			sctx.Registry = a.registry
			if err := opts.ApplySerialization(sctx); err != nil {
				return err
			}
			out, ok := entry.Encode(v, sctx)
			if !ok {
				sctx.Errors.Log(nil)
				return sctx.Errors.Err()
			}
			return writeDocument(a.stdout, out, to)
		},
	}
	cmd.Flags().StringVarP(&typ, "type", "t", "", "registered type name")
	cmd.Flags().StringVarP(&config, "config", "c", "", "YAML options file")
	cmd.Flags().StringVar(&to, "to", "json", "output format: json or yaml")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

// readDocument parses a JSON or YAML file, chosen by extension.
func readDocument(path string) (*value.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var src vulfield.Source
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		src = vulfield.YAMLBytes(data)
	default:
		src = vulfield.JSONBytes(data)
	}
	v, err := src.Value()
	if err != nil {
		return nil, fmt.Errorf("%s: invalid %s: %w", path, src.Format(), err)
	}
	return v, nil
}

func writeDocument(w io.Writer, v *value.Value, format string) error {
	var (
		out []byte
		err error
	)
	switch format {
	case "json":
		out, err = value.MarshalIndent(v, "", "  ")
		out = append(out, '\n')
	case "yaml":
		out, err = value.MarshalYAML(v)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}
