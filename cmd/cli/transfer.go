package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hkunkun/hkun-links/pkg/core/domain"
)

var (
	exportFormat string
	exportOut    string
	importFormat string
	importFile   string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Dump every category and link",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := formatFor(exportOut, exportFormat)
		if err != nil {
			return err
		}
		return withServices(cmd, func(ctx context.Context, svc *cliServices) error {
			data, err := svc.transfer.Export(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if exportOut != "" {
				f, err := os.Create(exportOut)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			if err := encodeExport(out, data, format); err != nil {
				return err
			}
			logger.Info("export complete")
			return nil
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load categories and links from an export file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := formatFor(importFile, importFormat)
		if err != nil {
			return err
		}
		f, err := os.Open(importFile)
		if err != nil {
			return err
		}
		defer f.Close()

		data, err := decodeExport(f, format)
		if err != nil {
			return err
		}
		return withServices(cmd, func(ctx context.Context, svc *cliServices) error {
			if err := svc.transfer.Import(ctx, data); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d categories and %d links\n", len(data.Categories), len(data.Links))
			return nil
		})
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "json or yaml (default: from --out extension, else json)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default: stdout)")

	importCmd.Flags().StringVar(&importFormat, "format", "", "json or yaml (default: from file extension)")
	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "Export file to import (required)")
	_ = importCmd.MarkFlagRequired("file")
}

// formatFor picks the explicit format, else guesses from the file name.
func formatFor(path, explicit string) (string, error) {
	format := strings.ToLower(explicit)
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			format = "yaml"
		default:
			format = "json"
		}
	}
	if format != "json" && format != "yaml" {
		return "", fmt.Errorf("unknown format %q (want json or yaml)", explicit)
	}
	return format, nil
}

func encodeExport(w io.Writer, data *domain.Export, format string) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func decodeExport(r io.Reader, format string) (*domain.Export, error) {
	var data domain.Export
	var err error
	if format == "yaml" {
		err = yaml.NewDecoder(r).Decode(&data)
	} else {
		err = json.NewDecoder(r).Decode(&data)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s export: %w", format, err)
	}
	return &data, nil
}
