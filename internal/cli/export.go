package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"qcm-service/internal/export"
	"github.com/spf13/cobra"
)

// NewExportCmd dumps every recorded result from the configured sink.
func NewExportCmd(configPath *string) *cobra.Command {
	var (
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all recorded results as CSV or XLSX",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), *configPath, format, output, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "csv or xlsx (defaults to the output extension, else csv)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write, stdout when empty")
	return cmd
}

func runExport(ctx context.Context, configPath, format, output string, stdout io.Writer) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	format, err = exportFormat(format, output)
	if err != nil {
		return err
	}

	b, err := openBackends(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	records, err := b.sink.ReadAll(ctx)
	if err != nil {
		return fmt.Errorf("read results: %w", err)
	}

	w := stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "xlsx":
		err = export.WriteXLSX(w, records)
	default:
		err = export.WriteCSV(w, records)
	}
	if err != nil {
		return fmt.Errorf("write %s export: %w", format, err)
	}
	if output != "" {
		log.Printf("exported %d results to %s", len(records), output)
	}
	return nil
}

func exportFormat(format, output string) (string, error) {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), ".")
	}
	switch format {
	case "", "csv":
		return "csv", nil
	case "xlsx":
		return "xlsx", nil
	}
	return "", fmt.Errorf("unsupported export format %q", format)
}
