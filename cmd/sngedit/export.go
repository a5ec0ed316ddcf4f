package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fredcamaral/sngedit/internal/adapters/secondary/export"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <file|url>",
		Short: "Export a song as sng, markdown, yaml or html",
		Example: `  sngedit export song.sng --format markdown -o song.md
  sngedit export song.sng --format html > preview.html`,
		Args: cobra.ExactArgs(1),
		RunE: runExport,
	}
	cmd.Flags().StringP("format", "f", "", "Export format (default from config, usually sng)")
	cmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")
	addTokenFlag(cmd)
	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	flags := make(map[string]interface{})
	if cmd.Flags().Changed("format") {
		format, _ := cmd.Flags().GetString("format")
		flags["format"] = format
	}

	a, err := newApp(cmd, args[0], flags, true)
	if err != nil {
		return err
	}
	defer a.close()

	session, err := a.open(cmd.Context(), args[0], tokenFlag(cmd))
	if err != nil {
		return err
	}

	result, err := a.exporter.Export(cmd.Context(), session, a.cfg.Editor.GetExportFormat())
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" || output == "-" {
		data := result.Data
		if result.Format == string(export.FormatSNG) {
			data = []byte(strings.TrimPrefix(string(data), "\ufeff") + "\n")
		}
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}

	if err := os.WriteFile(output, result.Data, 0o644); err != nil { // #nosec G306 - exported songs are meant to be shared
		return fmt.Errorf("writing %s: %w", output, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "exported %s (%s, %d bytes)\n", output, result.Format, len(result.Data))
	return nil
}
