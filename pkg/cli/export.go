package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/phenodash/pkg/cli/config"
	"github.com/secmon-lab/phenodash/pkg/service/export"
	"github.com/urfave/cli/v3"
)

func cmdExport() *cli.Command {
	var (
		datasetCfg config.Dataset
		filterCfg  config.Filter
		format     string
		output     string
	)

	flags := joinFlags(
		datasetCfg.Flags(),
		filterCfg.Flags(),
		[]cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Aliases:     []string{"f"},
				Usage:       "Output format (csv, xlsx; default: from --output extension, else csv)",
				Destination: &format,
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "Output file (default: stdout)",
				Destination: &output,
			},
		},
	)

	return &cli.Command{
		Name:  "export",
		Usage: "Write the filtered rows as CSV or XLSX",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			f, err := exportFormat(format, output)
			if err != nil {
				return err
			}

			// Presentation settings do not change exported rows
			var dashboardCfg config.Dashboard
			view, err := renderView(ctx, &datasetCfg, &dashboardCfg, &filterCfg)
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				return export.Write(c.Root().Writer, f, view)
			}

			if err := writeFile(output, func(w io.Writer) error {
				return export.Write(w, f, view)
			}); err != nil {
				return err
			}

			ctxlog.From(ctx).Info("Exported records",
				"path", output,
				"format", f,
				"rows", len(view.Rows),
			)
			return nil
		},
	}
}

func exportFormat(format, output string) (export.Format, error) {
	if format == "" {
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(output), "."))
		if export.Format(ext) == export.FormatXLSX {
			return export.FormatXLSX, nil
		}
		return export.FormatCSV, nil
	}

	f := export.Format(strings.ToLower(format))
	if !f.IsValid() {
		return "", goerr.New("unsupported export format", goerr.V("format", format))
	}
	return f, nil
}

// writeFile writes to a temporary file next to path and renames it into
// place, so a failed export never leaves a truncated file.
func writeFile(path string, write func(w io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return goerr.Wrap(err, "failed to create output file", goerr.V("path", path))
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return goerr.Wrap(err, "failed to close output file", goerr.V("path", path))
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return goerr.Wrap(err, "failed to move output file", goerr.V("path", path))
	}
	return nil
}
