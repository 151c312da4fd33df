package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aisa-it/aiplan/docexport/internal/aiplan/config"
	"github.com/aisa-it/aiplan/docexport/internal/aiplan/editor/markup"
	"github.com/aisa-it/aiplan/docexport/internal/aiplan/export"
	sandbox "github.com/aisa-it/aiplan/docexport/internal/aiplan/render-sandbox"
	"github.com/spf13/cobra"
)

type exportFlags struct {
	output    string
	title     string
	timeout   time.Duration
	chrome    string
	noSandbox bool
	verbose   bool
}

func newRootCmd() *cobra.Command {
	flags := &exportFlags{}

	root := &cobra.Command{
		Use:           "docexport",
		Short:         "Export AIPlan documents to PDF",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if flags.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}
	root.PersistentFlags().StringVar(&flags.title, "title", "", "Document title (default: file name)")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Verbose logs")

	pdfCmd := &cobra.Command{
		Use:   "pdf <doc.json>",
		Short: "Render document to PDF with headless Chrome",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPDF(cmd.Context(), cmd.OutOrStdout(), flags, args[0])
		},
	}
	pdfCmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file (default: <doc>.pdf)")
	pdfCmd.Flags().DurationVar(&flags.timeout, "timeout", export.DefaultTimeout, "Render timeout")
	pdfCmd.Flags().StringVar(&flags.chrome, "chrome", os.Getenv("CHROME_PATH"), "Chrome executable")
	pdfCmd.Flags().BoolVar(&flags.noSandbox, "no-sandbox", false, "Disable Chrome OS sandbox (containers without user namespaces)")

	htmlCmd := &cobra.Command{
		Use:   "html <doc.json>",
		Short: "Print the HTML document passed to the render engine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHTML(cmd.OutOrStdout(), flags, args[0])
		},
	}
	htmlCmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file (default: stdout)")

	root.AddCommand(pdfCmd, htmlCmd)
	return root
}

func readDocument(path, title string) (export.StoredDocument, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return export.StoredDocument{}, err
	}
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return export.StoredDocument{ID: filepath.Base(path), Title: title, Content: content}, nil
}

func runHTML(stdout io.Writer, flags *exportFlags, path string) error {
	doc, err := readDocument(path, flags.title)
	if err != nil {
		return err
	}

	html, err := export.NewExporter(nil, markup.NewRenderer(config.Default().RenderPolicy())).ExportHTML(doc)
	if err != nil {
		return err
	}

	if flags.output == "" {
		_, err = io.WriteString(stdout, html)
		return err
	}
	return os.WriteFile(flags.output, []byte(html), 0o644)
}

func runPDF(ctx context.Context, stdout io.Writer, flags *exportFlags, path string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	doc, err := readDocument(path, flags.title)
	if err != nil {
		return err
	}

	cfg := config.Default()
	exporter := export.NewExporter(
		sandbox.NewChromeLauncher(flags.chrome, flags.noSandbox, cfg.PageSettings()),
		markup.NewRenderer(cfg.RenderPolicy()),
		export.WithTimeout(flags.timeout),
	)

	data, err := exporter.ExportDocument(ctx, doc)
	if err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}

	out := flags.output
	if out == "" {
		out = strings.TrimSuffix(path, filepath.Ext(path)) + ".pdf"
	}
	if out == path {
		return errors.New("output file matches input file")
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s: %d bytes\n", out, len(data))
	return nil
}
