package main

import (
	"fmt"
	"io"

	markdowncmd "github.com/goliatone/go-manual/internal/commands/markdown"
	"github.com/goliatone/go-manual/internal/markdown"
	"github.com/spf13/cobra"
)

func (a *app) importCommand() *cobra.Command {
	var dir string
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a markdown content tree into the manual",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dir == "" {
				dir = a.cfg.Markdown.ContentDir
			}
			module, logger, err := a.module(cmd.Context())
			if err != nil {
				return err
			}
			defer module.Close()

			out := cmd.OutOrStdout()
			handler := markdowncmd.NewImportHandler(module.Markdown(), logger,
				markdowncmd.WithImportReporter(func(result *markdown.ImportResult) {
					printImport(out, result)
				}),
			)
			return dispatch(cmd.Context(), handler, markdowncmd.ImportMarkdownCommand{Directory: dir, DryRun: dryRun})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "content directory (defaults to markdown.content_dir)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report changes without writing")
	return cmd
}

func (a *app) exportCommand() *cobra.Command {
	var dir string
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the manual out as a markdown content tree",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dir == "" {
				dir = a.cfg.Markdown.ContentDir
			}
			module, logger, err := a.module(cmd.Context())
			if err != nil {
				return err
			}
			defer module.Close()

			out := cmd.OutOrStdout()
			handler := markdowncmd.NewExportHandler(module.Markdown(), logger,
				markdowncmd.WithExportReporter(func(result *markdown.ExportResult) {
					for _, path := range result.Files {
						fmt.Fprintln(out, path)
					}
					fmt.Fprintf(out, "categories=%d items=%d dry_run=%t\n", result.Categories, result.Items, result.DryRun)
				}),
			)
			return dispatch(cmd.Context(), handler, markdowncmd.ExportMarkdownCommand{Directory: dir, DryRun: dryRun})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "output directory (defaults to markdown.content_dir)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list files without writing")
	return cmd
}

func printImport(out io.Writer, result *markdown.ImportResult) {
	for _, action := range result.Actions {
		fmt.Fprintf(out, "%-9s %s %s\n", action.Op, action.Kind, action.Path)
	}
	fmt.Fprintf(out, "created=%d updated=%d unchanged=%d dry_run=%t\n", result.Created, result.Updated, result.Unchanged, result.DryRun)
}
