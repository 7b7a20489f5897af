package markdowncmd

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-manual/internal/markdown"
)

type stubService struct {
	importDir  string
	importOpts markdown.ImportOptions
	exportDir  string
	importErr  error
}

func (s *stubService) ImportDir(_ context.Context, dir string, opts markdown.ImportOptions) (*markdown.ImportResult, error) {
	s.importDir, s.importOpts = dir, opts
	return &markdown.ImportResult{DryRun: opts.DryRun, Created: 2}, s.importErr
}

func (s *stubService) ExportDir(_ context.Context, dir string, opts markdown.ExportOptions) (*markdown.ExportResult, error) {
	s.exportDir = dir
	return &markdown.ExportResult{DryRun: opts.DryRun, Categories: 1, Items: 3}, nil
}

func TestImportHandlerRunsImport(t *testing.T) {
	svc := &stubService{}
	var reported *markdown.ImportResult
	handler := NewImportHandler(svc, nil, WithImportReporter(func(result *markdown.ImportResult) {
		reported = result
	}))

	if err := handler.Execute(context.Background(), ImportMarkdownCommand{Directory: "docs", DryRun: true}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if svc.importDir != "docs" || !svc.importOpts.DryRun {
		t.Fatalf("unexpected call dir=%q opts=%+v", svc.importDir, svc.importOpts)
	}
	if reported == nil || reported.Created != 2 {
		t.Fatalf("expected reported result, got %+v", reported)
	}
}

func TestImportHandlerReportsPartialResults(t *testing.T) {
	svc := &stubService{importErr: errors.New("broken file")}
	reported := false
	handler := NewImportHandler(svc, nil, WithImportReporter(func(*markdown.ImportResult) { reported = true }))

	err := handler.Execute(context.Background(), ImportMarkdownCommand{Directory: "docs"})
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command error, got %v", err)
	}
	if !reported {
		t.Fatal("expected partial result to be reported")
	}
}

func TestImportHandlerRequiresDirectory(t *testing.T) {
	handler := NewImportHandler(&stubService{}, nil)
	err := handler.Execute(context.Background(), ImportMarkdownCommand{Directory: "  "})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestExportHandlerRunsExport(t *testing.T) {
	svc := &stubService{}
	var reported *markdown.ExportResult
	handler := NewExportHandler(svc, nil, WithExportReporter(func(result *markdown.ExportResult) {
		reported = result
	}))

	if err := handler.Execute(context.Background(), ExportMarkdownCommand{Directory: "out"}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if svc.exportDir != "out" {
		t.Fatalf("expected export to out, got %q", svc.exportDir)
	}
	if reported == nil || reported.Items != 3 {
		t.Fatalf("expected reported result, got %+v", reported)
	}
	if got := handler.CLIOptions().Path; len(got) != 2 || got[1] != "export" {
		t.Fatalf("unexpected cli path %v", got)
	}
}
