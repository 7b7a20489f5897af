package markdown

import (
	"context"
	"fmt"
	"path"

	"github.com/goliatone/go-manual/internal/logging"
	"github.com/goliatone/go-manual/internal/render"
	"github.com/spf13/afero"
)

// ExportOptions tunes an export run.
type ExportOptions struct {
	// DryRun lists the files without writing them.
	DryRun bool
}

// ExportResult lists the files an export wrote.
type ExportResult struct {
	DryRun     bool     `json:"dryRun"`
	Categories int      `json:"categories"`
	Items      int      `json:"items"`
	Files      []string `json:"files"`
}

// Export writes every category and item to fsys in the layout Import
// reads. Markup items are converted to markdown; plain dialect items are
// written unchanged. Existing files with the same names are overwritten.
func (s *Service) Export(ctx context.Context, fsys afero.Fs, opts ExportOptions) (*ExportResult, error) {
	tree, err := s.catalog.Tree(ctx)
	if err != nil {
		return nil, err
	}

	result := &ExportResult{DryRun: opts.DryRun}
	for _, node := range tree {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		category := node.Category
		dir := category.Slug
		if !opts.DryRun {
			if err := fsys.MkdirAll(dir, 0o755); err != nil {
				return result, fmt.Errorf("markdown export %s: %w", dir, err)
			}
		}

		order := category.Rank
		meta := FrontMatter{
			Title:       category.Title,
			Slug:        category.Slug,
			Description: stringValue(category.Description),
			Order:       &order,
		}
		if err := s.writeFile(fsys, path.Join(dir, CategoryFile), meta, "", opts, result); err != nil {
			return result, err
		}
		result.Categories++

		for _, item := range node.Items {
			itemOrder := item.Rank
			meta := FrontMatter{
				Title:  item.Title,
				Slug:   item.Slug,
				Order:  &itemOrder,
				Format: FormatText,
			}
			body := item.Content
			if render.IsMarkup(item.Content) {
				converted, err := s.converter.ToMarkdown(item.Content)
				if err != nil {
					return result, fmt.Errorf("markdown export %s: %w", item.Slug, err)
				}
				meta.Format, body = FormatMarkdown, converted
			}
			if err := s.writeFile(fsys, path.Join(dir, item.Slug+".md"), meta, body, opts, result); err != nil {
				return result, err
			}
			result.Items++
		}
	}

	s.logger.Info("markdown.export.completed",
		"dry_run", opts.DryRun,
		"categories", result.Categories,
		"items", result.Items,
	)
	return result, nil
}

func (s *Service) writeFile(fsys afero.Fs, name string, meta FrontMatter, body string, opts ExportOptions, result *ExportResult) error {
	result.Files = append(result.Files, name)
	logging.WithMarkdownContext(s.logger, name, "export").Debug("markdown.export.file", "dry_run", opts.DryRun)
	if opts.DryRun {
		return nil
	}
	data, err := EncodeDocument(meta, body)
	if err != nil {
		return fmt.Errorf("markdown export %s: %w", name, err)
	}
	if err := afero.WriteFile(fsys, name, data, 0o644); err != nil {
		return fmt.Errorf("markdown export %s: %w", name, err)
	}
	return nil
}
