package markdown

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/goliatone/go-manual/internal/catalog"
	"github.com/goliatone/go-manual/internal/identity"
	"github.com/goliatone/go-manual/internal/logging"
	"github.com/goliatone/go-slug"
	"github.com/google/uuid"
)

// Import operations reported per file.
const (
	OpCreate    = "create"
	OpUpdate    = "update"
	OpUnchanged = "unchanged"
)

// ImportOptions tunes an import run.
type ImportOptions struct {
	// DryRun reports what would change without writing.
	DryRun bool
}

// Action is the outcome for one category or item file.
type Action struct {
	Kind string    `json:"kind"`
	Path string    `json:"path"`
	Slug string    `json:"slug"`
	ID   uuid.UUID `json:"id"`
	Op   string    `json:"op"`
}

// ImportResult summarises an import run.
type ImportResult struct {
	DryRun    bool     `json:"dryRun"`
	Created   int      `json:"created"`
	Updated   int      `json:"updated"`
	Unchanged int      `json:"unchanged"`
	Actions   []Action `json:"actions"`
	Errors    []error  `json:"-"`
}

func (r *ImportResult) record(action Action) {
	switch action.Op {
	case OpCreate:
		r.Created++
	case OpUpdate:
		r.Updated++
	default:
		r.Unchanged++
	}
	r.Actions = append(r.Actions, action)
}

// Err joins the per file errors.
func (r *ImportResult) Err() error {
	return errors.Join(r.Errors...)
}

// Import loads the layout in fsys into the catalog. Categories and items
// are matched by slug so repeated imports update in place; new records get
// ids derived from their slugs. A failing file is reported and the run
// continues with the next one.
func (s *Service) Import(ctx context.Context, fsys fs.FS, opts ImportOptions) (*ImportResult, error) {
	docs, err := Load(ctx, fsys)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{DryRun: opts.DryRun}
	for index, doc := range docs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		category, err := s.importCategory(ctx, doc, index, opts, result)
		if err != nil {
			result.Errors = append(result.Errors, err)
			continue
		}
		for itemIndex, item := range doc.Items {
			if err := s.importItem(ctx, category, item, itemIndex, opts, result); err != nil {
				result.Errors = append(result.Errors, err)
			}
		}
	}

	s.logger.Info("markdown.import.completed",
		"dry_run", opts.DryRun,
		"created", result.Created,
		"updated", result.Updated,
		"unchanged", result.Unchanged,
		"errors", len(result.Errors),
	)
	return result, result.Err()
}

// importedCategory is the category an item file lands in. Exists is false
// for categories a dry run would create.
type importedCategory struct {
	ID     uuid.UUID
	Exists bool
}

func (s *Service) importCategory(ctx context.Context, doc *CategoryDocument, index int, opts ImportOptions, result *ImportResult) (importedCategory, error) {
	meta := doc.FrontMatter
	categorySlug, err := normalizeSlug(meta.Slug, doc.Dir)
	if err != nil {
		return importedCategory{}, fmt.Errorf("%s: %w", doc.Dir, err)
	}
	title := meta.Title
	if title == "" {
		title = humanize(doc.Dir)
	}
	rank := meta.Rank(index)
	logger := logging.WithMarkdownContext(s.logger, doc.Dir, "category")

	existing, err := s.catalog.GetCategoryBySlug(ctx, categorySlug)
	if err != nil && !isNotFound(err) {
		return importedCategory{}, fmt.Errorf("%s: %w", doc.Dir, err)
	}

	action := Action{Kind: "category", Path: doc.Dir, Slug: categorySlug}
	if existing == nil {
		id := identity.CategoryUUID(categorySlug)
		action.ID, action.Op = id, OpCreate
		if !opts.DryRun {
			created, err := s.catalog.CreateCategory(ctx, catalog.CreateCategoryInput{
				ID:          &id,
				Title:       title,
				Description: optionalString(meta.Description),
				Rank:        rank,
				Slug:        categorySlug,
			})
			if err != nil {
				return importedCategory{}, fmt.Errorf("%s: %w", doc.Dir, err)
			}
			action.ID = created.ID
		}
		logger.Debug("markdown.import.category", "op", action.Op, "slug", categorySlug)
		result.record(action)
		return importedCategory{ID: action.ID, Exists: !opts.DryRun}, nil
	}

	action.ID = existing.ID
	update := catalog.UpdateCategoryInput{ID: existing.ID}
	changed := false
	if existing.Title != title {
		update.Title, changed = &title, true
	}
	if stringValue(existing.Description) != meta.Description {
		description := meta.Description
		update.Description, changed = &description, true
	}
	if existing.Rank != rank {
		update.Rank, changed = &rank, true
	}

	action.Op = OpUnchanged
	if changed {
		action.Op = OpUpdate
		if !opts.DryRun {
			if _, err := s.catalog.UpdateCategory(ctx, update); err != nil {
				return importedCategory{}, fmt.Errorf("%s: %w", doc.Dir, err)
			}
		}
	}
	logger.Debug("markdown.import.category", "op", action.Op, "slug", categorySlug)
	result.record(action)
	return importedCategory{ID: existing.ID, Exists: true}, nil
}

func (s *Service) importItem(ctx context.Context, category importedCategory, doc *ItemDocument, index int, opts ImportOptions, result *ImportResult) error {
	meta := doc.FrontMatter
	itemSlug, err := normalizeSlug(meta.Slug, doc.Name)
	if err != nil {
		return fmt.Errorf("%s: %w", doc.Path, err)
	}
	title := meta.Title
	if title == "" {
		title = humanize(doc.Name)
	}
	content, err := s.content(meta, doc.Body)
	if err != nil {
		return fmt.Errorf("%s: %w", doc.Path, err)
	}
	rank := meta.Rank(index)
	logger := logging.WithMarkdownContext(s.logger, doc.Path, "item")

	var existing *catalog.Item
	if category.Exists {
		existing, err = s.catalog.GetItemBySlug(ctx, category.ID, itemSlug)
		if err != nil && !isNotFound(err) {
			return fmt.Errorf("%s: %w", doc.Path, err)
		}
	}

	action := Action{Kind: "item", Path: doc.Path, Slug: itemSlug}
	if existing == nil {
		id := identity.ItemUUID(category.ID, itemSlug)
		action.ID, action.Op = id, OpCreate
		if !opts.DryRun {
			created, err := s.catalog.CreateItem(ctx, catalog.CreateItemInput{
				ID:         &id,
				CategoryID: category.ID,
				Title:      title,
				Content:    content,
				Rank:       rank,
				Slug:       itemSlug,
			})
			if err != nil {
				return fmt.Errorf("%s: %w", doc.Path, err)
			}
			action.ID = created.ID
		}
		logger.Debug("markdown.import.item", "op", action.Op, "slug", itemSlug, "checksum", doc.Checksum)
		result.record(action)
		return nil
	}

	action.ID = existing.ID
	update := catalog.UpdateItemInput{ID: existing.ID}
	changed := false
	if existing.Title != title {
		update.Title, changed = &title, true
	}
	if existing.Content != content {
		update.Content, changed = &content, true
	}
	if existing.Rank != rank {
		update.Rank, changed = &rank, true
	}

	action.Op = OpUnchanged
	if changed {
		action.Op = OpUpdate
		if !opts.DryRun {
			if _, err := s.catalog.UpdateItem(ctx, update); err != nil {
				return fmt.Errorf("%s: %w", doc.Path, err)
			}
		}
	}
	logger.Debug("markdown.import.item", "op", action.Op, "slug", itemSlug, "checksum", doc.Checksum)
	result.record(action)
	return nil
}

// content converts a file body into stored item content.
func (s *Service) content(meta FrontMatter, body []byte) (string, error) {
	switch meta.NormalizedFormat() {
	case FormatMarkdown:
		return s.converter.ToHTML(body)
	default:
		return strings.TrimSpace(string(body)), nil
	}
}

func normalizeSlug(explicit, fallback string) (string, error) {
	value := strings.TrimSpace(explicit)
	if value == "" {
		value = fallback
	}
	normalized, err := slug.Normalize(value)
	if err != nil || normalized == "" {
		return "", fmt.Errorf("%w: %q", catalog.ErrSlugInvalid, value)
	}
	return normalized, nil
}

func isNotFound(err error) bool {
	var nf *catalog.NotFoundError
	return errors.As(err, &nf)
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func stringValue(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
