package markdown_test

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-manual/internal/catalog"
	"github.com/goliatone/go-manual/internal/identity"
	"github.com/goliatone/go-manual/internal/markdown"
	"github.com/goliatone/go-manual/internal/validation"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalog() catalog.Service {
	return catalog.NewService(
		catalog.NewMemoryCategoryRepository(),
		catalog.NewMemoryItemRepository(),
		catalog.NewMemoryItemImageRepository(),
	)
}

func manualFS() fstest.MapFS {
	return fstest.MapFS{
		"README.md":                {Data: []byte("ignored")},
		".git/config":              {Data: []byte("ignored")},
		"setup/_category.md":       {Data: []byte("---\ntitle: Getting Set Up\ndescription: First steps\norder: 2\n---\n")},
		"setup/install.md":         {Data: []byte("---\ntitle: Install\norder: 1\nformat: markdown\n---\n# Steps\n\nRun *it*.\n")},
		"setup/faq.md":             {Data: []byte("**Q**\n- a\n")},
		"setup/notes.txt":          {Data: []byte("ignored")},
		"billing-info/invoices.md": {Data: []byte("---\nslug: invoice-help\n---\nPlain text\n")},
	}
}

func TestImportCreatesCategoriesAndItems(t *testing.T) {
	ctx := context.Background()
	svc := newCatalog()
	importer := markdown.NewService(svc)

	result, err := importer.Import(ctx, manualFS(), markdown.ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 5, result.Created)
	assert.Zero(t, result.Updated)

	setup, err := svc.GetCategoryBySlug(ctx, "setup")
	require.NoError(t, err)
	assert.Equal(t, identity.CategoryUUID("setup"), setup.ID)
	assert.Equal(t, "Getting Set Up", setup.Title)
	assert.Equal(t, 2, setup.Rank)
	require.NotNil(t, setup.Description)
	assert.Equal(t, "First steps", *setup.Description)

	billing, err := svc.GetCategoryBySlug(ctx, "billing-info")
	require.NoError(t, err)
	assert.Equal(t, "Billing Info", billing.Title)

	install, err := svc.GetItemBySlug(ctx, setup.ID, "install")
	require.NoError(t, err)
	assert.Equal(t, identity.ItemUUID(setup.ID, "install"), install.ID)
	assert.Equal(t, 1, install.Rank)
	assert.Contains(t, install.Content, "<em>it</em>")
	assert.Contains(t, install.Content, "Steps</h1>")

	faq, err := svc.GetItemBySlug(ctx, setup.ID, "faq")
	require.NoError(t, err)
	assert.Equal(t, "Faq", faq.Title)
	assert.Equal(t, "**Q**\n- a", faq.Content)

	invoices, err := svc.GetItemBySlug(ctx, billing.ID, "invoice-help")
	require.NoError(t, err)
	assert.Equal(t, "Plain text", invoices.Content)
}

func TestImportIsRepeatable(t *testing.T) {
	ctx := context.Background()
	svc := newCatalog()
	importer := markdown.NewService(svc)
	fsys := manualFS()

	_, err := importer.Import(ctx, fsys, markdown.ImportOptions{})
	require.NoError(t, err)

	again, err := importer.Import(ctx, fsys, markdown.ImportOptions{})
	require.NoError(t, err)
	assert.Zero(t, again.Created)
	assert.Zero(t, again.Updated)
	assert.Equal(t, 5, again.Unchanged)

	fsys["setup/faq.md"] = &fstest.MapFile{Data: []byte("**Q**\n- a\n- b\n")}
	changed, err := importer.Import(ctx, fsys, markdown.ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, changed.Updated)

	setup, err := svc.GetCategoryBySlug(ctx, "setup")
	require.NoError(t, err)
	faq, err := svc.GetItemBySlug(ctx, setup.ID, "faq")
	require.NoError(t, err)
	assert.Equal(t, "**Q**\n- a\n- b", faq.Content)
}

func TestImportDryRunWritesNothing(t *testing.T) {
	ctx := context.Background()
	svc := newCatalog()
	importer := markdown.NewService(svc)

	result, err := importer.Import(ctx, manualFS(), markdown.ImportOptions{DryRun: true})
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.Equal(t, 5, result.Created)

	categories, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Empty(t, categories)
}

func TestImportFailsOnMalformedFrontMatter(t *testing.T) {
	ctx := context.Background()
	svc := newCatalog()
	fsys := manualFS()
	fsys["setup/broken.md"] = &fstest.MapFile{Data: []byte("---\ntitle: [unclosed\n---\nbody")}

	result, err := markdown.NewService(svc).Import(ctx, fsys, markdown.ImportOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "setup/broken.md")
	assert.Nil(t, result)
}

func TestExportWritesLayout(t *testing.T) {
	ctx := context.Background()
	svc := newCatalog()
	category, err := svc.CreateCategory(ctx, catalog.CreateCategoryInput{Title: "Setup", Rank: 1})
	require.NoError(t, err)
	_, err = svc.CreateItem(ctx, catalog.CreateItemInput{CategoryID: category.ID, Title: "Install", Content: "**Steps**\n- run"})
	require.NoError(t, err)
	_, err = svc.CreateItem(ctx, catalog.CreateItemInput{CategoryID: category.ID, Title: "Rich", Content: "<p>Hello <strong>there</strong></p>", Rank: 1})
	require.NoError(t, err)

	fsys := afero.NewMemMapFs()
	result, err := markdown.NewService(svc).Export(ctx, fsys, markdown.ExportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Categories)
	assert.Equal(t, 2, result.Items)
	assert.Equal(t, []string{"setup/_category.md", "setup/install.md", "setup/rich.md"}, result.Files)

	plain, err := afero.ReadFile(fsys, "setup/install.md")
	require.NoError(t, err)
	meta, body, err := markdown.ParseFrontMatter(plain)
	require.NoError(t, err)
	assert.Equal(t, "Install", meta.Title)
	assert.Equal(t, markdown.FormatText, meta.Format)
	assert.Equal(t, "**Steps**\n- run", strings.TrimSpace(string(body)))

	rich, err := afero.ReadFile(fsys, "setup/rich.md")
	require.NoError(t, err)
	meta, body, err = markdown.ParseFrontMatter(rich)
	require.NoError(t, err)
	assert.Equal(t, markdown.FormatMarkdown, meta.Format)
	assert.Equal(t, "Hello **there**", strings.TrimSpace(string(body)))
}

func TestExportThenImportRoundTrips(t *testing.T) {
	ctx := context.Background()
	source := newCatalog()
	category, err := source.CreateCategory(ctx, catalog.CreateCategoryInput{Title: "Setup"})
	require.NoError(t, err)
	_, err = source.CreateItem(ctx, catalog.CreateItemInput{CategoryID: category.ID, Title: "Install", Content: "**Steps**\n- run", Rank: 3})
	require.NoError(t, err)

	fsys := afero.NewMemMapFs()
	_, err = markdown.NewService(source).Export(ctx, fsys, markdown.ExportOptions{})
	require.NoError(t, err)

	target := newCatalog()
	result, err := markdown.NewService(target).Import(ctx, afero.NewIOFS(fsys), markdown.ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)

	imported, err := target.GetCategoryBySlug(ctx, "setup")
	require.NoError(t, err)
	item, err := target.GetItemBySlug(ctx, imported.ID, "install")
	require.NoError(t, err)
	assert.Equal(t, "Install", item.Title)
	assert.Equal(t, "**Steps**\n- run", item.Content)
	assert.Equal(t, 3, item.Rank)
}

func TestExportDryRunLeavesFilesystemEmpty(t *testing.T) {
	ctx := context.Background()
	svc := newCatalog()
	_, err := svc.CreateCategory(ctx, catalog.CreateCategoryInput{Title: "Setup"})
	require.NoError(t, err)

	fsys := afero.NewMemMapFs()
	result, err := markdown.NewService(svc).Export(ctx, fsys, markdown.ExportOptions{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"setup/_category.md"}, result.Files)

	exists, err := afero.Exists(fsys, "setup/_category.md")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFrontMatterRoundTrip(t *testing.T) {
	order := 4
	data, err := markdown.EncodeDocument(markdown.FrontMatter{Title: "A: B", Slug: "a-b", Order: &order, Format: "markdown"}, "body\n")
	require.NoError(t, err)

	meta, body, err := markdown.ParseFrontMatter(data)
	require.NoError(t, err)
	assert.Equal(t, "A: B", meta.Title)
	assert.Equal(t, "a-b", meta.Slug)
	assert.Equal(t, 4, meta.Rank(0))
	assert.Equal(t, markdown.FormatMarkdown, meta.NormalizedFormat())
	assert.Equal(t, "body", strings.TrimSpace(string(body)))
}

func TestFrontMatterDefaults(t *testing.T) {
	meta, body, err := markdown.ParseFrontMatter([]byte("just text"))
	require.NoError(t, err)
	assert.Equal(t, 7, meta.Rank(7))
	assert.Equal(t, markdown.FormatText, meta.NormalizedFormat())
	assert.Equal(t, "just text", string(body))
}

func TestConverter(t *testing.T) {
	converter := markdown.NewConverter()
	html, err := converter.ToHTML([]byte("# Title\n\nSome *em* and <script>x()</script>"))
	require.NoError(t, err)
	assert.Contains(t, html, `<h1 id="title">Title</h1>`)
	assert.Contains(t, html, "<em>em</em>")
	assert.NotContains(t, html, "<script>")

	md, err := converter.ToMarkdown("<h2>Setup</h2><ul><li>one</li></ul>")
	require.NoError(t, err)
	assert.Contains(t, md, "## Setup")
	assert.Contains(t, md, "- one")
}

func TestFrontMatterSchemaRejectsInvalidValues(t *testing.T) {
	cases := map[string]struct {
		source string
		field  string
	}{
		"negative order": {source: "---\norder: -1\n---\nbody", field: "order"},
		"unknown format": {source: "---\nformat: rtf\n---\nbody", field: "format"},
		"slug with path": {source: "---\nslug: a/b\n---\nbody", field: "slug"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := markdown.ParseFrontMatter([]byte(tc.source))
			require.ErrorIs(t, err, validation.ErrInvalid)
			issues := validation.Issues(err)
			require.NotEmpty(t, issues)
			assert.Equal(t, tc.field, issues[0].Field)
		})
	}

	meta, _, err := markdown.ParseFrontMatter([]byte("---\nformat: MD\n---\nbody"))
	require.NoError(t, err)
	assert.Equal(t, markdown.FormatMarkdown, meta.NormalizedFormat())
}
