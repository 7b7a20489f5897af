package markdown

import (
	"context"
	"encoding/hex"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"unicode"

	"github.com/zeebo/blake3"
)

// CategoryFile is the metadata file of a category directory.
const CategoryFile = "_category.md"

// CategoryDocument is one category directory with its item files.
type CategoryDocument struct {
	Dir         string
	FrontMatter FrontMatter
	Items       []*ItemDocument
}

// ItemDocument is one parsed item file.
type ItemDocument struct {
	Path        string
	Name        string
	FrontMatter FrontMatter
	Body        []byte
	Checksum    string
}

// Load reads the manual layout rooted at the top of fsys. Hidden entries
// and files in the root itself are ignored. Categories come back sorted by
// directory name and items by file name.
func Load(ctx context.Context, fsys fs.FS) ([]*CategoryDocument, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("markdown load: %w", err)
	}

	var categories []*CategoryDocument
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !entry.IsDir() || hidden(entry.Name()) {
			continue
		}
		category, err := loadCategory(ctx, fsys, entry.Name())
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Dir < categories[j].Dir })
	return categories, nil
}

func loadCategory(ctx context.Context, fsys fs.FS, dir string) (*CategoryDocument, error) {
	category := &CategoryDocument{Dir: dir}

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("markdown load %s: %w", dir, err)
	}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := entry.Name()
		if entry.IsDir() || hidden(name) || !strings.EqualFold(path.Ext(name), ".md") {
			continue
		}
		filePath := path.Join(dir, name)
		source, err := fs.ReadFile(fsys, filePath)
		if err != nil {
			return nil, fmt.Errorf("markdown read %s: %w", filePath, err)
		}
		meta, body, err := ParseFrontMatter(source)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filePath, err)
		}
		if name == CategoryFile {
			category.FrontMatter = meta
			continue
		}
		category.Items = append(category.Items, &ItemDocument{
			Path:        filePath,
			Name:        strings.TrimSuffix(name, path.Ext(name)),
			FrontMatter: meta,
			Body:        body,
			Checksum:    checksum(source),
		})
	}
	sort.Slice(category.Items, func(i, j int) bool { return category.Items[i].Path < category.Items[j].Path })
	return category, nil
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

func checksum(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// humanize turns a file or directory name into a title.
func humanize(name string) string {
	name = strings.NewReplacer("-", " ", "_", " ").Replace(strings.TrimSpace(name))
	words := strings.Fields(name)
	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
