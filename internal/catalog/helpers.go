package catalog

import (
	"sort"
	"strings"
)

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	cloned := strings.Clone(*value)
	return &cloned
}

func cloneInt64(value *int64) *int64 {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneCategory(src *Category) *Category {
	if src == nil {
		return nil
	}
	cloned := *src
	cloned.Description = cloneString(src.Description)
	cloned.Items = nil
	return &cloned
}

func cloneItem(src *Item) *Item {
	if src == nil {
		return nil
	}
	cloned := *src
	cloned.Category = nil
	return &cloned
}

func cloneItemImage(src *ItemImage) *ItemImage {
	if src == nil {
		return nil
	}
	cloned := *src
	cloned.MimeType = cloneString(src.MimeType)
	cloned.Size = cloneInt64(src.Size)
	return &cloned
}

func cloneCategories(src []*Category) []*Category {
	out := make([]*Category, 0, len(src))
	for _, c := range src {
		out = append(out, cloneCategory(c))
	}
	return out
}

func cloneItems(src []*Item) []*Item {
	out := make([]*Item, 0, len(src))
	for _, item := range src {
		out = append(out, cloneItem(item))
	}
	return out
}

func cloneItemImages(src []*ItemImage) []*ItemImage {
	out := make([]*ItemImage, 0, len(src))
	for _, img := range src {
		out = append(out, cloneItemImage(img))
	}
	return out
}

// sortCategories orders by rank, then title, then id so ties stay stable
// across backends.
func sortCategories(records []*Category) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Rank != b.Rank {
			return a.Rank < b.Rank
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return a.ID.String() < b.ID.String()
	})
}

func sortItems(records []*Item) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Rank != b.Rank {
			return a.Rank < b.Rank
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return a.ID.String() < b.ID.String()
	})
}

func sortImages(records []*ItemImage) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Rank != b.Rank {
			return a.Rank < b.Rank
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
}
