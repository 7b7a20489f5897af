package files

import (
	"sort"
	"strings"
)

func cloneFile(src *File) *File {
	if src == nil {
		return nil
	}
	cloned := *src
	if src.MimeType != nil {
		v := *src.MimeType
		cloned.MimeType = &v
	}
	if src.Size != nil {
		v := *src.Size
		cloned.Size = &v
	}
	if src.Description != nil {
		v := *src.Description
		cloned.Description = &v
	}
	return &cloned
}

func cloneFiles(src []*File) []*File {
	out := make([]*File, 0, len(src))
	for _, record := range src {
		out = append(out, cloneFile(record))
	}
	return out
}

// sortFiles orders newest first.
func sortFiles(records []*File) {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		if records[i].Name != records[j].Name {
			return records[i].Name < records[j].Name
		}
		return records[i].ID.String() < records[j].ID.String()
	})
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// Filter keeps the files whose name or description contains query, ignoring
// case. A blank query keeps everything.
func Filter(records []*File, query string) []*File {
	needle := strings.ToLower(strings.TrimSpace(query))
	out := make([]*File, 0, len(records))
	for _, record := range records {
		if record == nil {
			continue
		}
		if needle == "" || strings.Contains(strings.ToLower(record.Name), needle) {
			out = append(out, record)
			continue
		}
		if record.Description != nil && strings.Contains(strings.ToLower(*record.Description), needle) {
			out = append(out, record)
		}
	}
	return out
}
