package catalog

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-slug"
)

const maxSlugAttempts = 100

// resolveSlug returns explicit when it is free, failing with conflict when it
// is taken. Without an explicit slug one is derived from title and suffixed
// until it is free.
func resolveSlug(explicit, title string, conflict error, exists func(string) (bool, error)) (string, error) {
	if trimmed := strings.TrimSpace(explicit); trimmed != "" {
		normalized, err := slug.Normalize(trimmed)
		if err != nil || normalized == "" || !slug.IsValid(normalized) {
			return "", fmt.Errorf("%w: %q", ErrSlugInvalid, trimmed)
		}
		taken, err := exists(normalized)
		if err != nil {
			return "", err
		}
		if taken {
			return "", conflict
		}
		return normalized, nil
	}

	base, err := slug.Normalize(title)
	if err != nil || base == "" {
		base = "entry"
	}
	candidate := base
	for attempt := 2; attempt <= maxSlugAttempts+1; attempt++ {
		taken, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, attempt)
	}
	return "", conflict
}
