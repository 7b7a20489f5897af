package catalog

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-manual/internal/render"
	manualvalidation "github.com/goliatone/go-manual/internal/validation"
	"github.com/google/uuid"
	"github.com/sahilm/fuzzy"
)

// Suggestion is a fuzzy title match.
type Suggestion struct {
	ItemID     uuid.UUID `json:"itemId"`
	CategoryID uuid.UUID `json:"categoryId"`
	Title      string    `json:"title"`
	Score      int       `json:"score"`
}

func (s *service) Search(ctx context.Context, input SearchInput) ([]*Item, error) {
	input.Query = strings.TrimSpace(input.Query)
	if err := manualvalidation.FromOzzo(scope, validation.ValidateStruct(&input,
		validation.Field(&input.Query, manualvalidation.Query...),
	)); err != nil {
		return nil, err
	}

	records, err := s.items.SearchTitles(ctx, input.Query)
	if err != nil {
		return nil, err
	}
	results := cloneItems(records)
	sortItems(results)

	s.recordSearch(ctx, input.Query, len(results))
	return results, nil
}

// recordSearch never fails the search it belongs to.
func (s *service) recordSearch(ctx context.Context, query string, count int) {
	if s.searchLogs == nil || s.actor == nil {
		return
	}
	userID, ok := s.actor(ctx)
	if !ok || userID == uuid.Nil {
		return
	}
	entry := &SearchLog{
		ID:          s.id(),
		UserID:      userID,
		Query:       query,
		ResultCount: count,
		CreatedAt:   s.now().UTC(),
	}
	if _, err := s.searchLogs.Create(ctx, entry); err != nil {
		s.logger.Warn("catalog.search.log_failed", "user_id", userID, "error", err)
	}
}

func (s *service) Suggest(ctx context.Context, query string, limit int) ([]Suggestion, error) {
	query = strings.TrimSpace(query)
	if err := manualvalidation.FromOzzo(scope, validation.Validate(query, manualvalidation.Query...)); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.suggestLimit
	}

	items, err := s.items.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	sortItems(items)
	titles := make([]string, len(items))
	for i, item := range items {
		titles[i] = item.Title
	}

	matches := fuzzy.Find(query, titles)
	out := make([]Suggestion, 0, min(limit, len(matches)))
	for _, match := range matches {
		if len(out) == limit {
			break
		}
		item := items[match.Index]
		out = append(out, Suggestion{
			ItemID:     item.ID,
			CategoryID: item.CategoryID,
			Title:      match.Str,
			Score:      match.Score,
		})
	}
	return out, nil
}

func (s *service) ListSearchLogs(ctx context.Context) ([]*SearchLog, error) {
	if s.searchLogs == nil {
		return nil, ErrSearchLogDisabled
	}
	return s.searchLogs.List(ctx)
}

func (s *service) PruneSearchLogs(ctx context.Context, cutoff time.Time, dryRun bool) (int, error) {
	if s.searchLogs == nil {
		return 0, ErrSearchLogDisabled
	}
	if dryRun {
		return s.searchLogs.CountBefore(ctx, cutoff)
	}
	removed, err := s.searchLogs.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	s.logger.Info("catalog.search.logs_pruned", "removed", removed, "cutoff", cutoff)
	return removed, nil
}

// FilterTree keeps the categories whose title matches query or that hold an
// item whose title or readable content matches. Matching is a case
// insensitive substring test. Matching categories are kept whole and a
// blank query keeps everything.
func FilterTree(nodes []TreeNode, query string) []TreeNode {
	needle := strings.ToLower(strings.TrimSpace(query))
	out := make([]TreeNode, 0, len(nodes))
	for _, node := range nodes {
		if needle == "" || nodeMatches(node, needle) {
			out = append(out, node)
		}
	}
	return out
}

func nodeMatches(node TreeNode, needle string) bool {
	if node.Category != nil && strings.Contains(strings.ToLower(node.Category.Title), needle) {
		return true
	}
	for _, item := range node.Items {
		if item == nil {
			continue
		}
		if strings.Contains(strings.ToLower(item.Title), needle) {
			return true
		}
		if strings.Contains(strings.ToLower(render.PlainText(item.Content)), needle) {
			return true
		}
	}
	return false
}
