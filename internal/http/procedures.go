package http

import (
	"context"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-manual/internal/auth"
	"github.com/goliatone/go-manual/internal/catalog"
	"github.com/goliatone/go-manual/internal/files"
	"github.com/goliatone/go-manual/internal/render"
	"github.com/goliatone/go-manual/internal/users"
	manualvalidation "github.com/goliatone/go-manual/internal/validation"
	"github.com/google/uuid"
)

type none struct{}

type idInput struct {
	ID uuid.UUID `json:"id"`
}

func (in idInput) Validate() error {
	return ozzo.ValidateStruct(&in, ozzo.Field(&in.ID, manualvalidation.RequiredUUID))
}

type categoryInput struct {
	CategoryID uuid.UUID `json:"categoryId"`
}

func (in categoryInput) Validate() error {
	return ozzo.ValidateStruct(&in, ozzo.Field(&in.CategoryID, manualvalidation.RequiredUUID))
}

type treeInput struct {
	Query string `json:"query,omitempty"`
}

type suggestInput struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

func (in suggestInput) Validate() error {
	return ozzo.ValidateStruct(&in, ozzo.Field(&in.Limit, ozzo.Min(0), ozzo.Max(50)))
}

type imageOrderInput struct {
	ID    uuid.UUID `json:"id"`
	Order int       `json:"order"`
}

func (in imageOrderInput) Validate() error {
	return ozzo.ValidateStruct(&in, ozzo.Field(&in.ID, manualvalidation.RequiredUUID))
}

type previewInput struct {
	Content string `json:"content"`
}

type fileListInput struct {
	Query string `json:"query,omitempty"`
}

type fileKeyInput struct {
	Key string `json:"key"`
}

func (in fileKeyInput) Validate() error {
	return ozzo.ValidateStruct(&in, ozzo.Field(&in.Key, ozzo.Required, ozzo.RuneLength(1, 512)))
}

type searchResult struct {
	Items       []*catalog.Item      `json:"items"`
	Suggestions []catalog.Suggestion `json:"suggestions,omitempty"`
}

type downloadURL struct {
	URL string `json:"url"`
}

type deleted struct {
	Success bool `json:"success"`
}

type session struct {
	Actor auth.Actor  `json:"actor"`
	User  *users.User `json:"user,omitempty"`
}

func (api *API) manualProcedures() []Procedure {
	svc := api.catalog
	return []Procedure{
		Query("manual.getCategories", AccessPublic, func(ctx context.Context, _ none) ([]*catalog.Category, error) {
			return svc.ListCategories(ctx)
		}),
		Query("manual.getTree", AccessPublic, func(ctx context.Context, in treeInput) ([]catalog.TreeNode, error) {
			nodes, err := svc.Tree(ctx)
			if err != nil {
				return nil, err
			}
			return catalog.FilterTree(nodes, in.Query), nil
		}),
		Query("manual.getItemsByCategory", AccessPublic, func(ctx context.Context, in categoryInput) ([]*catalog.Item, error) {
			return svc.ListItems(ctx, in.CategoryID)
		}),
		Query("manual.getItem", AccessPublic, func(ctx context.Context, in idInput) (*catalog.Item, error) {
			return svc.GetItem(ctx, in.ID)
		}),
		Query("manual.renderItem", AccessPublic, func(ctx context.Context, in idInput) (*catalog.ItemView, error) {
			return svc.RenderItem(ctx, in.ID)
		}),
		Query("manual.search", AccessPublic, func(ctx context.Context, in catalog.SearchInput) (searchResult, error) {
			items, err := svc.Search(ctx, in)
			if err != nil {
				return searchResult{}, err
			}
			out := searchResult{Items: items}
			if len(items) == 0 {
				suggestions, err := svc.Suggest(ctx, in.Query, 0)
				if err != nil {
					api.logger.Warn("http.search.suggest_failed", "error", err)
				}
				out.Suggestions = suggestions
			}
			return out, nil
		}),
		Query("manual.suggest", AccessPublic, func(ctx context.Context, in suggestInput) ([]catalog.Suggestion, error) {
			return svc.Suggest(ctx, in.Query, in.Limit)
		}),
		Query("manual.getItemImages", AccessPublic, func(ctx context.Context, in idInput) ([]*catalog.ItemImage, error) {
			return svc.ListItemImages(ctx, in.ID)
		}),

		Mutation("manual.createCategory", AccessAdmin, func(ctx context.Context, in catalog.CreateCategoryInput) (*catalog.Category, error) {
			return svc.CreateCategory(ctx, in)
		}),
		Mutation("manual.updateCategory", AccessAdmin, func(ctx context.Context, in catalog.UpdateCategoryInput) (*catalog.Category, error) {
			return svc.UpdateCategory(ctx, in)
		}),
		Mutation("manual.deleteCategory", AccessAdmin, func(ctx context.Context, in idInput) (deleted, error) {
			if err := svc.DeleteCategory(ctx, in.ID); err != nil {
				return deleted{}, err
			}
			return deleted{Success: true}, nil
		}),
		Mutation("manual.createItem", AccessAdmin, func(ctx context.Context, in catalog.CreateItemInput) (*catalog.Item, error) {
			return svc.CreateItem(ctx, in)
		}),
		Mutation("manual.updateItem", AccessAdmin, func(ctx context.Context, in catalog.UpdateItemInput) (*catalog.Item, error) {
			return svc.UpdateItem(ctx, in)
		}),
		Mutation("manual.deleteItem", AccessAdmin, func(ctx context.Context, in idInput) (deleted, error) {
			if err := svc.DeleteItem(ctx, in.ID); err != nil {
				return deleted{}, err
			}
			return deleted{Success: true}, nil
		}),
		Mutation("manual.createItemImage", AccessAdmin, func(ctx context.Context, in catalog.CreateItemImageInput) (*catalog.ItemImage, error) {
			return svc.CreateItemImage(ctx, in)
		}),
		Mutation("manual.deleteItemImage", AccessAdmin, func(ctx context.Context, in idInput) (deleted, error) {
			if err := svc.DeleteItemImage(ctx, in.ID); err != nil {
				return deleted{}, err
			}
			return deleted{Success: true}, nil
		}),
		Mutation("manual.updateItemImageOrder", AccessAdmin, func(ctx context.Context, in imageOrderInput) (*catalog.ItemImage, error) {
			return svc.ReorderItemImage(ctx, in.ID, in.Order)
		}),
		Mutation("manual.preview", AccessAdmin, func(_ context.Context, in previewInput) (render.Output, error) {
			return api.renderer.Render(in.Content), nil
		}),
		Query("manual.getSearchLogs", AccessAdmin, func(ctx context.Context, _ none) ([]*catalog.SearchLog, error) {
			return svc.ListSearchLogs(ctx)
		}),
	}
}

func (api *API) fileProcedures() []Procedure {
	svc := api.files
	return []Procedure{
		Query("files.list", AccessProtected, func(ctx context.Context, in fileListInput) ([]*files.File, error) {
			records, err := svc.List(ctx)
			if err != nil {
				return nil, err
			}
			return files.Filter(records, in.Query), nil
		}),
		Query("files.getDownloadUrl", AccessProtected, func(ctx context.Context, in fileKeyInput) (downloadURL, error) {
			url, err := svc.DownloadURL(ctx, in.Key)
			if err != nil {
				return downloadURL{}, err
			}
			return downloadURL{URL: url}, nil
		}),
		Mutation("files.delete", AccessProtected, func(ctx context.Context, in idInput) (deleted, error) {
			if err := svc.Delete(ctx, in.ID); err != nil {
				return deleted{}, err
			}
			return deleted{Success: true}, nil
		}),
	}
}

// auth.me answers null for anonymous callers.
func (api *API) authProcedures() []Procedure {
	return []Procedure{
		Query("auth.me", AccessPublic, func(ctx context.Context, _ none) (*session, error) {
			actor, ok := auth.ActorFromContext(ctx)
			if !ok {
				return nil, nil
			}
			out := &session{Actor: actor}
			if api.users != nil {
				user, err := api.users.Get(ctx, actor.UserID)
				if err != nil {
					return nil, err
				}
				out.User = user
			}
			return out, nil
		}),
	}
}
