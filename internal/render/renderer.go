package render

import "context"

type Renderer interface {
	RenderFeed(ctx context.Context, page FeedPage) ([]byte, error)
	RenderPost(ctx context.Context, page PostPage) ([]byte, error)
	RenderNotFound(ctx context.Context, page NotFoundPage) ([]byte, error)
	RenderTagsPage(ctx context.Context, page TagsPage) ([]byte, error)
	RenderCategoriesPage(ctx context.Context, page CategoriesPage) ([]byte, error)
	RenderJoin(ctx context.Context, page JoinPage) ([]byte, error)
}
