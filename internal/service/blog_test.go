package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/propnest/internal/domain"
	"github.com/pkordes/propnest/internal/service"
	"github.com/pkordes/propnest/internal/slug"
)

func echoBlogCreate(_ context.Context, p domain.BlogPost) (domain.BlogPost, error) {
	p.ID = uuid.New()
	return p, nil
}

func existingPost() domain.BlogPost {
	return domain.BlogPost{
		ID:           uuid.New(),
		Slug:         "buying-in-goa",
		Title:        "Buying in Goa",
		Content:      "Start **here**.",
		ContentHTML:  "<p>Start <strong>here</strong>.</p>",
		Excerpt:      "Start here.",
		FeatureImage: &domain.Image{URL: "https://cdn.test/blog/old.jpg", Key: "blog/old.jpg"},
		Author:       "Admin",
		Published:    true,
	}
}

func blogRepoHolding(p domain.BlogPost) *mockBlogRepo {
	return &mockBlogRepo{
		getByID: func(_ context.Context, id uuid.UUID) (domain.BlogPost, error) {
			if id != p.ID {
				return domain.BlogPost{}, domain.ErrNotFound
			}
			return p, nil
		},
		create: echoBlogCreate,
		update: func(_ context.Context, p domain.BlogPost) (domain.BlogPost, error) { return p, nil },
	}
}

// ---- Create ----------------------------------------------------------------

func TestBlogService_Create_RendersAndSlugs(t *testing.T) {
	svc := service.NewBlogService(&mockBlogRepo{create: echoBlogCreate}, memSlugs(), nil)

	got, err := svc.Create(context.Background(), domain.BlogPost{
		Title:   "Buying in Goa",
		Content: "# Guide\n\nRead <script>alert(1)</script> this.",
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, "buying-in-goa", got.Slug)
	assert.Contains(t, got.ContentHTML, "<h1")
	assert.NotContains(t, got.ContentHTML, "<script")
	assert.NotEmpty(t, got.Excerpt)
	assert.NotContains(t, got.Excerpt, "<")
}

func TestBlogService_Create_KeepsGivenExcerpt(t *testing.T) {
	svc := service.NewBlogService(&mockBlogRepo{create: echoBlogCreate}, memSlugs(), nil)

	got, err := svc.Create(context.Background(), domain.BlogPost{Title: "T", Content: "body", Excerpt: "mine"}, nil)

	require.NoError(t, err)
	assert.Equal(t, "mine", got.Excerpt)
}

func TestBlogService_Create_Validation(t *testing.T) {
	svc := service.NewBlogService(&mockBlogRepo{}, memSlugs(), nil)

	_, err := svc.Create(context.Background(), domain.BlogPost{Title: "T"}, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Create(context.Background(), domain.BlogPost{Content: "x"}, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestBlogService_Create_FeatureImage(t *testing.T) {
	store := &fakeMedia{}
	svc := service.NewBlogService(&mockBlogRepo{create: echoBlogCreate}, memSlugs(), store)
	img := upload("cover.png")

	got, err := svc.Create(context.Background(), domain.BlogPost{Title: "T", Content: "c"}, &img)

	require.NoError(t, err)
	require.NotNil(t, got.FeatureImage)
	assert.Equal(t, "blog/cover.png", got.FeatureImage.Key)
}

func TestBlogService_Create_RepoFailureRemovesImage(t *testing.T) {
	store := &fakeMedia{}
	r := &mockBlogRepo{create: func(context.Context, domain.BlogPost) (domain.BlogPost, error) {
		return domain.BlogPost{}, errors.New("db down")
	}}
	svc := service.NewBlogService(r, memSlugs(), store)
	img := upload("cover.png")

	_, err := svc.Create(context.Background(), domain.BlogPost{Title: "T", Content: "c"}, &img)

	require.Error(t, err)
	assert.Equal(t, []string{"blog/cover.png"}, store.deleted)
}

// ---- Update ----------------------------------------------------------------

func TestBlogService_Update_ContentOnlyKeepsSlug(t *testing.T) {
	cur := existingPost()
	alloc := slug.New(slug.OracleFunc(func(context.Context, slug.Kind, string, uuid.UUID) (bool, error) {
		t.Fatal("allocator must not run when the title is unchanged")
		return false, nil
	}))
	svc := service.NewBlogService(blogRepoHolding(cur), alloc, nil)

	got, err := svc.Update(context.Background(), cur.ID, domain.BlogPatch{Content: ptr("New *body*")}, nil)

	require.NoError(t, err)
	assert.Equal(t, "buying-in-goa", got.Slug)
	assert.Contains(t, got.ContentHTML, "<em>body</em>")
	assert.Equal(t, "New body", got.Excerpt, "excerpt follows new content")
}

func TestBlogService_Update_RenameExcludesSelf(t *testing.T) {
	cur := existingPost()
	var excluded uuid.UUID
	alloc := slug.New(slug.OracleFunc(func(_ context.Context, _ slug.Kind, _ string, exclude uuid.UUID) (bool, error) {
		excluded = exclude
		return false, nil
	}))
	svc := service.NewBlogService(blogRepoHolding(cur), alloc, nil)

	got, err := svc.Update(context.Background(), cur.ID, domain.BlogPatch{Title: ptr("Selling in Goa")}, nil)

	require.NoError(t, err)
	assert.Equal(t, "selling-in-goa", got.Slug)
	assert.Equal(t, cur.ID, excluded)
}

func TestBlogService_Update_ReplacesFeatureImage(t *testing.T) {
	cur := existingPost()
	store := &fakeMedia{}
	svc := service.NewBlogService(blogRepoHolding(cur), memSlugs(), store)
	img := upload("new.jpg")

	got, err := svc.Update(context.Background(), cur.ID, domain.BlogPatch{}, &img)

	require.NoError(t, err)
	require.NotNil(t, got.FeatureImage)
	assert.Equal(t, "blog/new.jpg", got.FeatureImage.Key)
	assert.Equal(t, []string{"blog/old.jpg"}, store.deleted)
}

func TestBlogService_Update_NotFound(t *testing.T) {
	svc := service.NewBlogService(blogRepoHolding(existingPost()), memSlugs(), nil)

	_, err := svc.Update(context.Background(), uuid.New(), domain.BlogPatch{}, nil)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---- Duplicate / Delete / List ---------------------------------------------

func TestBlogService_Duplicate(t *testing.T) {
	cur := existingPost()
	store := &fakeMedia{}
	svc := service.NewBlogService(blogRepoHolding(cur), memSlugs(), store)

	got, err := svc.Duplicate(context.Background(), cur.ID)

	require.NoError(t, err)
	assert.Equal(t, "Buying in Goa Copy", got.Title)
	assert.Equal(t, "buying-in-goa-copy", got.Slug)
	require.NotNil(t, got.FeatureImage)
	assert.NotEqual(t, cur.FeatureImage.Key, got.FeatureImage.Key)
}

func TestBlogService_Delete_RemovesImage(t *testing.T) {
	cur := existingPost()
	store := &fakeMedia{}
	r := &mockBlogRepo{delete: func(context.Context, uuid.UUID) (domain.BlogPost, error) { return cur, nil }}
	svc := service.NewBlogService(r, memSlugs(), store)

	require.NoError(t, svc.Delete(context.Background(), cur.ID))

	assert.Equal(t, []string{"blog/old.jpg"}, store.deleted)
}

func TestBlogService_ListPublished(t *testing.T) {
	r := &mockBlogRepo{listPublished: func(_ context.Context, p domain.PaginationParams) ([]domain.BlogPost, int64, error) {
		assert.Equal(t, 2, p.Page)
		return []domain.BlogPost{existingPost()}, 11, nil
	}}
	svc := service.NewBlogService(r, memSlugs(), nil)

	posts, total, err := svc.ListPublished(context.Background(), domain.PaginationParams{Page: 2, Limit: 10})

	require.NoError(t, err)
	assert.Len(t, posts, 1)
	assert.Equal(t, int64(11), total)
}

func TestBlogService_GetBySlug(t *testing.T) {
	r := &mockBlogRepo{getBySlug: func(_ context.Context, s string) (domain.BlogPost, error) {
		if s == "buying-in-goa" {
			return existingPost(), nil
		}
		return domain.BlogPost{}, domain.ErrNotFound
	}}
	svc := service.NewBlogService(r, memSlugs(), nil)

	got, err := svc.GetBySlug(context.Background(), "buying-in-goa")
	require.NoError(t, err)
	assert.Equal(t, "Buying in Goa", got.Title)

	_, err = svc.GetBySlug(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
