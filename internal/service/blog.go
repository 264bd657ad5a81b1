package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/propnest/internal/domain"
	"github.com/pkordes/propnest/internal/markup"
	"github.com/pkordes/propnest/internal/media"
	"github.com/pkordes/propnest/internal/repo"
	"github.com/pkordes/propnest/internal/slug"
)

// Blog listing bounds.
const (
	BlogPageDefault = 10
	BlogPageMax     = 50
	excerptRunes    = 200
)

// BlogService implements business logic for blog posts.
type BlogService struct {
	repo   repo.BlogRepo
	slugs  *slug.Allocator
	images media.Store // nil when uploads are not configured
}

// NewBlogService constructs a BlogService. images may be nil.
func NewBlogService(r repo.BlogRepo, slugs *slug.Allocator, images media.Store) *BlogService {
	return &BlogService{repo: r, slugs: slugs, images: images}
}

// Create renders the post's markdown, stores an optional feature image and
// persists the post under a slug allocated from its title.
func (s *BlogService) Create(ctx context.Context, p domain.BlogPost, feature *media.Upload) (domain.BlogPost, error) {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		return domain.BlogPost{}, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if strings.TrimSpace(p.Content) == "" {
		return domain.BlogPost{}, fmt.Errorf("%w: content is required", domain.ErrValidation)
	}
	if err := render(&p); err != nil {
		return domain.BlogPost{}, fmt.Errorf("service.BlogService.Create: %w", err)
	}

	img, err := s.uploadFeature(ctx, feature)
	if err != nil {
		return domain.BlogPost{}, fmt.Errorf("service.BlogService.Create: %w", err)
	}
	p.FeatureImage = img

	created, err := slug.Persist(ctx, s.slugs,
		slug.Request{DisplayName: p.Title, Kind: slug.KindBlogPost},
		slug.DefaultAttempts,
		func(ctx context.Context, sl string) (domain.BlogPost, error) {
			p.Slug = sl
			return s.repo.Create(ctx, p)
		})
	if err != nil {
		s.dropImage(ctx, img)
		return domain.BlogPost{}, fmt.Errorf("service.BlogService.Create: %w", err)
	}
	return created, nil
}

// GetBySlug returns the post with slug.
func (s *BlogService) GetBySlug(ctx context.Context, sl string) (domain.BlogPost, error) {
	if !slug.Valid(sl) {
		return domain.BlogPost{}, fmt.Errorf("service.BlogService.GetBySlug: %w", domain.ErrNotFound)
	}
	p, err := s.repo.GetBySlug(ctx, sl)
	if err != nil {
		return domain.BlogPost{}, fmt.Errorf("service.BlogService.GetBySlug: %w", err)
	}
	return p, nil
}

// GetByID returns a single post.
func (s *BlogService) GetByID(ctx context.Context, id uuid.UUID) (domain.BlogPost, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.BlogPost{}, fmt.Errorf("service.BlogService.GetByID: %w", err)
	}
	return p, nil
}

// ListPublished returns one page of published posts and their total count.
func (s *BlogService) ListPublished(ctx context.Context, p domain.PaginationParams) ([]domain.BlogPost, int64, error) {
	posts, total, err := s.repo.ListPublished(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.BlogService.ListPublished: %w", err)
	}
	return posts, total, nil
}

// Update applies patch. The slug follows the title only when the title
// changes. A new feature image replaces and deletes the previous one.
func (s *BlogService) Update(ctx context.Context, id uuid.UUID, patch domain.BlogPatch, feature *media.Upload) (domain.BlogPost, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.BlogPost{}, fmt.Errorf("service.BlogService.Update: %w", err)
	}

	next := current
	if patch.Title != nil {
		next.Title = strings.TrimSpace(*patch.Title)
		if next.Title == "" {
			return domain.BlogPost{}, fmt.Errorf("%w: title must not be empty", domain.ErrValidation)
		}
	}
	if patch.Content != nil {
		if strings.TrimSpace(*patch.Content) == "" {
			return domain.BlogPost{}, fmt.Errorf("%w: content must not be empty", domain.ErrValidation)
		}
		next.Content = *patch.Content
		if patch.Excerpt == nil {
			next.Excerpt = ""
		}
	}
	if patch.Excerpt != nil {
		next.Excerpt = strings.TrimSpace(*patch.Excerpt)
	}
	if patch.Author != nil {
		next.Author = strings.TrimSpace(*patch.Author)
	}
	if patch.Tags != nil {
		next.Tags = patch.Tags
	}
	if patch.Published != nil {
		next.Published = *patch.Published
	}
	if err := render(&next); err != nil {
		return domain.BlogPost{}, fmt.Errorf("service.BlogService.Update: %w", err)
	}

	img, err := s.uploadFeature(ctx, feature)
	if err != nil {
		return domain.BlogPost{}, fmt.Errorf("service.BlogService.Update: %w", err)
	}
	if img != nil {
		next.FeatureImage = img
	}

	var updated domain.BlogPost
	if next.Title != current.Title {
		updated, err = slug.Persist(ctx, s.slugs,
			slug.Request{DisplayName: next.Title, Kind: slug.KindBlogPost, ExcludeID: id},
			slug.DefaultAttempts,
			func(ctx context.Context, sl string) (domain.BlogPost, error) {
				next.Slug = sl
				return s.repo.Update(ctx, next)
			})
	} else {
		updated, err = s.repo.Update(ctx, next)
	}
	if err != nil {
		s.dropImage(ctx, img)
		return domain.BlogPost{}, fmt.Errorf("service.BlogService.Update: %w", err)
	}

	if img != nil {
		s.dropImage(ctx, current.FeatureImage)
	}
	return updated, nil
}

// Duplicate copies a post as "<title> Copy" with a fresh slug and its own
// copy of the feature image.
func (s *BlogService) Duplicate(ctx context.Context, id uuid.UUID) (domain.BlogPost, error) {
	src, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.BlogPost{}, fmt.Errorf("service.BlogService.Duplicate: %w", err)
	}

	dup := src
	dup.ID = uuid.Nil
	dup.Title = src.Title + " Copy"
	dup.FeatureImage = nil
	if src.FeatureImage != nil && s.images != nil {
		img, err := s.images.Copy(ctx, media.PrefixBlog, *src.FeatureImage)
		if err != nil {
			return domain.BlogPost{}, fmt.Errorf("service.BlogService.Duplicate: %w", err)
		}
		dup.FeatureImage = &img
	}

	created, err := slug.Persist(ctx, s.slugs,
		slug.Request{DisplayName: dup.Title, Kind: slug.KindBlogPost},
		slug.DefaultAttempts,
		func(ctx context.Context, sl string) (domain.BlogPost, error) {
			dup.Slug = sl
			return s.repo.Create(ctx, dup)
		})
	if err != nil {
		s.dropImage(ctx, dup.FeatureImage)
		return domain.BlogPost{}, fmt.Errorf("service.BlogService.Duplicate: %w", err)
	}
	return created, nil
}

// Delete removes a post and, best-effort, its feature image.
func (s *BlogService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("service.BlogService.Delete: %w", err)
	}
	s.dropImage(ctx, deleted.FeatureImage)
	return nil
}

// render fills ContentHTML from Content, and Excerpt when it is empty.
func render(p *domain.BlogPost) error {
	html, err := markup.Render(p.Content)
	if err != nil {
		return err
	}
	p.ContentHTML = html
	if p.Excerpt == "" {
		p.Excerpt, err = markup.Excerpt(p.Content, excerptRunes)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *BlogService) uploadFeature(ctx context.Context, u *media.Upload) (*domain.Image, error) {
	if u == nil {
		return nil, nil
	}
	if s.images == nil {
		return nil, fmt.Errorf("%w: image uploads are not configured", domain.ErrValidation)
	}
	imgs, err := media.PutAll(ctx, s.images, media.PrefixBlog, []media.Upload{*u})
	if err != nil {
		return nil, err
	}
	return &imgs[0], nil
}

func (s *BlogService) dropImage(ctx context.Context, img *domain.Image) {
	if img != nil {
		media.DeleteAll(ctx, s.images, []domain.Image{*img})
	}
}
