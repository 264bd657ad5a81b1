package media

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/pkordes/propnest/internal/domain"
)

// maxParallel bounds concurrent requests to the object store per batch.
const maxParallel = 4

// PutAll uploads every file in parallel and returns the images in input
// order. If any upload fails, the ones that succeeded are deleted.
func PutAll(ctx context.Context, store Store, prefix string, uploads []Upload) ([]domain.Image, error) {
	images := make([]domain.Image, len(uploads))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for i, u := range uploads {
		g.Go(func() error {
			img, err := store.Put(gctx, prefix, u)
			if err != nil {
				return err
			}
			images[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		DeleteAll(context.WithoutCancel(ctx), store, images)
		return nil, fmt.Errorf("media.PutAll: %w", err)
	}
	return images, nil
}

// CopyAll duplicates every image in parallel and returns the copies in
// input order. If any copy fails, the ones that succeeded are deleted.
func CopyAll(ctx context.Context, store Store, prefix string, src []domain.Image) ([]domain.Image, error) {
	images := make([]domain.Image, len(src))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for i, img := range src {
		g.Go(func() error {
			cp, err := store.Copy(gctx, prefix, img)
			if err != nil {
				return err
			}
			images[i] = cp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		DeleteAll(context.WithoutCancel(ctx), store, images)
		return nil, fmt.Errorf("media.CopyAll: %w", err)
	}
	return images, nil
}

// DeleteAll removes every image with a key. Failures are logged, not returned.
// A nil store is a no-op.
func DeleteAll(ctx context.Context, store Store, images []domain.Image) {
	if store == nil {
		return
	}
	for _, img := range images {
		if img.Key == "" {
			continue
		}
		if err := store.Delete(ctx, img.Key); err != nil {
			slog.WarnContext(ctx, "media: delete failed", "key", img.Key, "error", err)
		}
	}
}
