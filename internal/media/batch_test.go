package media_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/propnest/internal/domain"
	"github.com/pkordes/propnest/internal/media"
)

// fakeStore keeps objects in memory. Uploads whose body reads "fail" error.
type fakeStore struct {
	mu      sync.Mutex
	objects map[string]bool
	deleted []string
}

func newFakeStore() *fakeStore { return &fakeStore{objects: map[string]bool{}} }

func (f *fakeStore) Put(_ context.Context, prefix string, u media.Upload) (domain.Image, error) {
	b, _ := io.ReadAll(u.Body)
	if string(b) == "fail" {
		return domain.Image{}, errors.New("boom")
	}
	key := prefix + "/" + u.Filename
	f.mu.Lock()
	f.objects[key] = true
	f.mu.Unlock()
	return domain.Image{URL: "https://cdn.test/" + key, Key: key}, nil
}

func (f *fakeStore) Copy(_ context.Context, prefix string, src domain.Image) (domain.Image, error) {
	if src.Key == "" {
		return domain.Image{}, media.ErrNotFound
	}
	key := prefix + "/copy-of-" + src.Key
	f.mu.Lock()
	f.objects[key] = true
	f.mu.Unlock()
	return domain.Image{URL: "https://cdn.test/" + key, Key: key}, nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func uploads(bodies ...string) []media.Upload {
	out := make([]media.Upload, len(bodies))
	for i, b := range bodies {
		out[i] = media.Upload{Filename: string(rune('a'+i)) + ".jpg", Body: strings.NewReader(b)}
	}
	return out
}

func TestPutAll_PreservesOrder(t *testing.T) {
	store := newFakeStore()

	got, err := media.PutAll(context.Background(), store, media.PrefixProperties, uploads("1", "2", "3", "4", "5", "6"))

	require.NoError(t, err)
	require.Len(t, got, 6)
	assert.Equal(t, "properties/a.jpg", got[0].Key)
	assert.Equal(t, "properties/f.jpg", got[5].Key)
}

func TestPutAll_FailureCleansUp(t *testing.T) {
	store := newFakeStore()

	_, err := media.PutAll(context.Background(), store, media.PrefixProperties, uploads("ok", "fail", "ok"))

	require.Error(t, err)
	assert.Empty(t, store.objects, "successful uploads are rolled back")
}

func TestCopyAll(t *testing.T) {
	store := newFakeStore()
	src := []domain.Image{{Key: "properties/a.jpg"}, {Key: "properties/b.jpg"}}

	got, err := media.CopyAll(context.Background(), store, media.PrefixProperties, src)

	require.NoError(t, err)
	assert.Equal(t, "properties/copy-of-properties/a.jpg", got[0].Key)
	assert.Equal(t, "properties/copy-of-properties/b.jpg", got[1].Key)
}

func TestCopyAll_FailureCleansUp(t *testing.T) {
	store := newFakeStore()

	_, err := media.CopyAll(context.Background(), store, media.PrefixBlog, []domain.Image{{Key: "blog/a.jpg"}, {}})

	assert.ErrorIs(t, err, media.ErrNotFound)
	assert.Empty(t, store.objects)
}

func TestDeleteAll_SkipsKeyless(t *testing.T) {
	store := newFakeStore()

	media.DeleteAll(context.Background(), store, []domain.Image{{Key: "x"}, {URL: "https://legacy/y.jpg"}})

	assert.Equal(t, []string{"x"}, store.deleted)
}
