package media_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/propnest/internal/domain"
	"github.com/pkordes/propnest/internal/media"
)

// pngHeader is enough for http.DetectContentType to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type s3Request struct {
	method, path, copySource, contentType string
	body                                  []byte
}

// newFakeS3 serves just enough of the S3 REST API for the store.
func newFakeS3(t *testing.T, status int) (*httptest.Server, *[]s3Request) {
	t.Helper()
	var (
		mu   sync.Mutex
		reqs []s3Request
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		reqs = append(reqs, s3Request{
			method:      r.Method,
			path:        r.URL.Path,
			copySource:  r.Header.Get("X-Amz-Copy-Source"),
			contentType: r.Header.Get("Content-Type"),
			body:        body,
		})
		mu.Unlock()

		if status != http.StatusOK {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>denied</Message></Error>`))
			return
		}
		if r.Header.Get("X-Amz-Copy-Source") != "" {
			w.Header().Set("Content-Type", "application/xml")
			_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><CopyObjectResult><ETag>"x"</ETag></CopyObjectResult>`))
			return
		}
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv, &reqs
}

func newTestS3Store(t *testing.T, endpoint string) *media.S3Store {
	t.Helper()
	s, err := media.NewS3Store(media.S3Config{
		Bucket:    "listings",
		Endpoint:  endpoint,
		AccessKey: "key",
		SecretKey: "secret",
		PathStyle: true,
	})
	require.NoError(t, err)
	return s
}

func TestNewS3Store_RequiresCredentials(t *testing.T) {
	_, err := media.NewS3Store(media.S3Config{Bucket: "b"})

	assert.Error(t, err)
}

func TestS3Store_Put(t *testing.T) {
	srv, reqs := newFakeS3(t, http.StatusOK)
	s := newTestS3Store(t, srv.URL)

	img, err := s.Put(context.Background(), media.PrefixProperties, media.Upload{Filename: "front.png", Body: bytes.NewReader(pngHeader)})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(img.Key, "properties/"))
	assert.True(t, strings.HasSuffix(img.Key, ".png"))
	assert.Equal(t, srv.URL+"/listings/"+img.Key, img.URL)

	require.Len(t, *reqs, 1)
	got := (*reqs)[0]
	assert.Equal(t, http.MethodPut, got.method)
	assert.Equal(t, "/listings/"+img.Key, got.path)
	assert.Equal(t, "image/png", got.contentType)
}

func TestS3Store_Put_RejectsNonImage(t *testing.T) {
	srv, reqs := newFakeS3(t, http.StatusOK)
	s := newTestS3Store(t, srv.URL)

	_, err := s.Put(context.Background(), media.PrefixBlog, media.Upload{Filename: "notes.txt", Body: strings.NewReader("plain text")})

	assert.ErrorIs(t, err, media.ErrInvalidType)
	assert.Empty(t, *reqs, "nothing is sent for rejected uploads")
}

func TestS3Store_Put_Empty(t *testing.T) {
	s := newTestS3Store(t, "http://127.0.0.1:1")

	_, err := s.Put(context.Background(), media.PrefixBlog, media.Upload{Filename: "x", Body: strings.NewReader("")})

	assert.ErrorIs(t, err, media.ErrEmpty)
}

func TestS3Store_Put_AccessDenied(t *testing.T) {
	srv, _ := newFakeS3(t, http.StatusForbidden)
	s := newTestS3Store(t, srv.URL)

	_, err := s.Put(context.Background(), media.PrefixBlog, media.Upload{Filename: "a.png", Body: bytes.NewReader(pngHeader)})

	assert.ErrorIs(t, err, media.ErrAccessDenied)
}

func TestS3Store_Copy(t *testing.T) {
	srv, reqs := newFakeS3(t, http.StatusOK)
	s := newTestS3Store(t, srv.URL)

	img, err := s.Copy(context.Background(), media.PrefixProperties, domain.Image{Key: "properties/orig.jpg"})

	require.NoError(t, err)
	assert.NotEqual(t, "properties/orig.jpg", img.Key)
	assert.True(t, strings.HasSuffix(img.Key, ".jpg"))
	require.Len(t, *reqs, 1)
	assert.Equal(t, "listings/properties/orig.jpg", strings.TrimPrefix((*reqs)[0].copySource, "/"))
}

func TestS3Store_Copy_NoKey(t *testing.T) {
	s := newTestS3Store(t, "http://127.0.0.1:1")

	_, err := s.Copy(context.Background(), media.PrefixBlog, domain.Image{URL: "https://legacy/x.jpg"})

	assert.ErrorIs(t, err, media.ErrNotFound)
}

func TestS3Store_Delete(t *testing.T) {
	srv, reqs := newFakeS3(t, http.StatusOK)
	s := newTestS3Store(t, srv.URL)

	require.NoError(t, s.Delete(context.Background(), "blog/a.png"))

	require.Len(t, *reqs, 1)
	assert.Equal(t, http.MethodDelete, (*reqs)[0].method)
	assert.Equal(t, "/listings/blog/a.png", (*reqs)[0].path)
}

func TestS3Store_PublicURL(t *testing.T) {
	srv, _ := newFakeS3(t, http.StatusOK)
	s, err := media.NewS3Store(media.S3Config{
		Bucket: "listings", Endpoint: srv.URL, AccessKey: "k", SecretKey: "s", PathStyle: true,
		PublicURL: "https://cdn.example.com/",
	})
	require.NoError(t, err)

	img, err := s.Put(context.Background(), media.PrefixBlog, media.Upload{Filename: "a.png", Body: bytes.NewReader(pngHeader)})

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/"+img.Key, img.URL)
}
