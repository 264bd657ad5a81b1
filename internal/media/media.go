// Package media stores listing and blog images in S3-compatible object
// storage and hands back the public URL and object key for each one.
package media

import (
	"context"
	"errors"
	"io"

	"github.com/pkordes/propnest/internal/domain"
)

// Key prefixes per owner kind.
const (
	PrefixProperties = "properties"
	PrefixBlog       = "blog"
)

// MaxImagesPerListing caps the images attached in one upload.
const MaxImagesPerListing = 10

var (
	// ErrInvalidType is returned for uploads that are not a supported image.
	ErrInvalidType = errors.New("media: unsupported image type")
	// ErrEmpty is returned for zero-length uploads.
	ErrEmpty = errors.New("media: empty file")
	// ErrNotFound is returned when an object does not exist.
	ErrNotFound = errors.New("media: object not found")
	// ErrAccessDenied is returned when the store refuses the credentials.
	ErrAccessDenied = errors.New("media: access denied")
	// ErrUploadFailed wraps any other write failure.
	ErrUploadFailed = errors.New("media: upload failed")
	// ErrDeleteFailed wraps any other delete failure.
	ErrDeleteFailed = errors.New("media: delete failed")
)

// Upload is one incoming file.
type Upload struct {
	Filename string
	Body     io.Reader
}

// Store persists images.
type Store interface {
	// Put stores the upload under prefix and returns where it lives.
	Put(ctx context.Context, prefix string, u Upload) (domain.Image, error)
	// Copy duplicates an existing image under prefix.
	Copy(ctx context.Context, prefix string, src domain.Image) (domain.Image, error)
	// Delete removes the object with key. Missing objects are not an error.
	Delete(ctx context.Context, key string) error
}
