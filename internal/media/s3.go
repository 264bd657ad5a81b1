package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"

	"github.com/pkordes/propnest/internal/domain"
)

// DefaultRegion is used when S3Config.Region is empty.
const DefaultRegion = "us-east-1"

// imageExt maps the accepted sniffed content types to a file extension.
var imageExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// S3Config configures an S3Store.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string // empty for AWS; set for MinIO, R2 and friends
	AccessKey string
	SecretKey string
	PublicURL string // base URL images are served from; optional
	PathStyle bool
}

// S3Store implements Store on S3-compatible object storage.
// Objects are written public-read; the listing pages link to them directly.
type S3Store struct {
	client *s3.Client
	cfg    S3Config
}

// NewS3Store returns a store for cfg. Bucket and credentials are required.
func NewS3Store(cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" || cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, errors.New("media.NewS3Store: bucket, access key and secret key are required")
	}
	if cfg.Region == "" {
		cfg.Region = DefaultRegion
	}

	opts := []func(*s3.Options){
		func(o *s3.Options) {
			o.Region = cfg.Region
			o.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
		},
	}
	if cfg.Endpoint != "" {
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.PathStyle
		})
	}

	return &S3Store{client: s3.New(s3.Options{}, opts...), cfg: cfg}, nil
}

// Put sniffs the content type, rejects anything that is not an image and
// writes the object under prefix/<uuid><ext>.
func (s *S3Store) Put(ctx context.Context, prefix string, u Upload) (domain.Image, error) {
	data, err := io.ReadAll(u.Body)
	if err != nil {
		return domain.Image{}, fmt.Errorf("media.S3Store.Put: read %q: %w", u.Filename, err)
	}
	if len(data) == 0 {
		return domain.Image{}, fmt.Errorf("media.S3Store.Put: %q: %w", u.Filename, ErrEmpty)
	}

	contentType := http.DetectContentType(data)
	ext, ok := imageExt[contentType]
	if !ok {
		return domain.Image{}, fmt.Errorf("media.S3Store.Put: %q is %s: %w", u.Filename, contentType, ErrInvalidType)
	}

	key := newKey(prefix, ext)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
		ACL:           types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return domain.Image{}, fmt.Errorf("media.S3Store.Put: %w", wrapS3Error(err, ErrUploadFailed))
	}
	return domain.Image{URL: s.publicURL(key), Key: key}, nil
}

// Copy duplicates src server-side under prefix, keeping its extension.
func (s *S3Store) Copy(ctx context.Context, prefix string, src domain.Image) (domain.Image, error) {
	if src.Key == "" {
		return domain.Image{}, fmt.Errorf("media.S3Store.Copy: %w: image has no key", ErrNotFound)
	}

	key := newKey(prefix, path.Ext(src.Key))
	_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(s.cfg.Bucket),
		Key:        aws.String(key),
		CopySource: aws.String(s.cfg.Bucket + "/" + src.Key),
		ACL:        types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return domain.Image{}, fmt.Errorf("media.S3Store.Copy: %w", wrapS3Error(err, ErrUploadFailed))
	}
	return domain.Image{URL: s.publicURL(key), Key: key}, nil
}

// Delete removes the object. S3 reports success for missing keys.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		wrapped := wrapS3Error(err, ErrDeleteFailed)
		if errors.Is(wrapped, ErrNotFound) {
			return nil
		}
		return fmt.Errorf("media.S3Store.Delete: %w", wrapped)
	}
	return nil
}

func newKey(prefix, ext string) string {
	return strings.Trim(prefix, "/") + "/" + uuid.NewString() + ext
}

func (s *S3Store) publicURL(key string) string {
	if s.cfg.PublicURL != "" {
		return strings.TrimSuffix(s.cfg.PublicURL, "/") + "/" + key
	}
	if s.cfg.Endpoint != "" {
		endpoint := strings.TrimSuffix(s.cfg.Endpoint, "/")
		if s.cfg.PathStyle {
			return fmt.Sprintf("%s/%s/%s", endpoint, s.cfg.Bucket, key)
		}
		return fmt.Sprintf("%s/%s", endpoint, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
}

// wrapS3Error maps S3 API errors onto the package sentinels. The SDK error
// is kept as text only, so callers match sentinels with errors.Is.
func wrapS3Error(err error, fallback error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return fmt.Errorf("%w: %v", ErrNotFound, err)
		case "AccessDenied", "Forbidden":
			return fmt.Errorf("%w: %v", ErrAccessDenied, err)
		}
	}
	var notFound *types.NoSuchKey
	if errors.As(err, &notFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return fmt.Errorf("%w: %v", fallback, err)
}
