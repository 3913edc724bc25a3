package content

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/wolfman30/contractor-leads/pkg/logging"
)

// MaxUploadBytes bounds a single image upload.
const MaxUploadBytes = 10 << 20

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// S3API is the subset of the S3 client used by S3Uploader.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader stores admin image uploads and returns their public URL.
type S3Uploader struct {
	client  S3API
	bucket  string
	baseURL string
	logger  *logging.Logger
	now     func() time.Time
}

// NewS3Uploader creates an uploader. When publicBaseURL is empty, URLs
// point at the bucket's virtual-hosted endpoint.
func NewS3Uploader(client S3API, bucket, publicBaseURL string, logger *logging.Logger) *S3Uploader {
	if logger == nil {
		logger = logging.Default()
	}
	base := strings.TrimRight(publicBaseURL, "/")
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.amazonaws.com", bucket)
	}
	return &S3Uploader{client: client, bucket: bucket, baseURL: base, logger: logger, now: time.Now}
}

// Enabled reports whether uploads are configured.
func (u *S3Uploader) Enabled() bool {
	return u != nil && u.client != nil && u.bucket != ""
}

// Upload writes body under uploads/YYYY/MM/ with a random name and returns
// the public URL.
func (u *S3Uploader) Upload(ctx context.Context, contentType string, size int64, body io.Reader) (string, error) {
	if !u.Enabled() {
		return "", fmt.Errorf("content: uploads are not configured")
	}
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedMedia, contentType)
	}
	if size > MaxUploadBytes {
		return "", fmt.Errorf("%w: file exceeds %d bytes", ErrInvalid, MaxUploadBytes)
	}

	now := u.now().UTC()
	key := path.Join("uploads", now.Format("2006"), now.Format("01"), uuid.NewString()+ext)

	input := &s3.PutObjectInput{
		Bucket:       aws.String(u.bucket),
		Key:          aws.String(key),
		Body:         body,
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("public, max-age=31536000, immutable"),
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}
	if _, err := u.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("content: s3 put %s: %w", key, err)
	}

	u.logger.Info("uploaded content image", "key", key, "content_type", contentType, "bytes", size)
	return u.baseURL + "/" + key, nil
}
