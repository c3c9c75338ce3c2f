// Package avatars uploads profile pictures to S3-compatible object storage
// through presigned PUT URLs.
package avatars

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/campushub/internal/common"
	"github.com/dmitrijs2005/campushub/internal/netx"
	"github.com/google/uuid"
)

// MaxSize is the largest accepted avatar, in bytes.
const MaxSize = 5 << 20

const presignTTL = 15 * time.Minute

var extensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Config points at the bucket. PublicBaseURL, when set, is the prefix
// under which uploaded objects are readable; otherwise
// Endpoint/Bucket is used.
type Config struct {
	Endpoint      string
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
}

type Presigner interface {
	PresignPutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// NewPresigner builds an S3 presign client with static credentials and a
// path-style custom endpoint, which is what MinIO expects.
func NewPresigner(ctx context.Context, c Config) (*s3.PresignClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(c.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("aws config error: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
		}
		o.UsePathStyle = true
	})
	return s3.NewPresignClient(client), nil
}

type Uploader struct {
	presigner Presigner
	client    *http.Client
	cfg       Config
	newID     func() string
}

func NewUploader(p Presigner, client *http.Client, cfg Config) *Uploader {
	return &Uploader{presigner: p, client: client, cfg: cfg, newID: uuid.NewString}
}

// Upload stores data as a new avatar of userID and returns its public URL.
// Only PNG, JPEG, GIF and WebP images up to MaxSize are accepted.
func (u *Uploader) Upload(ctx context.Context, userID string, data []byte) (string, error) {
	if len(data) == 0 || len(data) > MaxSize {
		return "", fmt.Errorf("%w: avatar must be 1 byte to %d bytes", common.ErrInvalidInput, MaxSize)
	}
	contentType := http.DetectContentType(data)
	ext, ok := extensions[contentType]
	if !ok {
		return "", fmt.Errorf("%w: unsupported image type %s", common.ErrInvalidInput, contentType)
	}

	key := fmt.Sprintf("avatars/%s/%s%s", userID, u.newID(), ext)

	req, err := u.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.cfg.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(presignTTL))
	if err != nil {
		return "", fmt.Errorf("presign error: %w", err)
	}

	if err := netx.UploadToPresignedURL(ctx, u.client, req.URL, data, contentType); err != nil {
		return "", err
	}
	return u.publicURL(key), nil
}

func (u *Uploader) publicURL(key string) string {
	base := u.cfg.PublicBaseURL
	if base == "" {
		base = strings.TrimRight(u.cfg.Endpoint, "/") + "/" + u.cfg.Bucket
	}
	return strings.TrimRight(base, "/") + "/" + key
}
