package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/calabriando/api/internal/config"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-sdk-go-v2/otelaws"
)

var ErrNotBucketURL = errors.New("url does not resolve to a bucket object")

// S3Deps bundles the S3 client with bucket settings. All uploaded media for
// every content category lives in one bucket, partitioned by category prefix.
type S3Deps struct {
	Client        *s3.Client
	Uploader      *manager.Uploader
	Bucket        string
	PublicBaseURL string
}

func NewS3(ctx context.Context, cfg *config.Config) (*S3Deps, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3.Region),
	}
	if cfg.S3.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3.AccessKey, cfg.S3.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	otelaws.AppendMiddlewares(&awsCfg.APIOptions)

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3.Endpoint)
		}
		o.UsePathStyle = cfg.S3.UsePathStyle
	})

	base := strings.TrimSuffix(cfg.S3.PublicBaseURL, "/")
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3.Bucket, cfg.S3.Region)
	}

	return &S3Deps{
		Client:        client,
		Uploader:      manager.NewUploader(client),
		Bucket:        cfg.S3.Bucket,
		PublicBaseURL: base,
	}, nil
}

// Upload stores an object under key. Keys carry a uniqueness token so an
// upload never overwrites an existing object.
func (d *S3Deps) Upload(ctx context.Context, key string, contentType string, body io.Reader) error {
	_, err := d.Uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.Bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}

func (d *S3Deps) DeleteObject(ctx context.Context, key string) error {
	_, err := d.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(d.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (d *S3Deps) DeleteObjects(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	objects := make([]types.ObjectIdentifier, 0, len(keys))
	for _, k := range keys {
		objects = append(objects, types.ObjectIdentifier{Key: aws.String(k)})
	}
	_, err := d.Client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(d.Bucket),
		Delete: &types.Delete{Objects: objects, Quiet: aws.Bool(true)},
	})
	if err != nil {
		return fmt.Errorf("delete %d objects: %w", len(keys), err)
	}
	return nil
}

// PublicURL builds the public address of an object. The bucket policy makes
// every uploaded image publicly readable.
func (d *S3Deps) PublicURL(key string) string {
	return d.PublicBaseURL + "/" + strings.TrimPrefix(key, "/")
}

// KeyFromPublicURL maps a stored public URL back to its bucket key.
// Returns ErrNotBucketURL when the URL does not belong to this bucket;
// callers treat that as a skip-and-warn condition, never a hard failure.
func (d *S3Deps) KeyFromPublicURL(raw string) (string, error) {
	if raw == "" {
		return "", ErrNotBucketURL
	}
	if strings.HasPrefix(raw, d.PublicBaseURL+"/") {
		return strings.TrimPrefix(raw, d.PublicBaseURL+"/"), nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", ErrNotBucketURL
	}
	// Path-style fallback: /<bucket>/<key>
	path := strings.TrimPrefix(u.Path, "/")
	if rest, ok := strings.CutPrefix(path, d.Bucket+"/"); ok && rest != "" {
		return rest, nil
	}
	return "", ErrNotBucketURL
}
