package dataset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrNotFound is returned when a dataset does not exist.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// Source opens named datasets for reading.
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// LocalSource reads datasets below a directory.
type LocalSource struct {
	Root string
}

// Open implements Source.
func (s LocalSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.Open(filepath.Join(s.Root, filepath.FromSlash(name)))
}

// S3API is the subset of the S3 client used by S3Source.
type S3API interface {
	manager.DownloadAPIClient
}

// S3Source downloads datasets from an S3 bucket with parallel ranged GETs.
type S3Source struct {
	client     S3API
	bucket     string
	prefix     string
	downloader *manager.Downloader
}

// NewS3Source creates a source for bucket. prefix is prepended to all names.
func NewS3Source(client S3API, bucket, prefix string, optFns ...func(d *manager.Downloader)) *S3Source {
	return &S3Source{
		client:     client,
		bucket:     bucket,
		prefix:     prefix,
		downloader: manager.NewDownloader(client, optFns...),
	}
}

// NewS3SourceFromConfig loads the default AWS configuration and creates a
// source for bucket.
func NewS3SourceFromConfig(ctx context.Context, bucket, prefix string, optFns ...func(*config.LoadOptions) error) (*S3Source, error) {
	cfg, err := config.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewS3Source(s3.NewFromConfig(cfg), bucket, prefix), nil
}

// Open implements Source. The object is downloaded completely before Open
// returns.
func (s *S3Source) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	key := path.Join(s.prefix, name)

	buf := manager.NewWriteAtBuffer(nil)
	_, err := s.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return nil, ErrNotFound
		}
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("s3://%s/%s: %w", s.bucket, key, err)
	}

	return io.NopCloser(bytes.NewReader(buf.Bytes())), nil
}

// MinioSource streams datasets from a MinIO or other S3-compatible bucket.
type MinioSource struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewMinioSource creates a source for bucket. prefix is prepended to all names.
func NewMinioSource(client *minio.Client, bucket, prefix string) *MinioSource {
	return &MinioSource{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

// Open implements Source.
func (s *MinioSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	key := path.Join(s.prefix, name)

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, minioError(err)
	}
	// GetObject is lazy; Stat surfaces a missing key.
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, minioError(err)
	}
	return obj, nil
}

func minioError(err error) error {
	errResp := minio.ToErrorResponse(err)
	if errResp.Code == "NoSuchKey" || errResp.Code == "NotFound" {
		return ErrNotFound
	}
	return err
}

// Location is a parsed dataset location.
type Location struct {
	// Scheme is "s3", "minio" or "" for a local path.
	Scheme string
	Bucket string
	// Key is the object key, or the file path for a local location.
	Key string
}

// ParseLocation parses "s3://bucket/key", "minio://bucket/key" or a local path.
func ParseLocation(loc string) (Location, error) {
	scheme, rest, ok := strings.Cut(loc, "://")
	if !ok {
		if loc == "" {
			return Location{}, errors.New("dataset: empty location")
		}
		return Location{Key: loc}, nil
	}

	switch scheme {
	case "s3", "minio":
	default:
		return Location{}, fmt.Errorf("dataset: unsupported scheme %q", scheme)
	}

	bucket, key, _ := strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return Location{}, fmt.Errorf("dataset: %q needs a bucket and a key", loc)
	}
	return Location{Scheme: scheme, Bucket: bucket, Key: key}, nil
}

// RemoteConfig configures the clients Resolve creates.
type RemoteConfig struct {
	// AWSRegion overrides the region of the default AWS configuration.
	AWSRegion string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioSecure    bool
}

// Resolve parses loc and returns a Source for it together with the name to
// open from that source.
func Resolve(ctx context.Context, loc string, rc RemoteConfig) (Source, string, error) {
	l, err := ParseLocation(loc)
	if err != nil {
		return nil, "", err
	}

	switch l.Scheme {
	case "s3":
		var optFns []func(*config.LoadOptions) error
		if rc.AWSRegion != "" {
			optFns = append(optFns, config.WithRegion(rc.AWSRegion))
		}
		src, err := NewS3SourceFromConfig(ctx, l.Bucket, "", optFns...)
		if err != nil {
			return nil, "", err
		}
		return src, l.Key, nil
	case "minio":
		if rc.MinioEndpoint == "" {
			return nil, "", errors.New("dataset: minio endpoint required")
		}
		client, err := minio.New(rc.MinioEndpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(rc.MinioAccessKey, rc.MinioSecretKey, ""),
			Secure: rc.MinioSecure,
		})
		if err != nil {
			return nil, "", fmt.Errorf("minio client: %w", err)
		}
		return NewMinioSource(client, l.Bucket, ""), l.Key, nil
	default:
		return LocalSource{Root: filepath.Dir(l.Key)}, filepath.Base(l.Key), nil
	}
}
