package fsxs3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/Abraxas-365/fetchdrain/pkg/errx"
	"github.com/Abraxas-365/fetchdrain/pkg/fsx"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Client is the subset of *s3.Client used by S3FileSystem.
type Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3FileSystem implements fsx.FileSystem over a bucket and key prefix.
// Directories are key prefixes delimited by "/".
type S3FileSystem struct {
	client Client
	bucket string
	prefix string
}

// NewS3FileSystem creates a file system over bucket, rooted at prefix
// (which may be empty).
func NewS3FileSystem(client Client, bucket, prefix string) *S3FileSystem {
	return &S3FileSystem{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

// ============================================================================
// FileReader Implementation
// ============================================================================

func (fs *S3FileSystem) ReadFile(ctx context.Context, p string) ([]byte, error) {
	rc, err := fs.ReadFileStream(ctx, p)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fsx.Failure(fsx.ErrRead, p, err)
	}
	return data, nil
}

func (fs *S3FileSystem) ReadFileStream(ctx context.Context, p string) (io.ReadCloser, error) {
	out, err := fs.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(fs.bucket),
		Key:    aws.String(fs.key(p)),
	})
	if err != nil {
		return nil, fs.wrap(fsx.ErrRead, p, err)
	}
	return out.Body, nil
}

func (fs *S3FileSystem) Stat(ctx context.Context, p string) (fsx.FileInfo, error) {
	out, err := fs.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(fs.bucket),
		Key:    aws.String(fs.key(p)),
	})
	if err != nil {
		return fsx.FileInfo{}, fs.wrap(fsx.ErrRead, p, err)
	}

	contentType := aws.ToString(out.ContentType)
	if contentType == "" {
		contentType = fsx.ContentType(p)
	}
	return fsx.FileInfo{
		Name:        path.Base(p),
		Size:        aws.ToInt64(out.ContentLength),
		ModTime:     aws.ToTime(out.LastModified),
		ContentType: contentType,
		Metadata:    out.Metadata,
	}, nil
}

// List returns the objects and sub-prefixes directly under p.
func (fs *S3FileSystem) List(ctx context.Context, p string) ([]fsx.FileInfo, error) {
	dir := fs.key(p)
	if dir != "" {
		dir += "/"
	}

	paginator := s3.NewListObjectsV2Paginator(fs.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(fs.bucket),
		Prefix:    aws.String(dir),
		Delimiter: aws.String("/"),
	})

	var infos []fsx.FileInfo
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fsx.Failure(fsx.ErrList, p, err)
		}

		for _, cp := range page.CommonPrefixes {
			name := strings.TrimSuffix(strings.TrimPrefix(aws.ToString(cp.Prefix), dir), "/")
			infos = append(infos, fsx.FileInfo{Name: name, IsDir: true, Metadata: map[string]string{}})
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), dir)
			if name == "" {
				continue // the "directory" placeholder object itself
			}
			infos = append(infos, fsx.FileInfo{
				Name:        name,
				Size:        aws.ToInt64(obj.Size),
				ModTime:     aws.ToTime(obj.LastModified),
				ContentType: fsx.ContentType(name),
				Metadata:    map[string]string{},
			})
		}
	}

	return infos, nil
}

func (fs *S3FileSystem) Exists(ctx context.Context, p string) (bool, error) {
	_, err := fs.Stat(ctx, p)
	if err != nil {
		if fsx.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ============================================================================
// FileWriter Implementation
// ============================================================================

func (fs *S3FileSystem) WriteFile(ctx context.Context, p string, data []byte) error {
	_, err := fs.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(fs.bucket),
		Key:         aws.String(fs.key(p)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(fsx.ContentType(p)),
	})
	if err != nil {
		return fsx.Failure(fsx.ErrWrite, p, err)
	}
	return nil
}

// ============================================================================
// PathOperations Implementation
// ============================================================================

func (fs *S3FileSystem) Join(elem ...string) string {
	return path.Join(elem...)
}

// ============================================================================
// Helper Methods
// ============================================================================

func (fs *S3FileSystem) key(p string) string {
	return strings.Trim(path.Join(fs.prefix, p), "/")
}

func (fs *S3FileSystem) wrap(code *errx.ErrorCode, p string, err error) error {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
		return fsx.NotFound(p)
	}
	return fsx.Failure(code, p, err)
}

// Bucket returns the bucket name
func (fs *S3FileSystem) Bucket() string {
	return fs.bucket
}
