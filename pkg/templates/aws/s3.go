package aws

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Bucket points at a bucket, optionally scoped to a folder prefix.
type S3Bucket struct {
	Session

	BucketName string `config:"bucket_name" validate:"required"`
	Folder     string `config:"folder"`
}

// Client builds an S3 client from the section's session.
func (b *S3Bucket) Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := b.Config(ctx)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(cfg), nil
}

// Key joins parts under the section's folder prefix.
func (b *S3Bucket) Key(parts ...string) string {
	all := parts
	if b.Folder != "" {
		all = append([]string{b.Folder}, parts...)
	}
	return strings.TrimPrefix(path.Join(all...), "/")
}

// URI renders the s3:// address of a key within the bucket.
func (b *S3Bucket) URI(parts ...string) string {
	key := b.Key(parts...)
	if key == "" {
		return fmt.Sprintf("s3://%s", b.BucketName)
	}
	return fmt.Sprintf("s3://%s/%s", b.BucketName, key)
}

// SplitS3URI breaks an s3://bucket/key address into its halves. The
// key may be empty for a bare bucket address.
func SplitS3URI(uri string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return "", "", fmt.Errorf("not an s3:// URI: %s", uri)
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("no bucket in URI: %s", uri)
	}
	return bucket, key, nil
}

// GetObject downloads one object by key (joined under the folder).
func (b *S3Bucket) GetObject(ctx context.Context, parts ...string) ([]byte, error) {
	client, err := b.Client(ctx)
	if err != nil {
		return nil, err
	}
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.BucketName),
		Key:    aws.String(b.Key(parts...)),
	})
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", b.URI(parts...), err)
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

// PutObject uploads body under key (joined under the folder).
func (b *S3Bucket) PutObject(ctx context.Context, body []byte, parts ...string) error {
	client, err := b.Client(ctx)
	if err != nil {
		return err
	}
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(b.BucketName),
		Key:    aws.String(b.Key(parts...)),
		Body:   bytes.NewReader(body),
	})
	if err != nil {
		return fmt.Errorf("putting %s: %w", b.URI(parts...), err)
	}
	return nil
}

// DeleteObject removes one object by key (joined under the folder).
func (b *S3Bucket) DeleteObject(ctx context.Context, parts ...string) error {
	client, err := b.Client(ctx)
	if err != nil {
		return err
	}
	_, err = client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.BucketName),
		Key:    aws.String(b.Key(parts...)),
	})
	if err != nil {
		return fmt.Errorf("deleting %s: %w", b.URI(parts...), err)
	}
	return nil
}
