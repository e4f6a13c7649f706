package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PathImports is the key prefix of news import files.
const PathImports = "imports/"

type S3Client interface {
	// OpenFile streams an object, the caller must close it.
	OpenFile(ctx context.Context, key string) (io.ReadCloser, error)
}

type storageClient struct {
	bucket string
	client *s3.Client
}

func NewStorageClient(ctx context.Context, region, bucket string) (S3Client, error) {
	if bucket == "" {
		return nil, errors.New("S3 bucket name is empty")
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg)
	return &storageClient{
		bucket: bucket,
		client: client,
	}, nil
}

// ResolveKey prefixes bare file names with PathImports.
func ResolveKey(key string) string {
	if key == "" || strings.HasPrefix(key, PathImports) {
		return key
	}
	return PathImports + key
}

func (s *storageClient) OpenFile(ctx context.Context, key string) (io.ReadCloser, error) {
	if key == "" {
		return nil, errors.New("key is empty")
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(ResolveKey(key)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get s3://%s/%s: %w", s.bucket, ResolveKey(key), err)
	}
	return out.Body, nil
}
