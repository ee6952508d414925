package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// listPageSize is the maximum keys requested per listing call (S3 cap).
const listPageSize = 1000

// MinIOClient implements the Client interface using minio-go
type MinIOClient struct {
	client *minio.Client
}

// NewMinIOClient creates a new MinIO client
func NewMinIOClient(cfg Config) (*MinIOClient, error) {
	endpoint, err := cleanEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
	})
	if err != nil {
		return nil, err
	}

	return &MinIOClient{client: client}, nil
}

// cleanEndpoint removes protocol and path from endpoint URL to get host:port format
func cleanEndpoint(endpoint string) (string, error) {
	if endpoint == "" {
		return "", fmt.Errorf("endpoint cannot be empty")
	}

	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		if strings.Contains(endpoint, "/") {
			return "", fmt.Errorf("endpoint contains path but no protocol")
		}
		return endpoint, nil
	}

	parsedURL, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("failed to parse endpoint URL: %w", err)
	}

	if parsedURL.Path != "" && parsedURL.Path != "/" {
		return "", fmt.Errorf("endpoint URL cannot have paths, only host:port is allowed (got path: %s)", parsedURL.Path)
	}

	return parsedURL.Host, nil
}

// ListPage fetches one page of object listings via ListObjectsV2
func (c *MinIOClient) ListPage(ctx context.Context, bucket, prefix, continuationToken string) (Page, error) {
	core := &minio.Core{Client: c.client}
	result, err := core.ListObjectsV2(bucket, prefix, "", continuationToken, "", listPageSize)
	if err != nil {
		return Page{}, err
	}

	page := Page{
		Objects:   make([]ObjectInfo, 0, len(result.Contents)),
		NextToken: result.NextContinuationToken,
	}
	for _, obj := range result.Contents {
		page.Objects = append(page.Objects, ObjectInfo{
			Key:          obj.Key,
			Size:         obj.Size,
			ETag:         obj.ETag,
			LastModified: obj.LastModified,
		})
	}

	return page, nil
}

// GetObject retrieves an object stream
func (c *MinIOClient) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	return c.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
}

// PutObject uploads an object
func (c *MinIOClient) PutObject(ctx context.Context, bucket, key string, reader io.Reader, size int64, opts PutOptions) error {
	contentType := opts.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := c.client.PutObject(ctx, bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

// StatObject gets object metadata
func (c *MinIOClient) StatObject(ctx context.Context, bucket, key string) (ObjectInfo, error) {
	info, err := c.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return ObjectInfo{}, err
	}

	return ObjectInfo{
		Key:          info.Key,
		Size:         info.Size,
		ETag:         info.ETag,
		LastModified: info.LastModified,
	}, nil
}

// RemoveObject deletes an object
func (c *MinIOClient) RemoveObject(ctx context.Context, bucket, key string) error {
	return c.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{})
}

// PresignGet generates a time-limited URL granting anonymous GET on the object
func (c *MinIOClient) PresignGet(ctx context.Context, bucket, key string, expiry time.Duration) (*url.URL, error) {
	return c.client.PresignedGetObject(ctx, bucket, key, expiry, url.Values{})
}

// PresignPut generates a time-limited URL granting anonymous PUT on the object
func (c *MinIOClient) PresignPut(ctx context.Context, bucket, key string, expiry time.Duration) (*url.URL, error) {
	return c.client.PresignedPutObject(ctx, bucket, key, expiry)
}
