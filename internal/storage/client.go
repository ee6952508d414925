package storage

import (
	"context"
	"io"
	"net/url"
	"time"
)

// Client defines the interface for S3-compatible storage operations
type Client interface {
	// ListPage fetches a single page of object listings. An empty
	// continuation token requests the first page; Page.NextToken is empty
	// once the listing is exhausted.
	ListPage(ctx context.Context, bucket, prefix, continuationToken string) (Page, error)

	GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	PutObject(ctx context.Context, bucket, key string, reader io.Reader, size int64, opts PutOptions) error
	StatObject(ctx context.Context, bucket, key string) (ObjectInfo, error)
	RemoveObject(ctx context.Context, bucket, key string) error

	// Presigned URL generation
	PresignGet(ctx context.Context, bucket, key string, expiry time.Duration) (*url.URL, error)
	PresignPut(ctx context.Context, bucket, key string, expiry time.Duration) (*url.URL, error)
}

// ObjectInfo contains object metadata
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	LastModified time.Time
}

// Page is one page of a listing
type Page struct {
	Objects   []ObjectInfo
	NextToken string
}

// PutOptions contains options for put operations
type PutOptions struct {
	ContentType string
}

// Config contains client configuration
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Secure    bool
}
