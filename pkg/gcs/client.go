package gcs

import (
	"context"
	"fmt"
	"os"
	"path"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

type Client struct {
	storageClient *storage.Client
	BucketName    string
	Prefix        string
}

// NewClient builds a storage client. With an empty saKeyPath application
// default credentials are used.
func NewClient(ctx context.Context, bucketName, prefix, saKeyPath string) (*Client, error) {
	var opts []option.ClientOption
	if saKeyPath != "" {
		if _, err := os.Stat(saKeyPath); err != nil {
			return nil, fmt.Errorf("service account key not found at path: %s: %w", saKeyPath, err)
		}
		opts = append(opts, option.WithCredentialsFile(saKeyPath))
	}

	storageClient, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS storage client: %w", err)
	}

	return &Client{
		storageClient: storageClient,
		BucketName:    bucketName,
		Prefix:        prefix,
	}, nil
}

// ObjectName joins the configured prefix and name.
func (c *Client) ObjectName(name string) string {
	return path.Join(c.Prefix, name)
}

// Upload writes body to the object name and returns its gs:// URI. Charts are
// overwritten on every run, so caching is disabled.
func (c *Client) Upload(ctx context.Context, name, contentType string, body []byte) (string, error) {
	objectName := c.ObjectName(name)
	writer := c.storageClient.Bucket(c.BucketName).Object(objectName).NewWriter(ctx)
	writer.ContentType = contentType
	writer.CacheControl = "no-cache, no-store, must-revalidate"

	if _, err := writer.Write(body); err != nil {
		_ = writer.Close()
		return "", fmt.Errorf("failed to write GCS object %s: %w", objectName, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer for %s: %w", objectName, err)
	}
	return fmt.Sprintf("gs://%s/%s", c.BucketName, objectName), nil
}

// Close closes the storage client.
func (c *Client) Close() error {
	return c.storageClient.Close()
}
