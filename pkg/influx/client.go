package influx

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

// Client writes points synchronously to one bucket.
type Client struct {
	client influxdb2.Client
	write  api.WriteAPIBlocking
}

// NewClient connects to url with token and checks the server is ready.
func NewClient(ctx context.Context, url, token, org, bucket string) (*Client, error) {
	if url == "" || org == "" || bucket == "" {
		return nil, fmt.Errorf("influxdb url, org and bucket are required")
	}
	c := influxdb2.NewClient(url, token)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	ok, err := c.Ping(pingCtx)
	if err != nil || !ok {
		c.Close()
		if err == nil {
			err = fmt.Errorf("not ready")
		}
		return nil, fmt.Errorf("influxdb ping: %w", err)
	}

	return &Client{client: c, write: c.WriteAPIBlocking(org, bucket)}, nil
}

// NewClientWithWriter wraps an existing write API.
func NewClientWithWriter(w api.WriteAPIBlocking) *Client {
	return &Client{write: w}
}

// WritePoint writes one point.
func (c *Client) WritePoint(ctx context.Context, measurement string, tags map[string]string, fields map[string]interface{}, ts time.Time) error {
	p := influxdb2.NewPoint(measurement, tags, fields, ts)
	if err := c.write.WritePoint(ctx, p); err != nil {
		return fmt.Errorf("influxdb write: %w", err)
	}
	return nil
}

// Close releases the HTTP client.
func (c *Client) Close() error {
	if c.client != nil {
		c.client.Close()
	}
	return nil
}
