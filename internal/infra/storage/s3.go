package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"kidcanvas/internal/domain/artworks"
)

var ErrNotConfigured = errors.New("object storage is not configured")

type Config struct {
	Bucket    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	PublicURL string
}

// Missing returns the names of required settings that are empty.
func (c Config) Missing() []string {
	var missing []string
	if c.Bucket == "" {
		missing = append(missing, "S3_BUCKET")
	}
	if c.Endpoint == "" {
		missing = append(missing, "S3_ENDPOINT")
	}
	if c.PublicURL == "" {
		missing = append(missing, "S3_PUBLIC_URL")
	}
	return missing
}

// Client is an S3-compatible object store. It can be built from an incomplete
// Config; every call then fails with ErrNotConfigured so the server still boots.
type Client struct {
	cfg    Config
	client *s3.Client
}

func New(cfg Config) *Client {
	c := &Client{cfg: cfg}
	if len(cfg.Missing()) > 0 {
		return c
	}

	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	c.client = s3.New(s3.Options{
		Region: region,
		Credentials: aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
		BaseEndpoint: aws.String(cfg.Endpoint),
		UsePathStyle: true,
	})

	return c
}

// Ping checks that the bucket is reachable with the configured credentials.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.Ready(); err != nil {
		return err
	}
	if _, err := c.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(c.cfg.Bucket)}); err != nil {
		return fmt.Errorf("storage - Ping - HeadBucket %s: %w", c.cfg.Bucket, err)
	}
	return nil
}

// Ready reports a configuration problem. Checked per request, never retried.
func (c *Client) Ready() error {
	if missing := c.cfg.Missing(); len(missing) > 0 {
		return fmt.Errorf("%w: missing %v", ErrNotConfigured, missing)
	}
	if c.client == nil {
		return ErrNotConfigured
	}
	return nil
}

func (c *Client) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if err := c.Ready(); err != nil {
		return err
	}

	_, err := c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return fmt.Errorf("storage - Put - PutObject %s: %w", key, err)
	}
	return nil
}

func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	if err := c.Ready(); err != nil {
		return nil, err
	}

	out, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("storage - Get - GetObject %s: %w", key, err)
	}
	defer out.Body.Close()

	b, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("storage - Get - io.ReadAll: %w", err)
	}
	return b, nil
}

func (c *Client) Delete(ctx context.Context, key string) error {
	if err := c.Ready(); err != nil {
		return err
	}

	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("storage - Delete - DeleteObject %s: %w", key, err)
	}
	return nil
}

func (c *Client) PublicURL(key string) string {
	return artworks.PublicURL(c.cfg.PublicURL, key)
}

func (c *Client) KeyFromURL(raw string) (string, error) {
	return artworks.KeyFromURL(c.cfg.PublicURL, raw)
}
