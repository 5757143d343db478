// Package storage wraps Cloud Storage with a thin, already-authenticated
// client for named uploads, downloads and listings.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"

	"google.golang.org/api/option"
	"google.golang.org/api/storage/v1"

	"github.com/velora-data/gcpkit/internal/connectors/google"
	"github.com/velora-data/gcpkit/internal/core/domain"
)

// Client is an authenticated Cloud Storage handle bound to one project.
type Client struct {
	svc       *storage.Service
	projectID string
}

// New constructs a Cloud Storage client from a resolved credential.
func New(ctx context.Context, cred *domain.Credential) (*Client, error) {
	svc, err := storage.NewService(ctx, option.WithTokenSource(cred.TokenSource))
	if err != nil {
		return nil, fmt.Errorf("create storage service: %w", err)
	}
	return &Client{svc: svc, projectID: cred.ProjectID}, nil
}

// ProjectID returns the project the client operates in.
func (c *Client) ProjectID() string {
	return c.projectID
}

// Upload copies a local file to bucket/object and returns the stored size.
func (c *Client) Upload(ctx context.Context, localPath, bucket, object string) (int64, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()

	obj, err := c.svc.Objects.Insert(bucket, &storage.Object{Name: object}).
		Media(f).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("upload to gs://%s/%s: %w", bucket, object, google.WrapError(err))
	}
	return int64(obj.Size), nil
}

// Download copies bucket/object to a local file.
func (c *Client) Download(ctx context.Context, bucket, object, localPath string) error {
	resp, err := c.svc.Objects.Get(bucket, object).Context(ctx).Download()
	if err != nil {
		return fmt.Errorf("download gs://%s/%s: %w", bucket, object, google.WrapError(err))
	}
	defer resp.Body.Close()

	f, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", localPath, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return fmt.Errorf("write %s: %w", localPath, err)
	}
	return nil
}

// List returns the object names in a bucket under the given prefix.
func (c *Client) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	var names []string
	call := c.svc.Objects.List(bucket).Prefix(prefix)
	err := call.Pages(ctx, func(objs *storage.Objects) error {
		for _, o := range objs.Items {
			names = append(names, o.Name)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list gs://%s/%s: %w", bucket, prefix, google.WrapError(err))
	}
	return names, nil
}
