// Package bigquery wraps the BigQuery API with a thin, already-authenticated
// client. All authentication happens upstream in the client factory; the
// helpers here are one-call pass-throughs to the generated service.
package bigquery

import (
	"context"
	"fmt"

	"google.golang.org/api/bigquery/v2"
	"google.golang.org/api/option"

	"github.com/velora-data/gcpkit/internal/connectors/google"
	"github.com/velora-data/gcpkit/internal/core/domain"
)

// Client is an authenticated BigQuery handle bound to one project.
type Client struct {
	svc       *bigquery.Service
	projectID string
}

// New constructs a BigQuery client from a resolved credential.
func New(ctx context.Context, cred *domain.Credential) (*Client, error) {
	svc, err := bigquery.NewService(ctx, option.WithTokenSource(cred.TokenSource))
	if err != nil {
		return nil, fmt.Errorf("create bigquery service: %w", err)
	}
	return &Client{svc: svc, projectID: cred.ProjectID}, nil
}

// ProjectID returns the project the client operates in.
func (c *Client) ProjectID() string {
	return c.projectID
}

// Row is one result row keyed by column name.
type Row map[string]any

// Query runs a standard-SQL query synchronously and returns its rows.
func (c *Client) Query(ctx context.Context, sql string) ([]Row, error) {
	useLegacy := false
	resp, err := c.svc.Jobs.Query(c.projectID, &bigquery.QueryRequest{
		Query:        sql,
		UseLegacySql: &useLegacy,
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("query: %w", google.WrapError(err))
	}
	if !resp.JobComplete {
		jobID := "(unknown)"
		if resp.JobReference != nil {
			jobID = resp.JobReference.JobId
		}
		return nil, fmt.Errorf("query: job %s did not complete synchronously", jobID)
	}

	columns := make([]string, len(resp.Schema.Fields))
	for i, f := range resp.Schema.Fields {
		columns[i] = f.Name
	}

	rows := make([]Row, 0, len(resp.Rows))
	for _, r := range resp.Rows {
		row := make(Row, len(columns))
		for i, cell := range r.F {
			if i < len(columns) {
				row[columns[i]] = cell.V
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// TableExists reports whether a table exists in the given dataset.
func (c *Client) TableExists(ctx context.Context, datasetID, tableID string) (bool, error) {
	_, err := c.svc.Tables.Get(c.projectID, datasetID, tableID).Context(ctx).Do()
	if err != nil {
		if google.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("get table %s.%s: %w", datasetID, tableID, google.WrapError(err))
	}
	return true, nil
}
