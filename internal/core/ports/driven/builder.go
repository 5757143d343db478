package driven

import (
	"context"

	"github.com/velora-data/gcpkit/internal/core/domain"
)

// Client is an opaque, fully authenticated handle for one Google service,
// ready for immediate use by that service's own call surface. The factory
// never returns a partially initialised client.
type Client any

// ClientBuilder constructs an authenticated client for one service from a
// resolved credential. version is empty for non-versioned services and is
// already validated against the descriptor table when the builder runs.
//
// The factory guarantees at most one builder invocation per distinct cache
// key, so builders need no caching or locking of their own.
type ClientBuilder func(ctx context.Context, cred *domain.Credential, version string) (Client, error)
