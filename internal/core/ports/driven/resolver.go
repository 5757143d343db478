package driven

import (
	"context"

	"github.com/velora-data/gcpkit/internal/core/domain"
)

// CredentialResolver loads a service-account credential and scopes it to a
// requested scope set.
//
// The resolver locates the credential file from explicitPath when non-empty,
// otherwise from the GOOGLE_APPLICATION_CREDENTIALS environment variable.
// Failure modes, surfaced unwrapped to callers of the client factory:
//   - domain.ErrMissingCredential: no path and no environment variable
//   - domain.ErrCredentialNotFound: path resolved but file unreadable
//   - domain.ErrInvalidCredential: file present but not a parseable
//     service-account description
//
// Implementations may memoize by (source, scope set); repeated resolution of
// the same source must represent the same underlying identity either way.
type CredentialResolver interface {
	Resolve(ctx context.Context, explicitPath string, scopes []string) (*domain.Credential, error)
}
