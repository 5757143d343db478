package domain

import (
	"golang.org/x/oauth2"
)

// Credential is an authenticated service-account identity scoped to a
// specific set of OAuth scopes. It is immutable after creation and owned by
// the factory cache entry that resolved it. Scope grantability is not
// verified at resolution time; an ungrantable scope surfaces at first use as
// an authorization error from the called service.
type Credential struct {
	// ProjectID is the cloud project the service account belongs to.
	ProjectID string
	// ClientEmail is the service account identity.
	ClientEmail string
	// Source is the filesystem path the credential was loaded from.
	Source string
	// Scopes is the scope set the credential was issued for.
	Scopes []string
	// TokenSource mints access tokens for the scope set. Token refresh is
	// handled by the oauth2 library, not by this layer.
	TokenSource oauth2.TokenSource
}

// ScopeKey returns a canonical string form of a scope set, suitable for use
// inside cache keys. Scope order follows the descriptor table, which is
// fixed, so no sorting is required.
func ScopeKey(scopes []string) string {
	key := ""
	for i, s := range scopes {
		if i > 0 {
			key += " "
		}
		key += s
	}
	return key
}
