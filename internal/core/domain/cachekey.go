package domain

import "fmt"

// ClientCacheKey uniquely identifies one authenticated client configuration.
// Two factory calls producing equal keys must observe the same cached client
// without re-authenticating.
type ClientCacheKey struct {
	// Service is the requested service type.
	Service ServiceType
	// Version is the wire version for version-sensitive services,
	// empty otherwise.
	Version string
	// Scopes is the canonical scope-set string (see ScopeKey).
	Scopes string
	// Source identifies the credential source: an explicit path, or the
	// empty string for the environment-derived default.
	Source string
}

// String renders the key for logging and single-flight grouping.
func (k ClientCacheKey) String() string {
	return fmt.Sprintf("%s|%s|%s|%s", k.Service, k.Version, k.Scopes, k.Source)
}
