// Package serviceaccount resolves Google service-account credentials from
// the filesystem. It is the production adapter for the core's
// CredentialResolver port.
package serviceaccount

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"golang.org/x/oauth2/google"

	"github.com/velora-data/gcpkit/internal/core/domain"
	"github.com/velora-data/gcpkit/internal/core/ports/driven"
	"github.com/velora-data/gcpkit/internal/logger"
)

// EnvCredentials is the well-known environment variable naming the default
// service-account credential file.
const EnvCredentials = "GOOGLE_APPLICATION_CREDENTIALS"

// Ensure Resolver implements the port.
var _ driven.CredentialResolver = (*Resolver)(nil)

// keyFile is the subset of the service-account JSON schema this layer
// validates. The schema itself is owned by the identity provider.
type keyFile struct {
	Type        string `json:"type"`
	ProjectID   string `json:"project_id"`
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
}

// Resolver loads service-account credentials from an explicit path or from
// GOOGLE_APPLICATION_CREDENTIALS, and scopes them to a requested scope set.
// Resolutions are memoized by (path, scope set) to avoid redundant file
// reads; memoized credentials represent the same underlying identity as a
// fresh read of the same source.
type Resolver struct {
	mu   sync.RWMutex
	memo map[string]*domain.Credential
}

// NewResolver creates a Resolver with an empty memo table.
func NewResolver() *Resolver {
	return &Resolver{memo: make(map[string]*domain.Credential)}
}

// Resolve loads the credential file and returns a credential scoped to the
// given scopes. No network round-trip happens here: whether the scopes are
// actually grantable surfaces at first use, as an authorization error from
// the called service.
func (r *Resolver) Resolve(_ context.Context, explicitPath string, scopes []string) (*domain.Credential, error) {
	path := explicitPath
	if path == "" {
		path = os.Getenv(EnvCredentials)
	}
	if path == "" {
		return nil, domain.ErrMissingCredential
	}

	memoKey := path + "|" + domain.ScopeKey(scopes)
	r.mu.RLock()
	cred := r.memo[memoKey]
	r.mu.RUnlock()
	if cred != nil {
		return cred, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrCredentialNotFound, path, err)
	}

	var key keyFile
	if err := json.Unmarshal(data, &key); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidCredential, path, err)
	}
	if key.Type != "service_account" || key.ClientEmail == "" || key.PrivateKey == "" {
		return nil, fmt.Errorf("%w: %s: not a service-account key file", domain.ErrInvalidCredential, path)
	}

	conf, err := google.JWTConfigFromJSON(data, scopes...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidCredential, path, err)
	}

	// The token source outlives the resolving call, so it is not tied to
	// the caller's context.
	cred = &domain.Credential{
		ProjectID:   key.ProjectID,
		ClientEmail: key.ClientEmail,
		Source:      path,
		Scopes:      append([]string(nil), scopes...),
		TokenSource: conf.TokenSource(context.Background()),
	}

	r.mu.Lock()
	r.memo[memoKey] = cred
	r.mu.Unlock()

	logger.Debug("resolved service account %s from %s", key.ClientEmail, path)
	return cred, nil
}

// Forget drops memoized credentials for the given path, for all scope sets.
// The rotation watcher calls this before evicting factory cache entries so
// the next resolution re-reads the rotated file.
func (r *Resolver) Forget(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key := range r.memo {
		if cred := r.memo[key]; cred != nil && cred.Source == path {
			delete(r.memo, key)
		}
	}
}
