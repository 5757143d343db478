package services

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/velora-data/gcpkit/internal/core/domain"
	"github.com/velora-data/gcpkit/internal/core/ports/driven"
	"github.com/velora-data/gcpkit/internal/logger"
)

// ClientFactory constructs and caches authenticated Google service clients.
//
// Clients are cached by (service, version, scope set, credential source), so
// repeated requests for the same configuration reuse one instance without
// re-authenticating. Concurrent requests racing on a cold cache entry are
// collapsed into a single credential resolution and a single client
// construction; requests for distinct keys never block each other.
//
// The factory is an explicit instance rather than package-level state:
// construct one per process and pass it to callers.
type ClientFactory struct {
	resolver driven.CredentialResolver

	mu       sync.RWMutex
	builders map[domain.ServiceType]driven.ClientBuilder
	cache    map[domain.ClientCacheKey]*cacheEntry

	group singleflight.Group
}

// cacheEntry pairs a constructed client with the credential used to build it.
type cacheEntry struct {
	client     driven.Client
	credential *domain.Credential
}

// NewClientFactory creates a factory with no registered builders.
// Builders are registered per service via Register; see the google
// connector packages for the production builders.
func NewClientFactory(resolver driven.CredentialResolver) *ClientFactory {
	return &ClientFactory{
		resolver: resolver,
		builders: make(map[domain.ServiceType]driven.ClientBuilder),
		cache:    make(map[domain.ClientCacheKey]*cacheEntry),
	}
}

// Register adds a client builder for the given service type, replacing any
// existing builder for that type.
func (f *ClientFactory) Register(service domain.ServiceType, builder driven.ClientBuilder) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.builders[service] = builder
}

// GetOption configures a GetClient call.
type GetOption func(*getOptions)

type getOptions struct {
	version        string
	credentialPath string
}

// WithVersion requests a specific wire version. Only valid for
// version-sensitive services; when omitted for such a service the latest
// supported version is used.
func WithVersion(version string) GetOption {
	return func(o *getOptions) { o.version = version }
}

// WithCredentialPath overrides the environment-derived credential file.
// A different path produces a different cache key and therefore a fresh
// client; the factory never implicitly invalidates an entry when the file
// behind an existing key changes on disk.
func WithCredentialPath(path string) GetOption {
	return func(o *getOptions) { o.credentialPath = path }
}

// GetClient returns an authenticated client for the service, constructing
// and caching it on first use.
//
// Validation is ordered so cheap failures happen before any I/O: service
// name, then version, then credential resolution, then construction. A
// failed call leaves the cache untouched for its key, so a later call can
// succeed once the cause is fixed. Errors from the credential resolver
// propagate unmodified.
func (f *ClientFactory) GetClient(ctx context.Context, service domain.ServiceType, opts ...GetOption) (driven.Client, error) {
	var o getOptions
	for _, opt := range opts {
		opt(&o)
	}

	desc, err := domain.DescriptorFor(service)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %s", domain.ErrUnsupportedService, err, service)
	}

	version := o.version
	if desc.Versioned {
		if version == "" {
			version = desc.LatestVersion()
		} else if !desc.SupportsVersion(version) {
			return nil, fmt.Errorf("%w: %s %s (supported: %v)",
				domain.ErrUnsupportedVersion, service, version, desc.Versions)
		}
	} else if version != "" {
		return nil, fmt.Errorf("%w: service %s is not version-sensitive", domain.ErrInvalidInput, service)
	}

	f.mu.RLock()
	builder, ok := f.builders[service]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: no builder registered for %s", domain.ErrUnsupportedService, service)
	}

	key := domain.ClientCacheKey{
		Service: service,
		Version: version,
		Scopes:  domain.ScopeKey(desc.Scopes),
		Source:  o.credentialPath,
	}

	if entry := f.lookup(key); entry != nil {
		return entry.client, nil
	}

	// Cold cache: collapse concurrent callers for the same key into one
	// resolution and one construction. Distinct keys proceed independently.
	v, err, _ := f.group.Do(key.String(), func() (any, error) {
		if entry := f.lookup(key); entry != nil {
			return entry.client, nil
		}

		cred, err := f.resolver.Resolve(ctx, o.credentialPath, desc.Scopes)
		if err != nil {
			return nil, err
		}

		logger.Debug("constructing %s client (version=%q source=%q)", service, version, cred.Source)
		client, err := builder(ctx, cred, version)
		if err != nil {
			return nil, err
		}

		f.mu.Lock()
		f.cache[key] = &cacheEntry{client: client, credential: cred}
		f.mu.Unlock()
		return client, nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (f *ClientFactory) lookup(key domain.ClientCacheKey) *cacheEntry {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.cache[key]
}

// Evict removes one cached client. Returns true if an entry existed.
func (f *ClientFactory) Evict(key domain.ClientCacheKey) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.cache[key]
	delete(f.cache, key)
	return ok
}

// EvictSource removes every cached client built from the given credential
// source and returns the number evicted. Long-running processes that rotate
// credential files call this (see the serviceaccount rotation watcher);
// the factory itself never evicts implicitly.
//
// An entry matches when either its cache key names the source (explicit
// path requests) or the credential it was built from does (environment-
// derived requests, whose keys carry an empty source).
func (f *ClientFactory) EvictSource(source string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for key, entry := range f.cache {
		if key.Source == source || entry.credential.Source == source {
			delete(f.cache, key)
			n++
		}
	}
	if n > 0 {
		logger.Info("evicted %d cached client(s) for credential source %q", n, source)
	}
	return n
}

// EvictAll clears the client cache.
func (f *ClientFactory) EvictAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cache = make(map[domain.ClientCacheKey]*cacheEntry)
}

// Size returns the number of cached clients.
func (f *ClientFactory) Size() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.cache)
}
