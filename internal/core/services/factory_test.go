package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velora-data/gcpkit/internal/core/domain"
	"github.com/velora-data/gcpkit/internal/core/ports/driven"
)

// fakeResolver counts resolutions and can be told to fail.
type fakeResolver struct {
	mu    sync.Mutex
	calls int32
	err   error
	delay time.Duration
}

func (r *fakeResolver) Resolve(_ context.Context, explicitPath string, scopes []string) (*domain.Credential, error) {
	atomic.AddInt32(&r.calls, 1)
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	r.mu.Lock()
	err := r.err
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &domain.Credential{
		ProjectID: "test-project",
		Source:    explicitPath,
		Scopes:    scopes,
	}, nil
}

func (r *fakeResolver) setErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *fakeResolver) callCount() int {
	return int(atomic.LoadInt32(&r.calls))
}

// fakeClient is a distinguishable client instance.
type fakeClient struct {
	id      int32
	version string
}

// countingBuilder returns a builder that constructs distinct fakeClient
// instances and counts invocations.
func countingBuilder(calls *int32) driven.ClientBuilder {
	return func(_ context.Context, _ *domain.Credential, version string) (driven.Client, error) {
		n := atomic.AddInt32(calls, 1)
		return &fakeClient{id: n, version: version}, nil
	}
}

func newTestFactory(t *testing.T) (*ClientFactory, *fakeResolver, *int32) {
	t.Helper()
	resolver := &fakeResolver{}
	factory := NewClientFactory(resolver)
	var builds int32
	builder := countingBuilder(&builds)
	for _, service := range domain.Services() {
		factory.Register(service, builder)
	}
	return factory, resolver, &builds
}

func TestGetClient_IdempotentCaching(t *testing.T) {
	factory, resolver, builds := newTestFactory(t)
	ctx := context.Background()

	first, err := factory.GetClient(ctx, domain.ServiceStorage, WithCredentialPath("/tmp/sa.json"))
	require.NoError(t, err)
	second, err := factory.GetClient(ctx, domain.ServiceStorage, WithCredentialPath("/tmp/sa.json"))
	require.NoError(t, err)

	assert.Same(t, first, second, "identical arguments must return the same client instance")
	assert.Equal(t, int32(1), *builds, "underlying construction must run exactly once")
	assert.Equal(t, 1, resolver.callCount(), "credentials must be resolved exactly once")
}

func TestGetClient_CacheKeyDiscriminatesCredentialPath(t *testing.T) {
	factory, resolver, builds := newTestFactory(t)
	ctx := context.Background()

	first, err := factory.GetClient(ctx, domain.ServiceStorage, WithCredentialPath("/tmp/a.json"))
	require.NoError(t, err)
	second, err := factory.GetClient(ctx, domain.ServiceStorage, WithCredentialPath("/tmp/b.json"))
	require.NoError(t, err)

	assert.NotSame(t, first, second, "a different credential path must yield a distinct client")
	assert.Equal(t, int32(2), *builds)
	assert.Equal(t, 2, resolver.callCount(), "each credential source resolves independently")
}

func TestGetClient_CacheKeyDiscriminatesService(t *testing.T) {
	factory, _, builds := newTestFactory(t)
	ctx := context.Background()

	first, err := factory.GetClient(ctx, domain.ServiceStorage)
	require.NoError(t, err)
	second, err := factory.GetClient(ctx, domain.ServiceBigQuery)
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, int32(2), *builds)
}

func TestGetClient_UnknownService(t *testing.T) {
	factory, resolver, builds := newTestFactory(t)

	_, err := factory.GetClient(context.Background(), domain.ServiceType("NotARealService"))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsupportedService)
	assert.ErrorIs(t, err, domain.ErrUnknownService)
	assert.Equal(t, 0, resolver.callCount(), "unknown services must never touch the resolver")
	assert.Equal(t, int32(0), *builds)
}

func TestGetClient_UnsupportedVersion(t *testing.T) {
	factory, resolver, builds := newTestFactory(t)

	_, err := factory.GetClient(context.Background(), domain.ServiceAdManager, WithVersion("v999999"))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsupportedVersion)
	assert.Equal(t, 0, resolver.callCount(), "version validation must precede credential file I/O")
	assert.Equal(t, int32(0), *builds)
}

func TestGetClient_VersionRejectedForNonVersionedService(t *testing.T) {
	factory, resolver, _ := newTestFactory(t)

	_, err := factory.GetClient(context.Background(), domain.ServiceBigQuery, WithVersion("v202508"))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 0, resolver.callCount())
}

func TestGetClient_OmittedVersionDefaultsToLatest(t *testing.T) {
	factory, _, _ := newTestFactory(t)

	client, err := factory.GetClient(context.Background(), domain.ServiceAdManager)
	require.NoError(t, err)

	desc, err := domain.DescriptorFor(domain.ServiceAdManager)
	require.NoError(t, err)
	assert.Equal(t, desc.LatestVersion(), client.(*fakeClient).version)

	// Asking for the latest version explicitly hits the same cache entry.
	same, err := factory.GetClient(context.Background(), domain.ServiceAdManager, WithVersion(desc.LatestVersion()))
	require.NoError(t, err)
	assert.Same(t, client, same)
}

func TestGetClient_VersionsProduceDistinctClients(t *testing.T) {
	factory, _, builds := newTestFactory(t)
	ctx := context.Background()

	desc, err := domain.DescriptorFor(domain.ServiceAdManager)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(desc.Versions), 2)

	first, err := factory.GetClient(ctx, domain.ServiceAdManager, WithVersion(desc.Versions[0]))
	require.NoError(t, err)
	second, err := factory.GetClient(ctx, domain.ServiceAdManager, WithVersion(desc.Versions[1]))
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, int32(2), *builds)
}

func TestGetClient_ResolverErrorsPropagateUnmodified(t *testing.T) {
	factory, resolver, builds := newTestFactory(t)
	resolver.setErr(domain.ErrMissingCredential)

	_, err := factory.GetClient(context.Background(), domain.ServiceStorage)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMissingCredential)
	assert.Equal(t, int32(0), *builds, "construction must not run without credentials")
	assert.Equal(t, 0, factory.Size(), "a failed resolution must leave the cache untouched")
}

func TestGetClient_RecoversAfterResolutionFailure(t *testing.T) {
	factory, resolver, builds := newTestFactory(t)
	ctx := context.Background()

	resolver.setErr(domain.ErrCredentialNotFound)
	_, err := factory.GetClient(ctx, domain.ServiceStorage)
	require.ErrorIs(t, err, domain.ErrCredentialNotFound)

	// Fixing the credential source makes the same key succeed without a
	// process restart.
	resolver.setErr(nil)
	client, err := factory.GetClient(ctx, domain.ServiceStorage)
	require.NoError(t, err)
	assert.NotNil(t, client)
	assert.Equal(t, int32(1), *builds)
}

func TestGetClient_BuilderFailureLeavesCacheEmpty(t *testing.T) {
	resolver := &fakeResolver{}
	factory := NewClientFactory(resolver)

	var calls int32
	factory.Register(domain.ServiceStorage, func(_ context.Context, _ *domain.Credential, _ string) (driven.Client, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return nil, fmt.Errorf("handshake failed")
		}
		return &fakeClient{}, nil
	})

	ctx := context.Background()
	_, err := factory.GetClient(ctx, domain.ServiceStorage)
	require.Error(t, err)
	assert.Equal(t, 0, factory.Size())

	client, err := factory.GetClient(ctx, domain.ServiceStorage)
	require.NoError(t, err)
	assert.NotNil(t, client)
	assert.Equal(t, 1, factory.Size())
}

func TestGetClient_NoBuilderRegistered(t *testing.T) {
	resolver := &fakeResolver{}
	factory := NewClientFactory(resolver)

	_, err := factory.GetClient(context.Background(), domain.ServiceStorage)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsupportedService)
	assert.Equal(t, 0, resolver.callCount())
}

func TestGetClient_ColdCacheSingleFlight(t *testing.T) {
	resolver := &fakeResolver{delay: 20 * time.Millisecond}
	factory := NewClientFactory(resolver)

	var builds int32
	factory.Register(domain.ServiceStorage, func(_ context.Context, _ *domain.Credential, _ string) (driven.Client, error) {
		atomic.AddInt32(&builds, 1)
		time.Sleep(20 * time.Millisecond)
		return &fakeClient{id: atomic.LoadInt32(&builds)}, nil
	})

	const n = 16
	var wg sync.WaitGroup
	clients := make([]driven.Client, n)
	errs := make([]error, n)

	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			clients[i], errs[i] = factory.GetClient(context.Background(), domain.ServiceStorage)
		}()
	}
	wg.Wait()

	for i := range n {
		require.NoError(t, errs[i])
		assert.Same(t, clients[0], clients[i], "all concurrent callers must receive the same instance")
	}
	assert.Equal(t, int32(1), builds, "cold-cache races must collapse into one construction")
	assert.Equal(t, 1, resolver.callCount(), "cold-cache races must collapse into one resolution")
}

func TestEvictSource(t *testing.T) {
	factory, _, builds := newTestFactory(t)
	ctx := context.Background()

	_, err := factory.GetClient(ctx, domain.ServiceStorage, WithCredentialPath("/tmp/a.json"))
	require.NoError(t, err)
	_, err = factory.GetClient(ctx, domain.ServiceBigQuery, WithCredentialPath("/tmp/a.json"))
	require.NoError(t, err)
	kept, err := factory.GetClient(ctx, domain.ServiceStorage, WithCredentialPath("/tmp/b.json"))
	require.NoError(t, err)

	evicted := factory.EvictSource("/tmp/a.json")
	assert.Equal(t, 2, evicted)
	assert.Equal(t, 1, factory.Size())

	// The surviving entry still serves from cache.
	still, err := factory.GetClient(ctx, domain.ServiceStorage, WithCredentialPath("/tmp/b.json"))
	require.NoError(t, err)
	assert.Same(t, kept, still)

	// Evicted keys rebuild on next request.
	_, err = factory.GetClient(ctx, domain.ServiceStorage, WithCredentialPath("/tmp/a.json"))
	require.NoError(t, err)
	assert.Equal(t, int32(4), *builds)
}

// envDerivedResolver mimics resolution via GOOGLE_APPLICATION_CREDENTIALS:
// callers pass no explicit path, but the resolved credential records the
// file it actually came from.
type envDerivedResolver struct {
	path string
}

func (r *envDerivedResolver) Resolve(_ context.Context, explicitPath string, scopes []string) (*domain.Credential, error) {
	source := explicitPath
	if source == "" {
		source = r.path
	}
	return &domain.Credential{ProjectID: "test-project", Source: source, Scopes: scopes}, nil
}

func TestEvictSource_MatchesEnvironmentDerivedCredentials(t *testing.T) {
	resolver := &envDerivedResolver{path: "/etc/gcpkit/sa.json"}
	factory := NewClientFactory(resolver)
	var builds int32
	builder := countingBuilder(&builds)
	for _, service := range domain.Services() {
		factory.Register(service, builder)
	}
	ctx := context.Background()

	// No explicit path: the cache key carries an empty source, but the
	// credential behind the entry names the real file.
	first, err := factory.GetClient(ctx, domain.ServiceStorage)
	require.NoError(t, err)
	require.Equal(t, 1, factory.Size())

	evicted := factory.EvictSource("/etc/gcpkit/sa.json")

	assert.Equal(t, 1, evicted, "rotation must reach entries resolved from the environment")
	assert.Equal(t, 0, factory.Size())

	second, err := factory.GetClient(ctx, domain.ServiceStorage)
	require.NoError(t, err)
	assert.NotSame(t, first, second, "the evicted entry must rebuild on next request")
}

func TestEvictAll(t *testing.T) {
	factory, _, _ := newTestFactory(t)
	ctx := context.Background()

	_, err := factory.GetClient(ctx, domain.ServiceStorage)
	require.NoError(t, err)
	_, err = factory.GetClient(ctx, domain.ServiceAnalytics)
	require.NoError(t, err)
	require.Equal(t, 2, factory.Size())

	factory.EvictAll()
	assert.Equal(t, 0, factory.Size())
}
