package admanager

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	googleconn "github.com/velora-data/gcpkit/internal/connectors/google"
	"github.com/velora-data/gcpkit/internal/core/domain"
)

func testCredential() *domain.Credential {
	return &domain.Credential{
		ProjectID:   "test-project",
		ClientEmail: "robot@test-project.iam.gserviceaccount.com",
		Scopes:      []string{"https://www.googleapis.com/auth/dfp"},
		TokenSource: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token"}),
	}
}

// countingTokenSource counts token mints. A token is only ever minted on the
// way out to the network, so a zero count means no request left the process.
type countingTokenSource struct {
	mints int32
}

func (ts *countingTokenSource) Token() (*oauth2.Token, error) {
	atomic.AddInt32(&ts.mints, 1)
	return &oauth2.Token{AccessToken: "test-token"}, nil
}

func TestNew_UnsupportedVersion(t *testing.T) {
	ts := &countingTokenSource{}
	cred := testCredential()
	cred.TokenSource = ts

	_, err := New(context.Background(), cred, "v999999", "12345678", "gcpkit-test")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsupportedVersion)
	assert.Equal(t, int32(0), atomic.LoadInt32(&ts.mints), "version validation must not touch the network")
}

func TestNew_EmptyVersionDefaultsToLatest(t *testing.T) {
	client, err := New(context.Background(), testCredential(), "", "12345678", "gcpkit-test")

	require.NoError(t, err)
	assert.Equal(t, LatestVersion(), client.Version())
}

func TestSupportedVersions(t *testing.T) {
	versions := SupportedVersions()

	require.NotEmpty(t, versions)
	assert.Equal(t, versions[len(versions)-1], LatestVersion())
	for _, v := range versions {
		assert.True(t, IsSupported(v))
	}
	assert.False(t, IsSupported("v200001"))
}

func TestEnvelope_CarriesHeaderAndMethod(t *testing.T) {
	client, err := New(context.Background(), testCredential(), LatestVersion(), "1234<5678", "gcpkit & friends")
	require.NoError(t, err)

	env := string(client.envelope("getCurrentNetwork"))

	assert.Contains(t, env, "<ns1:networkCode>1234&lt;5678</ns1:networkCode>")
	assert.Contains(t, env, "<ns1:applicationName>gcpkit &amp; friends</ns1:applicationName>")
	assert.Contains(t, env, "<ns1:getCurrentNetwork")
	assert.Contains(t, env, "https://www.google.com/apis/ads/publisher/"+LatestVersion())
}

const currentNetworkResponse = `<?xml version="1.0" encoding="UTF-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <getCurrentNetworkResponse xmlns="https://www.google.com/apis/ads/publisher/v202508">
      <rval>
        <id>123456</id>
        <displayName>Fixture Network</displayName>
        <networkCode>12345678</networkCode>
        <currencyCode>EUR</currencyCode>
        <timeZone>Europe/Amsterdam</timeZone>
        <effectiveRootAdUnitId>987</effectiveRootAdUnitId>
      </rval>
    </getCurrentNetworkResponse>
  </soap:Body>
</soap:Envelope>`

func TestCurrentNetwork(t *testing.T) {
	var gotPath, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "text/xml; charset=utf-8")
		w.Write([]byte(currentNetworkResponse)) //nolint:errcheck
	}))
	defer server.Close()

	client, err := New(context.Background(), testCredential(), "v202508", "12345678", "gcpkit-test")
	require.NoError(t, err)
	client.baseURL = server.URL

	network, err := client.CurrentNetwork(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "/v202508/NetworkService", gotPath)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, int64(123456), network.ID)
	assert.Equal(t, "12345678", network.NetworkCode)
	assert.Equal(t, "Fixture Network", network.DisplayName)
	assert.Equal(t, "EUR", network.CurrencyCode)
	assert.Equal(t, "Europe/Amsterdam", network.TimeZone)
}

const faultResponse = `<?xml version="1.0" encoding="UTF-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <soap:Fault>
      <faultcode>soap:Server</faultcode>
      <faultstring>[AuthenticationError.NETWORK_NOT_FOUND @ ; trigger:'00000000']</faultstring>
    </soap:Fault>
  </soap:Body>
</soap:Envelope>`

func TestCurrentNetwork_SoapFault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/xml; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(faultResponse)) //nolint:errcheck
	}))
	defer server.Close()

	client, err := New(context.Background(), testCredential(), "v202508", "00000000", "gcpkit-test")
	require.NoError(t, err)
	client.baseURL = server.URL

	_, err = client.CurrentNetwork(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "NETWORK_NOT_FOUND")
}

func TestCurrentNetwork_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client, err := New(context.Background(), testCredential(), "v202508", "12345678", "gcpkit-test")
	require.NoError(t, err)
	client.baseURL = server.URL

	_, err = client.CurrentNetwork(context.Background())

	assert.ErrorIs(t, err, googleconn.ErrUnauthorized)
}

func TestCurrentNetwork_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, err := New(context.Background(), testCredential(), "v202508", "12345678", "gcpkit-test")
	require.NoError(t, err)
	client.baseURL = server.URL

	_, err = client.CurrentNetwork(context.Background())

	assert.ErrorIs(t, err, googleconn.ErrRateLimited)
	assert.False(t, client.limiter.Allow(), "a 429 must start a backoff window")
}
