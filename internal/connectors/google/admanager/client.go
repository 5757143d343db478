// Package admanager is the version-sensitive proxy for the Google Ad Manager
// API. Ad Manager speaks date-versioned SOAP endpoints with no generated Go
// client, so the proxy validates the requested version against the supported
// set, then drives the endpoint directly over an authenticated HTTP client.
//
// Version validation happens before any network call; a bad version fails
// fast and cheaply. The proxy holds no cache of its own — caching is the
// client factory's job, keyed to include the version.
package admanager

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"

	"github.com/velora-data/gcpkit/internal/connectors/google"
	"github.com/velora-data/gcpkit/internal/core/domain"
)

const endpointBase = "https://ads.google.com/apis/ads/publisher"

// Client is an authenticated Ad Manager handle bound to one network and one
// wire version.
type Client struct {
	httpClient      *http.Client
	baseURL         string
	version         string
	networkCode     string
	applicationName string
	limiter         *google.RateLimiter
}

// New constructs an Ad Manager client for the given wire version.
// Returns domain.ErrUnsupportedVersion, without touching the network, when
// the version is outside the supported set.
func New(ctx context.Context, cred *domain.Credential, version, networkCode, applicationName string) (*Client, error) {
	if version == "" {
		version = LatestVersion()
	}
	if !IsSupported(version) {
		return nil, fmt.Errorf("%w: %s (supported: %v)",
			domain.ErrUnsupportedVersion, version, SupportedVersions())
	}

	return &Client{
		httpClient:      oauth2.NewClient(ctx, cred.TokenSource),
		baseURL:         endpointBase,
		version:         version,
		networkCode:     networkCode,
		applicationName: applicationName,
		limiter:         google.NewRateLimiter(domain.ServiceAdManager),
	}, nil
}

// Version returns the wire version the client is bound to.
func (c *Client) Version() string {
	return c.version
}

// Network describes an Ad Manager network.
type Network struct {
	ID                    int64  `xml:"id"`
	NetworkCode           string `xml:"networkCode"`
	DisplayName           string `xml:"displayName"`
	TimeZone              string `xml:"timeZone"`
	CurrencyCode          string `xml:"currencyCode"`
	EffectiveRootAdUnitID string `xml:"effectiveRootAdUnitId"`
}

type soapFault struct {
	Code    string `xml:"faultcode"`
	Message string `xml:"faultstring"`
}

type getCurrentNetworkEnvelope struct {
	Body struct {
		Fault    *soapFault `xml:"Fault"`
		Response *struct {
			Rval Network `xml:"rval"`
		} `xml:"getCurrentNetworkResponse"`
	} `xml:"Body"`
}

// CurrentNetwork fetches the network the credential's service account
// belongs to, via NetworkService.getCurrentNetwork.
func (c *Client) CurrentNetwork(ctx context.Context) (*Network, error) {
	body, err := c.call(ctx, "NetworkService", c.envelope("getCurrentNetwork"))
	if err != nil {
		return nil, err
	}

	var env getCurrentNetworkEnvelope
	if err := xml.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("admanager: decode getCurrentNetwork response: %w", err)
	}
	if env.Body.Fault != nil {
		return nil, fmt.Errorf("admanager: %s: %s", env.Body.Fault.Code, env.Body.Fault.Message)
	}
	if env.Body.Response == nil {
		return nil, fmt.Errorf("admanager: empty getCurrentNetwork response")
	}
	return &env.Body.Response.Rval, nil
}

// envelope builds a SOAP request for a no-argument method.
func (c *Client) envelope(method string) []byte {
	ns := fmt.Sprintf("https://www.google.com/apis/ads/publisher/%s", c.version)

	var networkCode, applicationName bytes.Buffer
	xml.EscapeText(&networkCode, []byte(c.networkCode))         //nolint:errcheck // bytes.Buffer cannot fail
	xml.EscapeText(&applicationName, []byte(c.applicationName)) //nolint:errcheck // bytes.Buffer cannot fail

	return fmt.Appendf(nil, `<?xml version="1.0" encoding="UTF-8"?>
<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
  <soapenv:Header>
    <ns1:RequestHeader xmlns:ns1=%q>
      <ns1:networkCode>%s</ns1:networkCode>
      <ns1:applicationName>%s</ns1:applicationName>
    </ns1:RequestHeader>
  </soapenv:Header>
  <soapenv:Body>
    <ns1:%s xmlns:ns1=%q/>
  </soapenv:Body>
</soapenv:Envelope>`, ns, networkCode.String(), applicationName.String(), method, ns)
}

func (c *Client) call(ctx context.Context, service string, envelope []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s/%s", c.baseURL, c.version, service)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(envelope))
	if err != nil {
		return nil, fmt.Errorf("admanager: create request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("admanager: call %s: %w", service, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("admanager: read %s response: %w", service, err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusInternalServerError:
		// SOAP faults arrive as 500 with a fault envelope; let the caller
		// decode the fault for a better message.
		return body, nil
	case http.StatusUnauthorized:
		return nil, google.ErrUnauthorized
	case http.StatusForbidden:
		return nil, google.ErrForbidden
	case http.StatusTooManyRequests:
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		c.limiter.RecordRateLimitError(retryAfter)
		return nil, google.ErrRateLimited
	default:
		return nil, fmt.Errorf("admanager: %s returned status %d", service, resp.StatusCode)
	}
}
