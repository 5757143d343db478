package services

import (
	"context"

	"github.com/velora-data/gcpkit/internal/connectors/google/admanager"
	"github.com/velora-data/gcpkit/internal/connectors/google/analytics"
	"github.com/velora-data/gcpkit/internal/connectors/google/bigquery"
	"github.com/velora-data/gcpkit/internal/connectors/google/storage"
	"github.com/velora-data/gcpkit/internal/core/domain"
	"github.com/velora-data/gcpkit/internal/core/ports/driven"
)

// BuilderConfig carries the settings the production builders need beyond a
// resolved credential.
type BuilderConfig struct {
	// AdManagerNetworkCode is the Ad Manager network to operate in.
	AdManagerNetworkCode string
	// AdManagerApplicationName identifies this application in Ad Manager
	// request headers.
	AdManagerApplicationName string
}

// RegisterDefaultBuilders wires the production Google connectors into a
// client factory. Tests register their own builders instead.
func RegisterDefaultBuilders(f *ClientFactory, cfg BuilderConfig) {
	f.Register(domain.ServiceBigQuery, func(ctx context.Context, cred *domain.Credential, _ string) (driven.Client, error) {
		return bigquery.New(ctx, cred)
	})
	f.Register(domain.ServiceStorage, func(ctx context.Context, cred *domain.Credential, _ string) (driven.Client, error) {
		return storage.New(ctx, cred)
	})
	f.Register(domain.ServiceAnalytics, func(ctx context.Context, cred *domain.Credential, _ string) (driven.Client, error) {
		return analytics.New(ctx, cred)
	})
	f.Register(domain.ServiceAdManager, func(ctx context.Context, cred *domain.Credential, version string) (driven.Client, error) {
		return admanager.New(ctx, cred, version, cfg.AdManagerNetworkCode, cfg.AdManagerApplicationName)
	})
}
