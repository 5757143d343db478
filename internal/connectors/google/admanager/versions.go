package admanager

import (
	"github.com/velora-data/gcpkit/internal/core/domain"
)

// Ad Manager versions its wire protocol by release date and retires old
// versions on a rolling schedule. The supported set lives in the service
// descriptor table so the client factory can reject bad versions before any
// credential I/O; the accessors here are conveniences over that table.

// SupportedVersions returns the supported Ad Manager versions, oldest first.
func SupportedVersions() []string {
	d, err := domain.DescriptorFor(domain.ServiceAdManager)
	if err != nil {
		return nil
	}
	return d.Versions
}

// LatestVersion returns the newest supported Ad Manager version.
func LatestVersion() string {
	d, err := domain.DescriptorFor(domain.ServiceAdManager)
	if err != nil {
		return ""
	}
	return d.LatestVersion()
}

// IsSupported reports whether version is in the supported set.
func IsSupported(version string) bool {
	d, err := domain.DescriptorFor(domain.ServiceAdManager)
	if err != nil {
		return false
	}
	return d.SupportsVersion(version)
}
