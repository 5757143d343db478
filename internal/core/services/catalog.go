package services

import (
	"fmt"

	"github.com/velora-data/gcpkit/internal/core/domain"
)

// ScopeCatalog answers which OAuth scopes a service requires. It is a pure
// lookup over the static descriptor table; each service carries the minimal
// scope set its exposed operations need.
type ScopeCatalog struct{}

// NewScopeCatalog creates a new ScopeCatalog.
func NewScopeCatalog() *ScopeCatalog {
	return &ScopeCatalog{}
}

// ScopesFor returns the scope set required by a service.
// Returns domain.ErrUnknownService for an unrecognised service type.
func (c *ScopeCatalog) ScopesFor(service domain.ServiceType) ([]string, error) {
	d, err := domain.DescriptorFor(service)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, service)
	}
	return d.Scopes, nil
}

// Services returns all service types known to the catalog.
func (c *ScopeCatalog) Services() []domain.ServiceType {
	return domain.Services()
}
