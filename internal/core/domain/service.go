package domain

// ServiceType identifies one of the supported Google services.
type ServiceType string

const (
	// ServiceBigQuery is the BigQuery data warehouse.
	ServiceBigQuery ServiceType = "bigquery"
	// ServiceStorage is Google Cloud Storage.
	ServiceStorage ServiceType = "storage"
	// ServiceAnalytics is the Analytics Reporting API.
	ServiceAnalytics ServiceType = "analytics"
	// ServiceAdManager is the Google Ad Manager API.
	// Ad Manager is the only version-sensitive service family: its wire
	// protocol is versioned by release date (e.g. "v202508") and versions
	// are mutually incompatible.
	ServiceAdManager ServiceType = "admanager"
)

// ServiceDescriptor describes a supported service: the minimal OAuth scopes
// its operations need, and the supported wire versions for version-sensitive
// services. Descriptors are defined at process start and read-only thereafter.
type ServiceDescriptor struct {
	// Type is the service identifier.
	Type ServiceType
	// Name is the human-readable display name.
	Name string
	// Scopes is the minimal scope set required by the operations this
	// layer exposes for the service. Never empty.
	Scopes []string
	// Versioned reports whether the service exposes multiple incompatible
	// wire versions.
	Versioned bool
	// Versions lists the supported version strings, oldest first.
	// Empty unless Versioned is true.
	Versions []string
}

// serviceDescriptors is the closed set of supported services. Each service
// carries exactly the scopes its exposed operations need; there is no shared
// superset scope.
var serviceDescriptors = map[ServiceType]ServiceDescriptor{
	ServiceBigQuery: {
		Type:   ServiceBigQuery,
		Name:   "BigQuery",
		Scopes: []string{"https://www.googleapis.com/auth/cloud-platform"},
	},
	ServiceStorage: {
		Type:   ServiceStorage,
		Name:   "Cloud Storage",
		Scopes: []string{"https://www.googleapis.com/auth/devstorage.read_write"},
	},
	ServiceAnalytics: {
		Type:   ServiceAnalytics,
		Name:   "Analytics Reporting",
		Scopes: []string{"https://www.googleapis.com/auth/analytics.readonly"},
	},
	ServiceAdManager: {
		Type:      ServiceAdManager,
		Name:      "Ad Manager",
		Scopes:    []string{"https://www.googleapis.com/auth/dfp"},
		Versioned: true,
		Versions:  []string{"v202502", "v202505", "v202508"},
	},
}

// Services returns the supported service types in no particular order.
func Services() []ServiceType {
	services := make([]ServiceType, 0, len(serviceDescriptors))
	for t := range serviceDescriptors {
		services = append(services, t)
	}
	return services
}

// DescriptorFor returns the descriptor for a service type.
// Returns ErrUnknownService for an unrecognised type.
func DescriptorFor(service ServiceType) (ServiceDescriptor, error) {
	d, ok := serviceDescriptors[service]
	if !ok {
		return ServiceDescriptor{}, ErrUnknownService
	}
	// Copy the slices so callers cannot mutate the table.
	d.Scopes = append([]string(nil), d.Scopes...)
	d.Versions = append([]string(nil), d.Versions...)
	return d, nil
}

// LatestVersion returns the newest supported version string, or the empty
// string for non-versioned services.
func (d ServiceDescriptor) LatestVersion() string {
	if len(d.Versions) == 0 {
		return ""
	}
	return d.Versions[len(d.Versions)-1]
}

// SupportsVersion reports whether the descriptor lists the given version.
func (d ServiceDescriptor) SupportsVersion(version string) bool {
	for _, v := range d.Versions {
		if v == version {
			return true
		}
	}
	return false
}
