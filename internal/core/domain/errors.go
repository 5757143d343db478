package domain

import "errors"

// Domain errors represent resolution failures. Infrastructure failures
// (network, quota) surface as the underlying SDK errors and are classified
// separately by the google connector package.
var (
	// Credential Errors.

	// ErrMissingCredential indicates no credential path was supplied and
	// GOOGLE_APPLICATION_CREDENTIALS is unset.
	ErrMissingCredential = errors.New("no credential path and GOOGLE_APPLICATION_CREDENTIALS unset")

	// ErrCredentialNotFound indicates a credential path was resolved but
	// no readable file exists there.
	ErrCredentialNotFound = errors.New("credential file not found")

	// ErrInvalidCredential indicates the credential file exists but cannot
	// be parsed as a service-account description.
	ErrInvalidCredential = errors.New("invalid credential file format")

	// Service Errors.

	// ErrUnknownService indicates a service name outside the descriptor table.
	ErrUnknownService = errors.New("unknown service")

	// ErrUnsupportedService indicates the client factory cannot serve the
	// requested service. Wraps ErrUnknownService.
	ErrUnsupportedService = errors.New("unsupported service")

	// ErrUnsupportedVersion indicates a version string outside the supported
	// set of the versioned service family.
	ErrUnsupportedVersion = errors.New("unsupported service version")

	// ErrInvalidInput indicates malformed caller input, such as a version
	// supplied for a service that is not version-sensitive.
	ErrInvalidInput = errors.New("invalid input")
)
