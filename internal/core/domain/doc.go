// Package domain contains the core types of the credential and client
// resolution layer: the closed set of supported Google services, their
// scope and version descriptors, resolved credentials, and the cache key
// that uniquely identifies one authenticated client configuration.
package domain
