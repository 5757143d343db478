// Package driven defines the outbound ports of the resolution core:
// credential resolution and per-service client construction. Adapters for
// these ports live under internal/adapters/driven and
// internal/connectors/google.
package driven
