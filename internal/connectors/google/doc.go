// Package google provides shared infrastructure for the Google service
// connectors: classification of googleapi errors into authorization versus
// transient failures, and rate limiting for quota-constrained APIs.
//
// Authorization failures (401/403) are not retried by this layer, since
// retrying with the same scopes cannot succeed. Transient failures (429,
// 5xx, network) propagate unmodified; retry policy is a caller concern.
package google
