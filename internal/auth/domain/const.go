// Package domain defines the caller identity produced by token verification
// and the authorization guard that decides what that identity may do.
package domain

// Scope is a capability granted to a caller through the token's scope claim.
type Scope string

const (
	// ScopeSecretRead allows reading secret metadata and revealing secret payloads.
	ScopeSecretRead Scope = "secret:read"

	// ScopeSecretWrite allows storing new secrets.
	ScopeSecretWrite Scope = "secret:write"
)
