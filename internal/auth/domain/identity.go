package domain

import (
	"context"
	"slices"
	"strings"
)

// Identity is the verified caller of a request.
// It is built only by the token verifier and never from request input.
type Identity struct {
	Subject  string
	TenantID string
	Scopes   map[Scope]struct{}
}

// NewIdentity creates an Identity with the given scopes.
func NewIdentity(subject, tenantID string, scopes ...Scope) *Identity {
	set := make(map[Scope]struct{}, len(scopes))
	for _, s := range scopes {
		set[s] = struct{}{}
	}
	return &Identity{Subject: subject, TenantID: tenantID, Scopes: set}
}

// ParseScopes splits a space-delimited scope claim.
func ParseScopes(claim string) []Scope {
	fields := strings.Fields(claim)
	scopes := make([]Scope, 0, len(fields))
	for _, f := range fields {
		scopes = append(scopes, Scope(f))
	}
	return scopes
}

// HasScope reports whether the identity was granted scope.
func (i *Identity) HasScope(scope Scope) bool {
	if i == nil {
		return false
	}
	_, ok := i.Scopes[scope]
	return ok
}

// ScopeList returns the granted scopes sorted for stable output.
func (i *Identity) ScopeList() []string {
	out := make([]string, 0, len(i.Scopes))
	for s := range i.Scopes {
		out = append(out, string(s))
	}
	slices.Sort(out)
	return out
}

// identityKey is a context key type for storing the verified identity.
type identityKey struct{}

// WithIdentity stores a verified identity in the context.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// GetIdentity retrieves the verified identity from the context.
func GetIdentity(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*Identity)
	return id, ok && id != nil
}
