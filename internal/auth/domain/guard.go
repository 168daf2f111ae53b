package domain

// TenantResource is anything owned by a tenant.
type TenantResource interface {
	ResourceTenantID() string
}

// RequireScope fails with ErrInsufficientScope unless id was granted scope.
func RequireScope(id *Identity, scope Scope) error {
	if id == nil {
		return ErrTokenInvalid
	}
	if !id.HasScope(scope) {
		return ErrInsufficientScope
	}
	return nil
}

// RequireSameTenant fails with ErrCrossTenantDenied unless tenantID is the caller's tenant.
func RequireSameTenant(id *Identity, tenantID string) error {
	if id == nil {
		return ErrTokenInvalid
	}
	if id.TenantID == "" || id.TenantID != tenantID {
		return ErrCrossTenantDenied
	}
	return nil
}

// RequireOwnership checks that resource belongs to the caller's tenant.
// Any subject in the tenant may access it; owner identity is bound through encryption only.
func RequireOwnership(id *Identity, resource TenantResource) error {
	if resource == nil {
		return ErrCrossTenantDenied
	}
	return RequireSameTenant(id, resource.ResourceTenantID())
}
