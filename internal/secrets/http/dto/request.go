// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/sealed/internal/validation"
)

// StoreSecretRequest contains the parameters for storing a secret.
// TenantID is the target tenant and must match the caller's verified tenant.
type StoreSecretRequest struct {
	TenantID  string  `json:"tenant_id"`
	OwnerID   string  `json:"owner_id"`
	Plaintext *string `json:"plaintext"`
}

// Validate checks if the store secret request is valid.
// An empty plaintext is accepted; a missing one is not.
func (r *StoreSecretRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.TenantID, customValidation.Identifier...),
		validation.Field(&r.OwnerID, customValidation.Identifier...),
		validation.Field(&r.Plaintext, validation.NotNil),
	)
}
