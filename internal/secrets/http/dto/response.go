package dto

import (
	"time"

	secretsDomain "github.com/allisson/sealed/internal/secrets/domain"
)

// SecretMetaResponse represents secret metadata in API responses.
// It never carries key material or ciphertext.
type SecretMetaResponse struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// RevealSecretResponse carries a decrypted secret.
// SECURITY: Must be transmitted over HTTPS in production.
type RevealSecretResponse struct {
	Plaintext string `json:"plaintext"`
}

// MapSecretMetaToResponse converts domain metadata to an API response.
func MapSecretMetaToResponse(meta *secretsDomain.SecretMeta) SecretMetaResponse {
	return SecretMetaResponse{
		ID:        meta.ID.String(),
		TenantID:  meta.TenantID,
		OwnerID:   meta.OwnerID,
		CreatedAt: meta.CreatedAt,
	}
}
