package domain

import (
	"encoding/json"
)

// IdentityTuple is the associated data bound into every secret ciphertext.
//
// Decryption only succeeds when the tuple presented matches the one used at
// encryption time byte for byte, which prevents a ciphertext from being replayed
// under another tenant, owner, record, or wrapping key.
type IdentityTuple struct {
	TenantID string `json:"tenantId"`
	OwnerID  string `json:"ownerId"`
	RecordID string `json:"recordId"`
	KeyID    string `json:"keyId"`
}

// Bytes returns the canonical AAD encoding: compact JSON with the fields in
// declaration order. JSON string escaping keeps field boundaries unambiguous.
func (t IdentityTuple) Bytes() []byte {
	// Marshaling a struct of strings cannot fail.
	b, _ := json.Marshal(t)
	return b
}
