package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AuditLog records one secret operation attempted by a caller.
// Subject and TenantID come from the verified identity and are empty when
// the request carried none. SecretID is unset when no record was resolved.
type AuditLog struct {
	ID        uuid.UUID
	RequestID string
	TenantID  string
	Subject   string
	Operation string
	SecretID  uuid.NullUUID
	Outcome   string
	Metadata  map[string]any
	CreatedAt time.Time
}

type requestIDKey struct{}

// WithRequestID stores the request correlation id in the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// GetRequestID returns the request correlation id, or "" when none was set.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
