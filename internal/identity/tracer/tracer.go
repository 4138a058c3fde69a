// Package tracer provides a small tracing abstraction for the identity registry.
//
// Services depend on the Tracer interface only, so OpenTelemetry stays an
// adapter detail. NoopTracer is used in tests and when no exporter is
// configured; OTelTracer delegates to the global provider.
package tracer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Span represents an active trace span. End must be called exactly once.
type Span interface {
	// End completes the span. A non-nil err marks the span failed.
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute is a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// HashAccount returns a short SHA-256 prefix of an account identifier so traces
// can be correlated without exporting raw account IDs to the tracing backend.
func HashAccount(accountID string) string {
	if accountID == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(accountID))
	return hex.EncodeToString(sum[:8])
}

// Span names.
const (
	SpanRegister          = "identity.register"
	SpanVerify            = "identity.verify"
	SpanPublicSummary     = "identity.public_summary"
	SpanOwnRecord         = "identity.own_record"
	SpanAuthorizeVerifier = "identity.verifier.authorize"
	SpanRevokeVerifier    = "identity.verifier.revoke"
)

// Attribute keys.
const (
	AttrAccount   = "identity.account"
	AttrCaller    = "identity.caller"
	AttrCacheHit  = "cache.hit"
	AttrErrorCode = "error.code"
)

// Event names.
const (
	EventNotificationQueued = "notification.queued"
)
