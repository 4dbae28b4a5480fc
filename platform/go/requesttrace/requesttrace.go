package requesttrace

import (
	"context"

	platformauth "github.com/ribeiromendes5014-design/netfliz/platform/go/auth"
)

type contextKey string

const ctxAuditInfo contextKey = "NETFLIZ_REQUEST_TRACE"

// ActorKind represents who initiated a request.
type ActorKind string

const (
	ActorKindTenant    ActorKind = "tenant"
	ActorKindAnonymous ActorKind = "anonymous"
	ActorKindSystem    ActorKind = "system"
)

// AuditInfo captures request-scoped metadata needed for traceability.
// TenantSlug is set only when ActorKind is tenant; RequestID is optional but
// encouraged.
type AuditInfo struct {
	ActorKind  ActorKind
	TenantSlug string
	RequestID  string
}

// IntoContext stores the AuditInfo in the provided context.
func IntoContext(ctx context.Context, audit AuditInfo) context.Context {
	return context.WithValue(ctx, ctxAuditInfo, audit)
}

// FromContext extracts the AuditInfo from context, returning false when not present.
func FromContext(ctx context.Context) (AuditInfo, bool) {
	if ctx == nil {
		return AuditInfo{}, false
	}
	v := ctx.Value(ctxAuditInfo)
	if v == nil {
		return AuditInfo{}, false
	}

	audit, ok := v.(AuditInfo)
	return audit, ok
}

// FromContextOrAnonymous returns the AuditInfo stored on the context, or an anonymous record when absent.
func FromContextOrAnonymous(ctx context.Context) AuditInfo {
	if audit, ok := FromContext(ctx); ok {
		return audit
	}
	return Anonymous("")
}

// FromSession builds an AuditInfo from verified session claims and a request ID.
func FromSession(claims *platformauth.SessionClaims, requestID string) AuditInfo {
	if claims == nil || claims.TenantSlug == "" {
		return Anonymous(requestID)
	}
	return AuditInfo{
		ActorKind:  ActorKindTenant,
		TenantSlug: claims.TenantSlug,
		RequestID:  requestID,
	}
}

// Anonymous builds an AuditInfo for unauthenticated requests.
func Anonymous(requestID string) AuditInfo {
	return AuditInfo{ActorKind: ActorKindAnonymous, RequestID: requestID}
}

// System builds an AuditInfo for background/CLI operations.
func System(requestID string) AuditInfo {
	return AuditInfo{ActorKind: ActorKindSystem, RequestID: requestID}
}
