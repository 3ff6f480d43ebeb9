package middleware

import (
	"context"
)

// context keys are unexported to avoid collisions
type ctxKey string

const (
	ctxKeyIsHTMX ctxKey = "is_htmx"
	ctxKeyCSRF   ctxKey = "csrf_token"
)

// WithHTMX marks request as HTMX
func WithHTMX(ctx context.Context, is bool) context.Context {
	return context.WithValue(ctx, ctxKeyIsHTMX, is)
}

// IsHTMX returns whether this is an htmx request
func IsHTMX(ctx context.Context) bool {
	v, _ := ctx.Value(ctxKeyIsHTMX).(bool)
	return v
}

// WithCSRFToken stores the request's CSRF token for templates.
func WithCSRFToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ctxKeyCSRF, token)
}

// CSRFToken returns the token issued for this request, if any.
func CSRFToken(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyCSRF).(string)
	return v
}
