package services

import "context"

type contextKey string

const (
	scanIDKey      contextKey = "scan_id"
	contentTypeKey contextKey = "content_type"
)

// WithScanID attaches a scan correlation identifier to the context.
func WithScanID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, scanIDKey, id)
}

// ScanIDFromContext returns the scan correlation identifier, when present.
func ScanIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(scanIDKey).(string)
	return id, ok && id != ""
}

// WithContentType attaches the content type being scanned to the context.
func WithContentType(ctx context.Context, contentType string) context.Context {
	if contentType == "" {
		return ctx
	}
	return context.WithValue(ctx, contentTypeKey, contentType)
}

// ContentTypeFromContext returns the content type being scanned, when present.
func ContentTypeFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	ct, ok := ctx.Value(contentTypeKey).(string)
	return ct, ok && ct != ""
}
