package middleware

import (
	"context"
)

// Context key type to avoid collisions
type contextKey string

// ViewerIDKey is the context key for the client-held viewer ID
const ViewerIDKey contextKey = "viewer_id"

// GetViewerIDFromContext retrieves the viewer ID from context
func GetViewerIDFromContext(ctx context.Context) string {
	if val := ctx.Value(ViewerIDKey); val != nil {
		if viewerID, ok := val.(string); ok {
			return viewerID
		}
	}
	return ""
}

// WithViewerID adds a viewer ID to the context
func WithViewerID(ctx context.Context, viewerID string) context.Context {
	return context.WithValue(ctx, ViewerIDKey, viewerID)
}
