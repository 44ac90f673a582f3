package middleware

import (
	"net/http"

	"github.com/google/uuid"
)

// ViewerIDHeader carries the client-held anonymous identity used for
// reactions. The client stores the ID locally and replays it on every
// request; a request arriving without one is assigned a fresh ID, echoed
// back so the client can persist it.
const ViewerIDHeader = "X-Viewer-ID"

// ViewerIdentity extracts or assigns the anonymous viewer ID and places it
// on the request context.
func ViewerIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		viewerID := r.Header.Get(ViewerIDHeader)
		if viewerID == "" {
			viewerID = uuid.NewString()
		}
		w.Header().Set(ViewerIDHeader, viewerID)
		next.ServeHTTP(w, r.WithContext(WithViewerID(r.Context(), viewerID)))
	})
}
