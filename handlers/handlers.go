package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/polite-web/polite-backend/utils"
)

// decodeJSON decodes a request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// pathInt64 parses a chi URL parameter as int64.
func pathInt64(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return v, nil
}

// pathInt parses a chi URL parameter as int.
func pathInt(r *http.Request, name string) (int, error) {
	v, err := pathInt64(r, name)
	return int(v), err
}

// queryInt64 parses a query parameter as int64; required when missing yields
// an error.
func queryInt64(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("missing query parameter %s", name)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return v, nil
}

// badRequest writes a 400 with the parse error message.
func badRequest(w http.ResponseWriter, err error) {
	_ = utils.WriteBadRequest(w, err.Error(), nil)
}
