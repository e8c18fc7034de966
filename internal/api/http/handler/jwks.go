package handler

import (
	"encoding/json"
	"net/http"
)

// KeySet is the published public key material.
type KeySet interface {
	JWKS() json.RawMessage
}

// JWKS serves the public signing keys so resource servers can verify access
// tokens without calling back.
func JWKS(keys KeySet) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "public, max-age=300")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(keys.JWKS())
	}
}
