package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// AuthOptions configures curator authentication.
type AuthOptions struct {
	// APIKeys are accepted bearer tokens. Blank entries are ignored; with no
	// key at all the middleware passes every request through.
	APIKeys []string
	// PublicReads lets GET and HEAD requests through without a token, so
	// published searches and autocomplete can be served to visitors.
	PublicReads bool
}

// healthPaths never require a token.
var healthPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// CuratorAuth guards curation endpoints with bearer API keys.
func CuratorAuth(opts AuthOptions) func(http.Handler) http.Handler {
	var keys [][]byte
	for _, k := range opts.APIKeys {
		if k != "" {
			keys = append(keys, []byte(k))
		}
	}

	return func(next http.Handler) http.Handler {
		if len(keys) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if healthPaths[r.URL.Path] || (opts.PublicReads && isRead(r.Method)) {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				unauthorized(w, "missing or malformed bearer token")
				return
			}
			for _, k := range keys {
				if subtle.ConstantTimeCompare([]byte(token), k) == 1 {
					next.ServeHTTP(w, r)
					return
				}
			}
			unauthorized(w, "invalid api key")
		})
	}
}

func isRead(method string) bool {
	return method == http.MethodGet || method == http.MethodHead
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="vitrine"`)
	writeError(w, http.StatusUnauthorized, KindUnauthorized, detail)
}
