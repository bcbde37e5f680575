package middlewarectx

import (
	"net/http"
	"strings"
)

// CORSMiddleware выставляет Access-Control заголовки для клиентского
// приложения и сразу отвечает на preflight-запросы OPTIONS.
func CORSMiddleware(clientURL string) func(http.Handler) http.Handler {
	allowAll := clientURL == "" || clientURL == "*"
	allowed := strings.ToLower(clientURL)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" {
				switch {
				case allowAll:
					w.Header().Set("Access-Control-Allow-Origin", "*")
				case strings.ToLower(origin) == allowed:
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Vary", "Origin")
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PATCH,DELETE,OPTIONS")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
