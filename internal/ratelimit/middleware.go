package ratelimit

import (
	"encoding/json"
	"math"
	"net"
	"net/http"
	"strconv"

	apperrors "github.com/Adithya-Monish-Kumar-K/wordsearch/pkg/errors"
)

// Middleware refuses requests with 429 once the client's bucket is empty.
// Clients are keyed by remote IP; run chi's RealIP first when behind a proxy.
func Middleware(l *Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wait, ok := l.reserve(clientIP(r))
			if !ok {
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(apperrors.HTTPStatusCode(apperrors.ErrRateLimited))
				json.NewEncoder(w).Encode(map[string]string{"error": apperrors.ErrRateLimited.Error()})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
