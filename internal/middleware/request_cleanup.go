package middleware

import (
	"io"
	"net/http"
)

const (
	// MaxRequestBodyBytes caps session and set payloads; decoding a bigger body fails with 400.
	MaxRequestBodyBytes = 1 << 20
	// leftovers bigger than this are closed without draining
	maxDrainBytes = 256 * 1024
)

// DrainAndCloseRequest limits the request body, then drains what the handler left unread and
// closes it, so the connection can be reused.
func DrainAndCloseRequest() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil && r.Body != http.NoBody {
				r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodyBytes)
			}
			next.ServeHTTP(w, r)
			if r.Body != nil {
				_, _ = io.Copy(io.Discard, io.LimitReader(r.Body, maxDrainBytes))
				_ = r.Body.Close()
			}
		})
	}
}
