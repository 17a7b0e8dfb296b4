package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/2beens/gymsessions/internal/middleware"

	"github.com/stretchr/testify/assert"
)

func TestCors(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := middleware.Cors([]string{"https://gym.example.com/", "http://localhost:3000"})(okHandler)

	tests := []struct {
		name        string
		origin      string
		wantStatus  int
		wantAllowed string
	}{
		{name: "no origin", origin: "", wantStatus: http.StatusOK, wantAllowed: ""},
		{name: "allowed origin, trailing slash in config", origin: "https://gym.example.com", wantStatus: http.StatusOK, wantAllowed: "https://gym.example.com"},
		{name: "allowed localhost", origin: "http://localhost:3000", wantStatus: http.StatusOK, wantAllowed: "http://localhost:3000"},
		{name: "unknown origin", origin: "https://evil.example.com", wantStatus: http.StatusForbidden, wantAllowed: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/sessions/1", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantAllowed, rr.Header().Get("Access-Control-Allow-Origin"))
			if tt.wantAllowed != "" {
				assert.Contains(t, rr.Header().Get("Access-Control-Allow-Headers"), "X-SESSION-TOKEN")
			}
		})
	}
}
