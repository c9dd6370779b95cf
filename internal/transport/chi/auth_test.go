package chi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		keys   []string
		path   string
		header string
		want   int
	}{
		{"no keys", nil, "/devops/analyze", "", http.StatusOK},
		{"only empty keys", []string{"", ""}, "/devops/analyze", "", http.StatusOK},
		{"missing header", []string{"secret"}, "/devops/analyze", "", http.StatusUnauthorized},
		{"basic scheme", []string{"secret"}, "/devops/analyze", "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"wrong key", []string{"secret"}, "/devops/vectorize", "Bearer wrong-key", http.StatusUnauthorized},
		{"valid key", []string{"secret"}, "/devops/vectorize", "Bearer secret", http.StatusOK},
		{"second key", []string{"", "key1", "key2"}, "/devops/analyze", "Bearer key2", http.StatusOK},
		{"empty bearer ignored key", []string{"", "key1"}, "/devops/analyze", "Bearer ", http.StatusUnauthorized},
		{"health exempt", []string{"secret"}, "/health", "", http.StatusOK},
		{"metrics exempt", []string{"secret"}, "/metrics", "", http.StatusOK},
		{"banner exempt", []string{"secret"}, "/", "", http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handler := BearerAuthMiddleware(tc.keys)(okHandler())

			req := httptest.NewRequest(http.MethodGet, tc.path, http.NoBody)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tc.want {
				t.Errorf("got %d, want %d", rr.Code, tc.want)
			}
		})
	}
}

func TestAuthMiddleware_ErrorBody(t *testing.T) {
	handler := BearerAuthMiddleware([]string{"secret"})(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/devops/analyze", http.NoBody)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	var errResp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if errResp.Code != CodeUnauthorized {
		t.Errorf("error code: got %s, want %s", errResp.Code, CodeUnauthorized)
	}
	if errResp.Message != "missing authorization header" {
		t.Errorf("message: got %q", errResp.Message)
	}
}
